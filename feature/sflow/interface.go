/*
 Copyright 2026 Google LLC

 Licensed under the Apache License, Version 2.0 (the "License");
 you may not use this file except in compliance with the License.
 You may obtain a copy of the License at

      https://www.apache.org/licenses/LICENSE-2.0

 Unless required by applicable law or agreed to in writing, software
 distributed under the License is distributed on an "AS IS" BASIS,
 WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 See the License for the specific language governing permissions and
 limitations under the License.
*/

package sflow

import (
	"github.com/openconfig/ondatra/gnmi/oc"
	"github.com/openconfig/ygot/ygot"
)

// Interface struct to hold per-interface sFlow OC attributes.
type Interface struct {
	oc oc.Sampling_Sflow_Interface
}

// NewInterface returns an Interface with sFlow enabled on it.
func NewInterface(name string) *Interface {
	return &Interface{
		oc: oc.Sampling_Sflow_Interface{
			Name:    ygot.String(name),
			Enabled: ygot.Bool(true),
		},
	}
}

// WithPollingInterval overrides the global polling-interval for the interface.
func (i *Interface) WithPollingInterval(secs uint16) *Interface {
	i.oc.PollingInterval = ygot.Uint16(secs)
	return i
}

// WithIngressSamplingRate overrides the global ingress-sampling-rate.
func (i *Interface) WithIngressSamplingRate(rate uint32) *Interface {
	i.oc.IngressSamplingRate = ygot.Uint32(rate)
	return i
}

// AugmentSflow implements the sflow.Feature interface.
func (i *Interface) AugmentSflow(sflow *oc.Sampling_Sflow) error {
	if err := i.oc.Validate(); err != nil {
		return err
	}
	ioc := sflow.GetInterface(i.oc.GetName())
	if ioc == nil {
		return sflow.AppendInterface(&i.oc)
	}
	return ygot.MergeStructInto(ioc, &i.oc)
}
