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

// Package sflow implements the Config Library for SFLOW feature profile.
package sflow

import (
	"github.com/openconfig/ondatra/gnmi/oc"
	"github.com/openconfig/ygot/ygot"
)

// Sflow struct to hold the global sFlow OC attributes.
type Sflow struct {
	oc oc.Sampling_Sflow
}

// New returns a new Sflow object with sFlow enabled.
func New() *Sflow {
	return &Sflow{
		oc: oc.Sampling_Sflow{
			Enabled: ygot.Bool(true),
		},
	}
}

// WithAgentIDIPv4 sets the agent-id-ipv4.
func (s *Sflow) WithAgentIDIPv4(addr string) *Sflow {
	s.oc.AgentIdIpv4 = ygot.String(addr)
	return s
}

// WithAgentIDIPv6 sets the agent-id-ipv6.
func (s *Sflow) WithAgentIDIPv6(addr string) *Sflow {
	s.oc.AgentIdIpv6 = ygot.String(addr)
	return s
}

// WithEgressSamplingRate sets the egress-sampling-rate.
func (s *Sflow) WithEgressSamplingRate(rate uint32) *Sflow {
	s.oc.EgressSamplingRate = ygot.Uint32(rate)
	return s
}

// WithIngressSamplingRate sets the ingress-sampling-rate.
func (s *Sflow) WithIngressSamplingRate(rate uint32) *Sflow {
	s.oc.IngressSamplingRate = ygot.Uint32(rate)
	return s
}

// WithSampleSize sets the sample-size.
func (s *Sflow) WithSampleSize(size uint16) *Sflow {
	s.oc.SampleSize = ygot.Uint16(size)
	return s
}

// WithPollingInterval sets the counter polling-interval in seconds.
func (s *Sflow) WithPollingInterval(secs uint16) *Sflow {
	s.oc.PollingInterval = ygot.Uint16(secs)
	return s
}

// WithDscp sets the DSCP of datagrams sent to collectors.
func (s *Sflow) WithDscp(dscp uint8) *Sflow {
	s.oc.Dscp = ygot.Uint8(dscp)
	return s
}

// Config returns a copy of the sFlow OC, ready for a gNMI replace of
// /sampling/sflow.
func (s *Sflow) Config() (*oc.Sampling_Sflow, error) {
	if err := s.oc.Validate(); err != nil {
		return nil, err
	}
	c, err := ygot.DeepCopy(&s.oc)
	if err != nil {
		return nil, err
	}
	return c.(*oc.Sampling_Sflow), nil
}

// AugmentDevice augments the device OC with the sFlow configuration.
func (s *Sflow) AugmentDevice(d *oc.Root) error {
	if err := s.oc.Validate(); err != nil {
		return err
	}
	return ygot.MergeStructInto(d.GetOrCreateSampling().GetOrCreateSflow(), &s.oc)
}

// Feature provides interface to augment sFlow with additional features.
type Feature interface {
	// AugmentSflow augments the sFlow OC with this feature.
	AugmentSflow(sflow *oc.Sampling_Sflow) error
}

// WithFeature augments sFlow with the provided feature.
func (s *Sflow) WithFeature(f Feature) error {
	return f.AugmentSflow(&s.oc)
}
