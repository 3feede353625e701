// Copyright 2024 Google LLC
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//      http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package cfgplugins is a collection of OpenConfig configuration libraries.
//
// Each plugin function has parameters for a gnmi Batch, values to use in the configuration
// and an ondatra.DUTDevice.  Each function returns OpenConfig values.
//
// The configuration function will modify the batch which is passed in by reference.  The
// ondatra.DUTDevice is used to determine any configuration deviations which may be necessary.
//
// The caller may choose to use the returned OC value to customize the values set by this
// function or for use in a non-batch use case.
package cfgplugins

import (
	"fmt"

	"github.com/openconfig/ondatra"
	"github.com/openconfig/ondatra/gnmi"
	"github.com/openconfig/ondatra/gnmi/oc"
	"github.com/openconfig/ygot/ygot"

	"github.com/featureprofiles-lab/sflowprofiles/internal/deviations"
)

// DefaultNetworkInstance is the device independent name of the default
// network instance.
const DefaultNetworkInstance = "DEFAULT"

// normalizeNIName applies deviations related to NetworkInstance names.
func normalizeNIName(niName string, d *ondatra.DUTDevice) string {
	if niName == DefaultNetworkInstance {
		return deviations.DefaultNetworkInstance(d)
	}
	return niName
}

// ConfigureDefaultNetworkInstance configures the default network instance name and type.
func ConfigureDefaultNetworkInstance(batch *gnmi.SetBatch, d *ondatra.DUTDevice) *oc.NetworkInstance {
	ni := &oc.NetworkInstance{
		Name: ygot.String(deviations.DefaultNetworkInstance(d)),
		Type: oc.NetworkInstanceTypes_NETWORK_INSTANCE_TYPE_DEFAULT_INSTANCE,
	}
	gnmi.BatchUpdate(batch, gnmi.OC().NetworkInstance(ni.GetName()).Config(), ni)
	return ni
}

// AssignToNetworkInstance attaches subinterface si of interface i to the
// network instance ni.
func AssignToNetworkInstance(batch *gnmi.SetBatch, d *ondatra.DUTDevice, i string, ni string, si uint32) (*oc.NetworkInstance, error) {
	netInst := &oc.NetworkInstance{Name: ygot.String(normalizeNIName(ni, d))}
	netInstIntf, err := netInst.NewInterface(fmt.Sprintf("%s.%d", i, si))
	if err != nil {
		return nil, err
	}
	netInstIntf.Interface = ygot.String(i)
	netInstIntf.Subinterface = ygot.Uint32(si)
	gnmi.BatchUpdate(batch, gnmi.OC().NetworkInstance(netInst.GetName()).Config(), netInst)
	return netInst, nil
}
