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

package cfgplugins

import (
	"fmt"
	"net/netip"

	"github.com/openconfig/ondatra"
	"github.com/openconfig/ondatra/gnmi"
	"github.com/openconfig/ondatra/gnmi/oc"

	"github.com/featureprofiles-lab/sflowprofiles/internal/attrs"
	"github.com/featureprofiles-lab/sflowprofiles/internal/deviations"
)

// InterfaceAttrs returns the attributes of a DUT interface addressed with
// cidr, e.g. "192.0.2.1/30".
func InterfaceAttrs(desc, cidr string) (*attrs.Attributes, error) {
	p, err := netip.ParsePrefix(cidr)
	if err != nil {
		return nil, err
	}
	if !p.Addr().Is4() {
		return nil, fmt.Errorf("%s is not an IPv4 prefix", cidr)
	}
	return &attrs.Attributes{
		Desc:    desc,
		IPv4:    p.Addr().String(),
		IPv4Len: uint8(p.Bits()),
	}, nil
}

// NewInterfaceCfg adds the replace of interface name with the attributes a
// to batch.  The interface is attached to the default network instance when
// d requires it.
func NewInterfaceCfg(batch *gnmi.SetBatch, name string, a *attrs.Attributes, d *ondatra.DUTDevice) (*oc.Interface, error) {
	i := a.NewOCInterface(name, d)
	gnmi.BatchReplace(batch, gnmi.OC().Interface(name).Config(), i)
	if deviations.ExplicitInterfaceInDefaultVRF(d) {
		if _, err := AssignToNetworkInstance(batch, d, name, DefaultNetworkInstance, 0); err != nil {
			return nil, err
		}
	}
	return i, nil
}
