// Copyright 2022 Google LLC
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

// Package attrs bundles the attributes of a point-to-point IPv4 link end
// and provides helpers to generate the OpenConfig interface of a DUT and the
// OTG device of an ATE port.
package attrs

import (
	"fmt"

	"github.com/open-traffic-generator/snappi/gosnappi"
	"github.com/openconfig/ondatra"
	"github.com/openconfig/ondatra/gnmi/oc"
	"github.com/openconfig/ygot/ygot"

	"github.com/featureprofiles-lab/sflowprofiles/internal/deviations"
)

// Attributes bundles some common attributes for devices and/or interfaces.
// All fields are optional; only those that are non-empty will be set when
// configuring an interface.
type Attributes struct {
	IPv4    string
	MAC     string
	Name    string // Device name, only applied to ATE ports.
	Desc    string // Description, only applied to DUT interfaces.
	IPv4Len uint8  // Prefix length for IPv4.
	MTU     uint16
}

// IPv4CIDR constructs the IPv4 CIDR notation with the given prefix
// length, e.g. "192.0.2.1/30".
func (a *Attributes) IPv4CIDR() string {
	return fmt.Sprintf("%s/%d", a.IPv4, a.IPv4Len)
}

// ConfigOCInterface configures an OpenConfig interface with these attributes.
func (a *Attributes) ConfigOCInterface(intf *oc.Interface, dut *ondatra.DUTDevice) *oc.Interface {
	if a.Desc != "" {
		intf.Description = ygot.String(a.Desc)
	}
	intf.Type = oc.IETFInterfaces_InterfaceType_ethernetCsmacd
	if deviations.InterfaceEnabled(dut) {
		intf.Enabled = ygot.Bool(true)
	}
	if a.MAC != "" {
		intf.GetOrCreateEthernet().MacAddress = ygot.String(a.MAC)
	}

	if a.IPv4 != "" {
		s4 := intf.GetOrCreateSubinterface(0).GetOrCreateIpv4()
		if deviations.InterfaceEnabled(dut) && !deviations.IPv4MissingEnabled(dut) {
			s4.Enabled = ygot.Bool(true)
		}
		if a.MTU > 0 {
			s4.Mtu = ygot.Uint16(a.MTU)
		}
		a4 := s4.GetOrCreateAddress(a.IPv4)
		if a.IPv4Len > 0 {
			a4.PrefixLength = ygot.Uint8(a.IPv4Len)
		}
	}
	return intf
}

// NewOCInterface returns a new *oc.Interface configured with these attributes.
func (a *Attributes) NewOCInterface(name string, dut *ondatra.DUTDevice) *oc.Interface {
	return a.ConfigOCInterface(&oc.Interface{Name: ygot.String(name)}, dut)
}

// AddToOTG adds a port and a device with these attributes to an OTG config.
// The device is named a.Name and its IPv4 address a.Name+".IPv4".
func (a *Attributes) AddToOTG(top gosnappi.Config, ap *ondatra.Port, peer *Attributes) gosnappi.Device {
	top.Ports().Add().SetName(ap.ID())
	dev := top.Devices().Add().SetName(a.Name)
	eth := dev.Ethernets().Add().SetName(a.Name + ".Eth")
	eth.Connection().SetPortName(ap.ID())
	eth.SetMac(a.MAC)
	if a.MTU > 0 {
		eth.SetMtu(uint32(a.MTU))
	}
	if a.IPv4 != "" {
		eth.Ipv4Addresses().Add().SetName(a.Name + ".IPv4").
			SetAddress(a.IPv4).SetGateway(peer.IPv4).SetPrefix(uint32(a.IPv4Len))
	}
	return dev
}
