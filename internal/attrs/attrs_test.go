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

package attrs

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/openconfig/ondatra/gnmi/oc"
	"github.com/openconfig/ygot/ygot"
)

func TestNewOCInterface(t *testing.T) {
	tests := []struct {
		desc string
		a    *Attributes
		want *oc.Interface
	}{{
		desc: "IPv4",
		a:    &Attributes{Desc: "to host 1", IPv4: "192.0.2.1", IPv4Len: 30},
		want: &oc.Interface{
			Name:        ygot.String("Ethernet1"),
			Description: ygot.String("to host 1"),
			Type:        oc.IETFInterfaces_InterfaceType_ethernetCsmacd,
			Enabled:     ygot.Bool(true),
			Subinterface: map[uint32]*oc.Interface_Subinterface{
				0: {
					Index: ygot.Uint32(0),
					Ipv4: &oc.Interface_Subinterface_Ipv4{
						Enabled: ygot.Bool(true),
						Address: map[string]*oc.Interface_Subinterface_Ipv4_Address{
							"192.0.2.1": {Ip: ygot.String("192.0.2.1"), PrefixLength: ygot.Uint8(30)},
						},
					},
				},
			},
		},
	}, {
		desc: "MAC and MTU",
		a:    &Attributes{MAC: "02:00:01:01:01:01", IPv4: "192.0.2.1", MTU: 1500},
		want: &oc.Interface{
			Name:     ygot.String("Ethernet1"),
			Type:     oc.IETFInterfaces_InterfaceType_ethernetCsmacd,
			Enabled:  ygot.Bool(true),
			Ethernet: &oc.Interface_Ethernet{MacAddress: ygot.String("02:00:01:01:01:01")},
			Subinterface: map[uint32]*oc.Interface_Subinterface{
				0: {
					Index: ygot.Uint32(0),
					Ipv4: &oc.Interface_Subinterface_Ipv4{
						Enabled: ygot.Bool(true),
						Mtu:     ygot.Uint16(1500),
						Address: map[string]*oc.Interface_Subinterface_Ipv4_Address{
							"192.0.2.1": {Ip: ygot.String("192.0.2.1")},
						},
					},
				},
			},
		},
	}, {
		desc: "no address",
		a:    &Attributes{},
		want: &oc.Interface{
			Name:    ygot.String("Ethernet1"),
			Type:    oc.IETFInterfaces_InterfaceType_ethernetCsmacd,
			Enabled: ygot.Bool(true),
		},
	}}
	for _, test := range tests {
		t.Run(test.desc, func(t *testing.T) {
			got := test.a.NewOCInterface("Ethernet1", nil)
			if diff := cmp.Diff(test.want, got); diff != "" {
				t.Errorf("NewOCInterface() differs, diff(-want,+got):\n%s", diff)
			}
		})
	}
}

func TestIPv4CIDR(t *testing.T) {
	a := &Attributes{IPv4: "192.0.2.2", IPv4Len: 30}
	if got, want := a.IPv4CIDR(), "192.0.2.2/30"; got != want {
		t.Errorf("IPv4CIDR() got %q, want %q", got, want)
	}
}
