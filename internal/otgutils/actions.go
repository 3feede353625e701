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

// Package otgutils drives an OTG traffic generator for the sFlow tests.
package otgutils

import (
	"testing"
	"time"

	"github.com/open-traffic-generator/snappi/gosnappi"
	"github.com/openconfig/ondatra/gnmi"
	"github.com/openconfig/ondatra/otg"
	"github.com/openconfig/ygnmi/ygnmi"
)

// WaitForFlowStopped waits until flowName stops transmitting and returns the
// number of packets it sent.
func WaitForFlowStopped(t testing.TB, otg *otg.OTG, flowName string, timeout time.Duration) uint64 {
	t.Helper()
	flow := gnmi.OTG().Flow(flowName)
	_, ok := gnmi.Watch(t, otg, flow.Transmit().State(), timeout, func(val *ygnmi.Value[bool]) bool {
		transmitting, present := val.Val()
		return present && !transmitting
	}).Await(t)
	if !ok {
		t.Logf("Flow %s still not stopped after %v. Stats may be inconsistent", flowName, timeout)
	}
	return gnmi.Get(t, otg, flow.Counters().OutPkts().State())
}

// PortInFrames returns the frames received so far on the ATE port.
func PortInFrames(t testing.TB, otg *otg.OTG, port string) uint64 {
	t.Helper()
	return gnmi.Get(t, otg, gnmi.OTG().Port(port).Counters().InFrames().State())
}

// WaitForARP waits until every Ethernet interface of the OTG config with an
// IPv4 address has resolved a neighbor.
func WaitForARP(t testing.TB, otg *otg.OTG, c gosnappi.Config, timeout time.Duration) {
	t.Helper()
	for _, d := range c.Devices().Items() {
		for _, eth := range d.Ethernets().Items() {
			if len(eth.Ipv4Addresses().Items()) == 0 {
				continue
			}
			q := gnmi.OTG().Interface(eth.Name()).Ipv4NeighborAny().LinkLayerAddress().State()
			_, ok := gnmi.WatchAll(t, otg, q, timeout, func(val *ygnmi.Value[string]) bool {
				return val.IsPresent()
			}).Await(t)
			if !ok {
				t.Fatalf("%s did not resolve its gateway within %v", eth.Name(), timeout)
			}
		}
	}
}
