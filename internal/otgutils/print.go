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

package otgutils

import (
	"fmt"
	"strings"
	"testing"

	"github.com/open-traffic-generator/snappi/gosnappi"
	"github.com/openconfig/ondatra/gnmi"
	"github.com/openconfig/ondatra/otg"
)

// LogFlowMetrics logs the otg flow statistics.
func LogFlowMetrics(t testing.TB, otg *otg.OTG, c gosnappi.Config) {
	t.Helper()
	var out strings.Builder
	out.WriteString("\nFlow Metrics\n")
	fmt.Fprintln(&out, strings.Repeat("-", 55))
	fmt.Fprintf(&out, "%-25v%-15v%-15v\n", "Name", "Frames Tx", "Frames Rx")
	for _, f := range c.Flows().Items() {
		counters := gnmi.Get(t, otg, gnmi.OTG().Flow(f.Name()).Counters().State())
		fmt.Fprintf(&out, "%-25v%-15v%-15v\n", f.Name(), counters.GetOutPkts(), counters.GetInPkts())
	}
	fmt.Fprintln(&out, strings.Repeat("-", 55))
	t.Log(out.String())
}

// LogPortMetrics logs the otg port statistics.
func LogPortMetrics(t testing.TB, otg *otg.OTG, c gosnappi.Config) {
	t.Helper()
	var out strings.Builder
	out.WriteString("\nPort Metrics\n")
	fmt.Fprintln(&out, strings.Repeat("-", 55))
	fmt.Fprintf(&out, "%-25s%-15s%-15s\n", "Name", "Frames Tx", "Frames Rx")
	for _, p := range c.Ports().Items() {
		counters := gnmi.Get(t, otg, gnmi.OTG().Port(p.Name()).Counters().State())
		fmt.Fprintf(&out, "%-25v%-15v%-15v\n", p.Name(), counters.GetOutFrames(), counters.GetInFrames())
	}
	fmt.Fprintln(&out, strings.Repeat("-", 55))
	t.Log(out.String())
}
