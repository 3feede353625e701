// Copyright 2026 Google LLC
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//	http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package sflow_polling_interval_test

import (
	"context"
	"flag"
	"fmt"
	"testing"
	"time"

	"github.com/open-traffic-generator/snappi/gosnappi"
	"github.com/openconfig/ondatra"
	"github.com/openconfig/ondatra/gnmi"

	"github.com/featureprofiles-lab/sflowprofiles/feature/sflow/polling"
	"github.com/featureprofiles-lab/sflowprofiles/internal/attrs"
	"github.com/featureprofiles-lab/sflowprofiles/internal/cfgplugins"
	"github.com/featureprofiles-lab/sflowprofiles/internal/fptest"
	"github.com/featureprofiles-lab/sflowprofiles/internal/otgutils"
	"github.com/featureprofiles-lab/sflowprofiles/internal/sflowdata"
)

const (
	plenIPv4 = 30
	flowName = "icmp-echo"
)

var (
	settleTime   = flag.Duration("settle_time", 20*time.Second, "wait before each capture window")
	captureTime  = flag.Duration("capture_time", 30*time.Second, "capture time after the pings of each window")
	gnpsiCapture = flag.Bool("gnpsi_capture", false, "read the sFlow exports from the DUT gNPSI stream instead of capturing on ATE port2")

	dutSrc = &attrs.Attributes{
		Desc:    "DUT to host 1",
		IPv4:    "192.0.2.1",
		IPv4Len: plenIPv4,
	}
	ateSrc = &attrs.Attributes{
		Name:    "ateSrc",
		MAC:     "02:00:01:01:01:01",
		IPv4:    "192.0.2.2",
		IPv4Len: plenIPv4,
	}
	dutDst = &attrs.Attributes{
		Desc:    "DUT to sFlow collector",
		IPv4:    "192.0.2.5",
		IPv4Len: plenIPv4,
	}
	ateDst = &attrs.Attributes{
		Name:    "ateDst",
		MAC:     "02:00:02:01:01:01",
		IPv4:    "192.0.2.6",
		IPv4Len: plenIPv4,
	}
)

func TestMain(m *testing.M) {
	fptest.RunTests(m)
}

// dutSwitch configures sFlow over gNMI.  Interfaces are named by their
// testbed port ID.
type dutSwitch struct {
	t   testing.TB
	dut *ondatra.DUTDevice
	def uint16

	addrs map[string]string // port ID -> IPv4 address
}

var _ polling.Switch = (*dutSwitch)(nil)

func (s *dutSwitch) ConfigureInterface(_ context.Context, ic polling.InterfaceConfig) error {
	p := s.dut.Port(s.t, ic.Port)
	a, err := cfgplugins.InterfaceAttrs(fmt.Sprintf("DUT %s", ic.Port), ic.Address)
	if err != nil {
		return err
	}
	b := &gnmi.SetBatch{}
	if _, err := cfgplugins.NewInterfaceCfg(b, p.Name(), a, s.dut); err != nil {
		return err
	}
	b.Set(s.t, s.dut)
	s.addrs[ic.Port] = a.IPv4
	return nil
}

func (s *dutSwitch) ConfigureSflow(_ context.Context, cfg polling.SflowConfig) error {
	agent, ok := s.addrs[cfg.AgentInterface]
	if !ok {
		return fmt.Errorf("agent interface %s has no address", cfg.AgentInterface)
	}
	var intfs []string
	for id := range s.addrs {
		intfs = append(intfs, s.dut.Port(s.t, id).Name())
	}
	b := &gnmi.SetBatch{}
	c, err := cfgplugins.NewSFlowGlobalCfg(b, cfg, agent, intfs, s.dut)
	if err != nil {
		return err
	}
	fptest.LogQuery(s.t, "sFlow config", c)
	b.Set(s.t, s.dut)
	return nil
}

func (s *dutSwitch) ResetPollingInterval(context.Context) error {
	b := &gnmi.SetBatch{}
	cfgplugins.ResetSFlowPollingInterval(b, s.def, s.dut)
	b.Set(s.t, s.dut)
	return nil
}

func (s *dutSwitch) SflowState(context.Context) (*polling.SflowState, error) {
	v := gnmi.Lookup(s.t, s.dut, gnmi.OC().Sampling().Sflow().State())
	st, ok := v.Val()
	if !ok {
		return nil, fmt.Errorf("no sFlow state on %s", s.dut.Name())
	}
	ports := map[string]string{}
	for id, addr := range s.addrs {
		ports[addr] = id
	}
	return cfgplugins.SFlowState(st, ports, s.def, s.dut), nil
}

// configureATE pushes the host devices, the ping flow and the collector
// capture to the ATE.
func configureATE(t *testing.T, ate *ondatra.ATEDevice, flow *otgutils.ICMPFlow) gosnappi.Config {
	t.Helper()
	top := gosnappi.NewConfig()
	ap1 := ate.Port(t, "port1")
	ap2 := ate.Port(t, "port2")
	ateSrc.AddToOTG(top, ap1, dutSrc)
	ateDst.AddToOTG(top, ap2, dutDst)
	flow.AddToOTG(top)
	otgutils.AddCapture(top, "sflow", ap2.ID())

	ate.OTG().PushConfig(t, top)
	ate.OTG().StartProtocols(t)
	return top
}

func scenarioParams() polling.Params {
	p := polling.DefaultParams()
	p.AgentInterface = "port1"
	p.AgentAddress = dutSrc.IPv4
	p.Collector = polling.Collector{
		Address: ateDst.IPv4,
		Port:    sflowdata.DefaultPort,
		VRF:     cfgplugins.DefaultNetworkInstance,
	}
	p.SwitchInterfaces = []polling.InterfaceConfig{
		{Port: "port1", Address: dutSrc.IPv4CIDR()},
		{Port: "port2", Address: dutDst.IPv4CIDR()},
	}
	p.SenderInterface = polling.HostInterface{Name: "port1", Address: ateSrc.IPv4CIDR()}
	p.CollectorIntf = polling.HostInterface{Name: "port2", Address: ateDst.IPv4CIDR()}
	p.Ping.Destination = dutSrc.IPv4
	p.SettleTime = *settleTime
	p.CaptureTime = *captureTime
	p.ConfigTimeout = time.Minute
	return p
}

// TestSflowPollingInterval checks that a 10s sFlow counter polling interval
// exports more counter samples than the 30s default.  The ATE plays the
// sender host on port1 and the sFlow collector on port2.
func TestSflowPollingInterval(t *testing.T) {
	dut := ondatra.DUT(t, "dut")
	ate := ondatra.ATE(t, "ate")
	p := scenarioParams()

	b := &gnmi.SetBatch{}
	cfgplugins.ConfigureDefaultNetworkInstance(b, dut)
	b.Set(t, dut)

	flow, err := otgutils.NewICMPFlow(flowName, ate.Port(t, "port1").ID(), p.Ping)
	if err != nil {
		t.Fatal(err)
	}
	flow.SrcMAC = ateSrc.MAC
	flow.SrcIP = ateSrc.IPv4
	flow.DstMAC = gnmi.Get(t, dut, gnmi.OC().Interface(dut.Port(t, "port1").Name()).Ethernet().MacAddress().State())
	top := configureATE(t, ate, flow)

	var capturer polling.Capturer = &otgutils.Capturer{T: t, OTG: ate.OTG(), Port: ate.Port(t, "port2").ID(), SflowPort: p.Collector.Port}
	if *gnpsiCapture {
		capturer = sflowdata.NewGNPSICollector(dut.RawAPIs().GNPSI(t))
	}

	s := &polling.Scenario{
		Params: p,
		Nodes: polling.Nodes{
			Switch:    &dutSwitch{t: t, dut: dut, def: p.DefaultPollingInterval, addrs: map[string]string{}},
			Sender:    otgutils.Host{Config: top},
			Collector: otgutils.Host{Config: top},
			Traffic: &otgutils.Pinger{
				T:          t,
				OTG:        ate.OTG(),
				Flow:       flow,
				Config:     top,
				ARPTimeout: time.Minute,
			},
			Capturer: capturer,
		},
	}
	report := polling.RunT(t.Context(), t, s)
	otgutils.LogFlowMetrics(t, ate.OTG(), top)
	otgutils.LogPortMetrics(t, ate.OTG(), top)
	for _, w := range report.Windows {
		t.Logf("%ds polling: %d counter samples from interfaces %v", w.PollingInterval, w.CounterSamples, w.Interfaces)
	}

	gnmi.Delete(t, dut, gnmi.OC().Sampling().Sflow().Config())
	if v := gnmi.LookupConfig(t, dut, gnmi.OC().Sampling().Sflow().Enabled().Config()); v.IsPresent() {
		t.Errorf("sFlow config still present after delete: %v", v)
	}
}
