// Copyright 2026 Google LLC
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
	"bytes"
	"context"
	"fmt"
	"net/netip"
	"testing"
	"time"

	"github.com/open-traffic-generator/snappi/gosnappi"
	"github.com/openconfig/ondatra/otg"

	"github.com/featureprofiles-lab/sflowprofiles/feature/sflow/polling"
	"github.com/featureprofiles-lab/sflowprofiles/internal/sflowdata"
)

const icmpEchoRequest = 8

// ICMPFlow is a fixed size stream of ICMP echo requests sent from an ATE port.
type ICMPFlow struct {
	Name   string
	TxPort string
	SrcMAC string
	DstMAC string
	SrcIP  string
	DstIP  string
	Count  uint32
	PPS    uint64
}

// NewICMPFlow returns the flow equivalent of req, sent from txPort.
func NewICMPFlow(name, txPort string, req polling.PingRequest) (*ICMPFlow, error) {
	if req.Count <= 0 || req.Interval <= 0 {
		return nil, fmt.Errorf("ping of %d packets every %v is not a flow", req.Count, req.Interval)
	}
	pps := uint64(time.Second / req.Interval)
	if pps == 0 {
		pps = 1
	}
	return &ICMPFlow{
		Name:   name,
		TxPort: txPort,
		DstIP:  req.Destination,
		Count:  uint32(req.Count),
		PPS:    pps,
	}, nil
}

// Duration is how long the flow takes to transmit.
func (f *ICMPFlow) Duration() time.Duration {
	return time.Duration(f.Count) * time.Second / time.Duration(f.PPS)
}

// AddToOTG adds the flow to an OTG config.
func (f *ICMPFlow) AddToOTG(top gosnappi.Config) gosnappi.Flow {
	flow := top.Flows().Add().SetName(f.Name)
	flow.Metrics().SetEnable(true)
	flow.TxRx().Port().SetTxName(f.TxPort)
	flow.Rate().SetPps(f.PPS)
	flow.Duration().FixedPackets().SetPackets(f.Count)
	eth := flow.Packet().Add().Ethernet()
	eth.Src().SetValue(f.SrcMAC)
	eth.Dst().SetValue(f.DstMAC)
	ip := flow.Packet().Add().Ipv4()
	ip.Src().SetValue(f.SrcIP)
	ip.Dst().SetValue(f.DstIP)
	flow.Packet().Add().Icmp().Echo().SetType(gosnappi.NewPatternFlowIcmpEchoType().SetValue(icmpEchoRequest))
	return flow
}

// AddCapture adds a pcap capture of port to an OTG config.
func AddCapture(top gosnappi.Config, name, port string) gosnappi.Capture {
	return top.Captures().Add().SetName(name).SetPortNames([]string{port}).SetFormat(gosnappi.CaptureFormat.PCAP)
}

// Pinger sends a configured ICMPFlow as the ping of a polling scenario.
// Echo replies are counted as the frames received on the transmit port.
// When Config is set, the first Ping waits for its gateways to resolve.
type Pinger struct {
	T          testing.TB
	OTG        *otg.OTG
	Flow       *ICMPFlow
	Config     gosnappi.Config
	ARPTimeout time.Duration

	resolved bool
}

var _ polling.TrafficGenerator = (*Pinger)(nil)

// Ping starts the flow and waits for it to complete.  req must describe the
// flow pushed to the OTG.
func (p *Pinger) Ping(ctx context.Context, req polling.PingRequest) (*polling.PingResult, error) {
	if req.Destination != p.Flow.DstIP || uint32(req.Count) != p.Flow.Count {
		return nil, fmt.Errorf("flow %s sends %d packets to %s, not %d to %s", p.Flow.Name, p.Flow.Count, p.Flow.DstIP, req.Count, req.Destination)
	}
	if p.Config != nil && !p.resolved {
		WaitForARP(p.T, p.OTG, p.Config, p.ARPTimeout)
		p.resolved = true
	}
	before := PortInFrames(p.T, p.OTG, p.Flow.TxPort)
	p.OTG.StartTraffic(p.T)
	timer := time.NewTimer(p.Flow.Duration())
	defer timer.Stop()
	select {
	case <-timer.C:
	case <-ctx.Done():
		p.OTG.StopTraffic(p.T)
		return nil, ctx.Err()
	}
	sent := WaitForFlowStopped(p.T, p.OTG, p.Flow.Name, 30*time.Second)
	p.OTG.StopTraffic(p.T)
	received := PortInFrames(p.T, p.OTG, p.Flow.TxPort) - before
	p.T.Logf("Flow %s: %d echo requests to %s, %d frames back on %s", p.Flow.Name, sent, p.Flow.DstIP, received, p.Flow.TxPort)
	return &polling.PingResult{Transmitted: int(sent), Received: int(min(received, sent))}, nil
}

// Host is an ATE port standing in for an end host.  Its interfaces are
// the IPv4 devices of the OTG config, pushed before the scenario runs.
type Host struct {
	Config gosnappi.Config
}

var _ polling.Host = Host{}

// ConfigureInterface checks that the OTG config has a device on port
// hi.Name addressed with hi.Address.
func (h Host) ConfigureInterface(_ context.Context, hi polling.HostInterface) error {
	p, err := netip.ParsePrefix(hi.Address)
	if err != nil {
		return err
	}
	for _, d := range h.Config.Devices().Items() {
		for _, eth := range d.Ethernets().Items() {
			if eth.Connection().PortName() != hi.Name {
				continue
			}
			for _, ip := range eth.Ipv4Addresses().Items() {
				if ip.Address() == p.Addr().String() && int(ip.Prefix()) == p.Bits() {
					return nil
				}
			}
		}
	}
	return fmt.Errorf("no OTG device on %s with address %s", hi.Name, hi.Address)
}

// Capturer captures the sFlow datagrams arriving at an ATE port.
type Capturer struct {
	T         testing.TB
	OTG       *otg.OTG
	Port      string
	SflowPort uint16
}

var _ polling.Capturer = (*Capturer)(nil)

func (c *Capturer) setState(state gosnappi.StatePortCaptureStateEnum) {
	cs := gosnappi.NewControlState()
	cs.Port().Capture().SetPortNames([]string{c.Port}).SetState(state)
	c.OTG.SetControlState(c.T, cs)
}

// Start starts capturing on the port.
func (c *Capturer) Start(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	c.setState(gosnappi.StatePortCaptureState.START)
	return nil
}

// Stop stops capturing and decodes the sFlow records of the capture.
func (c *Capturer) Stop(context.Context) (*sflowdata.Capture, error) {
	c.setState(gosnappi.StatePortCaptureState.STOP)
	b := c.OTG.GetCapture(c.T, gosnappi.NewCaptureRequest().SetPortName(c.Port))
	return sflowdata.ReadPcap(bytes.NewReader(b), c.SflowPort)
}
