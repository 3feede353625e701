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

package polling

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/openconfig/testt"

	"github.com/featureprofiles-lab/sflowprofiles/internal/sflowdata"
)

type fakeSwitch struct {
	calls  []string
	state  SflowState
	reset  bool
	stale  int // number of readbacks that still report the old state
	// keepInterval makes ResetPollingInterval a no-op.
	keepInterval bool
	setErr error
}

func (f *fakeSwitch) ConfigureInterface(_ context.Context, ic InterfaceConfig) error {
	f.calls = append(f.calls, fmt.Sprintf("interface %s %s", ic.Port, ic.Address))
	return f.setErr
}

func (f *fakeSwitch) ConfigureSflow(_ context.Context, cfg SflowConfig) error {
	f.calls = append(f.calls, "sflow")
	f.state = SflowState{
		Enabled:         true,
		SamplingRate:    cfg.SamplingRate,
		PollingInterval: cfg.PollingInterval,
		AgentInterface:  cfg.AgentInterface,
		Collectors:      []Collector{cfg.Collector},
	}
	return nil
}

func (f *fakeSwitch) ResetPollingInterval(context.Context) error {
	f.calls = append(f.calls, "reset")
	f.reset = !f.keepInterval
	return nil
}

func (f *fakeSwitch) SflowState(context.Context) (*SflowState, error) {
	f.calls = append(f.calls, "show")
	st := f.state
	if f.stale > 0 {
		f.stale--
		st.Enabled = false
		return &st, nil
	}
	if f.reset {
		st.PollingInterval = 30
	}
	return &st, nil
}

type fakeHost struct {
	got []HostInterface
}

func (f *fakeHost) ConfigureInterface(_ context.Context, hi HostInterface) error {
	f.got = append(f.got, hi)
	return nil
}

type fakeTraffic struct {
	reqs     []PingRequest
	err      error
	received int
	lossy    bool
}

func (f *fakeTraffic) Ping(_ context.Context, req PingRequest) (*PingResult, error) {
	f.reqs = append(f.reqs, req)
	if f.err != nil {
		return nil, f.err
	}
	if f.lossy {
		return &PingResult{Transmitted: req.Count, Received: f.received}, nil
	}
	return &PingResult{Transmitted: req.Count, Received: req.Count}, nil
}

type fakeCapturer struct {
	captures []*sflowdata.Capture
	started  int
	stopped  int
}

func (f *fakeCapturer) Start(context.Context) error {
	f.started++
	return nil
}

func (f *fakeCapturer) Stop(context.Context) (*sflowdata.Capture, error) {
	f.stopped++
	if len(f.captures) == 0 {
		return nil, errors.New("no capture")
	}
	c := f.captures[0]
	f.captures = f.captures[1:]
	return c, nil
}

type fakeIfTable map[uint32]string

func (f fakeIfTable) Interfaces(context.Context) (map[uint32]string, error) {
	return f, nil
}

// capture builds a capture with n counter samples per interface.
func capture(agent string, n int, ifIndex ...uint32) *sflowdata.Capture {
	c := &sflowdata.Capture{}
	for i := 0; i < n; i++ {
		for _, idx := range ifIndex {
			c.Add(sflowdata.Record{Type: sflowdata.Counter, Agent: agent, IfIndex: idx})
		}
	}
	c.Add(sflowdata.Record{Type: sflowdata.Flow, Agent: agent, InputPort: 1, SrcIP: "10.10.10.2", DstIP: "10.10.10.1", IPProtocol: 1})
	return c
}

func testParams() Params {
	p := DefaultParams()
	p.SettleTime = 0
	p.CaptureTime = 0
	return p
}

type nodes struct {
	sw        *fakeSwitch
	sender    *fakeHost
	collector *fakeHost
	traffic   *fakeTraffic
	capturer  *fakeCapturer
}

func newNodes(captures ...*sflowdata.Capture) *nodes {
	return &nodes{
		sw:        &fakeSwitch{},
		sender:    &fakeHost{},
		collector: &fakeHost{},
		traffic:   &fakeTraffic{},
		capturer:  &fakeCapturer{captures: captures},
	}
}

func (n *nodes) Nodes() Nodes {
	return Nodes{
		Switch:    n.sw,
		Sender:    n.sender,
		Collector: n.collector,
		Traffic:   n.traffic,
		Capturer:  n.capturer,
	}
}

func TestRun(t *testing.T) {
	n := newNodes(capture("10.10.10.1", 3, 1, 2), capture("10.10.10.1", 1, 1, 2))
	s := &Scenario{Params: testParams(), Nodes: n.Nodes(), Logf: t.Logf}

	got, err := s.Run(context.Background())
	if err != nil {
		t.Fatalf("Run() failed: %v", err)
	}
	want := &Report{
		Sflow: SflowConfig{
			SamplingRate:    10,
			PollingInterval: 10,
			AgentInterface:  "1",
			Collector:       Collector{Address: "10.10.11.2", Port: 6343, VRF: "vrf_default"},
		},
		Windows: []WindowResult{
			{PollingInterval: 10, CounterSamples: 6, Records: 7, Interfaces: []uint32{1, 2}},
			{PollingInterval: 30, CounterSamples: 2, Records: 3, Interfaces: []uint32{1, 2}},
		},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("Run() returned unexpected report, diff(-want,+got):\n%s", diff)
	}

	wantCalls := []string{
		"interface 1 10.10.10.1/24",
		"interface 2 10.10.11.1/24",
		"sflow",
		"show",
		"reset",
		"show",
	}
	if diff := cmp.Diff(wantCalls, n.sw.calls); diff != "" {
		t.Errorf("switch calls differ, diff(-want,+got):\n%s", diff)
	}
	wantHosts := [][]HostInterface{
		{{Name: "1", Address: "10.10.10.2/24"}},
		{{Name: "1", Address: "10.10.11.2/24"}},
	}
	if diff := cmp.Diff(wantHosts, [][]HostInterface{n.sender.got, n.collector.got}); diff != "" {
		t.Errorf("host interfaces differ, diff(-want,+got):\n%s", diff)
	}
	wantPing := PingRequest{Count: 200, Destination: "10.10.10.1", Interval: 100 * time.Millisecond}
	if diff := cmp.Diff([]PingRequest{wantPing, wantPing}, n.traffic.reqs); diff != "" {
		t.Errorf("ping requests differ, diff(-want,+got):\n%s", diff)
	}
	if n.capturer.started != 2 || n.capturer.stopped != 2 {
		t.Errorf("capture started %d times, stopped %d times, want 2 and 2", n.capturer.started, n.capturer.stopped)
	}
}

func TestRunErrors(t *testing.T) {
	const agent = "10.10.10.1"
	tests := []struct {
		desc    string
		setup   func(*nodes, *Params)
		nodes   func(*nodes) Nodes
		wantErr error
		wantSub string
	}{{
		desc:    "missing collector host",
		nodes:   func(n *nodes) Nodes { ns := n.Nodes(); ns.Collector = nil; return ns },
		wantErr: ErrMissingNode,
		wantSub: "collector host",
	}, {
		desc:    "invalid parameters",
		setup:   func(_ *nodes, p *Params) { p.PollingInterval = 30 },
		wantSub: "invalid parameters",
	}, {
		desc: "switch rejects interface",
		setup: func(n *nodes, _ *Params) {
			n.sw.setErr = errors.New("% Unknown command")
		},
		wantSub: "switch interface 1",
	}, {
		desc: "no records",
		setup: func(n *nodes, _ *Params) {
			n.capturer.captures = []*sflowdata.Capture{{}}
		},
		wantErr: ErrNoRecords,
	}, {
		desc: "one interface",
		setup: func(n *nodes, _ *Params) {
			n.capturer.captures = []*sflowdata.Capture{capture(agent, 5, 1)}
		},
		wantErr: ErrTooFewInterfaces,
	}, {
		desc: "wrong agent",
		setup: func(n *nodes, _ *Params) {
			n.capturer.captures = []*sflowdata.Capture{capture("10.10.11.1", 5, 1, 2)}
		},
		wantErr: ErrAgentMismatch,
	}, {
		desc: "same sample count",
		setup: func(n *nodes, _ *Params) {
			n.capturer.captures = []*sflowdata.Capture{capture(agent, 2, 1, 2), capture(agent, 2, 1, 2)}
		},
		wantErr: ErrPollingNotFaster,
	}, {
		desc: "stale readback",
		setup: func(n *nodes, _ *Params) {
			n.sw.stale = 1
		},
		wantErr: ErrStateMismatch,
		wantSub: "disabled",
	}, {
		desc: "polling interval not reset",
		setup: func(n *nodes, _ *Params) {
			n.sw.keepInterval = true
		},
		wantErr: ErrStateMismatch,
		wantSub: "polling interval 10, want 30",
	}, {
		desc: "ping fails",
		setup: func(n *nodes, _ *Params) {
			n.traffic.err = errors.New("network unreachable")
		},
		wantSub: "network unreachable",
	}, {
		desc: "unknown interface",
		setup: func(n *nodes, _ *Params) {
			n.capturer.captures = []*sflowdata.Capture{capture(agent, 3, 1, 7)}
		},
		nodes: func(n *nodes) Nodes {
			ns := n.Nodes()
			ns.IfTable = fakeIfTable{1: "1", 2: "2"}
			return ns
		},
		wantErr: ErrUnknownInterface,
	}}

	for _, test := range tests {
		t.Run(test.desc, func(t *testing.T) {
			n := newNodes(capture(agent, 3, 1, 2), capture(agent, 1, 1, 2))
			p := testParams()
			if test.setup != nil {
				test.setup(n, &p)
			}
			ns := n.Nodes()
			if test.nodes != nil {
				ns = test.nodes(n)
			}
			s := &Scenario{Params: p, Nodes: ns, Logf: t.Logf}
			_, err := s.Run(context.Background())
			if err == nil {
				t.Fatalf("Run() succeeded, want error")
			}
			if test.wantErr != nil && !errors.Is(err, test.wantErr) {
				t.Errorf("Run() returned %v, want %v", err, test.wantErr)
			}
			if !strings.Contains(err.Error(), test.wantSub) {
				t.Errorf("Run() returned %q, want substring %q", err, test.wantSub)
			}
		})
	}
}

func TestRunStopsCaptureOnPingFailure(t *testing.T) {
	n := newNodes(capture("10.10.10.1", 3, 1, 2))
	n.traffic.err = errors.New("timeout")
	s := &Scenario{Params: testParams(), Nodes: n.Nodes(), Logf: t.Logf}
	if _, err := s.Run(context.Background()); err == nil {
		t.Fatalf("Run() succeeded, want error")
	}
	if n.capturer.started != 1 || n.capturer.stopped != 1 {
		t.Errorf("capture started %d times, stopped %d times, want 1 and 1", n.capturer.started, n.capturer.stopped)
	}
}

func TestRunWithoutEchoReplies(t *testing.T) {
	n := newNodes(capture("10.10.10.1", 3, 1, 2), capture("10.10.10.1", 1, 1, 2))
	n.traffic.lossy = true
	s := &Scenario{Params: testParams(), Nodes: n.Nodes(), Logf: t.Logf}
	got, err := s.Run(context.Background())
	if err != nil {
		t.Fatalf("Run() failed: %v", err)
	}
	if len(got.Windows) != 2 {
		t.Errorf("Run() returned %d windows, want 2", len(got.Windows))
	}
}

func TestRunWaitsForState(t *testing.T) {
	n := newNodes(capture("10.10.10.1", 3, 1, 2), capture("10.10.10.1", 1, 1, 2))
	n.sw.stale = 2
	p := testParams()
	p.ConfigTimeout = time.Minute
	p.ConfigPoll = time.Millisecond
	s := &Scenario{Params: p, Nodes: n.Nodes(), Logf: t.Logf}
	if _, err := s.Run(context.Background()); err != nil {
		t.Fatalf("Run() failed: %v", err)
	}
	shows := 0
	for _, c := range n.sw.calls {
		if c == "show" {
			shows++
		}
	}
	if shows != 4 {
		t.Errorf("state read %d times, want 4", shows)
	}
}

func TestRunCanceled(t *testing.T) {
	n := newNodes(capture("10.10.10.1", 3, 1, 2))
	p := testParams()
	p.SettleTime = time.Hour
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	s := &Scenario{Params: p, Nodes: n.Nodes(), Logf: t.Logf}
	if _, err := s.Run(ctx); !errors.Is(err, context.Canceled) {
		t.Errorf("Run() returned %v, want %v", err, context.Canceled)
	}
}

func TestRunT(t *testing.T) {
	n := newNodes(capture("10.10.10.1", 1, 1, 2), capture("10.10.10.1", 3, 1, 2))
	s := &Scenario{Params: testParams(), Nodes: n.Nodes()}
	got := testt.ExpectFatal(t, func(t testing.TB) {
		RunT(context.Background(), t, s)
	})
	if !strings.Contains(got, ErrPollingNotFaster.Error()) {
		t.Errorf("RunT() fatal message %q, want %q", got, ErrPollingNotFaster)
	}
}

func TestCounterInterfaces(t *testing.T) {
	c := &sflowdata.Capture{}
	for _, idx := range []uint32{3, 1, 3, 2, 1} {
		c.Add(sflowdata.Record{Type: sflowdata.Counter, Agent: "192.0.2.1", IfIndex: idx})
	}
	c.Add(sflowdata.Record{Type: sflowdata.Flow, Agent: "198.51.100.1", InputPort: 9})
	got, err := CounterInterfaces(c, "192.0.2.1")
	if err != nil {
		t.Fatalf("CounterInterfaces() failed: %v", err)
	}
	if diff := cmp.Diff([]uint32{3, 1, 2}, got); diff != "" {
		t.Errorf("CounterInterfaces() returned unexpected indices, diff(-want,+got):\n%s", diff)
	}
}

func TestVerifyState(t *testing.T) {
	want := DefaultParams().SflowConfig()
	good := func() *SflowState {
		return &SflowState{
			Enabled:         true,
			SamplingRate:    10,
			PollingInterval: 10,
			AgentInterface:  "1",
			Collectors:      []Collector{want.Collector},
		}
	}
	tests := []struct {
		desc    string
		mutate  func(*SflowState)
		wantSub []string
	}{{
		desc: "match",
	}, {
		desc:    "wrong sampling and polling",
		mutate:  func(s *SflowState) { s.SamplingRate, s.PollingInterval = 4096, 30 },
		wantSub: []string{"sampling rate 4096, want 10", "polling interval 30, want 10"},
	}, {
		desc:    "no collector",
		mutate:  func(s *SflowState) { s.Collectors = nil },
		wantSub: []string{"no collector"},
	}, {
		desc:    "collector vrf",
		mutate:  func(s *SflowState) { s.Collectors[0].VRF = "mgmt" },
		wantSub: []string{"collector 10.10.11.2/6343/mgmt, want 10.10.11.2/6343/vrf_default"},
	}, {
		desc:    "agent interface",
		mutate:  func(s *SflowState) { s.AgentInterface = "2" },
		wantSub: []string{`agent interface "2", want "1"`},
	}}
	for _, test := range tests {
		t.Run(test.desc, func(t *testing.T) {
			st := good()
			if test.mutate != nil {
				test.mutate(st)
			}
			err := VerifyState(st, want)
			if len(test.wantSub) == 0 {
				if err != nil {
					t.Fatalf("VerifyState() failed: %v", err)
				}
				return
			}
			if !errors.Is(err, ErrStateMismatch) {
				t.Fatalf("VerifyState() returned %v, want %v", err, ErrStateMismatch)
			}
			for _, sub := range test.wantSub {
				if !strings.Contains(err.Error(), sub) {
					t.Errorf("VerifyState() returned %q, want substring %q", err, sub)
				}
			}
		})
	}
}

func TestValidate(t *testing.T) {
	if err := DefaultParams().Validate(); err != nil {
		t.Fatalf("DefaultParams().Validate() failed: %v", err)
	}
	p := DefaultParams()
	p.SamplingRate = 0
	p.Collector.Address = "collector"
	p.SwitchInterfaces[1].Address = "10.10.11.1"
	p.MinCounterInterfaces = 0
	err := p.Validate()
	for _, sub := range []string{"sampling rate", "collector address", "switch interface 2", "counter interface"} {
		if err == nil || !strings.Contains(err.Error(), sub) {
			t.Errorf("Validate() returned %v, want substring %q", err, sub)
		}
	}
}
