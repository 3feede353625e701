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

// Package polling runs the sFlow polling interval scenario: configure a
// switch and two hosts, capture counter samples at a short polling interval
// and again after resetting it to the default, and check that the short
// interval produced more counter samples.
//
// The switch, hosts, traffic generator and collector are collaborators
// supplied by the caller, so the same scenario runs against an Ondatra
// testbed and against a lab reached over SSH.
package polling

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/golang/glog"

	"github.com/featureprofiles-lab/sflowprofiles/internal/sflowdata"
)

// Switch is the device under test.
type Switch interface {
	ConfigureInterface(ctx context.Context, ic InterfaceConfig) error
	ConfigureSflow(ctx context.Context, cfg SflowConfig) error
	ResetPollingInterval(ctx context.Context) error
	SflowState(ctx context.Context) (*SflowState, error)
}

// Host is an end host attached to the switch.
type Host interface {
	ConfigureInterface(ctx context.Context, hi HostInterface) error
}

// TrafficGenerator sends ICMP echo requests towards the switch.
type TrafficGenerator interface {
	Ping(ctx context.Context, req PingRequest) (*PingResult, error)
}

// Capturer collects the sFlow exports arriving at the collector.
type Capturer interface {
	Start(ctx context.Context) error
	Stop(ctx context.Context) (*sflowdata.Capture, error)
}

// InterfaceTable lists the switch interfaces by ifIndex.
type InterfaceTable interface {
	Interfaces(ctx context.Context) (map[uint32]string, error)
}

// Nodes are the collaborators of a scenario run.
type Nodes struct {
	Switch    Switch
	Sender    Host
	Collector Host
	Traffic   TrafficGenerator
	Capturer  Capturer
	// IfTable is optional.  When set, every counter sample interface must
	// be listed in it.
	IfTable InterfaceTable
}

func (n Nodes) check() error {
	var missing []error
	if n.Switch == nil {
		missing = append(missing, fmt.Errorf("%w: switch", ErrMissingNode))
	}
	if n.Sender == nil {
		missing = append(missing, fmt.Errorf("%w: sender host", ErrMissingNode))
	}
	if n.Collector == nil {
		missing = append(missing, fmt.Errorf("%w: collector host", ErrMissingNode))
	}
	if n.Traffic == nil {
		missing = append(missing, fmt.Errorf("%w: traffic generator", ErrMissingNode))
	}
	if n.Capturer == nil {
		missing = append(missing, fmt.Errorf("%w: capturer", ErrMissingNode))
	}
	return errors.Join(missing...)
}

// Report is the outcome of a successful run.
type Report struct {
	Sflow   SflowConfig    `yaml:"sflow"`
	Windows []WindowResult `yaml:"windows"`
}

// Scenario is one polling interval run.
type Scenario struct {
	Params Params
	Nodes  Nodes
	// Logf narrates the steps.  It defaults to glog.Infof.
	Logf func(format string, args ...any)
}

func (s *Scenario) step(format string, args ...any) {
	logf := s.Logf
	if logf == nil {
		logf = glog.Infof
	}
	logf("### "+format+" ###", args...)
}

func (s *Scenario) logf(format string, args ...any) {
	if s.Logf != nil {
		s.Logf(format, args...)
		return
	}
	glog.Infof(format, args...)
}

// sleep waits for d or until ctx is done.
func sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-t.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Run executes the scenario and returns the first failure.
func (s *Scenario) Run(ctx context.Context) (*Report, error) {
	p := s.Params
	if err := p.Validate(); err != nil {
		return nil, fmt.Errorf("invalid parameters: %w", err)
	}
	if err := s.Nodes.check(); err != nil {
		return nil, err
	}
	sw := s.Nodes.Switch

	s.step("Configuring host interfaces")
	if err := s.Nodes.Sender.ConfigureInterface(ctx, p.SenderInterface); err != nil {
		return nil, fmt.Errorf("sender host interface %s: %w", p.SenderInterface.Name, err)
	}
	if err := s.Nodes.Collector.ConfigureInterface(ctx, p.CollectorIntf); err != nil {
		return nil, fmt.Errorf("collector host interface %s: %w", p.CollectorIntf.Name, err)
	}

	for _, ic := range p.SwitchInterfaces {
		s.step("Configuring interface %s of switch", ic.Port)
		if err := sw.ConfigureInterface(ctx, ic); err != nil {
			return nil, fmt.Errorf("switch interface %s: %w", ic.Port, err)
		}
	}

	s.step("Configuring sFlow")
	cfg := p.SflowConfig()
	if err := sw.ConfigureSflow(ctx, cfg); err != nil {
		return nil, fmt.Errorf("configuring sFlow: %w", err)
	}
	if err := s.awaitState(ctx, func(st *SflowState) error { return VerifyState(st, cfg) }); err != nil {
		return nil, err
	}

	report := &Report{Sflow: cfg}
	fast, err := s.window(ctx, p.PollingInterval)
	if err != nil {
		return nil, err
	}
	report.Windows = append(report.Windows, *fast)

	s.step("Resetting polling interval to the default")
	if err := sw.ResetPollingInterval(ctx); err != nil {
		return nil, fmt.Errorf("resetting polling interval: %w", err)
	}
	if err := s.awaitState(ctx, func(st *SflowState) error { return VerifyPollingInterval(st, p.DefaultPollingInterval) }); err != nil {
		return nil, err
	}

	slow, err := s.window(ctx, p.DefaultPollingInterval)
	if err != nil {
		return nil, err
	}
	report.Windows = append(report.Windows, *slow)

	if err := VerifyFasterPolling(fast, slow); err != nil {
		return nil, err
	}
	return report, nil
}

// awaitState reads the sFlow state until verify accepts it.  Without a
// ConfigTimeout the state is read once.
func (s *Scenario) awaitState(ctx context.Context, verify func(*SflowState) error) error {
	var deadline time.Time
	if s.Params.ConfigTimeout > 0 {
		deadline = time.Now().Add(s.Params.ConfigTimeout)
	}
	for {
		st, err := s.Nodes.Switch.SflowState(ctx)
		if err != nil {
			return fmt.Errorf("reading sFlow state: %w", err)
		}
		verr := verify(st)
		if verr == nil {
			return nil
		}
		if deadline.IsZero() || time.Now().After(deadline) {
			return verr
		}
		glog.V(2).Infof("sFlow state not converged yet: %v", verr)
		if err := sleep(ctx, s.Params.ConfigPoll); err != nil {
			return errors.Join(verr, err)
		}
	}
}

// window runs one settle, capture and check cycle.
func (s *Scenario) window(ctx context.Context, interval uint16) (*WindowResult, error) {
	p := s.Params
	s.step("Capturing with polling interval %ds", interval)
	if err := sleep(ctx, p.SettleTime); err != nil {
		return nil, err
	}
	if err := s.Nodes.Capturer.Start(ctx); err != nil {
		return nil, fmt.Errorf("starting capture: %w", err)
	}
	c, err := s.generate(ctx)
	if err != nil {
		return nil, err
	}
	s.logf("CNTR packets - %dsec polling: %v", interval, c)
	res, err := VerifyWindow(c, interval, p.AgentAddress, p.MinCounterInterfaces)
	if err != nil {
		return nil, err
	}
	if s.Nodes.IfTable != nil {
		known, err := s.Nodes.IfTable.Interfaces(ctx)
		if err != nil {
			return nil, fmt.Errorf("reading interface table: %w", err)
		}
		if err := VerifyKnownInterfaces(res.Interfaces, known); err != nil {
			return nil, fmt.Errorf("polling interval %ds: %w", interval, err)
		}
	}
	return res, nil
}

// generate sends the ping load and stops the capture, which is stopped
// even when the load fails.
func (s *Scenario) generate(ctx context.Context) (*sflowdata.Capture, error) {
	p := s.Params
	pr, perr := s.Nodes.Traffic.Ping(ctx, p.Ping)
	if perr == nil {
		if pr != nil {
			s.logf("Ping %s: %d transmitted, %d received", p.Ping.Destination, pr.Transmitted, pr.Received)
			if pr.Received == 0 {
				s.logf("Ping %s: no echo replies", p.Ping.Destination)
			}
		}
		perr = sleep(ctx, p.CaptureTime)
	} else {
		perr = fmt.Errorf("ping %s: %w", p.Ping.Destination, perr)
	}
	c, err := s.Nodes.Capturer.Stop(ctx)
	if err != nil {
		err = fmt.Errorf("stopping capture: %w", err)
	}
	if err := errors.Join(perr, err); err != nil {
		return nil, err
	}
	return c, nil
}

// RunT runs s and fails t on the first error.
func RunT(ctx context.Context, t testing.TB, s *Scenario) *Report {
	t.Helper()
	if s.Logf == nil {
		s.Logf = t.Logf
	}
	r, err := s.Run(ctx)
	if err != nil {
		t.Fatalf("sFlow polling interval scenario failed: %v", err)
	}
	return r
}
