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
	"errors"
	"fmt"

	"github.com/featureprofiles-lab/sflowprofiles/internal/sflowdata"
)

var (
	// ErrNoRecords is returned when a capture window yields no sFlow records.
	ErrNoRecords = errors.New("no sFlow records captured")
	// ErrTooFewInterfaces is returned when counter samples cover too few interfaces.
	ErrTooFewInterfaces = errors.New("too few interfaces in counter samples")
	// ErrAgentMismatch is returned when a counter sample carries an unexpected agent address.
	ErrAgentMismatch = errors.New("unexpected agent address")
	// ErrPollingNotFaster is returned when the shorter polling interval does
	// not produce more counter samples than the longer one.
	ErrPollingNotFaster = errors.New("shorter polling interval did not produce more counter samples")
	// ErrStateMismatch is returned when the sFlow state read back differs from the configuration.
	ErrStateMismatch = errors.New("sFlow state does not match configuration")
	// ErrMissingNode is returned when a collaborator has not been provided.
	ErrMissingNode = errors.New("missing node")
	// ErrUnknownInterface is returned when a counter sample names an
	// interface index the switch does not report.
	ErrUnknownInterface = errors.New("counter sample for unknown interface")
)

// WindowResult summarizes one capture window.
type WindowResult struct {
	PollingInterval uint16   `yaml:"polling_interval"`
	CounterSamples  int      `yaml:"counter_samples"`
	Records         int      `yaml:"records"`
	Interfaces      []uint32 `yaml:"interfaces"`
}

// CounterInterfaces returns the distinct interface indices of the counter
// records in c, in the order they were first seen.  Every counter record must
// have been sent by agent.
func CounterInterfaces(c *sflowdata.Capture, agent string) ([]uint32, error) {
	var idx []uint32
	seen := map[uint32]bool{}
	for _, r := range c.Counters() {
		if r.Agent != agent {
			return nil, fmt.Errorf("%w: counter sample for ifIndex %d from %q, want %q", ErrAgentMismatch, r.IfIndex, r.Agent, agent)
		}
		if !seen[r.IfIndex] {
			seen[r.IfIndex] = true
			idx = append(idx, r.IfIndex)
		}
	}
	return idx, nil
}

// VerifyWindow checks the capture of a window run with the given polling interval.
func VerifyWindow(c *sflowdata.Capture, interval uint16, agent string, minInterfaces int) (*WindowResult, error) {
	if c == nil || len(c.Records) == 0 {
		return nil, fmt.Errorf("polling interval %ds: %w", interval, ErrNoRecords)
	}
	idx, err := CounterInterfaces(c, agent)
	if err != nil {
		return nil, fmt.Errorf("polling interval %ds: %w", interval, err)
	}
	if len(idx) < minInterfaces {
		return nil, fmt.Errorf("polling interval %ds: %w: got %v, want at least %d", interval, ErrTooFewInterfaces, idx, minInterfaces)
	}
	return &WindowResult{
		PollingInterval: interval,
		CounterSamples:  c.SampleCount,
		Records:         len(c.Records),
		Interfaces:      idx,
	}, nil
}

// VerifyFasterPolling checks that fast saw strictly more counter samples than slow.
func VerifyFasterPolling(fast, slow *WindowResult) error {
	if fast.CounterSamples <= slow.CounterSamples {
		return fmt.Errorf("%w: %d samples at %ds, %d samples at %ds", ErrPollingNotFaster,
			fast.CounterSamples, fast.PollingInterval, slow.CounterSamples, slow.PollingInterval)
	}
	return nil
}

// VerifyState compares the sFlow state read back from the switch with the
// configuration that was applied.  All mismatches are reported.
func VerifyState(got *SflowState, want SflowConfig) error {
	if got == nil {
		return fmt.Errorf("%w: no state", ErrStateMismatch)
	}
	var errs []error
	if !got.Enabled {
		errs = append(errs, errors.New("sFlow is disabled"))
	}
	if got.SamplingRate != want.SamplingRate {
		errs = append(errs, fmt.Errorf("sampling rate %d, want %d", got.SamplingRate, want.SamplingRate))
	}
	switch {
	case len(got.Collectors) == 0:
		errs = append(errs, fmt.Errorf("no collector, want %v", want.Collector))
	case got.Collectors[0] != want.Collector:
		errs = append(errs, fmt.Errorf("collector %v, want %v", got.Collectors[0], want.Collector))
	}
	if got.AgentInterface != want.AgentInterface {
		errs = append(errs, fmt.Errorf("agent interface %q, want %q", got.AgentInterface, want.AgentInterface))
	}
	if got.PollingInterval != want.PollingInterval {
		errs = append(errs, fmt.Errorf("polling interval %d, want %d", got.PollingInterval, want.PollingInterval))
	}
	if len(errs) > 0 {
		return fmt.Errorf("%w: %w", ErrStateMismatch, errors.Join(errs...))
	}
	return nil
}

// VerifyPollingInterval checks only the polling interval of got.
func VerifyPollingInterval(got *SflowState, want uint16) error {
	if got == nil {
		return fmt.Errorf("%w: no state", ErrStateMismatch)
	}
	if got.PollingInterval != want {
		return fmt.Errorf("%w: polling interval %d, want %d", ErrStateMismatch, got.PollingInterval, want)
	}
	return nil
}

// VerifyKnownInterfaces checks that every index in idx is present in known.
func VerifyKnownInterfaces(idx []uint32, known map[uint32]string) error {
	for _, i := range idx {
		if _, ok := known[i]; !ok {
			return fmt.Errorf("%w: ifIndex %d", ErrUnknownInterface, i)
		}
	}
	return nil
}
