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
	"net"
	"time"

	"github.com/featureprofiles-lab/sflowprofiles/internal/sflowdata"
)

// Collector identifies an sFlow collector as reported by the switch.
type Collector struct {
	Address string `yaml:"address"`
	Port    uint16 `yaml:"port"`
	VRF     string `yaml:"vrf"`
}

func (c Collector) String() string {
	return fmt.Sprintf("%s/%d/%s", c.Address, c.Port, c.VRF)
}

// InterfaceConfig is an L3 switch interface to configure and enable.
type InterfaceConfig struct {
	Port    string
	Address string // CIDR, e.g. 10.10.10.1/24.
}

// HostInterface is a host interface to address and bring up.
type HostInterface struct {
	Name    string
	Address string // CIDR.
}

// SflowConfig is the sFlow intent pushed to the switch.
type SflowConfig struct {
	SamplingRate    uint32    `yaml:"sampling_rate"`
	PollingInterval uint16    `yaml:"polling_interval"`
	AgentInterface  string    `yaml:"agent_interface"`
	Collector       Collector `yaml:"collector"`
}

// SflowState is the sFlow status read back from the switch.
type SflowState struct {
	Enabled         bool
	SamplingRate    uint32
	PollingInterval uint16
	AgentInterface  string
	Collectors      []Collector
}

// PingRequest describes the ICMP load generated on the sender host.
type PingRequest struct {
	Count       int
	Destination string
	Interval    time.Duration
}

// PingResult summarizes a ping run.
type PingResult struct {
	Transmitted int
	Received    int
}

// Params is the complete intent of one polling-interval run.
type Params struct {
	SamplingRate           uint32
	PollingInterval        uint16
	DefaultPollingInterval uint16
	AgentInterface         string
	// AgentAddress is the address every counter sample must carry.
	AgentAddress string
	Collector    Collector

	SwitchInterfaces []InterfaceConfig
	SenderInterface  HostInterface
	CollectorIntf    HostInterface

	Ping PingRequest

	SettleTime  time.Duration
	CaptureTime time.Duration
	// ConfigTimeout bounds how long a configuration readback is retried.
	// Zero reads the state exactly once.
	ConfigTimeout time.Duration
	ConfigPoll    time.Duration

	MinCounterInterfaces int
}

// DefaultParams returns the reference scenario: sampling 1 in 10, polling
// every 10s against a 30s default, collector 10.10.11.2 behind switch port 2
// and 200 pings at 100ms from host 1 towards switch port 1.
func DefaultParams() Params {
	return Params{
		SamplingRate:           10,
		PollingInterval:        10,
		DefaultPollingInterval: 30,
		AgentInterface:         "1",
		AgentAddress:           "10.10.10.1",
		Collector: Collector{
			Address: "10.10.11.2",
			Port:    sflowdata.DefaultPort,
			VRF:     "vrf_default",
		},
		SwitchInterfaces: []InterfaceConfig{
			{Port: "1", Address: "10.10.10.1/24"},
			{Port: "2", Address: "10.10.11.1/24"},
		},
		SenderInterface: HostInterface{Name: "1", Address: "10.10.10.2/24"},
		CollectorIntf:   HostInterface{Name: "1", Address: "10.10.11.2/24"},
		Ping: PingRequest{
			Count:       200,
			Destination: "10.10.10.1",
			Interval:    100 * time.Millisecond,
		},
		SettleTime:           20 * time.Second,
		CaptureTime:          30 * time.Second,
		ConfigPoll:           time.Second,
		MinCounterInterfaces: 2,
	}
}

// SflowConfig returns the sFlow intent derived from p.
func (p Params) SflowConfig() SflowConfig {
	return SflowConfig{
		SamplingRate:    p.SamplingRate,
		PollingInterval: p.PollingInterval,
		AgentInterface:  p.AgentInterface,
		Collector:       p.Collector,
	}
}

// Validate reports every inconsistency in p.
func (p Params) Validate() error {
	var errs []error
	if p.SamplingRate == 0 {
		errs = append(errs, errors.New("sampling rate must be positive"))
	}
	if p.PollingInterval == 0 || p.DefaultPollingInterval == 0 {
		errs = append(errs, errors.New("polling intervals must be positive"))
	}
	if p.PollingInterval >= p.DefaultPollingInterval {
		errs = append(errs, fmt.Errorf("polling interval %d must be shorter than the default %d", p.PollingInterval, p.DefaultPollingInterval))
	}
	if p.AgentInterface == "" {
		errs = append(errs, errors.New("agent interface is required"))
	}
	if net.ParseIP(p.AgentAddress) == nil {
		errs = append(errs, fmt.Errorf("invalid agent address %q", p.AgentAddress))
	}
	if net.ParseIP(p.Collector.Address) == nil {
		errs = append(errs, fmt.Errorf("invalid collector address %q", p.Collector.Address))
	}
	if p.Collector.Port == 0 {
		errs = append(errs, errors.New("collector port must be positive"))
	}
	for _, ic := range p.SwitchInterfaces {
		if _, _, err := net.ParseCIDR(ic.Address); err != nil {
			errs = append(errs, fmt.Errorf("switch interface %s: %w", ic.Port, err))
		}
	}
	for _, hi := range []HostInterface{p.SenderInterface, p.CollectorIntf} {
		if _, _, err := net.ParseCIDR(hi.Address); err != nil {
			errs = append(errs, fmt.Errorf("host interface %s: %w", hi.Name, err))
		}
	}
	if p.Ping.Count <= 0 {
		errs = append(errs, errors.New("ping count must be positive"))
	}
	if net.ParseIP(p.Ping.Destination) == nil {
		errs = append(errs, fmt.Errorf("invalid ping destination %q", p.Ping.Destination))
	}
	if p.MinCounterInterfaces < 1 {
		errs = append(errs, errors.New("at least one counter interface must be expected"))
	}
	if p.ConfigTimeout > 0 && p.ConfigPoll <= 0 {
		errs = append(errs, errors.New("config poll period must be positive when a config timeout is set"))
	}
	return errors.Join(errs...)
}
