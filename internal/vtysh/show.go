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

package vtysh

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/sirikothe/gotextfsm"

	"github.com/featureprofiles-lab/sflowprofiles/feature/sflow/polling"
)

// DefaultVRF is the VRF a collector is reached through unless configured.
const DefaultVRF = "vrf_default"

var templateShowSflow = `Value sflow (enabled|disabled)
Value List collector (\S+/\d+/\S+)
Value agent_interface (\S+)
Value agent_address_family (\S+)
Value sampling_rate (\d+)
Value polling_interval (\d+)
Value header_size (\d+)
Value max_datagram_size (\d+)
Value number_of_samples (\d+)

Start
  ^sFlow\s+${sflow}
  ^Collector\s+IP/Port/Vrf\s+${collector}
  ^\s+${collector}
  ^Agent\s+Interface\s+${agent_interface}
  ^Agent\s+Address\s+Family\s+${agent_address_family}
  ^Sampling\s+Rate\s+${sampling_rate}
  ^Polling\s+Interval\s+${polling_interval}
  ^Header\s+Size\s+${header_size}
  ^Max\s+Datagram\s+Size\s+${max_datagram_size}
  ^Number\s+of\s+Samples\s+${number_of_samples}`

// Sflow is the parsed output of "show sflow".
type Sflow struct {
	Enabled            bool
	Collectors         []polling.Collector
	AgentInterface     string
	AgentAddressFamily string
	SamplingRate       uint32
	PollingInterval    uint16
	HeaderSize         uint32
	MaxDatagramSize    uint32
	NumberOfSamples    uint64
}

// State converts s to the scenario view.
func (s *Sflow) State() *polling.SflowState {
	return &polling.SflowState{
		Enabled:         s.Enabled,
		SamplingRate:    s.SamplingRate,
		PollingInterval: s.PollingInterval,
		AgentInterface:  s.AgentInterface,
		Collectors:      s.Collectors,
	}
}

// ShowSflow runs and parses "show sflow".
func (s *Switch) ShowSflow(ctx context.Context) (*Sflow, error) {
	out, err := s.Run(ctx, "show sflow")
	if err != nil {
		return nil, err
	}
	return ParseShowSflow(out)
}

func str(row map[string]interface{}, key string) string {
	v, _ := row[key].(string)
	return v
}

func list(row map[string]interface{}, key string) []string {
	switch v := row[key].(type) {
	case []string:
		return v
	case []interface{}:
		var out []string
		for _, e := range v {
			if s, ok := e.(string); ok {
				out = append(out, s)
			}
		}
		return out
	case string:
		if v != "" {
			return []string{v}
		}
	}
	return nil
}

func parseUint(row map[string]interface{}, key string, bits int) (uint64, error) {
	v := str(row, key)
	if v == "" {
		return 0, nil
	}
	n, err := strconv.ParseUint(v, 10, bits)
	if err != nil {
		return 0, fmt.Errorf("bad %s %q: %w", key, v, err)
	}
	return n, nil
}

// ParseCollector parses the "ip/port/vrf" form printed by "show sflow".
func ParseCollector(s string) (polling.Collector, error) {
	parts := strings.Split(s, "/")
	if len(parts) != 3 {
		return polling.Collector{}, fmt.Errorf("collector %q is not ip/port/vrf", s)
	}
	port, err := strconv.ParseUint(parts[1], 10, 16)
	if err != nil {
		return polling.Collector{}, fmt.Errorf("collector %q: bad port: %w", s, err)
	}
	return polling.Collector{Address: parts[0], Port: uint16(port), VRF: parts[2]}, nil
}

// ParseShowSflow parses the output of "show sflow".
func ParseShowSflow(out string) (*Sflow, error) {
	fsm := gotextfsm.TextFSM{}
	if err := fsm.ParseString(templateShowSflow); err != nil {
		return nil, err
	}
	parser := gotextfsm.ParserOutput{}
	if err := parser.ParseTextString(out, fsm, true); err != nil {
		return nil, err
	}
	if len(parser.Dict) == 0 {
		return nil, fmt.Errorf("no sFlow status in %q", out)
	}
	row := parser.Dict[0]
	if str(row, "sflow") == "" {
		return nil, fmt.Errorf("no sFlow status in %q", out)
	}

	sf := &Sflow{
		Enabled:            str(row, "sflow") == "enabled",
		AgentInterface:     str(row, "agent_interface"),
		AgentAddressFamily: str(row, "agent_address_family"),
	}
	for _, c := range list(row, "collector") {
		col, err := ParseCollector(c)
		if err != nil {
			return nil, err
		}
		sf.Collectors = append(sf.Collectors, col)
	}

	rate, err := parseUint(row, "sampling_rate", 32)
	if err != nil {
		return nil, err
	}
	interval, err := parseUint(row, "polling_interval", 16)
	if err != nil {
		return nil, err
	}
	header, err := parseUint(row, "header_size", 32)
	if err != nil {
		return nil, err
	}
	datagram, err := parseUint(row, "max_datagram_size", 32)
	if err != nil {
		return nil, err
	}
	samples, err := parseUint(row, "number_of_samples", 64)
	if err != nil {
		return nil, err
	}
	sf.SamplingRate = uint32(rate)
	sf.PollingInterval = uint16(interval)
	sf.HeaderSize = uint32(header)
	sf.MaxDatagramSize = uint32(datagram)
	sf.NumberOfSamples = samples
	return sf, nil
}
