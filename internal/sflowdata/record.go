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

// Package sflowdata holds the decoded view of the sFlow exports seen by a
// collector during one capture window, and the readers that produce it from
// sflowtool line output, pcap files and a live UDP socket.
package sflowdata

import (
	"fmt"
	"sort"
)

// DefaultPort is the IANA assigned sFlow collector port.
const DefaultPort = 6343

// RecordType is the kind of an exported record, using the sflowtool line
// mode tags.
type RecordType string

const (
	// Counter is an interface counter record (sflowtool "CNTR").
	Counter RecordType = "CNTR"
	// Flow is a packet flow sample (sflowtool "FLOW").
	Flow RecordType = "FLOW"
)

// Record is a single decoded sFlow record.  Counter fields are only set for
// Counter records and flow fields only for Flow records.
type Record struct {
	Type  RecordType
	Agent string

	IfIndex      uint32
	IfType       uint32
	IfSpeed      uint64
	IfDirection  uint32
	IfStatus     uint32
	InOctets     uint64
	InUcastPkts  uint32
	OutOctets    uint64
	OutUcastPkts uint32

	InputPort    uint32
	OutputPort   uint32
	SrcIP        string
	DstIP        string
	IPProtocol   uint32
	SamplingRate uint32
}

// Capture is everything collected in one capture window.
type Capture struct {
	// SampleCount is the number of counter records in Records.
	SampleCount int
	Records     []Record
}

// Add appends r to the capture.
func (c *Capture) Add(r Record) {
	c.Records = append(c.Records, r)
	if r.Type == Counter {
		c.SampleCount++
	}
}

// Counters returns the counter records in capture order.
func (c *Capture) Counters() []Record {
	var out []Record
	for _, r := range c.Records {
		if r.Type == Counter {
			out = append(out, r)
		}
	}
	return out
}

// Agents returns the sorted distinct agent addresses seen in the capture.
func (c *Capture) Agents() []string {
	seen := map[string]bool{}
	var out []string
	for _, r := range c.Records {
		if !seen[r.Agent] {
			seen[r.Agent] = true
			out = append(out, r.Agent)
		}
	}
	sort.Strings(out)
	return out
}

// String summarizes the capture.
func (c *Capture) String() string {
	if c == nil {
		return "<nil capture>"
	}
	return fmt.Sprintf("%d records, %d counter samples, agents %v", len(c.Records), c.SampleCount, c.Agents())
}
