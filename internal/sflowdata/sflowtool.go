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

package sflowdata

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
)

// Minimum field counts of sflowtool -l lines, tag included.
const (
	cntrFields = 21
	flowFields = 20
)

// ParseSflowtool parses the output of "sflowtool -l".  Lines other than CNTR
// and FLOW lines (banners, errors printed by the tool) are skipped.
//
// CNTR lines are laid out as
//
//	CNTR,agent,ifIndex,ifType,ifSpeed,ifDirection,ifStatus,ifInOctets,
//	ifInUcastPkts,ifInMulticastPkts,ifInBroadcastPkts,ifInDiscards,ifInErrors,
//	ifInUnknownProtos,ifOutOctets,ifOutUcastPkts,ifOutMulticastPkts,
//	ifOutBroadcastPkts,ifOutDiscards,ifOutErrors,ifPromiscuousMode
//
// and FLOW lines as
//
//	FLOW,agent,inputPort,outputPort,srcMAC,dstMAC,ethType,inVlan,outVlan,
//	srcIP,dstIP,ipProtocol,ipTos,ipTTL,srcPort,dstPort,tcpFlags,packetSize,
//	ipSize,samplingRate
func ParseSflowtool(r io.Reader) (*Capture, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.LazyQuotes = true
	cr.TrimLeadingSpace = true

	c := &Capture{}
	for {
		fields, err := cr.Read()
		if errors.Is(err, io.EOF) {
			return c, nil
		}
		if err != nil {
			return nil, fmt.Errorf("cannot read sflowtool output: %w", err)
		}
		line, _ := cr.FieldPos(0)
		var rec Record
		switch RecordType(fields[0]) {
		case Counter:
			rec, err = parseCounterLine(fields)
		case Flow:
			rec, err = parseFlowLine(fields)
		default:
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		c.Add(rec)
	}
}

type fieldParser struct {
	fields []string
	err    error
}

func (p *fieldParser) u32(i int, name string) uint32 {
	return uint32(p.uint(i, name, 32))
}

func (p *fieldParser) u64(i int, name string) uint64 {
	return p.uint(i, name, 64)
}

func (p *fieldParser) uint(i int, name string, bits int) uint64 {
	if p.err != nil {
		return 0
	}
	v, err := strconv.ParseUint(p.fields[i], 10, bits)
	if err != nil {
		p.err = fmt.Errorf("bad %s %q: %w", name, p.fields[i], err)
	}
	return v
}

func parseCounterLine(fields []string) (Record, error) {
	if len(fields) < cntrFields {
		return Record{}, fmt.Errorf("CNTR line has %d fields, want at least %d", len(fields), cntrFields)
	}
	p := &fieldParser{fields: fields}
	rec := Record{
		Type:         Counter,
		Agent:        fields[1],
		IfIndex:      p.u32(2, "ifIndex"),
		IfType:       p.u32(3, "ifType"),
		IfSpeed:      p.u64(4, "ifSpeed"),
		IfDirection:  p.u32(5, "ifDirection"),
		IfStatus:     p.u32(6, "ifStatus"),
		InOctets:     p.u64(7, "ifInOctets"),
		InUcastPkts:  p.u32(8, "ifInUcastPkts"),
		OutOctets:    p.u64(14, "ifOutOctets"),
		OutUcastPkts: p.u32(15, "ifOutUcastPkts"),
	}
	return rec, p.err
}

func parseFlowLine(fields []string) (Record, error) {
	if len(fields) < flowFields {
		return Record{}, fmt.Errorf("FLOW line has %d fields, want at least %d", len(fields), flowFields)
	}
	p := &fieldParser{fields: fields}
	rec := Record{
		Type:         Flow,
		Agent:        fields[1],
		InputPort:    p.u32(2, "inputPort"),
		OutputPort:   p.u32(3, "outputPort"),
		SrcIP:        fields[9],
		DstIP:        fields[10],
		IPProtocol:   p.u32(11, "ipProtocol"),
		SamplingRate: p.u32(19, "samplingRate"),
	}
	return rec, p.err
}
