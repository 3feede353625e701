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
	"encoding/binary"
	"fmt"
	"net"

	"github.com/google/gopacket"
	"github.com/google/gopacket/layers"
)

// sFlow v5 sample and record formats, enterprise 0.
const (
	flowSampleFormat            = 1
	counterSampleFormat         = 2
	expandedFlowSampleFormat    = 3
	expandedCounterSampleFormat = 4

	rawPacketHeaderFormat  = 1
	genericInterfaceFormat = 1
)

// DecodeDatagram decodes an sFlow v5 datagram carried in a UDP payload.
// Samples and records other than generic interface counters and raw packet
// headers are skipped by length before decoding.
func DecodeDatagram(payload []byte) (d *layers.SFlowDatagram, err error) {
	pruned, samples, err := pruneDatagram(payload)
	if err != nil {
		return nil, err
	}
	if samples == 0 {
		return headerOnly(pruned), nil
	}
	// layers.SFlowDatagram indexes the payload without bounds checks.
	defer func() {
		if r := recover(); r != nil {
			d, err = nil, fmt.Errorf("truncated sFlow datagram (%d bytes): %v", len(payload), r)
		}
	}()
	d = &layers.SFlowDatagram{}
	if err := d.DecodeFromBytes(pruned, gopacket.NilDecodeFeedback); err != nil {
		return nil, fmt.Errorf("failed to decode sFlow datagram: %w", err)
	}
	return d, nil
}

type xdrReader struct {
	b   []byte
	err error
}

func (r *xdrReader) word() uint32 {
	if r.err != nil {
		return 0
	}
	if len(r.b) < 4 {
		r.err = fmt.Errorf("truncated sFlow datagram: need 4 bytes, have %d", len(r.b))
		return 0
	}
	v := binary.BigEndian.Uint32(r.b)
	r.b = r.b[4:]
	return v
}

func (r *xdrReader) opaque(n uint32) []byte {
	if r.err != nil {
		return nil
	}
	padded := (uint64(n) + 3) &^ 3
	if uint64(len(r.b)) < padded {
		r.err = fmt.Errorf("truncated sFlow datagram: need %d bytes, have %d", padded, len(r.b))
		return nil
	}
	v := r.b[:padded]
	r.b = r.b[padded:]
	return v
}

// pruneDatagram rewrites a datagram so that it only holds the samples and
// records FromDatagram reads, and returns the number of samples kept.
func pruneDatagram(payload []byte) ([]byte, uint32, error) {
	r := &xdrReader{b: payload}
	version := r.word()
	addrType := r.word()
	if r.err != nil {
		return nil, 0, r.err
	}
	if version != 5 {
		return nil, 0, fmt.Errorf("unsupported sFlow datagram version %d", version)
	}
	var addrLen uint32
	switch addrType {
	case 1:
		addrLen = 4
	case 2:
		addrLen = 16
	default:
		return nil, 0, fmt.Errorf("unsupported sFlow agent address type %d", addrType)
	}
	r.opaque(addrLen)
	r.word() // sub agent
	r.word() // sequence
	r.word() // uptime
	n := r.word()
	if r.err != nil {
		return nil, 0, r.err
	}
	hdrLen := len(payload) - len(r.b)
	out := append([]byte(nil), payload[:hdrLen]...)

	var kept uint32
	for i := uint32(0); i < n; i++ {
		format := r.word()
		body := &xdrReader{b: r.opaque(r.word())}
		if r.err != nil {
			return nil, 0, r.err
		}
		var fixed int
		var want uint32
		switch format {
		case flowSampleFormat:
			fixed, want = 7, rawPacketHeaderFormat
		case expandedFlowSampleFormat:
			fixed, want = 10, rawPacketHeaderFormat
		case counterSampleFormat:
			fixed, want = 2, genericInterfaceFormat
		case expandedCounterSampleFormat:
			fixed, want = 3, genericInterfaceFormat
		default:
			continue
		}
		head := body.opaque(uint32(4 * fixed))
		count := body.word()
		var recs []byte
		var nrecs uint32
		for j := uint32(0); j < count; j++ {
			rf := body.word()
			rl := body.word()
			data := body.opaque(rl)
			if body.err != nil {
				return nil, 0, body.err
			}
			if rf != want {
				continue
			}
			recs = binary.BigEndian.AppendUint32(recs, rf)
			recs = binary.BigEndian.AppendUint32(recs, uint32(len(data)))
			recs = append(recs, data...)
			nrecs++
		}
		if body.err != nil {
			return nil, 0, body.err
		}
		if nrecs == 0 {
			continue
		}
		out = binary.BigEndian.AppendUint32(out, format)
		out = binary.BigEndian.AppendUint32(out, uint32(len(head)+4+len(recs)))
		out = append(out, head...)
		out = binary.BigEndian.AppendUint32(out, nrecs)
		out = append(out, recs...)
		kept++
	}
	binary.BigEndian.PutUint32(out[hdrLen-4:], kept)
	return out, kept, nil
}

// headerOnly returns a datagram with no samples from a pruned payload.
func headerOnly(b []byte) *layers.SFlowDatagram {
	addrLen := 4
	if binary.BigEndian.Uint32(b[4:]) == 2 {
		addrLen = 16
	}
	off := 8 + addrLen
	return &layers.SFlowDatagram{
		DatagramVersion: binary.BigEndian.Uint32(b),
		AgentAddress:    net.IP(append([]byte(nil), b[8:off]...)),
		SubAgentID:      binary.BigEndian.Uint32(b[off:]),
		SequenceNumber:  binary.BigEndian.Uint32(b[off+4:]),
		AgentUptime:     binary.BigEndian.Uint32(b[off+8:]),
	}
}

// FromDatagram converts a decoded datagram into records the way sflowtool -l
// prints them: one counter record per generic interface counter record and
// one flow record per flow sample.
func FromDatagram(d *layers.SFlowDatagram) []Record {
	agent := d.AgentAddress.String()
	var recs []Record
	for _, cs := range d.CounterSamples {
		for _, cr := range cs.Records {
			gic, ok := cr.(layers.SFlowGenericInterfaceCounters)
			if !ok {
				continue
			}
			recs = append(recs, Record{
				Type:         Counter,
				Agent:        agent,
				IfIndex:      gic.IfIndex,
				IfType:       gic.IfType,
				IfSpeed:      gic.IfSpeed,
				IfDirection:  gic.IfDirection,
				IfStatus:     gic.IfStatus,
				InOctets:     gic.IfInOctets,
				InUcastPkts:  gic.IfInUcastPkts,
				OutOctets:    gic.IfOutOctets,
				OutUcastPkts: gic.IfOutUcastPkts,
			})
		}
	}
	for _, fs := range d.FlowSamples {
		rec := Record{
			Type:         Flow,
			Agent:        agent,
			InputPort:    fs.InputInterface,
			OutputPort:   fs.OutputInterface,
			SamplingRate: fs.SamplingRate,
		}
		for _, fr := range fs.Records {
			raw, ok := fr.(layers.SFlowRawPacketFlowRecord)
			if !ok || raw.Header == nil {
				continue
			}
			if l := raw.Header.Layer(layers.LayerTypeIPv4); l != nil {
				ip := l.(*layers.IPv4)
				rec.SrcIP, rec.DstIP, rec.IPProtocol = ip.SrcIP.String(), ip.DstIP.String(), uint32(ip.Protocol)
			} else if l := raw.Header.Layer(layers.LayerTypeIPv6); l != nil {
				ip := l.(*layers.IPv6)
				rec.SrcIP, rec.DstIP, rec.IPProtocol = ip.SrcIP.String(), ip.DstIP.String(), uint32(ip.NextHeader)
			}
		}
		recs = append(recs, rec)
	}
	return recs
}
