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
	"bufio"
	"encoding/binary"
	"errors"
	"fmt"
	"io"

	"github.com/golang/glog"
	"github.com/google/gopacket"
	"github.com/google/gopacket/layers"
	"github.com/google/gopacket/pcapgo"
)

// pcapng section header block type.
const ngMagic = 0x0A0D0D0A

type packetReader interface {
	ReadPacketData() ([]byte, gopacket.CaptureInfo, error)
	LinkType() layers.LinkType
}

func newPacketReader(r io.Reader) (packetReader, error) {
	br := bufio.NewReader(r)
	magic, err := br.Peek(4)
	if err != nil {
		return nil, fmt.Errorf("could not read capture header: %w", err)
	}
	if binary.LittleEndian.Uint32(magic) == ngMagic {
		return pcapgo.NewNgReader(br, pcapgo.DefaultNgReaderOptions)
	}
	return pcapgo.NewReader(br)
}

// ReadPcap extracts the sFlow records sent to the given UDP collector port
// from a pcap or pcapng capture.  Datagrams that fail to decode are logged
// and skipped.
func ReadPcap(r io.Reader, port uint16) (*Capture, error) {
	pr, err := newPacketReader(r)
	if err != nil {
		return nil, err
	}
	c := &Capture{}
	for n := 1; ; n++ {
		data, _, err := pr.ReadPacketData()
		if errors.Is(err, io.EOF) {
			return c, nil
		}
		if err != nil {
			return nil, fmt.Errorf("could not read packet %d: %w", n, err)
		}
		packet := gopacket.NewPacket(data, pr.LinkType(), gopacket.Default)
		udpLayer := packet.Layer(layers.LayerTypeUDP)
		if udpLayer == nil {
			continue
		}
		udp := udpLayer.(*layers.UDP)
		if uint16(udp.DstPort) != port {
			continue
		}
		d, err := DecodeDatagram(udp.Payload)
		if err != nil {
			glog.Warningf("packet %d: %v", n, err)
			continue
		}
		for _, rec := range FromDatagram(d) {
			c.Add(rec)
		}
	}
}
