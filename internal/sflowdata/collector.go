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
	"context"
	"errors"
	"fmt"
	"net"
	"sync"

	"github.com/golang/glog"
)

// maxDatagram is the largest UDP payload.
const maxDatagram = 65535

// UDPCollector receives sFlow datagrams on a UDP socket for the duration of
// a capture window.  It is the in-process replacement for running sflowtool
// on the collector host.
type UDPCollector struct {
	addr string

	mu        sync.Mutex
	conn      net.PacketConn
	done      chan struct{}
	capture   *Capture
	datagrams int
	dropped   int
	readErr   error
}

// NewUDPCollector returns a collector that listens on addr, e.g. ":6343".
func NewUDPCollector(addr string) *UDPCollector {
	return &UDPCollector{addr: addr}
}

// Start opens the socket and starts receiving.
func (c *UDPCollector) Start(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.conn != nil {
		return fmt.Errorf("collector on %s already started", c.addr)
	}
	var lc net.ListenConfig
	conn, err := lc.ListenPacket(ctx, "udp", c.addr)
	if err != nil {
		return fmt.Errorf("could not listen on %s: %w", c.addr, err)
	}
	c.conn = conn
	c.done = make(chan struct{})
	c.capture = &Capture{}
	c.datagrams, c.dropped, c.readErr = 0, 0, nil
	glog.Infof("sFlow collector listening on %s", conn.LocalAddr())
	go c.serve(conn, c.done, c.capture)
	return nil
}

// LocalAddr returns the bound address of a started collector.
func (c *UDPCollector) LocalAddr() net.Addr {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.conn == nil {
		return nil
	}
	return c.conn.LocalAddr()
}

// Datagrams returns the number of datagrams decoded so far.
func (c *UDPCollector) Datagrams() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.datagrams
}

func (c *UDPCollector) serve(conn net.PacketConn, done chan struct{}, capture *Capture) {
	defer close(done)
	buf := make([]byte, maxDatagram)
	for {
		n, from, err := conn.ReadFrom(buf)
		if err != nil {
			if !errors.Is(err, net.ErrClosed) {
				c.mu.Lock()
				c.readErr = err
				c.mu.Unlock()
			}
			return
		}
		d, err := DecodeDatagram(buf[:n])
		c.mu.Lock()
		if err != nil {
			c.dropped++
			c.mu.Unlock()
			glog.Warningf("datagram from %v: %v", from, err)
			continue
		}
		c.datagrams++
		for _, rec := range FromDatagram(d) {
			capture.Add(rec)
		}
		c.mu.Unlock()
	}
}

// Stop closes the socket and returns the records received since Start.
func (c *UDPCollector) Stop(ctx context.Context) (*Capture, error) {
	c.mu.Lock()
	conn, done, capture := c.conn, c.done, c.capture
	c.conn = nil
	c.mu.Unlock()
	if conn == nil {
		return nil, fmt.Errorf("collector on %s not started", c.addr)
	}
	conn.Close()
	select {
	case <-done:
	case <-ctx.Done():
		return nil, ctx.Err()
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.readErr != nil {
		return nil, fmt.Errorf("collector on %s failed: %w", c.addr, c.readErr)
	}
	glog.Infof("sFlow collector on %s stopped: %d datagrams, %d undecodable, %v", c.addr, c.datagrams, c.dropped, capture)
	return capture, nil
}
