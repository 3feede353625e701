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
	"io"
	"sync"

	"github.com/golang/glog"
	gnpsipb "github.com/openconfig/gnpsi/proto/gnpsi"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// GNPSICollector receives the sFlow datagrams a switch streams over gNPSI
// for the duration of a capture window.
type GNPSICollector struct {
	client gnpsipb.GNPSIClient

	mu        sync.Mutex
	cancel    context.CancelFunc
	done      chan struct{}
	capture   *Capture
	datagrams int
	dropped   int
	recvErr   error
}

// NewGNPSICollector returns a collector that subscribes with client.
func NewGNPSICollector(client gnpsipb.GNPSIClient) *GNPSICollector {
	return &GNPSICollector{client: client}
}

// Start subscribes to the sample stream.
func (c *GNPSICollector) Start(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.cancel != nil {
		return errors.New("gNPSI collector already started")
	}
	sctx, cancel := context.WithCancel(ctx)
	stream, err := c.client.Subscribe(sctx, &gnpsipb.Request{})
	if err != nil {
		cancel()
		return fmt.Errorf("gNPSI subscribe failed: %w", err)
	}
	c.cancel = cancel
	c.done = make(chan struct{})
	c.capture = &Capture{}
	c.datagrams, c.dropped, c.recvErr = 0, 0, nil
	glog.Info("gNPSI collector subscribed")
	go c.serve(stream, c.done, c.capture)
	return nil
}

// Datagrams returns the number of datagrams decoded so far.
func (c *GNPSICollector) Datagrams() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.datagrams
}

func (c *GNPSICollector) serve(stream gnpsipb.GNPSI_SubscribeClient, done chan struct{}, capture *Capture) {
	defer close(done)
	for {
		resp, err := stream.Recv()
		if err != nil {
			if !errors.Is(err, io.EOF) && !errors.Is(err, context.Canceled) && status.Code(err) != codes.Canceled {
				c.mu.Lock()
				c.recvErr = err
				c.mu.Unlock()
			}
			return
		}
		if len(resp.GetPacket()) == 0 {
			continue
		}
		d, err := DecodeDatagram(resp.GetPacket())
		c.mu.Lock()
		if err != nil {
			c.dropped++
			c.mu.Unlock()
			glog.Warningf("gNPSI sample: %v", err)
			continue
		}
		c.datagrams++
		for _, rec := range FromDatagram(d) {
			capture.Add(rec)
		}
		c.mu.Unlock()
	}
}

// Stop cancels the subscription and returns the records received since
// Start.
func (c *GNPSICollector) Stop(ctx context.Context) (*Capture, error) {
	c.mu.Lock()
	cancel, done, capture := c.cancel, c.done, c.capture
	c.cancel = nil
	c.mu.Unlock()
	if cancel == nil {
		return nil, errors.New("gNPSI collector not started")
	}
	cancel()
	select {
	case <-done:
	case <-ctx.Done():
		return nil, ctx.Err()
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.recvErr != nil {
		return nil, fmt.Errorf("gNPSI stream failed: %w", c.recvErr)
	}
	glog.Infof("gNPSI collector stopped: %d datagrams, %d undecodable, %v", c.datagrams, c.dropped, capture)
	return capture, nil
}
