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

// Package probe sends ICMP echo requests from the local machine.
package probe

import (
	"context"
	"fmt"
	"time"

	"github.com/golang/glog"
	probing "github.com/prometheus-community/pro-bing"

	"github.com/featureprofiles-lab/sflowprofiles/feature/sflow/polling"
)

// Pinger generates ICMP load from the machine running the scenario, for
// labs where that machine is the sender host.
type Pinger struct {
	// Privileged uses raw sockets instead of unprivileged UDP ICMP sockets.
	Privileged bool
	// Source is an optional source address.
	Source string
}

var _ polling.TrafficGenerator = (*Pinger)(nil)

// Ping sends req.Count echo requests and waits for the replies.
func (p *Pinger) Ping(ctx context.Context, req polling.PingRequest) (*polling.PingResult, error) {
	pinger, err := probing.NewPinger(req.Destination)
	if err != nil {
		return nil, fmt.Errorf("could not resolve %s: %w", req.Destination, err)
	}
	pinger.Count = req.Count
	if req.Interval > 0 {
		pinger.Interval = req.Interval
	}
	// Allow the last replies to arrive.
	pinger.Timeout = time.Duration(req.Count)*pinger.Interval + 5*time.Second
	pinger.SetPrivileged(p.Privileged)
	if p.Source != "" {
		pinger.Source = p.Source
	}

	done := make(chan error, 1)
	go func() { done <- pinger.Run() }()
	select {
	case err = <-done:
	case <-ctx.Done():
		pinger.Stop()
		<-done
		return nil, ctx.Err()
	}
	if err != nil {
		return nil, fmt.Errorf("ping %s: %w", req.Destination, err)
	}

	st := pinger.Statistics()
	glog.Infof("ping %s: %d transmitted, %d received, %.0f%% loss, avg rtt %v",
		st.Addr, st.PacketsSent, st.PacketsRecv, st.PacketLoss, st.AvgRtt)
	return &polling.PingResult{Transmitted: st.PacketsSent, Received: st.PacketsRecv}, nil
}
