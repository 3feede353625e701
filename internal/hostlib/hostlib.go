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

// Package hostlib configures Linux lab hosts and runs traffic and capture
// tools on them through a shell.
package hostlib

import (
	"context"
	"fmt"
	"net"
	"strconv"
	"strings"

	"github.com/golang/glog"
	"github.com/sirikothe/gotextfsm"

	"github.com/featureprofiles-lab/sflowprofiles/feature/sflow/polling"
)

// CLI runs a shell command on a host.
type CLI interface {
	SendCommand(ctx context.Context, cmd string) (string, error)
}

// Host is a Linux host reached through a CLI.
type Host struct {
	cli CLI
	// ports maps topology port names to Linux interface names.
	ports map[string]string
}

var (
	_ polling.Host             = (*Host)(nil)
	_ polling.TrafficGenerator = (*Host)(nil)
)

// New returns a Host.  ports maps topology port names such as "1" to
// interface names such as "eth1"; unmapped names are used as is.
func New(cli CLI, ports map[string]string) *Host {
	return &Host{cli: cli, ports: ports}
}

func (h *Host) ifName(port string) string {
	if n, ok := h.ports[port]; ok {
		return n
	}
	return port
}

func (h *Host) run(ctx context.Context, cmd string) (string, error) {
	glog.V(1).Infof("host: %s", cmd)
	out, err := h.cli.SendCommand(ctx, cmd)
	if err != nil {
		return out, fmt.Errorf("%q: %w: %s", cmd, err, strings.TrimSpace(out))
	}
	return out, nil
}

// ConfigureInterface adds the address to the interface and brings it up.
func (h *Host) ConfigureInterface(ctx context.Context, hi polling.HostInterface) error {
	if _, _, err := net.ParseCIDR(hi.Address); err != nil {
		return err
	}
	name := h.ifName(hi.Name)
	if _, err := h.run(ctx, fmt.Sprintf("ip addr add %s dev %s", hi.Address, name)); err != nil {
		return err
	}
	_, err := h.run(ctx, fmt.Sprintf("ip link set dev %s up", name))
	return err
}

// PingCommand returns the iputils ping command line for req.
func PingCommand(req polling.PingRequest) string {
	interval := strconv.FormatFloat(req.Interval.Seconds(), 'f', -1, 64)
	return fmt.Sprintf("ping -c %d -i %s %s", req.Count, interval, req.Destination)
}

// Ping runs ping on the host.  Lost replies are reported in the result, not
// as an error; only a run that prints no statistics fails.
func (h *Host) Ping(ctx context.Context, req polling.PingRequest) (*polling.PingResult, error) {
	out, runErr := h.cli.SendCommand(ctx, PingCommand(req))
	st, err := ParsePing(out)
	if err != nil {
		if runErr != nil {
			return nil, fmt.Errorf("ping %s: %w", req.Destination, runErr)
		}
		return nil, err
	}
	glog.Infof("ping %s: %d transmitted, %d received, %s%% loss", st.Destination, st.Transmitted, st.Received, st.Loss)
	return &polling.PingResult{Transmitted: st.Transmitted, Received: st.Received}, nil
}

var templatePing = `Value destination (\S+)
Value transmitted (\d+)
Value received (\d+)
Value loss ([\d\.]+)
Value rtt_min ([\d\.]+)
Value rtt_avg ([\d\.]+)
Value rtt_max ([\d\.]+)

Start
  ^---\s+${destination}\s+ping\s+statistics
  ^${transmitted}\s+packets\s+transmitted,\s+${received}\s+(packets\s+)?received,(.*\s)?${loss}%\s+packet\s+loss
  ^(rtt|round-trip)\s+min/avg/max(/mdev)?\s+=\s+${rtt_min}/${rtt_avg}/${rtt_max}`

// PingStats is the summary printed by ping.
type PingStats struct {
	Destination string
	Transmitted int
	Received    int
	Loss        string
	RTTMin      string
	RTTAvg      string
	RTTMax      string
}

// ParsePing parses the statistics of iputils or busybox ping output.
func ParsePing(out string) (*PingStats, error) {
	fsm := gotextfsm.TextFSM{}
	if err := fsm.ParseString(templatePing); err != nil {
		return nil, err
	}
	parser := gotextfsm.ParserOutput{}
	if err := parser.ParseTextString(out, fsm, true); err != nil {
		return nil, err
	}
	if len(parser.Dict) == 0 {
		return nil, fmt.Errorf("no ping statistics in %q", out)
	}
	row := parser.Dict[0]
	get := func(k string) string {
		v, _ := row[k].(string)
		return v
	}
	if get("transmitted") == "" {
		return nil, fmt.Errorf("no ping statistics in %q", out)
	}
	tx, err := strconv.Atoi(get("transmitted"))
	if err != nil {
		return nil, err
	}
	rx, err := strconv.Atoi(get("received"))
	if err != nil {
		return nil, err
	}
	return &PingStats{
		Destination: get("destination"),
		Transmitted: tx,
		Received:    rx,
		Loss:        get("loss"),
		RTTMin:      get("rtt_min"),
		RTTAvg:      get("rtt_avg"),
		RTTMax:      get("rtt_max"),
	}, nil
}
