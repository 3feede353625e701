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

// Package vtysh drives the sFlow configuration of an OpenSwitch style
// switch through the vtysh shell.
package vtysh

import (
	"context"
	"fmt"
	"strings"

	"github.com/golang/glog"

	"github.com/featureprofiles-lab/sflowprofiles/feature/sflow/polling"
	"github.com/featureprofiles-lab/sflowprofiles/internal/sflowdata"
)

// CLI runs a shell command on the switch.
type CLI interface {
	SendCommand(ctx context.Context, cmd string) (string, error)
}

// Error markers printed by vtysh for rejected commands.
var errorMarkers = []string{
	"% Unknown command",
	"% Invalid input",
	"% Command incomplete",
	"% Ambiguous command",
}

// CommandError reports a vtysh command rejected by the switch.
type CommandError struct {
	Commands []string
	Output   string
}

func (e *CommandError) Error() string {
	return fmt.Sprintf("vtysh rejected %q: %s", e.Commands, strings.TrimSpace(e.Output))
}

// Switch is a switch managed through vtysh.
type Switch struct {
	cli CLI
}

var _ polling.Switch = (*Switch)(nil)

// New returns a Switch that sends commands through cli.
func New(cli CLI) *Switch {
	return &Switch{cli: cli}
}

// quote single-quotes s for a POSIX shell.
func quote(s string) string {
	return "'" + strings.ReplaceAll(s, "'", `'\''`) + "'"
}

// Command returns the shell command running cmds in one vtysh session.
func Command(cmds ...string) string {
	var b strings.Builder
	b.WriteString("vtysh")
	for _, c := range cmds {
		b.WriteString(" -c ")
		b.WriteString(quote(c))
	}
	return b.String()
}

// Run runs cmds in one vtysh session and returns the output.
func (s *Switch) Run(ctx context.Context, cmds ...string) (string, error) {
	cmd := Command(cmds...)
	glog.V(1).Infof("switch: %s", cmd)
	out, err := s.cli.SendCommand(ctx, cmd)
	if err != nil {
		return out, fmt.Errorf("vtysh %q: %w", cmds, err)
	}
	for _, m := range errorMarkers {
		if strings.Contains(out, m) {
			return out, &CommandError{Commands: cmds, Output: out}
		}
	}
	return out, nil
}

type commands struct {
	cmds []string
}

func (c *commands) add(format string, args ...any) {
	c.cmds = append(c.cmds, fmt.Sprintf(format, args...))
}

// ConfigContext collects global configuration commands.
type ConfigContext struct {
	commands
}

// SflowEnable enables sFlow globally.
func (c *ConfigContext) SflowEnable() { c.add("sflow enable") }

// SflowSampling sets the 1-in-rate packet sampling rate.
func (c *ConfigContext) SflowSampling(rate uint32) { c.add("sflow sampling %d", rate) }

// SflowAgentInterface sets the interface whose address identifies the agent.
func (c *ConfigContext) SflowAgentInterface(port string) { c.add("sflow agent-interface %s", port) }

// SflowCollector adds a collector.  The port and vrf are only sent when
// they differ from the switch defaults.
func (c *ConfigContext) SflowCollector(ip string, port uint16, vrf string) {
	cmd := "sflow collector " + ip
	if port != 0 && port != sflowdata.DefaultPort {
		cmd += fmt.Sprintf(" port %d", port)
	}
	if vrf != "" && vrf != DefaultVRF {
		cmd += " vrf " + vrf
	}
	c.add("%s", cmd)
}

// SflowPolling sets the counter polling interval in seconds.
func (c *ConfigContext) SflowPolling(interval uint16) { c.add("sflow polling %d", interval) }

// NoSflowPolling restores the default polling interval.
func (c *ConfigContext) NoSflowPolling() { c.add("no sflow polling") }

// InterfaceContext collects the commands of one interface.
type InterfaceContext struct {
	commands
}

// IPAddress sets the interface IPv4 address in CIDR notation.
func (c *InterfaceContext) IPAddress(cidr string) { c.add("ip address %s", cidr) }

// NoShutdown enables the interface.
func (c *InterfaceContext) NoShutdown() { c.add("no shutdown") }

// Configure runs fn and sends the commands it collected inside one
// "configure terminal" block.  Nothing is sent when fn adds no command.
func (s *Switch) Configure(ctx context.Context, fn func(*ConfigContext)) error {
	c := &ConfigContext{}
	fn(c)
	if len(c.cmds) == 0 {
		return nil
	}
	_, err := s.Run(ctx, block(nil, c.cmds)...)
	return err
}

// ConfigInterface runs fn and sends the commands it collected inside the
// context of interface port.
func (s *Switch) ConfigInterface(ctx context.Context, port string, fn func(*InterfaceContext)) error {
	c := &InterfaceContext{}
	fn(c)
	if len(c.cmds) == 0 {
		return nil
	}
	_, err := s.Run(ctx, block([]string{"interface " + port}, c.cmds)...)
	return err
}

func block(enter, cmds []string) []string {
	out := []string{"configure terminal"}
	out = append(out, enter...)
	out = append(out, cmds...)
	return append(out, "end")
}

// ConfigureInterface addresses and enables a switch port.
func (s *Switch) ConfigureInterface(ctx context.Context, ic polling.InterfaceConfig) error {
	return s.ConfigInterface(ctx, ic.Port, func(c *InterfaceContext) {
		c.IPAddress(ic.Address)
		c.NoShutdown()
	})
}

// ConfigureSflow enables sFlow with cfg.
func (s *Switch) ConfigureSflow(ctx context.Context, cfg polling.SflowConfig) error {
	return s.Configure(ctx, func(c *ConfigContext) {
		c.SflowEnable()
		c.SflowSampling(cfg.SamplingRate)
		c.SflowAgentInterface(cfg.AgentInterface)
		c.SflowCollector(cfg.Collector.Address, cfg.Collector.Port, cfg.Collector.VRF)
		c.SflowPolling(cfg.PollingInterval)
	})
}

// ResetPollingInterval removes the polling interval override.
func (s *Switch) ResetPollingInterval(ctx context.Context) error {
	return s.Configure(ctx, func(c *ConfigContext) {
		c.NoSflowPolling()
	})
}

// SflowState reads "show sflow".
func (s *Switch) SflowState(ctx context.Context) (*polling.SflowState, error) {
	sf, err := s.ShowSflow(ctx)
	if err != nil {
		return nil, err
	}
	return sf.State(), nil
}
