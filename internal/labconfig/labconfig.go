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

// Package labconfig loads the description of an sFlow lab: how to reach the
// switch and hosts, how to capture, and the scenario parameters.
//
// A lab file looks like:
//
//	switch:
//	  ssh: {target: 192.0.2.1, username: admin, password: admin, skip_verify: true}
//	  snmp: {target: 192.0.2.1, community: public}
//	sender:
//	  ssh: {target: 192.0.2.2, username: root, password: root, skip_verify: true}
//	  ports: {"1": eth1}
//	collector:
//	  ssh: {target: 192.0.2.3, username: root, password: root, skip_verify: true}
//	  ports: {"1": eth1}
//	capture:
//	  mode: sflowtool
//	scenario:
//	  polling_interval: 10
//	  settle_time: 20s
package labconfig

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/featureprofiles-lab/sflowprofiles/feature/sflow/polling"
	"github.com/featureprofiles-lab/sflowprofiles/internal/ifmib"
	"github.com/featureprofiles-lab/sflowprofiles/internal/sflowdata"
	"github.com/featureprofiles-lab/sflowprofiles/internal/sshcli"
)

// EnvPrefix prefixes the environment variables overriding lab settings,
// e.g. SFLOWPOLL_SWITCH_SSH_PASSWORD.
const EnvPrefix = "SFLOWPOLL"

// Capture modes.
const (
	// CaptureSflowtool runs sflowtool on the collector host.
	CaptureSflowtool = "sflowtool"
	// CaptureUDP listens for sFlow datagrams in this process.
	CaptureUDP = "udp"
)

// SSH is how a node is reached.
type SSH struct {
	Target     string        `mapstructure:"target"`
	Username   string        `mapstructure:"username"`
	Password   string        `mapstructure:"password"`
	KeyFile    string        `mapstructure:"key_file"`
	SkipVerify bool          `mapstructure:"skip_verify"`
	Timeout    time.Duration `mapstructure:"timeout"`
}

// Config returns the SSH client configuration.
func (s SSH) Config() sshcli.Config {
	return sshcli.Config{
		Target:     s.Target,
		Username:   s.Username,
		Password:   s.Password,
		KeyFile:    s.KeyFile,
		SkipVerify: s.SkipVerify,
		Timeout:    s.Timeout,
	}
}

// SNMP is the optional SNMP agent of the switch.
type SNMP struct {
	Target    string        `mapstructure:"target"`
	Port      uint16        `mapstructure:"port"`
	Community string        `mapstructure:"community"`
	Version   string        `mapstructure:"version"`
	Timeout   time.Duration `mapstructure:"timeout"`
	Retries   int           `mapstructure:"retries"`
}

// Config returns the IF-MIB reader configuration.
func (s SNMP) Config() ifmib.Config {
	return ifmib.Config{
		Target:    s.Target,
		Port:      s.Port,
		Community: s.Community,
		Version:   s.Version,
		Timeout:   s.Timeout,
		Retries:   s.Retries,
	}
}

// Switch is the switch under test.
type Switch struct {
	SSH  SSH   `mapstructure:"ssh"`
	SNMP *SNMP `mapstructure:"snmp"`
}

// Host is a lab host.
type Host struct {
	SSH SSH `mapstructure:"ssh"`
	// Ports maps topology port names to interface names.
	Ports map[string]string `mapstructure:"ports"`
	// Local pings from this process instead of the host shell.
	Local bool `mapstructure:"local"`
}

// Capture selects how sFlow datagrams are collected.
type Capture struct {
	Mode   string `mapstructure:"mode"`
	Listen string `mapstructure:"listen"`
}

// Collector is the sFlow collector of the scenario.
type Collector struct {
	Address string `mapstructure:"address"`
	Port    uint16 `mapstructure:"port"`
	VRF     string `mapstructure:"vrf"`
}

// Interface is an addressed port.
type Interface struct {
	Port    string `mapstructure:"port"`
	Address string `mapstructure:"address"`
}

// Ping is the traffic load.
type Ping struct {
	Count       int           `mapstructure:"count"`
	Destination string        `mapstructure:"destination"`
	Interval    time.Duration `mapstructure:"interval"`
}

// Scenario holds the scenario parameters.
type Scenario struct {
	SamplingRate           uint32        `mapstructure:"sampling_rate"`
	PollingInterval        uint16        `mapstructure:"polling_interval"`
	DefaultPollingInterval uint16        `mapstructure:"default_polling_interval"`
	AgentInterface         string        `mapstructure:"agent_interface"`
	AgentAddress           string        `mapstructure:"agent_address"`
	Collector              Collector     `mapstructure:"collector"`
	SwitchInterfaces       []Interface   `mapstructure:"switch_interfaces"`
	SenderInterface        Interface     `mapstructure:"sender_interface"`
	CollectorInterface     Interface     `mapstructure:"collector_interface"`
	Ping                   Ping          `mapstructure:"ping"`
	SettleTime             time.Duration `mapstructure:"settle_time"`
	CaptureTime            time.Duration `mapstructure:"capture_time"`
	ConfigTimeout          time.Duration `mapstructure:"config_timeout"`
	ConfigPoll             time.Duration `mapstructure:"config_poll"`
	MinCounterInterfaces   int           `mapstructure:"min_counter_interfaces"`
}

// Params converts s to scenario parameters.
func (s Scenario) Params() polling.Params {
	p := polling.Params{
		SamplingRate:           s.SamplingRate,
		PollingInterval:        s.PollingInterval,
		DefaultPollingInterval: s.DefaultPollingInterval,
		AgentInterface:         s.AgentInterface,
		AgentAddress:           s.AgentAddress,
		Collector:              polling.Collector(s.Collector),
		SenderInterface:        polling.HostInterface{Name: s.SenderInterface.Port, Address: s.SenderInterface.Address},
		CollectorIntf:          polling.HostInterface{Name: s.CollectorInterface.Port, Address: s.CollectorInterface.Address},
		Ping:                   polling.PingRequest(s.Ping),
		SettleTime:             s.SettleTime,
		CaptureTime:            s.CaptureTime,
		ConfigTimeout:          s.ConfigTimeout,
		ConfigPoll:             s.ConfigPoll,
		MinCounterInterfaces:   s.MinCounterInterfaces,
	}
	for _, i := range s.SwitchInterfaces {
		p.SwitchInterfaces = append(p.SwitchInterfaces, polling.InterfaceConfig(i))
	}
	return p
}

// Lab is a complete lab description.
type Lab struct {
	Switch    Switch   `mapstructure:"switch"`
	Sender    Host     `mapstructure:"sender"`
	Collector Host     `mapstructure:"collector"`
	Capture   Capture  `mapstructure:"capture"`
	Scenario  Scenario `mapstructure:"scenario"`
}

// SetDefaults registers the reference scenario as defaults of v.
func SetDefaults(v *viper.Viper) {
	p := polling.DefaultParams()
	v.SetDefault("capture.mode", CaptureSflowtool)
	v.SetDefault("capture.listen", fmt.Sprintf(":%d", sflowdata.DefaultPort))
	v.SetDefault("scenario.sampling_rate", p.SamplingRate)
	v.SetDefault("scenario.polling_interval", p.PollingInterval)
	v.SetDefault("scenario.default_polling_interval", p.DefaultPollingInterval)
	v.SetDefault("scenario.agent_interface", p.AgentInterface)
	v.SetDefault("scenario.agent_address", p.AgentAddress)
	v.SetDefault("scenario.collector.address", p.Collector.Address)
	v.SetDefault("scenario.collector.port", p.Collector.Port)
	v.SetDefault("scenario.collector.vrf", p.Collector.VRF)
	var ifs []map[string]any
	for _, ic := range p.SwitchInterfaces {
		ifs = append(ifs, map[string]any{"port": ic.Port, "address": ic.Address})
	}
	v.SetDefault("scenario.switch_interfaces", ifs)
	v.SetDefault("scenario.sender_interface.port", p.SenderInterface.Name)
	v.SetDefault("scenario.sender_interface.address", p.SenderInterface.Address)
	v.SetDefault("scenario.collector_interface.port", p.CollectorIntf.Name)
	v.SetDefault("scenario.collector_interface.address", p.CollectorIntf.Address)
	v.SetDefault("scenario.ping.count", p.Ping.Count)
	v.SetDefault("scenario.ping.destination", p.Ping.Destination)
	v.SetDefault("scenario.ping.interval", p.Ping.Interval)
	v.SetDefault("scenario.settle_time", p.SettleTime)
	v.SetDefault("scenario.capture_time", p.CaptureTime)
	v.SetDefault("scenario.config_timeout", p.ConfigTimeout)
	v.SetDefault("scenario.config_poll", p.ConfigPoll)
	v.SetDefault("scenario.min_counter_interfaces", p.MinCounterInterfaces)
}

// New returns a viper instance with the lab defaults and environment
// overrides set up.
func New() *viper.Viper {
	v := viper.New()
	v.SetConfigType("yaml")
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	SetDefaults(v)
	// Credentials are usually only given in the environment.
	for _, node := range []string{"switch", "sender", "collector"} {
		v.BindEnv(node + ".ssh.username")
		v.BindEnv(node + ".ssh.password")
	}
	return v
}

// Load reads the lab file into v, when file is not empty, and decodes it.
func Load(v *viper.Viper, file string) (*Lab, error) {
	if file != "" {
		v.SetConfigFile(file)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("could not read lab file: %w", err)
		}
	}
	lab := &Lab{}
	if err := v.Unmarshal(lab); err != nil {
		return nil, fmt.Errorf("could not decode lab file: %w", err)
	}
	if err := lab.Validate(); err != nil {
		return nil, err
	}
	return lab, nil
}

// Validate checks that every node can be reached.
func (l *Lab) Validate() error {
	var errs []error
	if l.Switch.SSH.Target == "" {
		errs = append(errs, fmt.Errorf("%w: switch.ssh.target is required", polling.ErrMissingNode))
	}
	if !l.Sender.Local && l.Sender.SSH.Target == "" {
		errs = append(errs, fmt.Errorf("%w: sender.ssh.target is required unless sender.local is set", polling.ErrMissingNode))
	}
	switch l.Capture.Mode {
	case CaptureSflowtool:
		if l.Collector.SSH.Target == "" {
			errs = append(errs, fmt.Errorf("%w: collector.ssh.target is required to run sflowtool", polling.ErrMissingNode))
		}
	case CaptureUDP:
		if l.Capture.Listen == "" {
			errs = append(errs, errors.New("capture.listen is required for udp capture"))
		}
	default:
		errs = append(errs, fmt.Errorf("unknown capture mode %q", l.Capture.Mode))
	}
	if err := l.Scenario.Params().Validate(); err != nil {
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}
