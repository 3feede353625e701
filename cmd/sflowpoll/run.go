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

package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/golang/glog"
	"github.com/kr/pretty"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/featureprofiles-lab/sflowprofiles/feature/sflow/polling"
	"github.com/featureprofiles-lab/sflowprofiles/internal/hostlib"
	"github.com/featureprofiles-lab/sflowprofiles/internal/ifmib"
	"github.com/featureprofiles-lab/sflowprofiles/internal/labconfig"
	"github.com/featureprofiles-lab/sflowprofiles/internal/probe"
	"github.com/featureprofiles-lab/sflowprofiles/internal/sflowdata"
	"github.com/featureprofiles-lab/sflowprofiles/internal/sshcli"
	"github.com/featureprofiles-lab/sflowprofiles/internal/vtysh"
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run the polling interval scenario against the lab",
	Long: `Run configures the switch and hosts of the lab, captures sFlow counter
samples with a short polling interval and again with the default one, and
fails unless the short interval produced more counter samples.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		l, err := loadLab(lab)
		if err != nil {
			return err
		}
		ctx := cmd.Context()
		nodes, closeNodes, err := connect(ctx, l)
		if err != nil {
			return err
		}
		defer closeNodes()

		p := l.Scenario.Params()
		glog.Infof("scenario parameters: %# v", pretty.Formatter(p))
		s := &polling.Scenario{Params: p, Nodes: nodes}
		report, err := s.Run(ctx)
		if err != nil {
			return err
		}
		return writeReport(cmd.OutOrStdout(), lab.GetString("report"), report)
	},
}

func init() {
	runCmd.Flags().String("report", "", "write the YAML report to this file instead of stdout")
	lab.BindPFlag("report", runCmd.Flags().Lookup("report"))
	rootCmd.AddCommand(runCmd)
}

func writeReport(stdout io.Writer, file string, r *polling.Report) error {
	b, err := yaml.Marshal(r)
	if err != nil {
		return fmt.Errorf("could not encode report: %w", err)
	}
	if file == "" {
		_, err := stdout.Write(b)
		return err
	}
	return os.WriteFile(file, b, 0644)
}

// preconfigured is a host whose interfaces are set up outside the scenario,
// such as the machine running sflowpoll.
type preconfigured string

func (p preconfigured) ConfigureInterface(_ context.Context, hi polling.HostInterface) error {
	glog.Infof("%s: assuming interface %s has %s", string(p), hi.Name, hi.Address)
	return nil
}

// connect dials the lab nodes.  The returned function closes them.
func connect(ctx context.Context, l *labconfig.Lab) (polling.Nodes, func(), error) {
	var clients []*sshcli.Client
	closeAll := func() {
		for _, c := range clients {
			c.Close()
		}
	}
	dial := func(name string, s labconfig.SSH) (*sshcli.Client, error) {
		c, err := sshcli.Dial(ctx, s.Config())
		if err != nil {
			return nil, fmt.Errorf("%s: %w", name, err)
		}
		clients = append(clients, c)
		return c, nil
	}

	var nodes polling.Nodes
	err := func() error {
		sw, err := dial("switch", l.Switch.SSH)
		if err != nil {
			return err
		}
		nodes.Switch = vtysh.New(sw)
		if l.Switch.SNMP != nil {
			nodes.IfTable = ifmib.New(l.Switch.SNMP.Config())
		}

		if l.Sender.Local {
			nodes.Sender = preconfigured("sender")
			nodes.Traffic = &probe.Pinger{}
		} else {
			c, err := dial("sender", l.Sender.SSH)
			if err != nil {
				return err
			}
			h := hostlib.New(c, l.Sender.Ports)
			nodes.Sender, nodes.Traffic = h, h
		}

		var collector *sshcli.Client
		if l.Collector.SSH.Target != "" {
			if collector, err = dial("collector", l.Collector.SSH); err != nil {
				return err
			}
			nodes.Collector = hostlib.New(collector, l.Collector.Ports)
		} else {
			nodes.Collector = preconfigured("collector")
		}

		switch l.Capture.Mode {
		case labconfig.CaptureSflowtool:
			if collector == nil {
				return fmt.Errorf("%w: sflowtool capture needs the collector host", polling.ErrMissingNode)
			}
			nodes.Capturer = hostlib.NewSflowtool(collector, l.Scenario.Collector.Port)
		case labconfig.CaptureUDP:
			nodes.Capturer = sflowdata.NewUDPCollector(l.Capture.Listen)
		default:
			return errors.New("unknown capture mode " + l.Capture.Mode)
		}
		return nil
	}()
	if err != nil {
		closeAll()
		return polling.Nodes{}, nil, err
	}
	return nodes, closeAll, nil
}
