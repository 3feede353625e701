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
	"bufio"
	"bytes"
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/featureprofiles-lab/sflowprofiles/feature/sflow/polling"
	"github.com/featureprofiles-lab/sflowprofiles/internal/sflowdata"
)

// captureSummary is the YAML view of a capture.
type captureSummary struct {
	Source         string              `yaml:"source"`
	Records        int                 `yaml:"records"`
	CounterSamples int                 `yaml:"counter_samples"`
	Agents         []string            `yaml:"agents"`
	Interfaces     map[string][]uint32 `yaml:"interfaces"`
}

func summarize(source string, c *sflowdata.Capture) (*captureSummary, error) {
	s := &captureSummary{
		Source:         source,
		Records:        len(c.Records),
		CounterSamples: c.SampleCount,
		Agents:         c.Agents(),
		Interfaces:     map[string][]uint32{},
	}
	for _, agent := range s.Agents {
		per := &sflowdata.Capture{}
		for _, r := range c.Records {
			if r.Agent == agent {
				per.Add(r)
			}
		}
		idx, err := polling.CounterInterfaces(per, agent)
		if err != nil {
			return nil, err
		}
		s.Interfaces[agent] = idx
	}
	return s, nil
}

func printSummary(w io.Writer, s *captureSummary) error {
	b, err := yaml.Marshal([]*captureSummary{s})
	if err != nil {
		return err
	}
	_, err = w.Write(b)
	return err
}

// readCapture reads a pcap, pcapng or sflowtool -l file.
func readCapture(file string, port uint16) (*sflowdata.Capture, error) {
	f, err := os.Open(file)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	br := bufio.NewReader(f)
	head, _ := br.Peek(4)
	if bytes.HasPrefix(head, []byte("CNTR")) || bytes.HasPrefix(head, []byte("FLOW")) || strings.HasSuffix(file, ".txt") {
		return sflowdata.ParseSflowtool(br)
	}
	return sflowdata.ReadPcap(br, port)
}

var decodeCmd = &cobra.Command{
	Use:   "decode FILE...",
	Short: "Summarize sFlow captures (pcap, pcapng or sflowtool -l output)",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		port, err := cmd.Flags().GetUint16("port")
		if err != nil {
			return err
		}
		for _, file := range args {
			c, err := readCapture(file, port)
			if err != nil {
				return fmt.Errorf("%s: %w", file, err)
			}
			s, err := summarize(file, c)
			if err != nil {
				return fmt.Errorf("%s: %w", file, err)
			}
			if err := printSummary(cmd.OutOrStdout(), s); err != nil {
				return err
			}
		}
		return nil
	},
}

var collectCmd = &cobra.Command{
	Use:   "collect",
	Short: "Receive sFlow datagrams for a while and summarize them",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		listen, err := cmd.Flags().GetString("listen")
		if err != nil {
			return err
		}
		d, err := cmd.Flags().GetDuration("duration")
		if err != nil {
			return err
		}
		ctx := cmd.Context()
		col := sflowdata.NewUDPCollector(listen)
		if err := col.Start(ctx); err != nil {
			return err
		}
		select {
		case <-time.After(d):
		case <-ctx.Done():
		}
		c, err := col.Stop(context.WithoutCancel(ctx))
		if err != nil {
			return err
		}
		s, err := summarize(listen, c)
		if err != nil {
			return err
		}
		return printSummary(cmd.OutOrStdout(), s)
	},
}

func init() {
	decodeCmd.Flags().Uint16("port", sflowdata.DefaultPort, "sFlow collector UDP port in pcap files")
	collectCmd.Flags().String("listen", fmt.Sprintf(":%d", sflowdata.DefaultPort), "UDP address to receive sFlow on")
	collectCmd.Flags().Duration("duration", 30*time.Second, "how long to collect")
	rootCmd.AddCommand(decodeCmd, collectCmd)
}
