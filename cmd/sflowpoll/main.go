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

// sflowpoll runs the sFlow polling interval scenario against a lab reached
// over SSH, and decodes sFlow captures.
//
// Usage:
//
//	sflowpoll run --lab lab.yaml [--report report.yaml]
//	sflowpoll show --lab lab.yaml
//	sflowpoll collect --listen :6343 --duration 30s
//	sflowpoll decode [--port 6343] capture.pcap sflowtool.txt
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"

	"github.com/golang/glog"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/featureprofiles-lab/sflowprofiles/internal/labconfig"
)

var lab = labconfig.New()

var rootCmd = &cobra.Command{
	Use:           "sflowpoll",
	Short:         "sFlow polling interval functional test",
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.PersistentFlags().AddGoFlagSet(flag.CommandLine)
	rootCmd.PersistentFlags().String("lab", "", "YAML lab description")
	lab.BindPFlag("lab", rootCmd.PersistentFlags().Lookup("lab"))
}

// loadLab reads the lab file named by --lab.
func loadLab(v *viper.Viper) (*labconfig.Lab, error) {
	return labconfig.Load(v, v.GetString("lab"))
}

func main() {
	// glog reads its flags from flag.CommandLine, which cobra parses.
	flag.CommandLine.Parse(nil)
	defer glog.Flush()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		glog.Flush()
		os.Exit(1)
	}
}
