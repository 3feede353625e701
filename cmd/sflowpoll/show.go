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
	"fmt"

	"github.com/kr/pretty"
	"github.com/spf13/cobra"

	"github.com/featureprofiles-lab/sflowprofiles/internal/ifmib"
	"github.com/featureprofiles-lab/sflowprofiles/internal/sshcli"
	"github.com/featureprofiles-lab/sflowprofiles/internal/vtysh"
)

var showCmd = &cobra.Command{
	Use:   "show",
	Short: "Print the sFlow status of the lab switch",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		l, err := loadLab(lab)
		if err != nil {
			return err
		}
		ctx := cmd.Context()
		c, err := sshcli.Dial(ctx, l.Switch.SSH.Config())
		if err != nil {
			return fmt.Errorf("switch: %w", err)
		}
		defer c.Close()

		sf, err := vtysh.New(c).ShowSflow(ctx)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%# v\n", pretty.Formatter(sf))

		if l.Switch.SNMP != nil {
			ifs, err := ifmib.New(l.Switch.SNMP.Config()).Interfaces(ctx)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%# v\n", pretty.Formatter(ifs))
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(showCmd)
}
