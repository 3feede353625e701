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

package hostlib

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/golang/glog"
	"github.com/google/uuid"

	"github.com/featureprofiles-lab/sflowprofiles/feature/sflow/polling"
	"github.com/featureprofiles-lab/sflowprofiles/internal/sflowdata"
)

// Sflowtool runs sflowtool in line mode on a collector host.
type Sflowtool struct {
	cli  CLI
	port uint16
	// Dir holds the output files.  It defaults to /tmp.
	Dir string

	pid  int
	file string
}

var _ polling.Capturer = (*Sflowtool)(nil)

// NewSflowtool returns a capturer listening on the given UDP port.
func NewSflowtool(cli CLI, port uint16) *Sflowtool {
	return &Sflowtool{cli: cli, port: port, Dir: "/tmp"}
}

// Start launches sflowtool in the background.
func (s *Sflowtool) Start(ctx context.Context) error {
	if s.pid != 0 {
		return fmt.Errorf("sflowtool already running as pid %d", s.pid)
	}
	file := fmt.Sprintf("%s/sflowtool-%s.txt", s.Dir, uuid.NewString())
	cmd := fmt.Sprintf("nohup sflowtool -p %d -l > %s 2>/dev/null & echo $!", s.port, file)
	out, err := s.cli.SendCommand(ctx, cmd)
	if err != nil {
		return fmt.Errorf("could not start sflowtool: %w", err)
	}
	pid, err := strconv.Atoi(strings.TrimSpace(out))
	if err != nil || pid <= 0 {
		return fmt.Errorf("could not start sflowtool: unexpected output %q", out)
	}
	s.pid, s.file = pid, file
	glog.Infof("sflowtool started as pid %d writing %s", pid, file)
	return nil
}

// Stop terminates sflowtool and returns the records it printed.  The
// output file is removed.
func (s *Sflowtool) Stop(ctx context.Context) (*sflowdata.Capture, error) {
	if s.pid == 0 {
		return nil, errors.New("sflowtool not running")
	}
	pid, file := s.pid, s.file
	s.pid, s.file = 0, ""

	var errs []error
	if _, err := s.cli.SendCommand(ctx, fmt.Sprintf("kill %d", pid)); err != nil {
		errs = append(errs, fmt.Errorf("could not stop sflowtool pid %d: %w", pid, err))
	}
	out, err := s.cli.SendCommand(ctx, "cat "+file)
	if err != nil {
		errs = append(errs, fmt.Errorf("could not read %s: %w", file, err))
	}
	if _, err := s.cli.SendCommand(ctx, "rm -f "+file); err != nil {
		glog.Warningf("could not remove %s: %v", file, err)
	}
	if len(errs) > 0 {
		return nil, errors.Join(errs...)
	}
	c, err := sflowdata.ParseSflowtool(strings.NewReader(out))
	if err != nil {
		return nil, fmt.Errorf("sflowtool output: %w", err)
	}
	glog.Infof("sflowtool pid %d: %v", pid, c)
	return c, nil
}
