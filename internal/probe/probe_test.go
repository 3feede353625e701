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

package probe

import (
	"context"
	"testing"
	"time"

	"github.com/featureprofiles-lab/sflowprofiles/feature/sflow/polling"
)

func TestPingBadDestination(t *testing.T) {
	p := &Pinger{}
	req := polling.PingRequest{Count: 1, Destination: "host.invalid", Interval: 10 * time.Millisecond}
	if _, err := p.Ping(context.Background(), req); err == nil {
		t.Errorf("Ping(%q) succeeded, want error", req.Destination)
	}
}
