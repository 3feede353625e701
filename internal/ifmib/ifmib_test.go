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

package ifmib

import (
	"context"
	"testing"

	"github.com/google/go-cmp/cmp"
	g "github.com/gosnmp/gosnmp"
)

func TestFromPDUs(t *testing.T) {
	pdus := []g.SnmpPDU{
		{Name: ".1.3.6.1.2.1.2.2.1.2.1", Type: g.OctetString, Value: []byte("1")},
		{Name: "1.3.6.1.2.1.2.2.1.2.2", Type: g.OctetString, Value: []byte("2")},
		{Name: ".1.3.6.1.2.1.2.2.1.2.1000", Type: g.OctetString, Value: []byte("bridge_normal")},
		{Name: ".1.3.6.1.2.1.2.2.1.3.1", Type: g.Integer, Value: 6},
	}
	got, err := FromPDUs(pdus)
	if err != nil {
		t.Fatalf("FromPDUs() failed: %v", err)
	}
	want := map[uint32]string{1: "1", 2: "2", 1000: "bridge_normal"}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("FromPDUs() returned unexpected table, diff(-want,+got):\n%s", diff)
	}
}

func TestFromPDUsErrors(t *testing.T) {
	tests := []struct {
		desc string
		pdu  g.SnmpPDU
	}{
		{"bad index", g.SnmpPDU{Name: ".1.3.6.1.2.1.2.2.1.2.x", Type: g.OctetString, Value: []byte("1")}},
		{"bad type", g.SnmpPDU{Name: ".1.3.6.1.2.1.2.2.1.2.1", Type: g.Integer, Value: 1}},
	}
	for _, test := range tests {
		if _, err := FromPDUs([]g.SnmpPDU{test.pdu}); err == nil {
			t.Errorf("%s: FromPDUs() succeeded, want error", test.desc)
		}
	}
}

func TestParams(t *testing.T) {
	tbl := New(Config{Target: "192.0.2.1"})
	params, err := tbl.params(context.Background())
	if err != nil {
		t.Fatalf("params() failed: %v", err)
	}
	if params.Port != 161 || params.Community != "public" || params.Version != g.Version2c {
		t.Errorf("params() = port %d community %q version %v, want defaults", params.Port, params.Community, params.Version)
	}
	if _, err := New(Config{Target: "192.0.2.1", Version: "3"}).params(context.Background()); err == nil {
		t.Errorf("params() with version 3 succeeded, want error")
	}
}
