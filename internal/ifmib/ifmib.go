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

// Package ifmib reads the IF-MIB interface table of a switch over SNMP, so
// that the interface indices carried by sFlow counter samples can be matched
// to real interfaces.
package ifmib

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/golang/glog"
	g "github.com/gosnmp/gosnmp"

	"github.com/featureprofiles-lab/sflowprofiles/feature/sflow/polling"
)

// IfDescrOID is IF-MIB::ifDescr.
const IfDescrOID = ".1.3.6.1.2.1.2.2.1.2"

// Config describes the SNMP agent of the switch.
type Config struct {
	Target    string
	Port      uint16
	Community string
	// Version is "1" or "2c".
	Version string
	Timeout time.Duration
	Retries int
}

// Table reads ifDescr from an SNMP agent.
type Table struct {
	cfg Config
}

var _ polling.InterfaceTable = (*Table)(nil)

// New returns a Table for cfg.
func New(cfg Config) *Table {
	if cfg.Port == 0 {
		cfg.Port = 161
	}
	if cfg.Community == "" {
		cfg.Community = "public"
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = 2 * time.Second
	}
	return &Table{cfg: cfg}
}

func (t *Table) params(ctx context.Context) (*g.GoSNMP, error) {
	params := &g.GoSNMP{
		Target:    t.cfg.Target,
		Port:      t.cfg.Port,
		Community: t.cfg.Community,
		Timeout:   t.cfg.Timeout,
		Retries:   t.cfg.Retries,
		Context:   ctx,
		MaxOids:   g.MaxOids,
	}
	switch t.cfg.Version {
	case "", "2c":
		params.Version = g.Version2c
	case "1":
		params.Version = g.Version1
	default:
		return nil, fmt.Errorf("unsupported SNMP version %q", t.cfg.Version)
	}
	return params, nil
}

// Interfaces returns ifDescr keyed by ifIndex.
func (t *Table) Interfaces(ctx context.Context) (map[uint32]string, error) {
	params, err := t.params(ctx)
	if err != nil {
		return nil, err
	}
	if err := params.Connect(); err != nil {
		return nil, fmt.Errorf("could not connect to %s: %w", t.cfg.Target, err)
	}
	defer params.Conn.Close()

	var pdus []g.SnmpPDU
	if params.Version == g.Version1 {
		pdus, err = params.WalkAll(IfDescrOID)
	} else {
		pdus, err = params.BulkWalkAll(IfDescrOID)
	}
	if err != nil {
		return nil, fmt.Errorf("walking ifDescr on %s: %w", t.cfg.Target, err)
	}
	ifs, err := FromPDUs(pdus)
	if err != nil {
		return nil, err
	}
	glog.V(1).Infof("%s has %d interfaces", t.cfg.Target, len(ifs))
	return ifs, nil
}

// FromPDUs converts ifDescr PDUs to a map keyed by ifIndex.  PDUs outside
// ifDescr are ignored.
func FromPDUs(pdus []g.SnmpPDU) (map[uint32]string, error) {
	ifs := map[uint32]string{}
	prefix := IfDescrOID + "."
	for _, pdu := range pdus {
		name := pdu.Name
		if !strings.HasPrefix(name, ".") {
			name = "." + name
		}
		if !strings.HasPrefix(name, prefix) {
			continue
		}
		idx, err := strconv.ParseUint(strings.TrimPrefix(name, prefix), 10, 32)
		if err != nil {
			return nil, fmt.Errorf("bad ifDescr index in %s: %w", pdu.Name, err)
		}
		switch v := pdu.Value.(type) {
		case []byte:
			ifs[uint32(idx)] = string(v)
		case string:
			ifs[uint32(idx)] = v
		default:
			return nil, fmt.Errorf("%s has type %v, want OctetString", pdu.Name, pdu.Type)
		}
	}
	return ifs, nil
}
