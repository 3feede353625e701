// Copyright 2023 Google LLC
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

package cfgplugins

import (
	"cmp"
	"slices"

	"github.com/openconfig/ondatra"
	"github.com/openconfig/ondatra/gnmi"
	"github.com/openconfig/ondatra/gnmi/oc"

	"github.com/featureprofiles-lab/sflowprofiles/feature/sflow"
	"github.com/featureprofiles-lab/sflowprofiles/feature/sflow/polling"
	"github.com/featureprofiles-lab/sflowprofiles/internal/deviations"
)

// NewSFlowGlobalCfg adds the replace of /sampling/sflow for cfg to batch and
// returns the OC it carries.  agentIPv4 is the address of the agent
// interface; it becomes the agent-id-ipv4 and the collector source-address.
// sFlow is enabled on every interface in intfs.
func NewSFlowGlobalCfg(batch *gnmi.SetBatch, cfg polling.SflowConfig, agentIPv4 string, intfs []string, d *ondatra.DUTDevice) (*oc.Sampling_Sflow, error) {
	s := sflow.New().
		WithIngressSamplingRate(cfg.SamplingRate).
		WithPollingInterval(cfg.PollingInterval).
		WithAgentIDIPv4(agentIPv4)
	for _, name := range intfs {
		if err := s.WithFeature(sflow.NewInterface(name)); err != nil {
			return nil, err
		}
	}
	if err := s.WithFeature(NewSFlowCollector(cfg.Collector, agentIPv4, d)); err != nil {
		return nil, err
	}
	c, err := s.Config()
	if err != nil {
		return nil, err
	}
	gnmi.BatchReplace(batch, gnmi.OC().Sampling().Sflow().Config(), c)
	return c, nil
}

// NewSFlowCollector returns the collector of c.  A VRF of "DEFAULT" is the
// default network instance of d.
func NewSFlowCollector(c polling.Collector, source string, d *ondatra.DUTDevice) *sflow.Collector {
	col := sflow.NewCollector(c.Address, c.Port)
	if c.VRF != "" {
		col.WithNetworkInstance(normalizeNIName(c.VRF, d))
	}
	if source != "" && !deviations.SflowSourceAddressUpdateUnsupported(d) {
		col.WithSourceAddress(source)
	}
	return col
}

// ResetSFlowPollingInterval adds the removal of the global polling-interval to
// batch.  Devices that keep the configured value when the leaf is deleted get
// def written instead.
func ResetSFlowPollingInterval(batch *gnmi.SetBatch, def uint16, d *ondatra.DUTDevice) {
	q := gnmi.OC().Sampling().Sflow().PollingInterval().Config()
	if deviations.SflowPollingIntervalDeleteUnsupported(d) {
		gnmi.BatchReplace(batch, q, def)
		return
	}
	gnmi.BatchDelete(batch, q)
}

// SFlowState converts the sFlow state of d.  ports maps the agent-id-ipv4
// back to the interface it was taken from, and def is reported when the
// device omits the polling-interval.
func SFlowState(s *oc.Sampling_Sflow, ports map[string]string, def uint16, d *ondatra.DUTDevice) *polling.SflowState {
	st := &polling.SflowState{
		Enabled:         s.GetEnabled(),
		SamplingRate:    s.GetIngressSamplingRate(),
		PollingInterval: def,
		AgentInterface:  ports[s.GetAgentIdIpv4()],
	}
	if s.PollingInterval != nil {
		st.PollingInterval = s.GetPollingInterval()
	}
	for _, c := range s.Collector {
		vrf := c.GetNetworkInstance()
		if vrf == deviations.DefaultNetworkInstance(d) {
			vrf = DefaultNetworkInstance
		}
		st.Collectors = append(st.Collectors, polling.Collector{
			Address: c.GetAddress(),
			Port:    c.GetPort(),
			VRF:     vrf,
		})
	}
	slices.SortFunc(st.Collectors, func(a, b polling.Collector) int {
		return cmp.Or(cmp.Compare(a.Address, b.Address), cmp.Compare(a.Port, b.Port))
	})
	return st
}
