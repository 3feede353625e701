// Copyright 2022 Google LLC
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

// Package deviations defines the flags for known deviations of a DUT
// from the OpenConfig models the sFlow tests rely on.
//
// Each deviation is read through an accessor taking the DUT, so that tests
// read as deviations.InterfaceEnabled(dut) and a deviation can later be
// looked up per device.
package deviations

import (
	"flag"

	"github.com/openconfig/ondatra"
)

var (
	interfaceEnabled = flag.Bool("deviation_interface_enabled", true,
		"Device requires interface enabled leaf booleans to be explicitly set to true")

	ipv4MissingEnabled = flag.Bool("deviation_ipv4_missing_enabled", false,
		"Device does not support interface/ipv4/enabled, so suppress configuring this leaf")

	explicitInterfaceInDefaultVRF = flag.Bool("deviation_explicit_interface_in_default_vrf", false,
		"Device requires explicit attachment of an interface or subinterface to the default network instance")

	defaultNetworkInstance = flag.String("deviation_default_network_instance", "DEFAULT",
		"Name of the default network instance on the device")

	sflowSourceAddressUpdateUnsupported = flag.Bool("deviation_sflow_source_address_update_unsupported", false,
		"Device does not support the sFlow collector source-address leaf")

	sflowPollingIntervalDeleteUnsupported = flag.Bool("deviation_sflow_polling_interval_delete_unsupported", false,
		"Device does not restore the default polling-interval when the leaf is deleted, so the default is written instead")
)

// InterfaceEnabled returns true if the enabled leaves of interfaces and
// subinterfaces must be set explicitly.
func InterfaceEnabled(*ondatra.DUTDevice) bool {
	return *interfaceEnabled
}

// IPv4MissingEnabled returns true if interface/ipv4/enabled must not be set.
func IPv4MissingEnabled(*ondatra.DUTDevice) bool {
	return *ipv4MissingEnabled
}

// ExplicitInterfaceInDefaultVRF returns true if interfaces must be attached
// to the default network instance explicitly.
func ExplicitInterfaceInDefaultVRF(*ondatra.DUTDevice) bool {
	return *explicitInterfaceInDefaultVRF
}

// DefaultNetworkInstance returns the name of the default network instance.
func DefaultNetworkInstance(*ondatra.DUTDevice) string {
	return *defaultNetworkInstance
}

// SflowSourceAddressUpdateUnsupported returns true if the sFlow collector
// source-address cannot be configured.
func SflowSourceAddressUpdateUnsupported(*ondatra.DUTDevice) bool {
	return *sflowSourceAddressUpdateUnsupported
}

// SflowPollingIntervalDeleteUnsupported returns true if deleting the
// polling-interval leaf does not restore the default.
func SflowPollingIntervalDeleteUnsupported(*ondatra.DUTDevice) bool {
	return *sflowPollingIntervalDeleteUnsupported
}
