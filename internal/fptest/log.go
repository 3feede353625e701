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

package fptest

import (
	"testing"

	"github.com/openconfig/ygot/ygot"
)

// EncodeJSON returns the RFC7951 JSON of an OC value, as sent over gNMI.
func EncodeJSON(s ygot.ValidatedGoStruct) (string, error) {
	return ygot.EmitJSON(s, &ygot.EmitJSONConfig{
		Format: ygot.RFC7951,
		Indent: "  ",
		RFC7951Config: &ygot.RFC7951JSONConfig{
			AppendModuleName: true,
		},
	})
}

// LogQuery logs the JSON of an OC value under desc.
func LogQuery(t testing.TB, desc string, s ygot.ValidatedGoStruct) {
	t.Helper()
	j, err := EncodeJSON(s)
	if err != nil {
		t.Errorf("%s: could not encode %T: %v", desc, s, err)
		return
	}
	t.Logf("%s:\n%s", desc, j)
}
