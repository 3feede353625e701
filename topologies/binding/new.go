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

// Package binding selects the Ondatra binding of a test run from the
// command line flags.
package binding

import (
	"errors"
	"flag"
	"fmt"
	"plugin"

	"github.com/golang/glog"
	"github.com/openconfig/ondatra/binding"
	"github.com/openconfig/ondatra/knebind"
	knecreds "github.com/openconfig/ondatra/knebind/creds"
)

var (
	pluginFile   = flag.String("plugin", "", "vendor binding as a Go plugin")
	pluginArgs   = flag.String("plugin-args", "", "arguments for the vendor binding")
	kneConfig    = flag.String("kne-config", "", "YAML configuration file")
	kneTopo      = flag.String("kne-topo", "", "KNE topology file")
	kneSkipReset = flag.Bool("kne-skip-reset", false, "skip the initial config reset phase when using KNE")
	credFlags    = knecreds.DefineFlags()
)

// New creates a new binding that could be either a vendor plugin or a KNE
// topology, depending on the command line flags given.
//
// The vendor plugin should be a "package main" with a New function
// that will receive the value of the --plugin-args flag as a string.
//
//	package main
//
//	import "github.com/openconfig/ondatra/binding"
//
//	func New(arg string) (binding.Binding, error) {
//	  ...
//	}
//
// And the plugin should be built with:
//
//	go build -buildmode=plugin
func New() (binding.Binding, error) {
	if *pluginFile != "" {
		return loadBinding(*pluginFile, *pluginArgs)
	}
	if *kneTopo != "" {
		cred, err := credFlags.Parse()
		if err != nil {
			return nil, err
		}
		glog.Infof("Using KNE topology %s", *kneTopo)
		return knebind.New(&knebind.Config{
			Topology:    *kneTopo,
			Credentials: cred,
			SkipReset:   *kneSkipReset,
		})
	}
	if *kneConfig != "" {
		glog.Warning("-kne-config flag is deprecated; use -kne-topo and credentials flags instead")
		cfg, err := knebind.ParseConfigFile(*kneConfig)
		if err != nil {
			return nil, err
		}
		return knebind.New(cfg)
	}
	return nil, errors.New("one of -plugin or -kne-topo must be provided")
}

// NewFunc describes the type of the New function that a vendor
// binding plugin should provide.
type NewFunc func(arg string) (binding.Binding, error)

// loadBinding loads a binding from a plugin.
func loadBinding(path, args string) (binding.Binding, error) {
	p, err := plugin.Open(path)
	if err != nil {
		return nil, err
	}
	newVal, err := p.Lookup("New")
	if err != nil {
		return nil, err
	}
	newFn, ok := newVal.(func(string) (binding.Binding, error))
	if !ok {
		return nil, fmt.Errorf("func New() has the wrong type %T from plugin: %s", newVal, path)
	}
	return NewFunc(newFn)(args)
}
