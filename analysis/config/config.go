// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
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

package config

import (
	"fmt"
	"os"
	"path"
	"regexp"
	"strings"

	"github.com/yosr-maker/swift/internal/funcutil"
	"gopkg.in/yaml.v3"
)

var (
	// The global config file
	configFile string
)

// SetGlobalConfig sets the global config filename
func SetGlobalConfig(filename string) {
	configFile = filename
}

// LoadGlobal loads the config file that has been set by SetGlobalConfig
func LoadGlobal() (*Config, error) {
	return Load(configFile)
}

// Config contains the options of the analysis, and the user-provided knowledge about functions.
// If some field is not defined in the config file, it will be empty/zero in the struct.
// private fields are not populated from a yaml file, but computed after initialization
type Config struct {
	Options `yaml:"options"`

	sourceFile string

	// if the PkgFilter is specified
	pkgFilterRegex *regexp.Regexp

	// BenignFunctions lists functions whose calls never access memory visible to their callers. Calls to those
	// functions are ignored by the analysis.
	BenignFunctions []CodeIdentifier `yaml:"benign-functions"`

	// Effects lists side effect summaries for functions whose body is not available or not analyzed.
	Effects []EffectsSpec `yaml:"effects"`
}

// EffectsSpec summarizes the memory effects of a function. Parameter indices include the receiver for methods.
type EffectsSpec struct {
	// Function is the full name of the function, e.g. "sync/atomic.AddInt32" or "(*sync.Mutex).Lock"
	Function string `yaml:"function"`

	// GlobalRead is set when the function may read memory that is not reachable from its parameters
	GlobalRead bool `yaml:"global-read"`

	// GlobalWrite is set when the function may write memory that is not reachable from its parameters
	GlobalWrite bool `yaml:"global-write"`

	// ParamReads is the list of parameters through which the function may read
	ParamReads []int `yaml:"param-reads"`

	// ParamWrites is the list of parameters through which the function may write
	ParamWrites []int `yaml:"param-writes"`
}

// Options are the general settings of the analysis
type Options struct {
	// PkgFilter is a filter for the analysis to build summaries only for the functions whose package match the
	// filter. The other functions are summarized from their side effects.
	PkgFilter string `yaml:"pkg-filter"`

	// Callgraph is the algorithm used to build the call graph: static, cha, rta or vta
	Callgraph string `yaml:"callgraph"`

	// MaxStorageAccesses is the number of distinct storages a function summary can hold before it is replaced by the
	// worst-case summary.
	MaxStorageAccesses int `yaml:"max-storage-accesses"`

	// ReportUnidentified can be set to true to report the functions whose summary contains unidentified accesses
	ReportUnidentified bool `yaml:"report-unidentified"`

	// Loglevel controls the verbosity of the tool
	LogLevel int `yaml:"log-level"`

	// Suppress warnings
	SilenceWarn bool `yaml:"silence-warn"`
}

// NewDefault returns an empty default config.
func NewDefault() *Config {
	return &Config{
		sourceFile:      "",
		BenignFunctions: nil,
		Effects:         nil,
		Options: Options{
			PkgFilter:          "",
			Callgraph:          DefaultCallgraph,
			MaxStorageAccesses: DefaultMaxStorageAccesses,
			ReportUnidentified: false,
			LogLevel:           int(InfoLevel),
			SilenceWarn:        false,
		},
	}
}

// Load reads a configuration from a file
func Load(filename string) (*Config, error) {
	b, err := os.ReadFile(filename)
	if err != nil {
		return nil, fmt.Errorf("could not read config file: %w", err)
	}
	return Parse(filename, b)
}

// Parse reads a configuration from the contents b of the config file filename
func Parse(filename string, b []byte) (*Config, error) {
	cfg := NewDefault()
	if err := yaml.Unmarshal(b, cfg); err != nil {
		return nil, fmt.Errorf("could not unmarshal config file %s: %w", filename, err)
	}

	cfg.sourceFile = filename

	// If logLevel has not been specified (i.e. it is 0) set the default to Info
	if cfg.LogLevel == 0 {
		cfg.LogLevel = int(InfoLevel)
	}

	if cfg.MaxStorageAccesses <= 0 {
		cfg.MaxStorageAccesses = DefaultMaxStorageAccesses
	}

	if cfg.Callgraph == "" {
		cfg.Callgraph = DefaultCallgraph
	}

	if cfg.PkgFilter != "" {
		r, err := regexp.Compile(cfg.PkgFilter)
		if err == nil {
			cfg.pkgFilterRegex = r
		}
	}

	for i, spec := range cfg.Effects {
		if spec.Function == "" {
			return nil, fmt.Errorf("effects entry %d in %s has no function name", i, filename)
		}
	}

	funcutil.MapInPlace(cfg.BenignFunctions, CompileRegexes)

	return cfg, nil
}

// RelPath returns filename path relative to the config source file
func (c Config) RelPath(filename string) string {
	return path.Join(path.Dir(c.sourceFile), filename)
}

// MatchPkgFilter returns true if the package name pkgname matches the package filter set in the config file. If no
// package filter has been set in the config file, the regex will match anything and return true. This function safely
// considers the case where a filter has been specified by the user, but it could not be compiled to a regex. The safe
// case is to check whether the package filter string is a prefix of the pkgname
func (c Config) MatchPkgFilter(pkgname string) bool {
	if c.pkgFilterRegex != nil {
		return c.pkgFilterRegex.MatchString(pkgname)
	} else if c.PkgFilter != "" {
		return strings.HasPrefix(pkgname, c.PkgFilter)
	} else {
		return true
	}
}

// IsBenignFunction returns true if the code identifier matches one of the benign functions of the config
func (c Config) IsBenignFunction(cid CodeIdentifier) bool {
	return ExistsCid(c.BenignFunctions, cid.equalOnNonEmptyFields)
}

// Verbose returns true is the configuration verbosity setting is larger than Info (i.e. Debug or Trace)
func (c Config) Verbose() bool {
	return c.LogLevel >= int(DebugLevel)
}
