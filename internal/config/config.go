// Package config loads the named pattern library the CLI's --lib/--name
// flags select from: read a YAML file into a typed struct, unmarshal,
// return a wrapped error on failure — generalized here from a single
// settings struct to a name -> pattern-string map.
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/driftwood-labs/semtrex/id"
	"github.com/driftwood-labs/semtrex/semtrex/parser"
)

// Library is a named collection of semtrex pattern strings, as loaded
// from a YAML file shaped like:
//
//	patterns:
//	  TASK_PREFIX: "/TASK/(TITLE,STATUS,.*)"
//	  HOME_COORDS: "/HomeLocation/(<lat:lat>,<lon:lon>)"
type Library struct {
	Patterns map[string]string `yaml:"patterns"`
}

// UnknownPatternError reports a --name lookup with no matching entry.
type UnknownPatternError struct {
	Name string
}

func (e UnknownPatternError) Error() string {
	return fmt.Sprintf("no pattern named %q in library", e.Name)
}

// InvalidPatternError reports a library entry that fails to compile.
type InvalidPatternError struct {
	Name string
	Err  error
}

func (e InvalidPatternError) Error() string {
	return fmt.Sprintf("pattern %q: %v", e.Name, e.Err)
}

func (e InvalidPatternError) Unwrap() error { return e.Err }

// LoadFromFile reads and parses a pattern library from a YAML file.
func LoadFromFile(path string) (*Library, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read pattern library: %w", err)
	}
	lib := &Library{}
	if err := yaml.Unmarshal(data, lib); err != nil {
		return nil, fmt.Errorf("failed to parse pattern library: %w", err)
	}
	return lib, nil
}

// Lookup resolves a pattern by its library name.
func (l *Library) Lookup(name string) (string, bool) {
	p, ok := l.Patterns[name]
	return p, ok
}

// Validate compiles every pattern in the library against reg, so a
// malformed entry is caught at load time rather than at match time.
func (l *Library) Validate(reg parser.Resolver, b id.Builtins) error {
	for name, pattern := range l.Patterns {
		if _, err := parser.Parse(pattern, reg, b); err != nil {
			return InvalidPatternError{Name: name, Err: err}
		}
	}
	return nil
}
