// Package config loads the optional ambient defaults file that supplies
// fallback values for flags the operator didn't pass explicitly. None of its
// fields are load-bearing for correctness, and a missing or absent config
// file is not an error. Only system-dependencies has a command-line
// equivalent (--system-dependencies); jobs and no-color are decoded but no
// flag or other code reads them.
package config

import (
	"errors"
	"fmt"
	"os"

	"github.com/BurntSushi/toml"
)

// Defaults holds fallback flag values, read from a TOML file such as:
//
//	system-dependencies = "/etc/package-validator/system-deps.txt"
//	jobs = 8
//	no-color = true
type Defaults struct {
	SystemDependencies string `toml:"system-dependencies"`
	Jobs               int    `toml:"jobs"`
	NoColor            bool   `toml:"no-color"`
}

// Load reads path into a Defaults. A missing file is not an error: it
// returns a zero-value Defaults, since every field is optional.
func Load(path string) (Defaults, error) {
	var d Defaults
	_, err := toml.DecodeFile(path, &d)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return Defaults{}, nil
		}
		return Defaults{}, fmt.Errorf("reading config file %s: %w", path, err)
	}
	return d, nil
}
