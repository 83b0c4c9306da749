package main

import (
	"fmt"
	"io"
	"strings"

	flag "github.com/spf13/pflag"
)

// Options holds the parsed command-line flags and positional arguments as
// given. Config-file defaults are not folded in here; resolveSystemDependencies
// applies them when --system-dependencies was not passed explicitly.
type Options struct {
	PackageFile            string
	ReportFile             string
	SystemDependenciesFile string
	ConfigFile             string

	// systemDepsChanged records whether --system-dependencies was passed
	// explicitly, so main can tell "use the flag" from "fall back to config".
	systemDepsChanged bool
}

// parseArgs parses args (typically os.Args[1:]) into an Options. It does not
// apply config-file defaults; that happens in main once the config file
// itself has been located and loaded.
func parseArgs(args []string) (*Options, error) {
	flags := flag.NewFlagSet("package-validator", flag.ContinueOnError)
	flags.SetOutput(&strings.Builder{})
	flags.Usage = func() {}

	flagSystemDeps := flags.String("system-dependencies", "", "file listing dependency basenames satisfied by the system (one per line)")
	flagConfig := flags.String("config", "", "path to an optional TOML defaults file (default: .package-validator.toml next to the package file)")

	err := flags.Parse(args)
	if err != nil {
		return nil, fmt.Errorf("parsing arguments: %w", err)
	}

	positional := flags.Args()
	if len(positional) < 2 {
		return nil, fmt.Errorf("expected 2 positional arguments (package-file, report-file), got %d", len(positional))
	}
	if len(positional) > 2 {
		return nil, fmt.Errorf("unexpected extra arguments: %s", strings.Join(positional[2:], " "))
	}

	return &Options{
		PackageFile:            positional[0],
		ReportFile:             positional[1],
		SystemDependenciesFile: *flagSystemDeps,
		ConfigFile:             *flagConfig,
		systemDepsChanged:      flags.Changed("system-dependencies"),
	}, nil
}

func printUsage(w io.Writer) {
	fmt.Fprintln(w, "Usage: package-validator [--system-dependencies file] [--config file] <package-file> <report-file>")
}
