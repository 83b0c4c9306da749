// Command package-validator checks that every ELF object inside a DEB or RPM
// package can have its dynamic dependencies resolved, either against other
// files in the same package or against an operator-supplied list of
// dependencies the target system is expected to provide.
package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/sirupsen/logrus"

	"github.com/majewsky/package-validator/internal/config"
	"github.com/majewsky/package-validator/internal/pkgmodel"
	"github.com/majewsky/package-validator/internal/report"
	"github.com/majewsky/package-validator/internal/resolve"
)

func main() {
	os.Exit(run(os.Args[1:]))
}

// run isolates the entrypoint's logic from os.Args/os.Exit so it can be
// exercised without a real process boundary.
func run(args []string) int {
	log := logrus.StandardLogger()

	opts, err := parseArgs(args)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		printUsage(os.Stderr)
		return 1
	}

	systemDeps, err := resolveSystemDependencies(opts)
	if err != nil {
		log.WithError(err).Error("loading system dependencies")
		return 1
	}

	ctx := context.Background()

	pkg, err := pkgmodel.Load(ctx, opts.PackageFile)
	if err != nil {
		log.WithFields(logrus.Fields{"package": opts.PackageFile}).WithError(err).Error("extracting package")
		return 1
	}

	rep, err := report.Build(ctx, pkg, systemDeps)
	if err != nil {
		log.WithFields(logrus.Fields{"package": opts.PackageFile}).WithError(err).Error("building report")
		return 1
	}

	if err := writeReport(rep, opts.ReportFile); err != nil {
		log.WithFields(logrus.Fields{"file": opts.ReportFile}).WithError(err).Error("writing report")
		return 1
	}

	if err := report.Summarize(os.Stdout, rep); err != nil {
		log.WithError(err).Error("writing summary")
		return 1
	}

	err = report.Validate(rep)
	if err == nil {
		return 0
	}

	var validationErr *report.ValidationError
	if errors.As(err, &validationErr) {
		for _, depErr := range validationErr.Errors {
			log.WithFields(logrus.Fields{
				"package":    opts.PackageFile,
				"file":       depErr.ObjectPath,
				"dependency": depErr.Dependency,
			}).Error(depErr.Message)
		}
		log.WithFields(logrus.Fields{"package": opts.PackageFile}).Error(validationErr.Error())
		return 1
	}

	log.WithError(err).Error("validating report")
	return 1
}

// resolveSystemDependencies loads the --system-dependencies file, falling
// back to the config file's default when the flag wasn't passed explicitly.
// Neither source is mandatory: an empty set is a valid (if unusual) input.
func resolveSystemDependencies(opts *Options) (*resolve.SystemDependencies, error) {
	path := opts.SystemDependenciesFile

	if !opts.systemDepsChanged {
		configPath := opts.ConfigFile
		if configPath == "" {
			configPath = filepath.Join(filepath.Dir(opts.PackageFile), ".package-validator.toml")
		}
		defaults, err := config.Load(configPath)
		if err != nil {
			return nil, err
		}
		if defaults.SystemDependencies != "" {
			path = defaults.SystemDependencies
		}
	}

	if path == "" {
		return resolve.EmptySystemDependencies(), nil
	}
	return resolve.LoadSystemDependencies(path)
}

func writeReport(rep *report.Report, path string) error {
	data, err := json.MarshalIndent(rep, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding report: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing report file %s: %w", path, err)
	}
	return nil
}
