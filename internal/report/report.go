// Package report assembles a Report from a resolved package: totals,
// system-dependency conflicts, and the full per-object dependency graph,
// plus its JSON and console renderings.
package report

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/majewsky/package-validator/internal/elf"
	"github.com/majewsky/package-validator/internal/pkgmodel"
	"github.com/majewsky/package-validator/internal/resolve"
)

// Report is the complete validation result for one package.
type Report struct {
	Package      string
	Totals       Totals
	Conflicts    []resolve.DependencyConflict
	Dependencies map[string]resolve.ObjectResult
	Files        map[string]elf.Record
}

// Build resolves every ELF object in pkg against systemDeps and assembles the
// full report. ctx governs the dependency resolution fan-out.
func Build(ctx context.Context, pkg *pkgmodel.Package, systemDeps *resolve.SystemDependencies) (*Report, error) {
	symlinks := resolve.NewSymlinkResolver(pkg)
	resolver := resolve.NewResolver(pkg, symlinks, systemDeps)

	dependencies, err := resolver.Resolve(ctx)
	if err != nil {
		return nil, fmt.Errorf("resolving dependencies: %w", err)
	}

	return &Report{
		Package:      canonicalPackagePath(pkg.Path),
		Totals:       CalculateTotals(pkg, dependencies),
		Conflicts:    resolve.ScanForConflicts(pkg, symlinks, systemDeps),
		Dependencies: dependencies,
		Files:        pkg.Elfs(),
	}, nil
}

// canonicalPackagePath resolves symlinks and relative components in path for
// a stable, absolute report identifier. If symlink resolution fails (e.g. the
// package file was since removed) it returns the absolute form of path; only
// if path cannot be made absolute does it return path unchanged.
func canonicalPackagePath(path string) string {
	abs, err := filepath.Abs(path)
	if err != nil {
		return path
	}
	resolved, err := filepath.EvalSymlinks(abs)
	if err != nil {
		return abs
	}
	return resolved
}
