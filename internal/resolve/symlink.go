// Package resolve implements the symlink, system-dependency, and
// DT_NEEDED resolution engine that decides whether each ELF object's
// dependencies can actually be satisfied.
package resolve

import "github.com/majewsky/package-validator/internal/pkgmodel"

// SymlinkStatus classifies where a package symlink's target ultimately lands.
type SymlinkStatus int

const (
	// SymlinkNotFound means the target is not a file in the package; it is
	// presumed to be a system dependency.
	SymlinkNotFound SymlinkStatus = iota
	// SymlinkFound means the chain terminates at a non-symlink file inside
	// the package.
	SymlinkFound
	// SymlinkCycle means following the chain revisited a path already seen.
	SymlinkCycle
)

// SymlinkResolution is the resolved outcome for one package symlink.
type SymlinkResolution struct {
	Status SymlinkStatus
	Target string // final in-package path (SymlinkFound) or the last unresolved target (SymlinkNotFound)
}

// SymlinkResolver pre-resolves every symlink in a package to its ultimate
// target, detecting cycles once up front so dependency resolution never has
// to walk a chain itself.
type SymlinkResolver struct {
	results map[string]SymlinkResolution
}

// NewSymlinkResolver resolves every symlink in pkg.
func NewSymlinkResolver(pkg *pkgmodel.Package) *SymlinkResolver {
	symlinks := pkg.Symlinks()
	results := make(map[string]SymlinkResolution, len(symlinks))
	for path, target := range symlinks {
		visited := make(map[string]struct{})
		results[path] = resolveSingle(path, target, pkg.Files, symlinks, visited)
	}
	return &SymlinkResolver{results: results}
}

// Resolve returns the pre-computed resolution for path, and false if path is
// not a symlink in the package.
func (r *SymlinkResolver) Resolve(path string) (SymlinkResolution, bool) {
	res, ok := r.results[path]
	return res, ok
}

func resolveSingle(current, target string, files map[string]pkgmodel.Entry, symlinks map[string]string, visited map[string]struct{}) SymlinkResolution {
	if _, seen := visited[current]; seen {
		return SymlinkResolution{Status: SymlinkCycle}
	}
	visited[current] = struct{}{}

	if _, exists := files[target]; !exists {
		return SymlinkResolution{Status: SymlinkNotFound, Target: target}
	}
	if next, isSymlink := symlinks[target]; isSymlink {
		return resolveSingle(target, next, files, symlinks, visited)
	}
	return SymlinkResolution{Status: SymlinkFound, Target: target}
}
