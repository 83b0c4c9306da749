package resolve

import (
	"path"

	"github.com/majewsky/package-validator/internal/pkgmodel"
)

// DependencyConflict flags a declared system dependency whose basename also
// ships inside the package — almost always a packaging mistake, since the
// operator asserted the system already provides it.
type DependencyConflict struct {
	Dependency string
	Paths      []string
}

// ScanForConflicts reports every system dependency basename that collides
// with a file actually shipped in the package. A symlink whose target lies
// outside the package (and is therefore presumed to be the very system
// dependency being declared) is exempt: every other matching file counts as a
// conflict, including ELF objects, symlinks that resolve back inside the
// package, and symlinks caught in a cycle.
func ScanForConflicts(pkg *pkgmodel.Package, symlinks *SymlinkResolver, systemDeps *SystemDependencies) []DependencyConflict {
	byName := make(map[string][]string)

	for filePath := range pkg.Files {
		name := path.Base(filePath)
		if !systemDeps.Contains(name) {
			continue
		}
		if resolution, isSymlink := symlinks.Resolve(filePath); isSymlink && resolution.Status == SymlinkNotFound {
			continue
		}
		byName[name] = append(byName[name], filePath)
	}

	conflicts := make([]DependencyConflict, 0, len(byName))
	for name, paths := range byName {
		conflicts = append(conflicts, DependencyConflict{Dependency: name, Paths: paths})
	}
	return conflicts
}
