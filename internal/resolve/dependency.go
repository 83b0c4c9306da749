package resolve

import (
	"context"
	"fmt"
	"path"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/majewsky/package-validator/internal/elf"
	"github.com/majewsky/package-validator/internal/pkgmodel"
)

// DependencyStatus is the outcome of trying to resolve one DT_NEEDED entry.
type DependencyStatus int

const (
	// StatusMissing means no search path or system dependency declaration
	// accounted for the entry.
	StatusMissing DependencyStatus = iota
	// StatusFound means the entry resolved to a package file or a declared
	// system dependency.
	StatusFound
	// StatusError means resolution hit a condition (symlink cycle, a
	// dependency resolving to a non-ELF package file) that needs the
	// operator's attention rather than a simple found/missing verdict.
	StatusError
)

// DependencyKind classifies where a Found (or Error) resolution landed.
type DependencyKind int

const (
	KindUnknown DependencyKind = iota
	KindSystem
	KindPackage
)

// DependencyResult is the resolution outcome for one ELF object's one
// DT_NEEDED entry.
type DependencyResult struct {
	Status        DependencyStatus
	Kind          DependencyKind
	Message       string   // set when Status == StatusError
	Path          string   // the package path or system path the dependency resolved to; empty when Missing
	SearchedPaths []string // the normalized RPATH/RUNPATH directories, in order; set on every search-path result, including those with Path set
}

// ObjectResult maps each DT_NEEDED name of one ELF object to its resolution.
type ObjectResult map[string]DependencyResult

// Resolver resolves every DT_NEEDED entry of every ELF object in a package.
type Resolver struct {
	pkg        *pkgmodel.Package
	symlinks   *SymlinkResolver
	systemDeps *SystemDependencies
}

// NewResolver builds a Resolver over an already-extracted package.
func NewResolver(pkg *pkgmodel.Package, symlinks *SymlinkResolver, systemDeps *SystemDependencies) *Resolver {
	return &Resolver{pkg: pkg, symlinks: symlinks, systemDeps: systemDeps}
}

// Resolve resolves every ELF object in the package concurrently, one
// goroutine per object, and within each object fans out further across its
// DT_NEEDED entries. ctx cancellation is honored between objects; resolution
// itself never blocks on I/O, so it exists for symmetry with the rest of the
// pipeline and for future extension rather than any real cancellation need
// today.
func (r *Resolver) Resolve(ctx context.Context) (map[string]ObjectResult, error) {
	objects := r.pkg.Elfs()
	results := make(map[string]ObjectResult, len(objects))
	var mu sync.Mutex

	g, ctx := errgroup.WithContext(ctx)
	for objPath, record := range objects {
		objPath, record := objPath, record
		g.Go(func() error {
			result := r.resolveObject(objPath, record)
			mu.Lock()
			results[objPath] = result
			mu.Unlock()
			return ctx.Err()
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

func (r *Resolver) resolveObject(objPath string, record elf.Record) ObjectResult {
	result := make(ObjectResult, len(record.Needed))
	var mu sync.Mutex
	var wg sync.WaitGroup
	for _, dep := range record.Needed {
		dep := dep
		wg.Add(1)
		go func() {
			defer wg.Done()
			resolved := r.resolveDependency(objPath, record, dep)
			mu.Lock()
			result[dep] = resolved
			mu.Unlock()
		}()
	}
	wg.Wait()
	return result
}

func (r *Resolver) resolveDependency(objPath string, record elf.Record, dependency string) DependencyResult {
	if r.systemDeps.Contains(dependency) {
		// A package may legitimately link against something the operator
		// has declared a system dependency; internal/resolve's Error
		// Scanner flags the separate, suspicious case of that same name
		// also shipping inside the package.
		return DependencyResult{Status: StatusFound, Kind: KindSystem}
	}

	searchPaths := elf.NormalizeSearchPaths(record.RPath, record.RunPath, path.Dir(objPath))

	// Search paths are walked in declared order and sequentially: the first
	// hit wins, so parallelizing here would only add synchronization cost
	// for no benefit given how few search paths a binary typically carries.
	for _, searchPath := range searchPaths {
		candidate := path.Join(searchPath, dependency)
		status, kind, resolvedPath, message := r.findDependency(candidate)
		switch status {
		case StatusMissing:
			continue
		default:
			return DependencyResult{Status: status, Kind: kind, Path: resolvedPath, Message: message, SearchedPaths: searchPaths}
		}
	}
	return DependencyResult{Status: StatusMissing, Kind: KindUnknown, SearchedPaths: searchPaths}
}

// findDependency assumes candidate may or may not exist in the package; it
// is the caller's job to only invoke this once per search-path entry.
func (r *Resolver) findDependency(candidate string) (DependencyStatus, DependencyKind, string, string) {
	if resolution, isSymlink := r.symlinks.Resolve(candidate); isSymlink {
		switch resolution.Status {
		case SymlinkNotFound:
			return r.resolveSystemDependency(resolution.Target)
		case SymlinkFound:
			return r.resolvePackageDependency(resolution.Target)
		default: // SymlinkCycle
			return StatusError, KindUnknown, "", fmt.Sprintf("Symlink cycle detected: %s", candidate)
		}
	}
	return r.resolvePackageDependency(candidate)
}

func (r *Resolver) resolvePackageDependency(candidate string) (DependencyStatus, DependencyKind, string, string) {
	if _, ok := r.pkg.Elfs()[candidate]; ok {
		return StatusFound, KindPackage, candidate, ""
	}
	if _, ok := r.pkg.Files[candidate]; ok {
		return StatusError, KindPackage, candidate, fmt.Sprintf("Found in package, but not an ELF file: %s", candidate)
	}
	return StatusMissing, KindUnknown, "", ""
}

func (r *Resolver) resolveSystemDependency(candidate string) (DependencyStatus, DependencyKind, string, string) {
	name := path.Base(candidate)
	if r.systemDeps.Contains(name) {
		return StatusFound, KindSystem, candidate, ""
	}
	return StatusMissing, KindUnknown, candidate, ""
}
