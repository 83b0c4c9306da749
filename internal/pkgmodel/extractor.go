// Package pkgmodel extracts a DEB or RPM package into a temporary directory
// and classifies every regular file, symlink, and ELF object it contains.
package pkgmodel

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"

	"github.com/majewsky/package-validator/internal/elf"
)

// DefaultExtractionTimeout bounds how long the extraction subprocess(es) may
// run before being killed.
const DefaultExtractionTimeout = 30 * time.Second

var (
	// ErrUnsupportedPackageType is wrapped with the offending extension.
	ErrUnsupportedPackageType = errors.New("unsupported package type")
	// ErrCommandNotFound is wrapped with the missing extraction tool's name.
	ErrCommandNotFound = errors.New("command not found")
	// ErrExtractionTimeout is returned when the extraction subprocess does
	// not finish within DefaultExtractionTimeout.
	ErrExtractionTimeout = errors.New("extraction timed out")
	// ErrExtractionFailed is wrapped with the subprocess's failure reason.
	ErrExtractionFailed = errors.New("package extraction failed")
	// ErrNoFilesExtracted is returned when extraction succeeds but leaves
	// an empty directory; an empty package is always a bug, not a fact.
	ErrNoFilesExtracted = errors.New("extraction completed but no files were found")
)

// extractor drives one archive format's extraction subprocess(es).
type extractor interface {
	extract(ctx context.Context, pkgPath, destDir string) error
}

var extractorsByExtension = map[string]extractor{
	"deb": debExtractor{},
	"rpm": rpmExtractor{},
}

// Load extracts pkgPath into a temporary directory, walks it, and returns the
// classified file set. The temporary directory is always removed before
// Load returns, whether or not extraction succeeded.
func Load(ctx context.Context, pkgPath string) (*Package, error) {
	ext := strings.TrimPrefix(filepath.Ext(pkgPath), ".")
	ex, ok := extractorsByExtension[ext]
	if !ok {
		if ext == "" {
			ext = "unknown"
		}
		return nil, fmt.Errorf("%s: %w: %q", pkgPath, ErrUnsupportedPackageType, ext)
	}

	destDir, err := os.MkdirTemp("", "package-validator-*")
	if err != nil {
		return nil, fmt.Errorf("creating extraction directory for %s: %w", pkgPath, err)
	}
	defer os.RemoveAll(destDir)

	ctx, cancel := context.WithTimeout(ctx, DefaultExtractionTimeout)
	defer cancel()

	if err := ex.extract(ctx, pkgPath, destDir); err != nil {
		return nil, err
	}

	files, err := walkExtracted(destDir, pkgPath)
	if err != nil {
		return nil, err
	}
	return &Package{Path: pkgPath, Files: files}, nil
}

// walkExtracted classifies every regular file and symlink under destDir,
// keyed by its absolute path within the package (destDir stripped off and
// replaced with "/").
func walkExtracted(destDir, pkgPath string) (map[string]Entry, error) {
	files := make(map[string]Entry)

	err := filepath.WalkDir(destDir, func(fullPath string, d fs.DirEntry, err error) error {
		if err != nil {
			return fmt.Errorf("walking %s: %w", destDir, err)
		}
		if d.IsDir() {
			return nil
		}
		if d.Type()&fs.ModeSymlink == 0 && !d.Type().IsRegular() {
			return nil
		}

		rel, err := filepath.Rel(destDir, fullPath)
		if err != nil {
			return fmt.Errorf("walking %s: %w", destDir, err)
		}
		packagePath := path.Join("/", filepath.ToSlash(rel))

		entry, err := classify(fullPath, packagePath)
		if err != nil {
			return fmt.Errorf("%s: %w", packagePath, err)
		}
		files[packagePath] = entry
		return nil
	})
	if err != nil {
		return nil, err
	}

	if len(files) == 0 {
		return nil, fmt.Errorf("%s: %w", pkgPath, ErrNoFilesExtracted)
	}
	return files, nil
}

// classify determines whether the file at fullPath (whose path within the
// package is packagePath) is a symlink, an ELF object, or an ordinary file.
func classify(fullPath, packagePath string) (Entry, error) {
	info, err := os.Lstat(fullPath)
	if err != nil {
		return Entry{}, fmt.Errorf("reading symlink: %w", err)
	}

	if info.Mode()&os.ModeSymlink != 0 {
		target, err := os.Readlink(fullPath)
		if err != nil {
			return Entry{}, fmt.Errorf("reading symlink: %w", err)
		}
		resolved := target
		if !path.IsAbs(filepath.ToSlash(target)) {
			resolved = path.Join(path.Dir(packagePath), filepath.ToSlash(target))
		}
		return Entry{Class: ClassSymlink, SymlinkTarget: path.Clean(resolved)}, nil
	}

	if elf.HasInvalidExtension(packagePath) {
		return Entry{Class: ClassRegular}, nil
	}

	record, err := elf.Read(fullPath)
	switch {
	case err == nil:
		return Entry{Class: ClassElf, Elf: record}, nil
	case errors.Is(err, elf.ErrNotElfFile), errors.Is(err, elf.ErrFileTooSmall):
		return Entry{Class: ClassRegular}, nil
	default:
		return Entry{}, err
	}
}
