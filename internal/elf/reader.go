// Package elf parses ELF objects found inside an extracted package tree,
// extracting the data the dependency resolver needs: object kind, the
// DT_NEEDED list, and the raw RPATH/RUNPATH search-path strings.
package elf

import (
	"debug/elf"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// Kind mirrors the ELF header's object-type field.
type Kind int

const (
	KindNone Kind = iota
	KindRelocatable
	KindExecutable
	KindSharedObject
	KindCore
)

func (k Kind) String() string {
	switch k {
	case KindNone:
		return "None"
	case KindRelocatable:
		return "Relocatable"
	case KindExecutable:
		return "Executable"
	case KindSharedObject:
		return "SharedObject"
	case KindCore:
		return "Core"
	default:
		return "Unknown"
	}
}

// Record is the parsed, already-validated metadata of one ELF object.
type Record struct {
	Kind    Kind
	Needed  []string
	RPath   []string
	RunPath []string
}

// ErrFileTooSmall is returned when a candidate file is smaller than an ELF header.
var ErrFileTooSmall = errors.New("file is too small to be an ELF file")

// ErrNotElfFile is returned when a candidate file does not start with the ELF magic.
var ErrNotElfFile = errors.New("file is not an ELF file")

// InvalidPathsError is returned when an ELF's RPATH/RUNPATH entries fail validation (§4.2).
type InvalidPathsError struct {
	Paths []string // e.g. "RPATH: ../lib is invalid"
}

func (e *InvalidPathsError) Error() string {
	return fmt.Sprintf("invalid RPATH/RUNPATH entries: %s", strings.Join(e.Paths, "; "))
}

// minElfHeaderSize is the smallest possible ELF header; anything shorter can't be ELF.
const minElfHeaderSize = 64

// invalidExtensions is a hard-coded, case-insensitive set of extensions that can
// never be an ELF object. Checking it lets Read skip opening most non-ELF files.
// This is a heuristic (spec.md §9 Open Question): a real ELF named e.g. "lib.so.py"
// would be skipped, which is accepted as tolerable given real package contents.
var invalidExtensions = map[string]struct{}{
	"txt": {}, "md": {}, "json": {}, "yaml": {}, "yml": {}, "conf": {}, "cfg": {},
	"ini": {}, "toml": {}, "xml": {}, "html": {}, "css": {}, "js": {}, "py": {},
	"sh": {}, "bash": {}, "zsh": {}, "fish": {}, "csh": {}, "ksh": {}, "pl": {},
	"rb": {}, "php": {}, "lua": {}, "tcl": {}, "awk": {}, "sed": {}, "perl": {},
	"pm": {}, "pod": {}, "gz": {}, "bz2": {}, "xz": {}, "zst": {}, "zip": {},
	"tar": {}, "rpm": {}, "deb": {}, "dpkg": {}, "png": {}, "jpg": {}, "jpeg": {},
	"gif": {}, "svg": {}, "ico": {}, "bmp": {}, "webp": {}, "tiff": {}, "pdf": {},
	"ps": {}, "eps": {}, "dvi": {}, "tex": {}, "rtf": {}, "odt": {}, "doc": {},
	"docx": {}, "mp3": {}, "mp4": {}, "avi": {}, "mkv": {}, "mov": {}, "wav": {},
	"flac": {}, "ogg": {}, "m4a": {}, "db": {}, "sqlite": {}, "sqlite3": {}, "db3": {},
}

// HasInvalidExtension reports whether path's extension rules it out as an ELF
// candidate before any file I/O happens.
func HasInvalidExtension(path string) bool {
	ext := filepath.Ext(path)
	if ext == "" {
		return false
	}
	ext = strings.ToLower(strings.TrimPrefix(ext, "."))
	_, found := invalidExtensions[ext]
	return found
}

// Read parses the ELF object at path. Callers are expected to have already
// called HasInvalidExtension and skipped files it flags; Read itself still
// performs the size and magic-byte checks regardless, so it is safe to call
// without that pre-filter.
//
// ErrFileTooSmall and ErrNotElfFile are not fatal to a package analysis: the
// caller (internal/pkgmodel) treats both as "this is a regular file".
func Read(path string) (Record, error) {
	info, err := os.Stat(path)
	if err != nil {
		return Record{}, fmt.Errorf("opening %s: %w", path, err)
	}
	if info.Size() < minElfHeaderSize {
		return Record{}, ErrFileTooSmall
	}

	f, err := os.Open(path)
	if err != nil {
		return Record{}, fmt.Errorf("opening %s: %w", path, err)
	}
	defer f.Close()

	var magic [4]byte
	if _, err := f.Read(magic[:]); err != nil {
		return Record{}, fmt.Errorf("reading %s: %w", path, err)
	}
	if magic != [4]byte{0x7F, 'E', 'L', 'F'} {
		return Record{}, ErrNotElfFile
	}

	if _, err := f.Seek(0, os.SEEK_SET); err != nil {
		return Record{}, fmt.Errorf("reading %s: %w", path, err)
	}
	ef, err := elf.NewFile(f)
	if err != nil {
		return Record{}, fmt.Errorf("parsing %s: %w", path, err)
	}
	defer ef.Close()

	record, err := parse(path, ef)
	if err != nil {
		return Record{}, err
	}

	if offenders := Validate(record.RPath, record.RunPath); len(offenders) > 0 {
		return Record{}, &InvalidPathsError{Paths: offenders}
	}
	return record, nil
}

func parse(path string, ef *elf.File) (Record, error) {
	kind, err := mapKind(path, ef.Type)
	if err != nil {
		return Record{}, err
	}

	record := Record{Kind: kind}

	// DynString returns (nil, nil) for objects without a dynamic section
	// (e.g. relocatables); that is not a parse failure.
	needed, err := ef.DynString(elf.DT_NEEDED)
	if err != nil {
		return Record{}, fmt.Errorf("parsing %s: %w", path, err)
	}
	record.Needed = append(record.Needed, needed...)

	record.RPath = splitSearchPath(joinDynStrings(ef, elf.DT_RPATH))
	record.RunPath = splitSearchPath(joinDynStrings(ef, elf.DT_RUNPATH))

	return record, nil
}

// joinDynStrings concatenates every DT_RPATH/DT_RUNPATH string table entry
// for the given tag. There is ordinarily at most one, but joining handles
// the (legal, if unusual) case of a dynamic section declaring the tag twice.
func joinDynStrings(ef *elf.File, tag elf.DynTag) string {
	values, err := ef.DynString(tag)
	if err != nil || len(values) == 0 {
		return ""
	}
	return strings.Join(values, ":")
}

// splitSearchPath implements the colon-delimited splitting rule shared by
// DT_RPATH and DT_RUNPATH: split on ':', drop empty components, preserve order.
func splitSearchPath(raw string) []string {
	if raw == "" {
		return nil
	}
	var out []string
	for _, part := range strings.Split(raw, ":") {
		if part != "" {
			out = append(out, part)
		}
	}
	return out
}

func mapKind(path string, t elf.Type) (Kind, error) {
	switch t {
	case elf.ET_NONE:
		return KindNone, nil
	case elf.ET_REL:
		return KindRelocatable, nil
	case elf.ET_EXEC:
		return KindExecutable, nil
	case elf.ET_DYN:
		return KindSharedObject, nil
	case elf.ET_CORE:
		return KindCore, nil
	default:
		return 0, fmt.Errorf("unknown ELF type in file %s: %v", path, t)
	}
}
