package elf

import (
	"fmt"
	"path"
	"strings"
)

// Validate checks every RPATH/RUNPATH entry against the $ORIGIN-anchoring
// rule (§4.2) and returns one message per offender, tagged with its origin
// ("RPATH: " or "RUNPATH: "). Both lists are validated even though, per
// NormalizeSearchPaths, only one of them is ever actually searched: the
// runtime linker ignores a present RPATH when RUNPATH exists, but both are
// still attacker-controlled strings shipped in the binary, so both are
// checked (spec.md §9 Open Question).
func Validate(rpath, runpath []string) []string {
	var offenders []string
	offenders = append(offenders, collectInvalid(runpath, "RUNPATH")...)
	offenders = append(offenders, collectInvalid(rpath, "RPATH")...)
	return offenders
}

func collectInvalid(paths []string, tag string) []string {
	var offenders []string
	for _, p := range paths {
		if isInvalidEntry(p) {
			offenders = append(offenders, fmt.Sprintf("%s: %s is invalid", tag, p))
		}
	}
	return offenders
}

// isInvalidEntry applies the validation rule from spec.md §4.2:
//  1. absolute paths are always valid.
//  2. a $ORIGIN/${ORIGIN} token must begin at byte offset 0 to be valid;
//     any content preceding it would be resolved against the process CWD
//     first, which is a planting hazard.
//  3. anything else (relative, no token) is invalid.
func isInvalidEntry(s string) bool {
	if strings.HasPrefix(s, "/") {
		return false
	}
	pos := originTokenOffset(s)
	if pos < 0 {
		return true
	}
	return pos != 0
}

// originTokenOffset returns the byte offset of the first "$ORIGIN" or
// "${ORIGIN}" occurrence in s, or -1 if neither appears.
func originTokenOffset(s string) int {
	braced := strings.Index(s, "${ORIGIN}")
	bare := strings.Index(s, "$ORIGIN")
	switch {
	case braced < 0 && bare < 0:
		return -1
	case braced < 0:
		return bare
	case bare < 0:
		return braced
	case braced < bare:
		return braced
	default:
		return bare
	}
}

// NormalizeSearchPaths selects RUNPATH over RPATH when RUNPATH is non-empty
// (the runtime linker's own precedence rule), substitutes $ORIGIN/${ORIGIN}
// with origin in every entry of the selected list, and lexically cleans the
// absolute results. Entries that are not anchored after substitution are
// dropped rather than resolved against an unknown process CWD. Order is
// preserved; the resolver consults the returned directories in this order.
func NormalizeSearchPaths(rpath, runpath []string, origin string) []string {
	selected := runpath
	if len(selected) == 0 {
		selected = rpath
	}
	if len(selected) == 0 {
		return nil
	}

	var out []string
	for _, entry := range selected {
		if normalized, ok := normalizeOne(entry, origin); ok {
			out = append(out, normalized)
		}
	}
	return out
}

func normalizeOne(entry, origin string) (string, bool) {
	var resolved string
	switch {
	case strings.Contains(entry, "${ORIGIN}"):
		resolved = strings.ReplaceAll(entry, "${ORIGIN}", origin)
	case strings.Contains(entry, "$ORIGIN"):
		resolved = strings.ReplaceAll(entry, "$ORIGIN", origin)
	default:
		resolved = entry
	}

	if !strings.HasPrefix(resolved, "/") {
		return "", false
	}
	return path.Clean(resolved), true
}
