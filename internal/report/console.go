package report

import (
	"fmt"
	"io"
	"path"
	"sort"
	"strings"
	"text/tabwriter"

	"github.com/majewsky/package-validator/internal/resolve"
)

// Summarize writes a human-readable summary of report to w: package info,
// ELF/dependency statistics tables, and a table of every ELF file with at
// least one missing dependency.
func Summarize(w io.Writer, report *Report) error {
	fmt.Fprintf(w, "Package: %s\n", report.Package)
	fmt.Fprintf(w, "Total files: %d\n\n", report.Totals.Files)

	if err := writeElfTable(w, report.Totals.Elfs); err != nil {
		return err
	}
	fmt.Fprintln(w)
	if err := writeDependencyTypeTable(w, report.Totals.Dependencies); err != nil {
		return err
	}
	fmt.Fprintln(w)
	if err := writeDependencyStatusTable(w, report.Totals.Dependencies); err != nil {
		return err
	}
	fmt.Fprintln(w)

	missing := missingDependencies(report)
	if len(missing) == 0 {
		return nil
	}
	if err := writeMissingDependenciesTable(w, missing); err != nil {
		return err
	}
	fmt.Fprintf(w, "\nTotal: %d ELF file(s) with missing dependencies\n", len(missing))
	return nil
}

func newTable(w io.Writer) *tabwriter.Writer {
	return tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
}

func writeElfTable(w io.Writer, totals ElfTotals) error {
	tw := newTable(w)
	fmt.Fprintln(tw, "ELF Type\tCount")
	fmt.Fprintf(tw, "Binaries\t%d\n", totals.Binaries)
	fmt.Fprintf(tw, "Shared libraries\t%d\n", totals.SharedLibraries)
	fmt.Fprintf(tw, "Relocatable\t%d\n", totals.Relocatable)
	fmt.Fprintf(tw, "Core\t%d\n", totals.Core)
	fmt.Fprintf(tw, "None\t%d\n", totals.None)
	fmt.Fprintf(tw, "Total\t%d\n", totals.Total)
	return tw.Flush()
}

func writeDependencyTypeTable(w io.Writer, totals DependencyTotals) error {
	tw := newTable(w)
	fmt.Fprintln(tw, "Dependency Type\tCount")
	fmt.Fprintf(tw, "System\t%d\n", totals.System)
	fmt.Fprintf(tw, "Package\t%d\n", totals.Package)
	fmt.Fprintf(tw, "Unknown\t%d\n", totals.Unknown)
	fmt.Fprintf(tw, "Total\t%d\n", totals.Total)
	return tw.Flush()
}

func writeDependencyStatusTable(w io.Writer, totals DependencyTotals) error {
	tw := newTable(w)
	fmt.Fprintln(tw, "Dependency Status\tCount")
	fmt.Fprintf(tw, "Missing\t%d\n", totals.Missing)
	fmt.Fprintf(tw, "Found\t%d\n", totals.Found)
	fmt.Fprintf(tw, "Error\t%d\n", totals.Error)
	fmt.Fprintf(tw, "Total\t%d\n", totals.Total)
	return tw.Flush()
}

type missingDependency struct {
	path string
	deps []string
}

func missingDependencies(report *Report) []missingDependency {
	var result []missingDependency
	for objPath, deps := range report.Dependencies {
		var missing []string
		for name, r := range deps {
			if r.Status == resolve.StatusMissing {
				missing = append(missing, name)
			}
		}
		if len(missing) > 0 {
			sort.Strings(missing)
			result = append(result, missingDependency{path: objPath, deps: missing})
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].path < result[j].path })
	return result
}

func writeMissingDependenciesTable(w io.Writer, missing []missingDependency) error {
	paths := make([]string, len(missing))
	for i, m := range missing {
		paths[i] = m.path
	}
	prefix := findCommonPrefix(paths)

	tw := newTable(w)
	fmt.Fprintln(tw, "ELF File\tMissing Dependencies")
	for _, m := range missing {
		displayPath := m.path
		if prefix != "" {
			if trimmed := strings.TrimPrefix(m.path, prefix); trimmed != m.path {
				if trimmed == "" {
					trimmed = "/"
				}
				displayPath = trimmed
			}
		}
		fmt.Fprintf(tw, "%s\t%s\n", displayPath, strings.Join(m.deps, ", "))
	}
	return tw.Flush()
}

// findCommonPrefix returns the longest path shared by every entry in paths,
// measured in whole path components rather than raw characters, so
// "/usr/libexec" and "/usr/lib" don't spuriously share "/usr/lib". Returns
// "" if paths is empty or the only shared component is the root.
func findCommonPrefix(paths []string) string {
	if len(paths) == 0 {
		return ""
	}

	common := strings.Split(paths[0], "/")
	for _, p := range paths[1:] {
		parts := strings.Split(p, "/")
		common = commonComponents(common, parts)
		if len(common) == 0 {
			break
		}
	}

	if len(common) <= 1 {
		// Either nothing shared, or only the leading "" from an absolute
		// path's split (i.e. just "/").
		return ""
	}
	joined := path.Join(common...)
	if strings.HasPrefix(paths[0], "/") {
		joined = "/" + joined
	}
	return joined
}

func commonComponents(a, b []string) []string {
	n := len(a)
	if len(b) < n {
		n = len(b)
	}
	var out []string
	for i := 0; i < n; i++ {
		if a[i] != b[i] {
			break
		}
		out = append(out, a[i])
	}
	return out
}
