package report

import (
	"github.com/majewsky/package-validator/internal/elf"
	"github.com/majewsky/package-validator/internal/pkgmodel"
	"github.com/majewsky/package-validator/internal/resolve"
)

// ElfTotals tallies the package's ELF objects by kind. It is a commutative
// monoid: Add never needs to know which side ran first, so per-package
// totals can be folded in any order (or concurrently, one partial sum per
// worker, then reduced).
type ElfTotals struct {
	None            int `json:"none"`
	Binaries        int `json:"binaries"`
	SharedLibraries int `json:"shared_libraries"`
	Relocatable     int `json:"relocatable"`
	Core            int `json:"core"`
	Total           int `json:"total"`
}

// Add returns the element-wise sum of t and other, with Total recomputed
// rather than carried, so a caller can never construct an inconsistent sum.
func (t ElfTotals) Add(other ElfTotals) ElfTotals {
	sum := ElfTotals{
		None:            t.None + other.None,
		Binaries:        t.Binaries + other.Binaries,
		SharedLibraries: t.SharedLibraries + other.SharedLibraries,
		Relocatable:     t.Relocatable + other.Relocatable,
		Core:            t.Core + other.Core,
	}
	sum.Total = sum.None + sum.Binaries + sum.SharedLibraries + sum.Relocatable + sum.Core
	return sum
}

// CalculateElfTotals tallies every ELF object in objects by kind.
func CalculateElfTotals(objects map[string]elf.Record) ElfTotals {
	var totals ElfTotals
	for _, record := range objects {
		switch record.Kind {
		case elf.KindNone:
			totals.None++
		case elf.KindExecutable:
			totals.Binaries++
		case elf.KindSharedObject:
			totals.SharedLibraries++
		case elf.KindRelocatable:
			totals.Relocatable++
		case elf.KindCore:
			totals.Core++
		}
	}
	totals.Total = totals.None + totals.Binaries + totals.SharedLibraries + totals.Relocatable + totals.Core
	return totals
}

// DependencyTotals tallies resolved DT_NEEDED entries by status and kind.
// Like ElfTotals it is a commutative monoid for the count fields; the
// *Unique fields are not additive across partial sums (counting a name
// twice across two partial totals would double-count it), so Add zeroes
// them — only CalculateDependencyTotals, which sees every dependency at
// once, can compute them correctly.
type DependencyTotals struct {
	Missing       int `json:"missing"`
	MissingUnique int `json:"missing_unique"`
	Found         int `json:"found"`
	FoundUnique   int `json:"found_unique"`
	Error         int `json:"error"`
	System        int `json:"system"`
	Package       int `json:"package"`
	Unknown       int `json:"unknown"`
	Total         int `json:"total"`
	TotalUnique   int `json:"total_unique"`
}

func (t DependencyTotals) Add(other DependencyTotals) DependencyTotals {
	missing := t.Missing + other.Missing
	found := t.Found + other.Found
	errorCount := t.Error + other.Error
	return DependencyTotals{
		Missing: missing,
		Found:   found,
		Error:   errorCount,
		System:  t.System + other.System,
		Package: t.Package + other.Package,
		Unknown: t.Unknown + other.Unknown,
		Total:   missing + found + errorCount,
	}
}

// CalculateDependencyTotals tallies every ELF object's resolved dependencies.
// A concurrent-safe unique-basename count requires seeing every dependency
// name at once, so this builds the three uniqueness sets in a single pass
// over the full result set rather than trying to merge partial sets.
func CalculateDependencyTotals(results map[string]resolve.ObjectResult) DependencyTotals {
	var totals DependencyTotals
	totalUnique := make(map[string]struct{})
	missingUnique := make(map[string]struct{})
	foundUnique := make(map[string]struct{})

	for _, deps := range results {
		for name, result := range deps {
			totalUnique[name] = struct{}{}
			switch result.Status {
			case resolve.StatusMissing:
				totals.Missing++
				missingUnique[name] = struct{}{}
			case resolve.StatusFound:
				totals.Found++
				foundUnique[name] = struct{}{}
			case resolve.StatusError:
				totals.Error++
			}
			switch result.Kind {
			case resolve.KindSystem:
				totals.System++
			case resolve.KindPackage:
				totals.Package++
			case resolve.KindUnknown:
				totals.Unknown++
			}
		}
	}

	totals.Total = totals.Missing + totals.Found + totals.Error
	totals.TotalUnique = len(totalUnique)
	totals.MissingUnique = len(missingUnique)
	totals.FoundUnique = len(foundUnique)
	return totals
}

// Totals is the full set of summary statistics attached to a Report.
type Totals struct {
	Files        int              `json:"files"`
	Elfs         ElfTotals        `json:"elfs"`
	Dependencies DependencyTotals `json:"dependencies"`
}

// CalculateTotals builds Totals from a package's file set and its resolved
// dependency graph.
func CalculateTotals(pkg *pkgmodel.Package, results map[string]resolve.ObjectResult) Totals {
	return Totals{
		Files:        len(pkg.Files),
		Elfs:         CalculateElfTotals(pkg.Elfs()),
		Dependencies: CalculateDependencyTotals(results),
	}
}
