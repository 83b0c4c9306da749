package report

import (
	"errors"
	"fmt"
	"sort"

	"github.com/majewsky/package-validator/internal/resolve"
)

// DependencyError pairs one failed DT_NEEDED resolution with the object that
// declared it, for callers that want to report each failure individually.
type DependencyError struct {
	ObjectPath string
	Dependency string
	Message    string
}

// ValidationError is returned by Validate when the report contains
// unresolved dependencies. Errors take precedence over plain Missing
// entries: a package with any error-status dependency is reported on those
// alone, since an error (a symlink cycle, a dependency that resolved to a
// non-ELF file) usually explains away a batch of Missing entries caused by
// the same root problem.
type ValidationError struct {
	Errors       []DependencyError // populated only when len(Errors) > 0 was the trigger
	MissingCount int
}

func (e *ValidationError) Error() string {
	if len(e.Errors) > 0 {
		return fmt.Sprintf("error dependencies found in the report: %d error dependencies", len(e.Errors))
	}
	return fmt.Sprintf("missing dependencies found in the report: %d missing dependencies", e.MissingCount)
}

// Validate reports whether report is clean: no dependency resolved to
// StatusError, and none resolved to StatusMissing. It never logs; callers at
// the CLI layer are expected to print ValidationError.Errors themselves.
func Validate(report *Report) error {
	if report.Totals.Dependencies.Error > 0 {
		return &ValidationError{Errors: collectDependencyErrors(report.Dependencies)}
	}
	if report.Totals.Dependencies.Missing > 0 {
		return &ValidationError{MissingCount: report.Totals.Dependencies.Missing}
	}
	return nil
}

// AsValidationError unwraps err into a *ValidationError, for callers that
// need the structured detail to log.
func AsValidationError(err error) (*ValidationError, bool) {
	var valErr *ValidationError
	ok := errors.As(err, &valErr)
	return valErr, ok
}

func collectDependencyErrors(dependencies map[string]resolve.ObjectResult) []DependencyError {
	var errs []DependencyError
	for objPath, deps := range dependencies {
		for name, result := range deps {
			if result.Status == resolve.StatusError {
				errs = append(errs, DependencyError{ObjectPath: objPath, Dependency: name, Message: result.Message})
			}
		}
	}
	sort.Slice(errs, func(i, j int) bool {
		if errs[i].ObjectPath != errs[j].ObjectPath {
			return errs[i].ObjectPath < errs[j].ObjectPath
		}
		return errs[i].Dependency < errs[j].Dependency
	})
	return errs
}
