package report

import (
	"encoding/json"

	"github.com/majewsky/package-validator/internal/elf"
	"github.com/majewsky/package-validator/internal/resolve"
)

// MarshalJSON renders the report per the persisted JSON format: a "package"
// path, "totals", an "errors" array, and "dependencies"/"files" objects
// keyed by ELF path. encoding/json already sorts string map keys when
// marshaling, which is what gives the lexicographic-by-path ordering the
// external artifact format requires — no custom key-sorting pass needed.
func (r *Report) MarshalJSON() ([]byte, error) {
	dependencies := make(map[string]map[string]jsonDependencyResult, len(r.Dependencies))
	for objPath, deps := range r.Dependencies {
		entry := make(map[string]jsonDependencyResult, len(deps))
		for name, result := range deps {
			entry[name] = toJSONDependencyResult(result)
		}
		dependencies[objPath] = entry
	}

	files := make(map[string]jsonElfRecord, len(r.Files))
	for path, record := range r.Files {
		files[path] = toJSONElfRecord(record)
	}

	return json.Marshal(struct {
		Package      string                                      `json:"package"`
		Totals       Totals                                      `json:"totals"`
		Errors       []jsonConflict                              `json:"errors"`
		Dependencies map[string]map[string]jsonDependencyResult `json:"dependencies"`
		Files        map[string]jsonElfRecord                   `json:"files"`
	}{
		Package:      r.Package,
		Totals:       r.Totals,
		Errors:       toJSONConflicts(r.Conflicts),
		Dependencies: dependencies,
		Files:        files,
	})
}

type jsonDependencyResult struct {
	Status        json.RawMessage `json:"status"`
	Type          string          `json:"type"`
	Path          string          `json:"path,omitempty"`
	SearchedPaths []string        `json:"searched_paths,omitempty"`
}

func toJSONDependencyResult(r resolve.DependencyResult) jsonDependencyResult {
	out := jsonDependencyResult{Status: statusJSON(r), Type: kindString(r.Kind)}
	if r.Path != "" {
		out.Path = r.Path
	} else {
		out.SearchedPaths = r.SearchedPaths
	}
	return out
}

// statusJSON renders DependencyStatus per the external schema: a bare string
// for Found/Missing, or {"Error": message} for Error.
func statusJSON(r resolve.DependencyResult) json.RawMessage {
	switch r.Status {
	case resolve.StatusFound:
		return json.RawMessage(`"Found"`)
	case resolve.StatusError:
		encoded, _ := json.Marshal(struct {
			Error string `json:"Error"`
		}{Error: r.Message})
		return encoded
	default:
		return json.RawMessage(`"Missing"`)
	}
}

func kindString(k resolve.DependencyKind) string {
	switch k {
	case resolve.KindSystem:
		return "System"
	case resolve.KindPackage:
		return "Package"
	default:
		return "Unknown"
	}
}

type jsonConflict struct {
	Dependency string   `json:"dependency"`
	Paths      []string `json:"paths"`
}

func toJSONConflicts(conflicts []resolve.DependencyConflict) []jsonConflict {
	out := make([]jsonConflict, len(conflicts))
	for i, c := range conflicts {
		out[i] = jsonConflict{Dependency: c.Dependency, Paths: c.Paths}
	}
	return out
}

type jsonElfRecord struct {
	Kind         string   `json:"kind"`
	Dependencies []string `json:"dependencies"`
	RPath        []string `json:"rpath"`
	RunPath      []string `json:"runpath"`
}

func toJSONElfRecord(record elf.Record) jsonElfRecord {
	return jsonElfRecord{
		Kind:         record.Kind.String(),
		Dependencies: nonNil(record.Needed),
		RPath:        nonNil(record.RPath),
		RunPath:      nonNil(record.RunPath),
	}
}

// nonNil turns a nil slice into an empty one so the field serializes as
// "[]" rather than "null".
func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
