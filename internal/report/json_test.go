package report

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/majewsky/package-validator/internal/elf"
	"github.com/majewsky/package-validator/internal/resolve"
)

func TestReportMarshalJSONOmitsSearchedPathsWhenPathKnown(t *testing.T) {
	r := &Report{
		Package: "/tmp/pkg.deb",
		Dependencies: map[string]resolve.ObjectResult{
			"/bin/app": {
				"libfoo.so": {Status: resolve.StatusFound, Kind: resolve.KindPackage, Path: "/lib/libfoo.so", SearchedPaths: []string{"/lib"}},
			},
		},
		Files: map[string]elf.Record{},
	}

	data, err := json.Marshal(r)
	require.NoError(t, err)

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(data, &decoded))
	deps := decoded["dependencies"].(map[string]any)["/bin/app"].(map[string]any)["libfoo.so"].(map[string]any)
	assert.Equal(t, "/lib/libfoo.so", deps["path"])
	_, hasSearchedPaths := deps["searched_paths"]
	assert.False(t, hasSearchedPaths)
}

func TestReportMarshalJSONIncludesSearchedPathsWhenMissing(t *testing.T) {
	r := &Report{
		Dependencies: map[string]resolve.ObjectResult{
			"/bin/app": {
				"libfoo.so": {Status: resolve.StatusMissing, Kind: resolve.KindUnknown, SearchedPaths: []string{"/lib", "/usr/lib"}},
			},
		},
		Files: map[string]elf.Record{},
	}

	data, err := json.Marshal(r)
	require.NoError(t, err)

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(data, &decoded))
	deps := decoded["dependencies"].(map[string]any)["/bin/app"].(map[string]any)["libfoo.so"].(map[string]any)
	assert.Equal(t, "Missing", deps["status"])
	_, hasPath := deps["path"]
	assert.False(t, hasPath)
	assert.Equal(t, []any{"/lib", "/usr/lib"}, deps["searched_paths"])
}

func TestReportMarshalJSONErrorStatusIsObject(t *testing.T) {
	r := &Report{
		Dependencies: map[string]resolve.ObjectResult{
			"/bin/app": {
				"libfoo.so": {Status: resolve.StatusError, Kind: resolve.KindUnknown, Message: "Symlink cycle detected: /lib/libfoo.so"},
			},
		},
		Files: map[string]elf.Record{},
	}

	data, err := json.Marshal(r)
	require.NoError(t, err)

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(data, &decoded))
	deps := decoded["dependencies"].(map[string]any)["/bin/app"].(map[string]any)["libfoo.so"].(map[string]any)
	status := deps["status"].(map[string]any)
	assert.Equal(t, "Symlink cycle detected: /lib/libfoo.so", status["Error"])
}

func TestReportMarshalJSONFilesUseEmptySlicesNotNull(t *testing.T) {
	r := &Report{
		Dependencies: map[string]resolve.ObjectResult{},
		Files: map[string]elf.Record{
			"/bin/app": {Kind: elf.KindExecutable},
		},
	}

	data, err := json.Marshal(r)
	require.NoError(t, err)

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(data, &decoded))
	file := decoded["files"].(map[string]any)["/bin/app"].(map[string]any)
	assert.Equal(t, []any{}, file["dependencies"])
	assert.Equal(t, []any{}, file["rpath"])
}
