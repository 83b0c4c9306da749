package elf

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIsInvalidEntry(t *testing.T) {
	cases := []struct {
		name    string
		path    string
		invalid bool
	}{
		{"absolute", "/usr/lib", false},
		{"origin at start", "$ORIGIN/../lib", false},
		{"braced origin at start", "${ORIGIN}/lib", false},
		{"relative no token", "lib", true},
		{"dot relative", "./lib", true},
		{"parent relative", "../lib", true},
		{"origin not at start", "../$ORIGIN/lib", true},
		{"braced origin not at start", "./${ORIGIN}/lib", true},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.invalid, isInvalidEntry(tc.path))
		})
	}
}

func TestValidate(t *testing.T) {
	offenders := Validate([]string{"../lib"}, []string{"$ORIGIN/lib", "bad"})
	assert.Len(t, offenders, 2)
	assert.Contains(t, offenders[0], "RUNPATH")
	assert.Contains(t, offenders[1], "RPATH")
}

func TestValidateEmpty(t *testing.T) {
	assert.Empty(t, Validate(nil, nil))
	assert.Empty(t, Validate([]string{"/usr/lib"}, []string{"$ORIGIN/lib"}))
}

func TestNormalizeSearchPaths(t *testing.T) {
	t.Run("runpath takes precedence over rpath", func(t *testing.T) {
		got := NormalizeSearchPaths([]string{"/rpath/only"}, []string{"/runpath/only"}, "/opt/app")
		assert.Equal(t, []string{"/runpath/only"}, got)
	})

	t.Run("falls back to rpath when runpath empty", func(t *testing.T) {
		got := NormalizeSearchPaths([]string{"/rpath/only"}, nil, "/opt/app")
		assert.Equal(t, []string{"/rpath/only"}, got)
	})

	t.Run("substitutes ORIGIN token", func(t *testing.T) {
		got := NormalizeSearchPaths(nil, []string{"$ORIGIN/../lib"}, "/opt/app/bin")
		assert.Equal(t, []string{"/opt/app/lib"}, got)
	})

	t.Run("substitutes braced ORIGIN token", func(t *testing.T) {
		got := NormalizeSearchPaths(nil, []string{"${ORIGIN}/lib"}, "/opt/app/bin")
		assert.Equal(t, []string{"/opt/app/bin/lib"}, got)
	})

	t.Run("drops entries that remain relative", func(t *testing.T) {
		got := NormalizeSearchPaths(nil, []string{"../lib", "/usr/lib"}, "/opt/app/bin")
		assert.Equal(t, []string{"/usr/lib"}, got)
	})

	t.Run("both empty yields nil", func(t *testing.T) {
		assert.Nil(t, NormalizeSearchPaths(nil, nil, "/opt/app/bin"))
	})

	t.Run("preserves order", func(t *testing.T) {
		got := NormalizeSearchPaths(nil, []string{"/a", "/b", "$ORIGIN/c"}, "/opt")
		assert.Equal(t, []string{"/a", "/b", "/opt/c"}, got)
	})
}
