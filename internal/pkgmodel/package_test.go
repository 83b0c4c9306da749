package pkgmodel

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/majewsky/package-validator/internal/elf"
)

func TestPackageElfsAndSymlinks(t *testing.T) {
	pkg := &Package{
		Path: "test.deb",
		Files: map[string]Entry{
			"/usr/bin/app":          {Class: ClassElf, Elf: elf.Record{Kind: elf.KindExecutable}},
			"/usr/lib/libfoo.so":    {Class: ClassElf, Elf: elf.Record{Kind: elf.KindSharedObject}},
			"/usr/lib/libfoo.so.1":  {Class: ClassSymlink, SymlinkTarget: "/usr/lib/libfoo.so"},
			"/usr/share/doc/README": {Class: ClassRegular},
		},
	}

	elfs := pkg.Elfs()
	assert.Len(t, elfs, 2)
	assert.Equal(t, elf.KindExecutable, elfs["/usr/bin/app"].Kind)

	symlinks := pkg.Symlinks()
	assert.Len(t, symlinks, 1)
	assert.Equal(t, "/usr/lib/libfoo.so", symlinks["/usr/lib/libfoo.so.1"])
}

func TestFileClassString(t *testing.T) {
	assert.Equal(t, "regular", ClassRegular.String())
	assert.Equal(t, "symlink", ClassSymlink.String())
	assert.Equal(t, "elf", ClassElf.String())
	assert.Equal(t, "unknown", FileClass(99).String())
}
