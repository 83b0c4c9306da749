package resolve

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/majewsky/package-validator/internal/pkgmodel"
)

func testPackage(files map[string]pkgmodel.Entry) *pkgmodel.Package {
	return &pkgmodel.Package{Path: "/test/package.deb", Files: files}
}

func TestSymlinkResolverSimple(t *testing.T) {
	pkg := testPackage(map[string]pkgmodel.Entry{
		"/usr/bin/file": {Class: pkgmodel.ClassRegular},
		"/usr/bin/A":    {Class: pkgmodel.ClassSymlink, SymlinkTarget: "/usr/bin/file"},
	})
	r := NewSymlinkResolver(pkg)

	res, ok := r.Resolve("/usr/bin/A")
	assert.True(t, ok)
	assert.Equal(t, SymlinkFound, res.Status)
	assert.Equal(t, "/usr/bin/file", res.Target)
}

func TestSymlinkResolverChain(t *testing.T) {
	pkg := testPackage(map[string]pkgmodel.Entry{
		"/usr/bin/file": {Class: pkgmodel.ClassRegular},
		"/usr/bin/B":    {Class: pkgmodel.ClassSymlink, SymlinkTarget: "/usr/bin/file"},
		"/usr/bin/A":    {Class: pkgmodel.ClassSymlink, SymlinkTarget: "/usr/bin/B"},
	})
	r := NewSymlinkResolver(pkg)

	resA, _ := r.Resolve("/usr/bin/A")
	assert.Equal(t, SymlinkFound, resA.Status)
	assert.Equal(t, "/usr/bin/file", resA.Target)

	resB, _ := r.Resolve("/usr/bin/B")
	assert.Equal(t, SymlinkFound, resB.Status)
	assert.Equal(t, "/usr/bin/file", resB.Target)
}

func TestSymlinkResolverSelfCycle(t *testing.T) {
	pkg := testPackage(map[string]pkgmodel.Entry{
		"/usr/bin/A": {Class: pkgmodel.ClassSymlink, SymlinkTarget: "/usr/bin/A"},
	})
	r := NewSymlinkResolver(pkg)

	res, ok := r.Resolve("/usr/bin/A")
	assert.True(t, ok)
	assert.Equal(t, SymlinkCycle, res.Status)
}

func TestSymlinkResolverMutualCycle(t *testing.T) {
	pkg := testPackage(map[string]pkgmodel.Entry{
		"/usr/bin/A": {Class: pkgmodel.ClassSymlink, SymlinkTarget: "/usr/bin/B"},
		"/usr/bin/B": {Class: pkgmodel.ClassSymlink, SymlinkTarget: "/usr/bin/A"},
	})
	r := NewSymlinkResolver(pkg)

	resA, _ := r.Resolve("/usr/bin/A")
	assert.Equal(t, SymlinkCycle, resA.Status)
	resB, _ := r.Resolve("/usr/bin/B")
	assert.Equal(t, SymlinkCycle, resB.Status)
}

func TestSymlinkResolverNotFound(t *testing.T) {
	pkg := testPackage(map[string]pkgmodel.Entry{
		"/usr/bin/A": {Class: pkgmodel.ClassSymlink, SymlinkTarget: "/usr/lib/missing.so"},
	})
	r := NewSymlinkResolver(pkg)

	res, ok := r.Resolve("/usr/bin/A")
	assert.True(t, ok)
	assert.Equal(t, SymlinkNotFound, res.Status)
	assert.Equal(t, "/usr/lib/missing.so", res.Target)
}

func TestSymlinkResolverChainToMissing(t *testing.T) {
	pkg := testPackage(map[string]pkgmodel.Entry{
		"/usr/bin/A": {Class: pkgmodel.ClassSymlink, SymlinkTarget: "/usr/bin/B"},
		"/usr/bin/B": {Class: pkgmodel.ClassSymlink, SymlinkTarget: "/usr/lib/missing.so"},
	})
	r := NewSymlinkResolver(pkg)

	resA, _ := r.Resolve("/usr/bin/A")
	assert.Equal(t, SymlinkNotFound, resA.Status)
	assert.Equal(t, "/usr/lib/missing.so", resA.Target)
	resB, _ := r.Resolve("/usr/bin/B")
	assert.Equal(t, SymlinkNotFound, resB.Status)
}

func TestSymlinkResolverEmptyPackage(t *testing.T) {
	r := NewSymlinkResolver(testPackage(map[string]pkgmodel.Entry{}))
	_, ok := r.Resolve("/usr/bin/A")
	assert.False(t, ok)
}

func TestSymlinkResolverNoSymlinks(t *testing.T) {
	pkg := testPackage(map[string]pkgmodel.Entry{
		"/usr/bin/file1": {Class: pkgmodel.ClassRegular},
		"/usr/bin/file2": {Class: pkgmodel.ClassRegular},
	})
	r := NewSymlinkResolver(pkg)
	_, ok := r.Resolve("/usr/bin/file1")
	assert.False(t, ok)
}
