package helper

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRelSegments(t *testing.T) {
	root := filepath.FromSlash("/r")

	segs, ok := RelSegments(root, filepath.FromSlash("/r/a/x.txt"))
	assert.True(t, ok)
	assert.Equal(t, []string{"a", "x.txt"}, segs)

	segs, ok = RelSegments(root, root)
	assert.True(t, ok)
	assert.Empty(t, segs)

	_, ok = RelSegments(root, filepath.FromSlash("/other/a"))
	assert.False(t, ok)

	_, ok = RelSegments(root, filepath.FromSlash("/rr/a"))
	assert.False(t, ok)
}

func TestBaseName(t *testing.T) {
	assert.Equal(t, "x.txt", BaseName(filepath.FromSlash("/r/a/x.txt")))
	assert.Equal(t, string(filepath.Separator), BaseName(string(filepath.Separator)))
}

func TestExcluder(t *testing.T) {
	e := NewExcluder(".git", "*.tmp", " ", "node_modules")
	assert.Equal(t, []string{".git", "*.tmp", "node_modules"}, e.Patterns())

	assert.True(t, e.Excluded(".git"))
	assert.True(t, e.Excluded("build.tmp"))
	assert.True(t, e.Excluded("node_modules"))
	assert.False(t, e.Excluded("main.go"))

	var none *Excluder
	assert.False(t, none.Excluded(".git"))

	assert.Equal(t, []string{"a", "*.log"}, ParseExcludes(" a, ,*.log"))
	assert.Nil(t, ParseExcludes("  "))
}
