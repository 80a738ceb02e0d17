package projector

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRender(t *testing.T) {
	f := newFixture(t)
	f.activate("/r")
	f.activate("/r/a")
	f.consistent()

	want := "r/\n" +
		"├── a/\n" +
		"│   └── x.txt\n" +
		"├── b/\n" +
		"└── c.txt (1 B)\n"
	assert.Equal(t, want, Render(f.p.Sequence(), RenderOptions{Title: "r/", ShowSize: true}))

	assert.Equal(t, "", Render(nil, RenderOptions{}))
}

func TestRenderWithRoot(t *testing.T) {
	f := newFixture(t, WithRoot(true))
	f.activate("/r")
	f.activate("/r/a")
	f.consistent()

	want := "r/\n" +
		"├── a/\n" +
		"│   └── x.txt\n" +
		"├── b/\n" +
		"└── c.txt\n"
	assert.Equal(t, want, Render(f.p.Sequence(), RenderOptions{}))
}

func TestStats(t *testing.T) {
	f := newFixture(t)
	f.activate("/r")
	f.activate("/r/a")
	f.consistent()

	stats := Stats(f.p.Sequence())
	assert.Equal(t, 4, stats.TotalNodes)
	assert.Equal(t, 2, stats.DirectoryCount)
	assert.Equal(t, 2, stats.FileCount)
	assert.EqualValues(t, 2, stats.TotalSize)
	assert.Equal(t, 2, stats.MaxDepth)
	assert.Equal(t, "2 directories, 2 files, 2 bytes total", stats.String())
}

func TestFormatSize(t *testing.T) {
	assert.Equal(t, "512 B", FormatSize(512))
	assert.Equal(t, "1.5 KB", FormatSize(1536))
	assert.Equal(t, "2.0 MB", FormatSize(2*1024*1024))
	assert.Equal(t, "1.0 GB", FormatSize(1024*1024*1024))
	assert.Equal(t, "3.0 MB total", Statistics{TotalSize: 3 * 1024 * 1024}.String()[len("0 directories, 0 files, "):])
}
