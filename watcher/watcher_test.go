package watcher

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func next(t *testing.T, ch <-chan Event) Event {
	t.Helper()
	select {
	case ev, ok := <-ch:
		require.True(t, ok, "event channel closed")
		return ev
	case <-time.After(3 * time.Second):
		t.Fatal("timed out waiting for event")
	}
	return Event{}
}

// waitFor 读取事件直到满足条件
func waitFor(t *testing.T, ch <-chan Event, match func(Event) bool) Event {
	t.Helper()
	deadline := time.After(5 * time.Second)
	for {
		select {
		case ev, ok := <-ch:
			require.True(t, ok, "event channel closed")
			if match(ev) {
				return ev
			}
		case <-deadline:
			t.Fatal("timed out waiting for matching event")
			return Event{}
		}
	}
}

func TestOpString(t *testing.T) {
	assert.Equal(t, "created", Created.String())
	assert.Equal(t, "deleted", Deleted.String())
	assert.Equal(t, "renamed", Renamed.String())
	assert.Equal(t, "modified", Modified.String())
	assert.Equal(t, "op(9)", Op(9).String())
	assert.Equal(t, "renamed /a -> /b", Event{Op: Renamed, OldPath: "/a", Path: "/b"}.String())
}

func TestManualCovers(t *testing.T) {
	tests := []struct {
		name      string
		recursive bool
		path      string
		want      bool
	}{
		{"direct child", false, "/r/a", true},
		{"nested non recursive", false, "/r/a/b", false},
		{"nested recursive", true, "/r/a/b", true},
		{"sibling prefix", true, "/rr/a", false},
		{"outside", true, "/x/a", false},
		{"empty", true, "", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sub := &subscription{dir: "/r", recursive: tt.recursive}
			assert.Equal(t, tt.want, sub.covers(tt.path))
		})
	}
}

func TestManualEmitAndCancel(t *testing.T) {
	m := NewManual()
	ctx, cancel := context.WithCancel(context.Background())
	events, errs, err := m.Watch(ctx, "/r", true)
	require.NoError(t, err)
	assert.Equal(t, 1, m.Subscribers())

	m.Emit(Event{Op: Created, Path: "/r/a"})
	m.Emit(Event{Op: Created, Path: "/other/a"})
	m.Emit(Event{Op: Renamed, OldPath: "/r/a", Path: "/r/b"})
	assert.Equal(t, Event{Op: Created, Path: "/r/a"}, next(t, events))
	assert.Equal(t, Renamed, next(t, events).Op)

	m.Fail(assert.AnError)
	assert.ErrorIs(t, <-errs, assert.AnError)

	cancel()
	assert.Eventually(t, func() bool { return m.Subscribers() == 0 }, time.Second, 5*time.Millisecond)
	_, ok := <-events
	assert.False(t, ok)
}

func TestDiffOrdering(t *testing.T) {
	t0 := time.Unix(100, 0)
	prev := snapshot{
		"/r/a":     {modTime: t0, isDir: false},
		"/r/b":     {modTime: t0, isDir: true},
		"/r/c":     {modTime: t0, isDir: false},
		"/r/d":     {modTime: t0, isDir: false, size: 1},
		"/r/b/old": {modTime: t0},
	}
	cur := snapshot{
		"/r/a":   {modTime: t0.Add(time.Second)},
		"/r/b":   {modTime: t0.Add(time.Second), isDir: true},
		"/r/c":   {modTime: t0, isDir: true},
		"/r/d":   {modTime: t0, size: 1},
		"/r/new": {modTime: t0},
	}
	got := diff(prev, cur)
	assert.Equal(t, []Event{
		{Op: Deleted, Path: "/r/b/old"},
		{Op: Deleted, Path: "/r/c"},
		{Op: Modified, Path: "/r/a"},
		{Op: Created, Path: "/r/c"},
		{Op: Created, Path: "/r/new"},
	}, got)
}

func TestPollerDetectsChanges(t *testing.T) {
	fs := afero.NewMemMapFs()
	require.NoError(t, fs.MkdirAll("/r/sub", 0o755))
	require.NoError(t, afero.WriteFile(fs, "/r/file.txt", []byte("x"), 0o644))

	p := NewPoller(10*time.Millisecond, WithPollFs(fs))
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	events, _, err := p.Watch(ctx, "/r", true)
	require.NoError(t, err)

	require.NoError(t, afero.WriteFile(fs, "/r/sub/new.txt", []byte("y"), 0o644))
	ev := waitFor(t, events, func(ev Event) bool { return ev.Op == Created })
	assert.Equal(t, "/r/sub/new.txt", ev.Path)

	require.NoError(t, fs.Chtimes("/r/file.txt", time.Now(), time.Now().Add(time.Hour)))
	ev = waitFor(t, events, func(ev Event) bool { return ev.Op == Modified })
	assert.Equal(t, "/r/file.txt", ev.Path)

	require.NoError(t, fs.Remove("/r/file.txt"))
	ev = waitFor(t, events, func(ev Event) bool { return ev.Op == Deleted })
	assert.Equal(t, "/r/file.txt", ev.Path)
}

func TestPollerMissingDir(t *testing.T) {
	p := NewPoller(time.Second, WithPollFs(afero.NewMemMapFs()))
	_, _, err := p.Watch(context.Background(), "/missing", true)
	assert.Error(t, err)
}

func TestNotifyRecursive(t *testing.T) {
	dir, err := os.MkdirTemp("", "explorer-watch-*")
	require.NoError(t, err)
	defer os.RemoveAll(dir)
	dir, err = filepath.EvalSymlinks(dir)
	require.NoError(t, err)

	n := NewNotify()
	ctx, cancel := context.WithCancel(context.Background())
	events, _, err := n.Watch(ctx, dir, true)
	require.NoError(t, err)

	sub := filepath.Join(dir, "sub")
	require.NoError(t, os.Mkdir(sub, 0o755))
	ev := waitFor(t, events, func(ev Event) bool { return ev.Path == sub })
	assert.Equal(t, Created, ev.Op)

	// 新建目录已被加入监听
	file := filepath.Join(sub, "a.txt")
	require.Eventually(t, func() bool {
		_ = os.WriteFile(file, []byte("a"), 0o644)
		select {
		case ev := <-events:
			return ev.Path == file
		case <-time.After(100 * time.Millisecond):
			return false
		}
	}, 5*time.Second, 10*time.Millisecond)

	require.NoError(t, os.Remove(file))
	ev = waitFor(t, events, func(ev Event) bool { return ev.Op == Deleted })
	assert.Equal(t, file, ev.Path)

	cancel()
	assert.Eventually(t, func() bool {
		for {
			select {
			case _, ok := <-events:
				if !ok {
					return true
				}
			default:
				return false
			}
		}
	}, 3*time.Second, 10*time.Millisecond)
}

func TestNotifyMissingDir(t *testing.T) {
	_, _, err := NewNotify().Watch(context.Background(), filepath.Join(os.TempDir(), "explorer-missing-dir-x"), false)
	assert.Error(t, err)
}
