package fstree

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/sjzsdu/explorer/watcher"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/require"
)

type fixture struct {
	t     *testing.T
	fs    afero.Fs
	coord *Coordinator
	tree  *Tree
	w     *watcher.Manual
}

// newFixture 创建 /r 下的测试目录：a/x.txt、b/、c.txt
func newFixture(t *testing.T, lister func(afero.Fs) Lister, opts ...Option) *fixture {
	t.Helper()
	fs := afero.NewMemMapFs()
	require.NoError(t, fs.MkdirAll("/r/a", 0o755))
	require.NoError(t, fs.MkdirAll("/r/b", 0o755))
	require.NoError(t, afero.WriteFile(fs, "/r/a/x.txt", []byte("x"), 0o644))
	require.NoError(t, afero.WriteFile(fs, "/r/c.txt", []byte("c"), 0o644))

	var l Lister = NewClassifier(WithFs(fs), WithWorkers(2))
	if lister != nil {
		l = lister(fs)
	}

	coord := NewCoordinator()
	w := watcher.NewManual()
	opts = append([]Option{WithLister(l), WithWatcher(w)}, opts...)
	f := &fixture{t: t, fs: fs, coord: coord, tree: NewTree(coord, opts...), w: w}
	t.Cleanup(coord.Close)
	t.Cleanup(func() { _ = coord.Do(context.Background(), f.tree.Close) })
	return f
}

func (f *fixture) do(fn func()) {
	f.t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	require.NoError(f.t, f.coord.Do(ctx, fn))
}

func (f *fixture) settle() {
	f.t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	require.NoError(f.t, f.tree.Settle(ctx))
}

// eventually 在协调器中反复检查条件
func (f *fixture) eventually(cond func() bool) {
	f.t.Helper()
	require.Eventually(f.t, func() bool {
		var ok bool
		f.do(func() { ok = cond() })
		return ok
	}, 5*time.Second, 5*time.Millisecond)
}

func (f *fixture) loadRoot() *Node {
	f.t.Helper()
	f.do(func() { f.tree.SetRootPath("/r") })
	root := f.tree.Root()
	require.NotNil(f.t, root)
	f.do(func() { root.SetActive(true) })
	f.settle()
	return root
}

func names(nodes []*Node) []string {
	out := make([]string, len(nodes))
	for i, n := range nodes {
		out[i] = n.Name()
	}
	return out
}

// recorder 记录节点通知，只在协调器中写入
type recorder struct {
	children []ChildrenEvent
	props    []Property
}

func (r *recorder) ChildrenChanged(_ *Node, ev ChildrenEvent) {
	r.children = append(r.children, ev)
}

func (r *recorder) PropertyChanged(_ *Node, p Property) {
	r.props = append(r.props, p)
}

// gateLister 在放行前阻塞 ReadDir，并统计调用次数
type gateLister struct {
	Lister
	gate  chan struct{}
	once  sync.Once
	calls atomic.Int32
	fail  map[string]error
	mu    sync.Mutex
}

func newGateLister(inner Lister) *gateLister {
	return &gateLister{Lister: inner, gate: make(chan struct{}), fail: make(map[string]error)}
}

func (g *gateLister) release() {
	g.once.Do(func() { close(g.gate) })
}

func (g *gateLister) setFail(path string, err error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if err == nil {
		delete(g.fail, path)
		return
	}
	g.fail[path] = err
}

func (g *gateLister) ReadDir(ctx context.Context, path string) ([]Entry, error) {
	g.calls.Add(1)
	select {
	case <-g.gate:
	case <-ctx.Done():
		return nil, ctx.Err()
	}
	g.mu.Lock()
	err := g.fail[path]
	g.mu.Unlock()
	if err != nil {
		return nil, err
	}
	return g.Lister.ReadDir(ctx, path)
}

var errBoom = errors.New("boom")
