package fstree

import (
	"context"
	"path/filepath"
	"slices"
	"sync"
	"time"

	"github.com/sjzsdu/explorer/helper"
	"github.com/sjzsdu/explorer/watcher"
	"go.uber.org/zap"
)

// Tree 是以 RootPath 为根的目录镜像。根目录被递归监听，
// 变更按到达顺序在协调器中应用到已加载的节点上。
type Tree struct {
	env     *env
	watcher watcher.Watcher

	rootPath  string
	root      *Node
	observers []TreeObserver
	mu        sync.RWMutex

	stopWatch context.CancelFunc
	watchDone chan struct{}
}

// NewTree 创建一棵空树
func NewTree(coord *Coordinator, opts ...Option) *Tree {
	t := &Tree{
		env: &env{
			coord:   coord,
			factory: NewNode,
			compare: DefaultCompare,
			logger:  zap.NewNop(),
		},
	}
	for _, opt := range opts {
		opt(t)
	}
	if t.env.lister == nil {
		t.env.lister = NewClassifier()
	}
	return t
}

// Coordinator 返回树所使用的协调器
func (t *Tree) Coordinator() *Coordinator {
	return t.env.coord
}

// Lister 返回树所使用的分类器
func (t *Tree) Lister() Lister {
	return t.env.lister
}

func (t *Tree) Root() *Node {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.root
}

func (t *Tree) RootPath() string {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.rootPath
}

// Observe 订阅根节点替换，返回取消订阅的函数
func (t *Tree) Observe(o TreeObserver) (cancel func()) {
	t.mu.Lock()
	t.observers = append(t.observers, o)
	idx := len(t.observers) - 1
	t.mu.Unlock()
	var once sync.Once
	return func() {
		once.Do(func() {
			t.mu.Lock()
			defer t.mu.Unlock()
			// 保留位置，避免其他订阅的索引失效
			if idx < len(t.observers) {
				t.observers[idx] = nil
			}
		})
	}
}

// SetRootPath 替换根节点。旧根节点及其监听被释放；
// path 为空、不存在或不是目录时树变为空。
func (t *Tree) SetRootPath(path string) {
	t.stopWatching()
	if old := t.Root(); old != nil {
		old.Close()
	}

	var root *Node
	if path != "" {
		path = filepath.Clean(path)
		entry, err := t.env.lister.Classify(path)
		switch {
		case err != nil:
			t.env.logger.Warn("root unavailable", zap.String("path", path), zap.Error(err))
		case !entry.IsDir:
			t.env.logger.Warn("root is not a directory", zap.String("path", path))
		default:
			root = t.env.newNode(entry)
		}
	}

	t.mu.Lock()
	t.rootPath = path
	t.root = root
	observers := slices.Clone(t.observers)
	t.mu.Unlock()

	t.env.metrics.RootChanged()
	for _, o := range observers {
		if o != nil {
			o.RootChanged(t, root)
		}
	}

	if root != nil {
		t.startWatching(root)
	}
}

// SetComparer 替换排序规则并重新排序所有已加载的目录
func (t *Tree) SetComparer(cmp Comparer) {
	if cmp == nil {
		cmp = DefaultCompare
	}
	t.env.compare = cmp
	if root := t.Root(); root != nil {
		root.Resort()
	}
}

// FindItem 沿已加载的子节点查找路径对应的节点，找不到时返回 nil
func (t *Tree) FindItem(path string) *Node {
	root := t.Root()
	if root == nil {
		return nil
	}
	segments, ok := helper.RelSegments(root.Path(), path)
	if !ok {
		return nil
	}
	node := root
	for _, seg := range segments {
		node = node.Child(seg)
		if node == nil {
			return nil
		}
	}
	return node
}

// Apply 将一个变更应用到树上，返回变更是否找到了目标节点
func (t *Tree) Apply(ev watcher.Event) bool {
	if t.Root() == nil {
		return false
	}
	var handled bool
	switch ev.Op {
	case watcher.Created:
		handled = t.applyCreated(ev.Path)
	case watcher.Deleted:
		handled = t.applyDeleted(ev.Path)
	case watcher.Renamed:
		removed := t.applyDeleted(ev.OldPath)
		added := t.applyCreated(ev.Path)
		handled = removed || added
	case watcher.Modified:
		handled = t.applyModified(ev.Path)
	}

	if handled {
		t.env.metrics.WatchEvent(ev.Op.String())
	} else {
		t.env.metrics.WatchDropped(ev.Op.String())
		t.env.logger.Debug("watch event dropped", zap.Stringer("event", ev))
	}
	return handled
}

func (t *Tree) applyCreated(path string) bool {
	if path == "" {
		return false
	}
	parent := t.FindItem(filepath.Dir(path))
	if parent == nil || !parent.editable() {
		return false
	}
	parent.AddChild(path)
	return true
}

func (t *Tree) applyDeleted(path string) bool {
	if path == "" {
		return false
	}
	if filepath.Clean(path) == t.RootPath() {
		t.SetRootPath(t.RootPath())
		return true
	}
	parent := t.FindItem(filepath.Dir(path))
	if parent == nil || !parent.editable() {
		return false
	}
	parent.RemoveChild(path)
	return true
}

func (t *Tree) applyModified(path string) bool {
	node := t.FindItem(path)
	if node == nil {
		return false
	}
	result, entry := node.Refresh()
	if result != RefreshTypeChanged {
		return true
	}
	if parent := node.Parent(); parent != nil {
		parent.ReplaceChild(node, entry)
	} else {
		t.SetRootPath(t.RootPath())
	}
	return true
}

func (t *Tree) startWatching(root *Node) {
	if t.watcher == nil {
		return
	}
	ctx, cancel := context.WithCancel(context.Background())
	events, errs, err := t.watcher.Watch(ctx, root.Path(), true)
	if err != nil {
		cancel()
		t.env.logger.Warn("watch root", zap.String("path", root.Path()), zap.Error(err))
		return
	}

	done := make(chan struct{})
	t.stopWatch, t.watchDone = cancel, done
	go func() {
		defer close(done)
		for {
			select {
			case <-ctx.Done():
				return
			case ev, ok := <-events:
				if !ok {
					return
				}
				t.env.coord.Post(func() {
					// 根节点已被替换时丢弃
					if ctx.Err() != nil || t.Root() != root {
						return
					}
					t.Apply(ev)
				})
			case err, ok := <-errs:
				if !ok {
					errs = nil
					continue
				}
				t.env.logger.Warn("watch error", zap.String("path", root.Path()), zap.Error(err))
			}
		}
	}()
}

func (t *Tree) stopWatching() {
	if t.stopWatch == nil {
		return
	}
	t.stopWatch()
	<-t.watchDone
	t.stopWatch, t.watchDone = nil, nil
}

// Close 停止监听并释放根节点
func (t *Tree) Close() {
	t.stopWatching()
	t.mu.Lock()
	root := t.root
	t.root = nil
	t.mu.Unlock()
	if root != nil {
		root.Close()
	}
}

// Settle 等待所有进行中的加载结束。不能在协调器中调用。
func (t *Tree) Settle(ctx context.Context) error {
	ticker := time.NewTicker(5 * time.Millisecond)
	defer ticker.Stop()
	for {
		var busy bool
		if err := t.env.coord.Do(ctx, func() { busy = t.env.loads > 0 }); err != nil {
			return err
		}
		if !busy {
			return nil
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}
	}
}

// Expand 逐层激活目录直到 depth 层，depth < 0 表示不限层数。
// 不限层数时不进入符号链接目录，避免循环。不能在协调器中调用。
func (t *Tree) Expand(ctx context.Context, depth int) error {
	var level []*Node
	if err := t.env.coord.Do(ctx, func() {
		if root := t.Root(); root != nil {
			level = []*Node{root}
		}
	}); err != nil {
		return err
	}

	for d := 0; len(level) > 0 && (depth < 0 || d < depth); d++ {
		current := level
		if err := t.env.coord.Do(ctx, func() {
			for _, n := range current {
				n.SetActive(true)
			}
		}); err != nil {
			return err
		}
		if err := t.Settle(ctx); err != nil {
			return err
		}

		var next []*Node
		if err := t.env.coord.Do(ctx, func() {
			for _, n := range current {
				for _, c := range n.Children() {
					if c.IsDir() && !(depth < 0 && c.Symlink()) {
						next = append(next, c)
					}
				}
			}
		}); err != nil {
			return err
		}
		level = next
	}
	return nil
}

// ExpandTo 激活从根到 path 的每一级目录，返回 path 对应的节点。
// 不能在协调器中调用。
func (t *Tree) ExpandTo(ctx context.Context, path string) (*Node, error) {
	root := t.Root()
	if root == nil {
		return nil, &PathError{Op: "expand", Path: path, Kind: ErrNotFound}
	}
	segments, ok := helper.RelSegments(root.Path(), path)
	if !ok {
		return nil, &PathError{Op: "expand", Path: path, Kind: ErrNotFound}
	}

	node := root
	for i := 0; ; i++ {
		current := node
		if err := t.env.coord.Do(ctx, func() { current.SetActive(true) }); err != nil {
			return nil, err
		}
		if i == len(segments) {
			return node, nil
		}
		if err := t.Settle(ctx); err != nil {
			return nil, err
		}
		node = current.Child(segments[i])
		if node == nil {
			return nil, &PathError{Op: "expand", Path: path, Kind: ErrNotFound}
		}
	}
}
