// Package projector 将目录树投影为可见节点的扁平序列，供列表类界面直接使用。
package projector

import (
	"slices"
	"sync"
	"sync/atomic"
	"time"

	"github.com/sjzsdu/explorer/fstree"
	"github.com/sjzsdu/explorer/metrics"
	"github.com/sjzsdu/explorer/share"
	"go.uber.org/zap"
)

// Projector 维护树的先序序列，并对外发布过滤掉隐藏节点后的结果。
// 结构变化以整段的方式直接拼接到两个序列中；隐藏状态的变化经过防抖后统一重新过滤。
type Projector struct {
	coord       *fstree.Coordinator
	debounce    time.Duration
	includeRoot bool
	logger      *zap.Logger
	metrics     *metrics.Metrics

	// 以下字段只在协调器中访问
	tree       *fstree.Tree
	detachTree func()
	all        []*binding // 全部已绑定节点的先序
	vis        []*binding // all 中可见的部分
	bindings   map[*fstree.Node]*binding
	refresh    *fstree.Debouncer

	mu        sync.RWMutex
	seq       []*fstree.Node
	listeners map[int]func()
	nextID    int
	refreshes atomic.Int64
}

// Option 配置 Projector
type Option func(*Projector)

// WithDebounce 设置隐藏状态变化后的静默时间
func WithDebounce(d time.Duration) Option {
	return func(p *Projector) {
		if d > 0 {
			p.debounce = d
		}
	}
}

// WithRoot 设置可见序列是否包含根节点，默认不包含
func WithRoot(include bool) Option {
	return func(p *Projector) {
		p.includeRoot = include
	}
}

// WithLogger 设置日志
func WithLogger(l *zap.Logger) Option {
	return func(p *Projector) {
		if l != nil {
			p.logger = l
		}
	}
}

// WithMetrics 设置指标
func WithMetrics(m *metrics.Metrics) Option {
	return func(p *Projector) {
		p.metrics = m
	}
}

// New 创建投影，需要 Attach 到一棵树后才有内容
func New(coord *fstree.Coordinator, opts ...Option) *Projector {
	p := &Projector{
		coord:     coord,
		debounce:  share.DEBOUNCE,
		logger:    zap.NewNop(),
		bindings:  make(map[*fstree.Node]*binding),
		listeners: make(map[int]func()),
	}
	for _, opt := range opts {
		opt(p)
	}
	p.refresh = coord.NewDebouncer(p.debounce, p.debouncedRefresh)
	return p
}

// Attach 绑定到树，跟随根节点的替换。只能在协调器中调用。
func (p *Projector) Attach(t *fstree.Tree) {
	if p.tree != nil {
		p.Detach()
	}
	p.tree = t
	p.detachTree = t.Observe(fstree.RootChangedFunc(func(_ *fstree.Tree, root *fstree.Node) {
		p.rootChanged(root)
	}))
	if root := t.Root(); root != nil {
		p.place(0, 0, p.collect(nil, root))
	}
	p.changed()
}

// Detach 解除与树的绑定并清空序列。只能在协调器中调用。
func (p *Projector) Detach() {
	if p.detachTree != nil {
		p.detachTree()
		p.detachTree = nil
	}
	p.tree = nil
	p.unbindAll()
	p.refresh.Stop()
	p.changed()
}

func (p *Projector) rootChanged(root *fstree.Node) {
	p.unbindAll()
	if root != nil {
		p.place(0, 0, p.collect(nil, root))
	}
	p.changed()
}

// Sequence 返回当前可见序列的副本，可在任意协程中调用
func (p *Projector) Sequence() []*fstree.Node {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return slices.Clone(p.seq)
}

// Len 返回可见节点数
func (p *Projector) Len() int {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return len(p.seq)
}

// At 返回第 i 个可见节点，越界时返回 nil
func (p *Projector) At(i int) *fstree.Node {
	p.mu.RLock()
	defer p.mu.RUnlock()
	if i < 0 || i >= len(p.seq) {
		return nil
	}
	return p.seq[i]
}

// Index 返回节点在可见序列中的位置，不可见时返回 -1
func (p *Projector) Index(n *fstree.Node) int {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return slices.Index(p.seq, n)
}

// Refreshes 返回防抖刷新的执行次数
func (p *Projector) Refreshes() int64 {
	return p.refreshes.Load()
}

// OnChange 注册变化回调，序列更新或可见节点属性变化时在协调器中调用。
// 返回取消注册的函数。
func (p *Projector) OnChange(fn func()) (cancel func()) {
	p.mu.Lock()
	id := p.nextID
	p.nextID++
	p.listeners[id] = fn
	p.mu.Unlock()
	return func() {
		p.mu.Lock()
		delete(p.listeners, id)
		p.mu.Unlock()
	}
}

// All 返回包含隐藏节点在内的完整先序序列。只能在协调器中调用。
func (p *Projector) All() []*fstree.Node {
	all := make([]*fstree.Node, len(p.all))
	for i, b := range p.all {
		all[i] = b.node
	}
	return all
}

// changed 在序列变化后更新指标并通知监听者
func (p *Projector) changed() {
	p.metrics.SequenceLength(p.Len())
	p.notify()
}

func (p *Projector) notify() {
	p.mu.RLock()
	ids := make([]int, 0, len(p.listeners))
	for id := range p.listeners {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	fns := make([]func(), 0, len(ids))
	for _, id := range ids {
		fns = append(fns, p.listeners[id])
	}
	p.mu.RUnlock()

	for _, fn := range fns {
		fn()
	}
}

func (p *Projector) debouncedRefresh() {
	p.refilter()
	p.changed()
	p.refreshes.Add(1)
	p.metrics.Refreshed(p.Len())
	p.logger.Debug("projection refreshed", zap.Int("visible", p.Len()), zap.Int("bound", len(p.all)))
}
