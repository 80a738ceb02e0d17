package fstree

import (
	"context"
	"fmt"
	"io/fs"
	"slices"
	"sync"
)

// LoadState 目录子节点的加载状态
type LoadState int

const (
	NotLoaded LoadState = iota
	Loading
	Loaded
	Failed
)

func (s LoadState) String() string {
	switch s {
	case NotLoaded:
		return "not_loaded"
	case Loading:
		return "loading"
	case Loaded:
		return "loaded"
	case Failed:
		return "failed"
	}
	return fmt.Sprintf("state(%d)", int(s))
}

// Factory 为分类后的条目创建节点，返回 nil 表示跳过该条目。
// 目录加载时在后台协程中调用。
type Factory func(e Entry) *Node

// Node 是目录树中的一个文件或目录。
// 修改方法只能在协调器中调用；读取方法可在任意协程中调用。
type Node struct {
	entry    Entry
	active   bool
	hidden   bool
	depth    int
	state    LoadState
	children []*Node
	parent   *Node
	data     any

	observers []*observerEntry
	pending   []pendingOp
	cancel    context.CancelFunc
	loadDone  chan struct{}
	closed    bool

	env *env
	mu  sync.RWMutex
}

type observerEntry struct {
	o Observer
}

// NewNode 创建一个未挂载的节点
func NewNode(e Entry) *Node {
	return &Node{entry: e}
}

func (n *Node) Path() string {
	return n.entry.Path
}

func (n *Node) Name() string {
	return n.entry.Name
}

func (n *Node) IsDir() bool {
	return n.entry.IsDir
}

func (n *Node) Symlink() bool {
	n.mu.RLock()
	defer n.mu.RUnlock()
	return n.entry.Symlink
}

// Entry 返回节点的分类信息
func (n *Node) Entry() Entry {
	n.mu.RLock()
	defer n.mu.RUnlock()
	return n.entry
}

// Info 返回最近一次刷新的文件信息
func (n *Node) Info() fs.FileInfo {
	n.mu.RLock()
	defer n.mu.RUnlock()
	return n.entry.Info
}

func (n *Node) Active() bool {
	n.mu.RLock()
	defer n.mu.RUnlock()
	return n.active
}

func (n *Node) Hidden() bool {
	n.mu.RLock()
	defer n.mu.RUnlock()
	return n.hidden
}

func (n *Node) Depth() int {
	n.mu.RLock()
	defer n.mu.RUnlock()
	return n.depth
}

func (n *Node) LoadState() LoadState {
	n.mu.RLock()
	defer n.mu.RUnlock()
	return n.state
}

func (n *Node) Parent() *Node {
	return n.parent
}

// Children 返回子节点的副本，未加载时为空
func (n *Node) Children() []*Node {
	n.mu.RLock()
	defer n.mu.RUnlock()
	return slices.Clone(n.children)
}

// ChildCount 返回已加载的子节点数
func (n *Node) ChildCount() int {
	n.mu.RLock()
	defer n.mu.RUnlock()
	return len(n.children)
}

// ChildAt 返回第 i 个子节点，越界时返回 nil
func (n *Node) ChildAt(i int) *Node {
	n.mu.RLock()
	defer n.mu.RUnlock()
	if i < 0 || i >= len(n.children) {
		return nil
	}
	return n.children[i]
}

// IndexOf 返回 c 在子节点中的位置，不是子节点时返回 -1
func (n *Node) IndexOf(c *Node) int {
	n.mu.RLock()
	defer n.mu.RUnlock()
	return slices.Index(n.children, c)
}

// Child 按名称查找已加载的子节点
func (n *Node) Child(name string) *Node {
	n.mu.RLock()
	defer n.mu.RUnlock()
	for _, c := range n.children {
		if c.entry.Name == name {
			return c
		}
	}
	return nil
}

// Data 返回附加数据
func (n *Node) Data() any {
	n.mu.RLock()
	defer n.mu.RUnlock()
	return n.data
}

// SetData 设置附加数据，通常在 Factory 中调用
func (n *Node) SetData(v any) {
	n.mu.Lock()
	n.data = v
	n.mu.Unlock()
}

// Observe 订阅节点变化，返回取消订阅的函数
func (n *Node) Observe(o Observer) (cancel func()) {
	entry := &observerEntry{o: o}
	n.mu.Lock()
	n.observers = append(n.observers, entry)
	n.mu.Unlock()
	return func() {
		n.mu.Lock()
		defer n.mu.Unlock()
		n.observers = slices.DeleteFunc(n.observers, func(e *observerEntry) bool { return e == entry })
	}
}

func (n *Node) snapshotObservers() []*observerEntry {
	n.mu.RLock()
	defer n.mu.RUnlock()
	return slices.Clone(n.observers)
}

func (n *Node) notifyChildren(ev ChildrenEvent) {
	for _, e := range n.snapshotObservers() {
		e.o.ChildrenChanged(n, ev)
	}
}

func (n *Node) notifyProperty(p Property) {
	for _, e := range n.snapshotObservers() {
		e.o.PropertyChanged(n, p)
	}
}

// SetActive 设置展开状态。激活未加载的目录会开始后台加载；
// 加载中被取消激活时加载被取消，状态回到 NotLoaded。
func (n *Node) SetActive(active bool) {
	n.mu.Lock()
	if n.closed || n.active == active {
		n.mu.Unlock()
		return
	}
	n.active = active
	state := n.state
	n.mu.Unlock()
	n.notifyProperty(PropActive)

	n.cascadeHidden()

	if !n.entry.IsDir {
		return
	}
	switch {
	case active && (state == NotLoaded || state == Failed):
		n.startLoad()
	case !active && state == Loading:
		n.cancelLoad()
		n.setState(NotLoaded)
	}
}

// SetHidden 设置隐藏状态并向下传递。根节点始终可见。
func (n *Node) SetHidden(hidden bool) {
	if hidden && n.parent == nil {
		return
	}
	n.mu.Lock()
	if n.hidden == hidden {
		n.mu.Unlock()
		return
	}
	n.hidden = hidden
	n.mu.Unlock()
	n.notifyProperty(PropHidden)
	n.cascadeHidden()
}

// childHidden 子节点应有的隐藏状态
func (n *Node) childHidden() bool {
	n.mu.RLock()
	defer n.mu.RUnlock()
	return n.hidden || !n.active
}

func (n *Node) cascadeHidden() {
	hidden := n.childHidden()
	for _, c := range n.Children() {
		c.SetHidden(hidden)
	}
}

// fixState 按父节点当前状态设置隐藏状态和深度，用于尚未发布的节点
func (n *Node) fixState(parent *Node) {
	hidden := parent.childHidden()
	depth := parent.Depth() + 1
	n.mu.Lock()
	n.parent = parent
	n.hidden = hidden
	n.depth = depth
	n.env = parent.env
	n.mu.Unlock()
}

func (n *Node) setState(s LoadState) {
	n.mu.Lock()
	if n.state == s {
		n.mu.Unlock()
		return
	}
	n.state = s
	n.mu.Unlock()
	n.notifyProperty(PropLoadState)
}

// Close 取消进行中的加载并释放整棵子树，之后节点不再产生通知
func (n *Node) Close() {
	n.mu.Lock()
	if n.closed {
		n.mu.Unlock()
		return
	}
	n.closed = true
	n.mu.Unlock()

	n.cancelLoad()
	for _, c := range n.Children() {
		c.Close()
	}

	n.mu.Lock()
	n.observers = nil
	n.pending = nil
	n.mu.Unlock()
}

func (n *Node) String() string {
	return n.entry.Path
}
