package fstree

import (
	"path/filepath"
	"slices"

	"go.uber.org/zap"
)

// RefreshResult 刷新节点的结果
type RefreshResult int

const (
	// RefreshUpdated 文件信息已更新
	RefreshUpdated RefreshResult = iota
	// RefreshTypeChanged 文件和目录之间发生了类型变化，需要替换节点
	RefreshTypeChanged
	// RefreshGone 路径已无法分类
	RefreshGone
)

// queueIfLoading 加载中时记录待处理的变更；loaded 表示子节点可以直接修改
func (n *Node) queueIfLoading(op pendingOp) (queued, loaded bool) {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.closed {
		return false, false
	}
	switch n.state {
	case Loading:
		n.pending = append(n.pending, op)
		return true, false
	case Loaded:
		return false, true
	}
	return false, false
}

// editable 子节点已加载或正在加载，变更不会被忽略
func (n *Node) editable() bool {
	n.mu.RLock()
	defer n.mu.RUnlock()
	return !n.closed && (n.state == Loaded || n.state == Loading)
}

func (n *Node) indexOfPath(path string) int {
	n.mu.RLock()
	defer n.mu.RUnlock()
	return slices.IndexFunc(n.children, func(c *Node) bool { return c.entry.Path == path })
}

// AddChild 分类 path 并按顺序插入为子节点。
// 未加载的目录忽略该调用，已存在的子节点不会重复添加。
func (n *Node) AddChild(path string) *Node {
	path = filepath.Clean(path)
	queued, loaded := n.queueIfLoading(pendingOp{path: path})
	if queued || !loaded {
		return nil
	}
	if i := n.indexOfPath(path); i >= 0 {
		return n.Children()[i]
	}

	entry, err := n.env.lister.Classify(path)
	if err != nil {
		n.env.logger.Debug("add child", zap.String("path", path), zap.Error(err))
		return nil
	}
	c := n.env.newNode(entry)
	if c == nil {
		return nil
	}
	c.fixState(n)

	n.mu.Lock()
	idx := insertIndex(n.children, c, n.env.compare)
	n.children = slices.Insert(n.children, idx, c)
	n.mu.Unlock()

	n.notifyChildren(ChildrenEvent{Action: ActionAdd, NewItems: []*Node{c}, NewIndex: idx})
	return c
}

// RemoveChild 移除路径为 path 的子节点并释放其子树
func (n *Node) RemoveChild(path string) bool {
	path = filepath.Clean(path)
	queued, loaded := n.queueIfLoading(pendingOp{remove: true, path: path})
	if queued || !loaded {
		return false
	}

	n.mu.Lock()
	idx := slices.IndexFunc(n.children, func(c *Node) bool { return c.entry.Path == path })
	if idx < 0 {
		n.mu.Unlock()
		return false
	}
	c := n.children[idx]
	n.children = slices.Delete(n.children, idx, idx+1)
	n.mu.Unlock()

	n.notifyChildren(ChildrenEvent{Action: ActionRemove, OldItems: []*Node{c}, OldIndex: idx})
	c.Close()
	return true
}

// ReplaceChild 用 entry 重建子节点 old，用于文件和目录之间的类型变化
func (n *Node) ReplaceChild(old *Node, entry Entry) *Node {
	c := n.env.newNode(entry)
	if c == nil {
		n.RemoveChild(old.Path())
		return nil
	}
	c.fixState(n)

	n.mu.Lock()
	oldIdx := slices.Index(n.children, old)
	if oldIdx < 0 {
		n.mu.Unlock()
		return nil
	}
	n.children = slices.Delete(n.children, oldIdx, oldIdx+1)
	newIdx := insertIndex(n.children, c, n.env.compare)
	n.children = slices.Insert(n.children, newIdx, c)
	n.mu.Unlock()

	n.notifyChildren(ChildrenEvent{
		Action:   ActionReplace,
		OldItems: []*Node{old},
		NewItems: []*Node{c},
		OldIndex: oldIdx,
		NewIndex: newIdx,
	})
	old.Close()
	return c
}

// Refresh 重新分类节点。类型未变时更新文件信息，
// 类型变化时返回新的分类结果，由调用方替换节点。
func (n *Node) Refresh() (RefreshResult, Entry) {
	entry, err := n.env.lister.Classify(n.entry.Path)
	if err != nil {
		return RefreshGone, Entry{}
	}
	if entry.IsDir != n.entry.IsDir {
		return RefreshTypeChanged, entry
	}
	n.mu.Lock()
	n.entry.Info = entry.Info
	n.entry.Symlink = entry.Symlink
	n.mu.Unlock()
	n.notifyProperty(PropInfo)
	return RefreshUpdated, entry
}

// Resort 按当前比较器重新排序已加载的子节点，
// 位置发生变化时发出 Move 事件，并递归处理子目录
func (n *Node) Resort() {
	n.mu.Lock()
	if n.state != Loaded || len(n.children) == 0 {
		n.mu.Unlock()
		return
	}
	before := slices.Clone(n.children)
	sortNodes(n.children, n.env.compare)
	after := slices.Clone(n.children)
	n.mu.Unlock()

	var moved []*Node
	for i, c := range after {
		if before[i] != c {
			moved = append(moved, c)
		}
	}
	if len(moved) > 0 {
		n.notifyChildren(ChildrenEvent{Action: ActionMove, NewItems: moved})
	}
	for _, c := range after {
		if c.IsDir() {
			c.Resort()
		}
	}
}
