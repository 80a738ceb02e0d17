package fstree

import "fmt"

// Action 子节点列表的变化类型
type Action int

const (
	ActionAdd Action = iota + 1
	ActionRemove
	ActionReset
	ActionMove
	ActionReplace
)

func (a Action) String() string {
	switch a {
	case ActionAdd:
		return "add"
	case ActionRemove:
		return "remove"
	case ActionReset:
		return "reset"
	case ActionMove:
		return "move"
	case ActionReplace:
		return "replace"
	}
	return fmt.Sprintf("action(%d)", int(a))
}

// ChildrenEvent 描述一次子节点列表的变化。
// Move 事件的 NewItems 按新顺序列出位置改变的子节点。
type ChildrenEvent struct {
	Action   Action
	NewItems []*Node
	OldItems []*Node
	NewIndex int
	OldIndex int
}

// Property 可观察的节点属性
type Property int

const (
	PropActive Property = iota + 1
	PropHidden
	PropInfo
	PropLoadState
)

func (p Property) String() string {
	switch p {
	case PropActive:
		return "active"
	case PropHidden:
		return "hidden"
	case PropInfo:
		return "info"
	case PropLoadState:
		return "load_state"
	}
	return fmt.Sprintf("property(%d)", int(p))
}

// Observer 接收节点变化通知，回调总在协调器中执行
type Observer interface {
	ChildrenChanged(n *Node, ev ChildrenEvent)
	PropertyChanged(n *Node, p Property)
}

// ObserverFuncs 用函数实现 Observer，未设置的回调被忽略
type ObserverFuncs struct {
	Children func(n *Node, ev ChildrenEvent)
	Property func(n *Node, p Property)
}

func (f ObserverFuncs) ChildrenChanged(n *Node, ev ChildrenEvent) {
	if f.Children != nil {
		f.Children(n, ev)
	}
}

func (f ObserverFuncs) PropertyChanged(n *Node, p Property) {
	if f.Property != nil {
		f.Property(n, p)
	}
}

// TreeObserver 接收根节点替换通知
type TreeObserver interface {
	RootChanged(t *Tree, root *Node)
}

// RootChangedFunc 用函数实现 TreeObserver
type RootChangedFunc func(t *Tree, root *Node)

func (f RootChangedFunc) RootChanged(t *Tree, root *Node) {
	f(t, root)
}
