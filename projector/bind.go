package projector

import (
	"slices"

	"github.com/sjzsdu/explorer/fstree"
)

// binding 是一个已绑定节点在两个序列中的位置
type binding struct {
	node   *fstree.Node
	cancel func()
	depth  int
	// all 中的下标
	pos int
	// vis 中的下标，不可见时为 -1
	vpos int
}

// observer 把节点通知转给 Projector
type observer struct {
	p *Projector
}

func (o observer) ChildrenChanged(n *fstree.Node, ev fstree.ChildrenEvent) {
	o.p.childrenChanged(n, ev)
}

func (o observer) PropertyChanged(n *fstree.Node, prop fstree.Property) {
	o.p.propertyChanged(n, prop)
}

func (p *Projector) childrenChanged(n *fstree.Node, ev fstree.ChildrenEvent) {
	if _, ok := p.bindings[n]; !ok {
		return
	}
	switch ev.Action {
	case fstree.ActionAdd:
		p.insert(n, ev.NewIndex, ev.NewItems)
	case fstree.ActionRemove:
		for _, c := range ev.OldItems {
			p.unbind(c)
		}
	case fstree.ActionReset:
		p.unbindDescendants(n)
	case fstree.ActionMove:
		p.move(n)
	case fstree.ActionReplace:
		for _, c := range ev.OldItems {
			p.unbind(c)
		}
		p.insert(n, ev.NewIndex, ev.NewItems)
	}
	p.changed()
}

func (p *Projector) propertyChanged(n *fstree.Node, prop fstree.Property) {
	if _, ok := p.bindings[n]; !ok {
		return
	}
	if prop == fstree.PropHidden {
		p.refresh.Schedule()
		return
	}
	p.notify()
}

// shows 节点是否出现在可见序列中
func (p *Projector) shows(n *fstree.Node) bool {
	if n.Hidden() {
		return false
	}
	return n.Parent() != nil || p.includeRoot
}

// collect 按先序为 n 及其已加载的后代创建绑定
func (p *Projector) collect(run []*binding, n *fstree.Node) []*binding {
	if _, ok := p.bindings[n]; ok {
		return run
	}
	b := &binding{node: n, depth: n.Depth(), vpos: -1}
	b.cancel = n.Observe(observer{p: p})
	p.bindings[n] = b
	run = append(run, b)
	for _, c := range n.Children() {
		run = p.collect(run, c)
	}
	return run
}

// insert 将 parent 新增的一组相邻子节点连同其子树作为一段整体插入
func (p *Projector) insert(parent *fstree.Node, index int, items []*fstree.Node) {
	if len(items) == 0 {
		return
	}
	from := index + len(items)
	if i := parent.IndexOf(items[len(items)-1]); i >= 0 {
		from = i + 1
	}
	at := p.after(parent, from)
	vat := p.visibleFrom(at)

	var run []*binding
	for _, c := range items {
		run = p.collect(run, c)
	}
	p.place(at, vat, run)
}

// place 在 all 的 at 处插入 run，其中可见的部分插入可见序列的 vat 处
func (p *Projector) place(at, vat int, run []*binding) {
	if len(run) == 0 {
		return
	}
	p.all = slices.Insert(p.all, at, run...)
	p.reindex(at)

	var shown []*binding
	for _, b := range run {
		if p.shows(b.node) {
			shown = append(shown, b)
		}
	}
	if len(shown) > 0 {
		p.splice(vat, 0, shown)
	}
}

// after 返回 parent 的第 from 个及之后的子节点中第一个已绑定者的位置，
// 没有时取 parent 子树结束的位置
func (p *Projector) after(parent *fstree.Node, from int) int {
	for count := parent.ChildCount(); from < count; from++ {
		if b, ok := p.bindings[parent.ChildAt(from)]; ok {
			return b.pos
		}
	}
	return p.afterSubtree(parent)
}

// afterSubtree 返回 n 的子树之后第一个节点的位置
func (p *Projector) afterSubtree(n *fstree.Node) int {
	parent := n.Parent()
	if parent == nil {
		return len(p.all)
	}
	if _, ok := p.bindings[parent]; !ok {
		return len(p.all)
	}
	return p.after(parent, parent.IndexOf(n)+1)
}

// visibleFrom 返回 all 中 at 处及之后第一个可见节点在可见序列中的位置。
// 隐藏状态已刷新时，隐藏节点的兄弟和后代也都隐藏，可以整段跳过。
func (p *Projector) visibleFrom(at int) int {
	for at < len(p.all) {
		b := p.all[at]
		parent := b.node.Parent()
		switch {
		case b.vpos >= 0:
			return b.vpos
		case parent == nil || p.refresh.Pending():
			at++
		default:
			at = p.afterSubtree(parent)
		}
	}
	return len(p.vis)
}

// splice 用 ins 替换可见序列 [at, at+del) 并同步发布的序列
func (p *Projector) splice(at, del int, ins []*binding) {
	for _, b := range p.vis[at : at+del] {
		b.vpos = -1
	}
	p.vis = slices.Replace(p.vis, at, at+del, ins...)
	for i := at; i < len(p.vis); i++ {
		p.vis[i].vpos = i
	}

	nodes := make([]*fstree.Node, len(ins))
	for i, b := range ins {
		nodes[i] = b.node
	}
	p.mu.Lock()
	p.seq = slices.Replace(p.seq, at, at+del, nodes...)
	p.mu.Unlock()
}

func (p *Projector) reindex(from int) {
	for i := from; i < len(p.all); i++ {
		p.all[i].pos = i
	}
}

// subtreeEnd 返回 all 中 i 处节点的子树结束的位置（不含）
func (p *Projector) subtreeEnd(i int) int {
	depth := p.all[i].depth
	end := i + 1
	for end < len(p.all) && p.all[end].depth > depth {
		end++
	}
	return end
}

// remove 解绑 all 中 [from, to) 的节点。区间内的可见节点在可见序列中连续。
func (p *Projector) remove(from, to int) {
	if from >= to {
		return
	}
	vfrom, count := -1, 0
	for _, b := range p.all[from:to] {
		if b.vpos >= 0 {
			if vfrom < 0 {
				vfrom = b.vpos
			}
			count++
		}
		b.cancel()
		delete(p.bindings, b.node)
	}
	if count > 0 {
		p.splice(vfrom, count, nil)
	}
	p.all = slices.Delete(p.all, from, to)
	p.reindex(from)
}

// unbind 移除节点及其子树并取消订阅
func (p *Projector) unbind(n *fstree.Node) {
	if b, ok := p.bindings[n]; ok {
		p.remove(b.pos, p.subtreeEnd(b.pos))
	}
}

// unbindDescendants 移除节点的整个子树，保留节点本身
func (p *Projector) unbindDescendants(n *fstree.Node) {
	if b, ok := p.bindings[n]; ok {
		p.remove(b.pos+1, p.subtreeEnd(b.pos))
	}
}

func (p *Projector) unbindAll() {
	for _, b := range p.all {
		b.cancel()
	}
	p.all, p.vis = nil, nil
	clear(p.bindings)
	p.mu.Lock()
	p.seq = nil
	p.mu.Unlock()
}

// move 按 parent 子节点的新顺序重排其子树区间，各节点的可见性不变
func (p *Projector) move(parent *fstree.Node) {
	pb := p.bindings[parent]
	from, to := pb.pos+1, p.subtreeEnd(pb.pos)

	runs := make(map[*fstree.Node][]*binding)
	var head *fstree.Node
	vfrom := -1
	for _, b := range p.all[from:to] {
		if b.depth == pb.depth+1 {
			head = b.node
		}
		runs[head] = append(runs[head], b)
		if b.vpos >= 0 && vfrom < 0 {
			vfrom = b.vpos
		}
	}

	region := make([]*binding, 0, to-from)
	for _, c := range parent.Children() {
		region = append(region, runs[c]...)
	}
	if len(region) != to-from {
		return
	}
	copy(p.all[from:to], region)
	p.reindex(from)

	var shown []*binding
	for _, b := range region {
		if b.vpos >= 0 {
			shown = append(shown, b)
		}
	}
	if len(shown) > 0 {
		p.splice(vfrom, len(shown), shown)
	}
}

// refilter 按当前隐藏状态重建可见序列
func (p *Projector) refilter() {
	vis := make([]*binding, 0, len(p.vis))
	seq := make([]*fstree.Node, 0, len(p.vis))
	for _, b := range p.all {
		b.vpos = -1
		if p.shows(b.node) {
			b.vpos = len(vis)
			vis = append(vis, b)
			seq = append(seq, b.node)
		}
	}
	p.vis = vis
	p.mu.Lock()
	p.seq = seq
	p.mu.Unlock()
}
