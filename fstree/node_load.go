package fstree

import (
	"context"
	"slices"
	"time"

	"github.com/sjzsdu/explorer/metrics"
	"go.uber.org/zap"
)

type pendingOp struct {
	remove bool
	path   string
}

// startLoad 在后台枚举目录，结果回到协调器中发布。
// 进行中的旧加载先被取消并等待其结束。
func (n *Node) startLoad() {
	if n.env == nil {
		return
	}
	n.cancelLoad()

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	n.mu.Lock()
	n.cancel = cancel
	n.loadDone = done
	n.pending = nil
	n.mu.Unlock()
	n.env.loads++
	n.setState(Loading)

	env := n.env
	path := n.entry.Path
	depth := n.Depth() + 1
	env.metrics.LoadStarted()
	started := time.Now()

	go func() {
		defer close(done)

		entries, err := env.lister.ReadDir(ctx, path)
		if ctx.Err() != nil {
			env.metrics.LoadFinished(metrics.LoadCancelled, time.Since(started))
			return
		}
		if err != nil {
			env.coord.Post(func() {
				if ctx.Err() == nil {
					n.failLoad(err, started)
				}
			})
			return
		}

		children := make([]*Node, 0, len(entries))
		for _, e := range entries {
			// 每个条目之间检查取消
			if ctx.Err() != nil {
				env.metrics.LoadFinished(metrics.LoadCancelled, time.Since(started))
				return
			}
			c := env.newNode(e)
			if c == nil {
				continue
			}
			c.parent = n
			c.depth = depth
			children = append(children, c)
		}

		if ctx.Err() != nil {
			env.metrics.LoadFinished(metrics.LoadCancelled, time.Since(started))
			return
		}
		env.coord.Post(func() {
			// 发布前最后一次检查，避免已取消的结果覆盖新状态
			if ctx.Err() != nil {
				return
			}
			n.finishLoad(children, started)
		})
	}()
}

// cancelLoad 取消进行中的加载并等待后台协程退出
func (n *Node) cancelLoad() {
	n.mu.Lock()
	cancel, done := n.cancel, n.loadDone
	n.cancel, n.loadDone = nil, nil
	n.pending = nil
	n.mu.Unlock()
	if cancel == nil {
		return
	}
	n.env.loads--
	cancel()
	<-done
}

func (n *Node) finishLoad(children []*Node, started time.Time) {
	n.mu.Lock()
	if n.cancel != nil {
		n.cancel()
	}
	n.cancel, n.loadDone = nil, nil
	n.env.loads--
	pending := n.pending
	n.pending = nil
	old := n.children
	n.mu.Unlock()

	for _, c := range children {
		c.fixState(n)
	}
	sortNodes(children, n.env.compare)

	if len(old) > 0 {
		n.mu.Lock()
		n.children = nil
		n.mu.Unlock()
		n.notifyChildren(ChildrenEvent{Action: ActionReset, OldItems: old})
		for _, c := range old {
			c.Close()
		}
	}

	n.mu.Lock()
	n.children = children
	n.mu.Unlock()
	n.setState(Loaded)
	n.env.metrics.LoadFinished(metrics.LoadCompleted, time.Since(started))
	n.env.logger.Debug("directory loaded", zap.String("path", n.entry.Path), zap.Int("children", len(children)))

	if len(children) > 0 {
		n.notifyChildren(ChildrenEvent{Action: ActionAdd, NewItems: slices.Clone(children), NewIndex: 0})
	}

	// 加载期间收到的变更
	for _, op := range pending {
		if op.remove {
			n.RemoveChild(op.path)
		} else {
			n.AddChild(op.path)
		}
	}
}

func (n *Node) failLoad(err error, started time.Time) {
	n.mu.Lock()
	if n.cancel != nil {
		n.cancel()
	}
	n.cancel, n.loadDone = nil, nil
	n.env.loads--
	n.pending = nil
	old := n.children
	n.children = nil
	n.mu.Unlock()

	if len(old) > 0 {
		n.notifyChildren(ChildrenEvent{Action: ActionReset, OldItems: old})
		for _, c := range old {
			c.Close()
		}
	}
	n.setState(Failed)
	n.env.metrics.LoadFinished(metrics.LoadFailed, time.Since(started))
	n.env.logger.Debug("directory load failed", zap.String("path", n.entry.Path), zap.Error(err))
}

// Reload 重新枚举已激活的目录，完成后先发出 Reset 再发出 Add
func (n *Node) Reload() {
	if !n.entry.IsDir || !n.Active() {
		return
	}
	n.mu.RLock()
	closed := n.closed
	n.mu.RUnlock()
	if closed {
		return
	}
	n.startLoad()
}
