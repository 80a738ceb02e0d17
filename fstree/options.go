package fstree

import (
	"github.com/sjzsdu/explorer/metrics"
	"github.com/sjzsdu/explorer/watcher"
	"go.uber.org/zap"
)

// env 是一棵树的所有节点共享的依赖
type env struct {
	coord   *Coordinator
	lister  Lister
	factory Factory
	compare Comparer
	logger  *zap.Logger
	metrics *metrics.Metrics
	// 进行中的加载数，只在协调器中读写
	loads int
}

func (e *env) newNode(entry Entry) *Node {
	n := e.factory(entry)
	if n == nil {
		return nil
	}
	n.env = e
	return n
}

// Option 配置 Tree
type Option func(*Tree)

// WithLister 指定路径分类器，默认使用操作系统文件系统上的 Classifier
func WithLister(l Lister) Option {
	return func(t *Tree) {
		if l != nil {
			t.env.lister = l
		}
	}
}

// WithFactory 指定节点工厂
func WithFactory(f Factory) Option {
	return func(t *Tree) {
		if f != nil {
			t.env.factory = f
		}
	}
}

// WithComparer 指定兄弟节点的排序
func WithComparer(cmp Comparer) Option {
	return func(t *Tree) {
		if cmp != nil {
			t.env.compare = cmp
		}
	}
}

// WithLogger 指定日志
func WithLogger(l *zap.Logger) Option {
	return func(t *Tree) {
		if l != nil {
			t.env.logger = l
		}
	}
}

// WithMetrics 指定指标，nil 表示不记录
func WithMetrics(m *metrics.Metrics) Option {
	return func(t *Tree) {
		t.env.metrics = m
	}
}

// WithWatcher 指定变更来源，nil 表示不监听
func WithWatcher(w watcher.Watcher) Option {
	return func(t *Tree) {
		t.watcher = w
	}
}
