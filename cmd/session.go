package cmd

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/sjzsdu/explorer/fstree"
	"github.com/sjzsdu/explorer/helper"
	"github.com/sjzsdu/explorer/lang"
	"github.com/sjzsdu/explorer/logging"
	"github.com/sjzsdu/explorer/metrics"
	"github.com/sjzsdu/explorer/projector"
	"github.com/sjzsdu/explorer/watcher"
	"go.uber.org/zap"
)

// session 组装一棵树和它的投影
type session struct {
	root      string
	coord     *fstree.Coordinator
	tree      *fstree.Tree
	projector *projector.Projector
	registry  *prometheus.Registry
}

// targetPath 依次取参数、--directory 和当前目录
func targetPath(args []string) (string, error) {
	path := "."
	switch {
	case len(args) > 0:
		path = args[0]
	case workDir != "":
		path = workDir
	}
	return filepath.Abs(path)
}

func newWatcher(mode string) (watcher.Watcher, error) {
	logger := logging.L().Named("watch")
	switch mode {
	case "notify":
		return watcher.NewNotify(watcher.WithNotifyLogger(logger)), nil
	case "poll":
		return watcher.NewPoller(settings.PollInterval, watcher.WithPollLogger(logger)), nil
	case "none", "":
		return nil, nil
	}
	return nil, fmt.Errorf("%s: %q", lang.T("Unknown watch mode"), mode)
}

// comparer 返回 sort 配置对应的同级排序规则
func comparer(order string) fstree.Comparer {
	if order == "fold" {
		return fstree.FoldCompare
	}
	return fstree.DefaultCompare
}

func newSession(ctx context.Context, args []string, watchMode string, opts ...projector.Option) (*session, error) {
	root, err := targetPath(args)
	if err != nil {
		return nil, err
	}
	w, err := newWatcher(watchMode)
	if err != nil {
		return nil, err
	}

	registry := prometheus.NewRegistry()
	m := metrics.New(registry)
	logger := logging.L()

	coord := fstree.NewCoordinator()
	classifier := fstree.NewClassifier(
		fstree.WithWorkers(settings.Workers),
		fstree.WithExcluder(helper.NewExcluder(settings.Exclude...)),
	)
	tree := fstree.NewTree(coord,
		fstree.WithLister(classifier),
		fstree.WithWatcher(w),
		fstree.WithComparer(comparer(settings.Sort)),
		fstree.WithLogger(logger.Named("tree")),
		fstree.WithMetrics(m),
	)
	opts = append([]projector.Option{
		projector.WithDebounce(settings.Debounce),
		projector.WithLogger(logger.Named("projector")),
		projector.WithMetrics(m),
	}, opts...)
	p := projector.New(coord, opts...)

	s := &session{root: root, coord: coord, tree: tree, projector: p, registry: registry}
	if err := coord.Do(ctx, func() {
		p.Attach(tree)
		tree.SetRootPath(root)
	}); err != nil {
		s.Close()
		return nil, err
	}
	if tree.Root() == nil {
		s.Close()
		return nil, fmt.Errorf("%s: %s", lang.T("Root path is unavailable"), root)
	}
	logger.Debug("session started", zap.String("root", root), zap.String("watch", watchMode))
	return s, nil
}

// title 返回根目录的显示名称
func (s *session) title() string {
	return helper.BaseName(s.root) + "/"
}

func (s *session) Close() {
	_ = s.coord.Do(context.Background(), func() {
		s.projector.Detach()
		s.tree.Close()
	})
	s.coord.Close()
}
