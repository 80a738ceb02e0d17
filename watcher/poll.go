package watcher

import (
	"context"
	"io/fs"
	"path/filepath"
	"sort"
	"time"

	"github.com/spf13/afero"
	"go.uber.org/zap"
)

// Poller 定期比较目录快照来发现变化，适用于任意 afero 文件系统，
// 包括系统通知不可靠的网络挂载。重命名表现为 Deleted 加 Created。
type Poller struct {
	fs       afero.Fs
	interval time.Duration
	logger   *zap.Logger
}

type fileState struct {
	modTime time.Time
	size    int64
	isDir   bool
}

type snapshot map[string]fileState

type PollerOption func(*Poller)

// WithPollFs 设置扫描的文件系统，默认为本地文件系统
func WithPollFs(fsys afero.Fs) PollerOption {
	return func(p *Poller) {
		if fsys != nil {
			p.fs = fsys
		}
	}
}

// WithPollLogger 设置日志
func WithPollLogger(l *zap.Logger) PollerOption {
	return func(p *Poller) {
		if l != nil {
			p.logger = l
		}
	}
}

// NewPoller 创建每隔 interval 扫描一次的监听器
func NewPoller(interval time.Duration, opts ...PollerOption) *Poller {
	if interval <= 0 {
		interval = 2 * time.Second
	}
	p := &Poller{fs: afero.NewOsFs(), interval: interval, logger: zap.NewNop()}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Watch 返回前先取得初始快照，之后的变化都会被报告
func (p *Poller) Watch(ctx context.Context, dir string, recursive bool) (<-chan Event, <-chan error, error) {
	if _, err := p.fs.Stat(dir); err != nil {
		return nil, nil, err
	}
	prev, err := p.scan(dir, recursive)
	if err != nil {
		return nil, nil, err
	}

	events := make(chan Event, defaultBuffer)
	errs := make(chan error, 1)
	go func() {
		defer close(errs)
		defer close(events)

		ticker := time.NewTicker(p.interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				cur, err := p.scan(dir, recursive)
				if err != nil {
					p.logger.Debug("poll scan", zap.String("dir", dir), zap.Error(err))
					report(errs, err)
					continue
				}
				for _, ev := range diff(prev, cur) {
					if !send(ctx, events, ev) {
						return
					}
				}
				prev = cur
			}
		}
	}()
	return events, errs, nil
}

func (p *Poller) scan(dir string, recursive bool) (snapshot, error) {
	snap := make(snapshot)
	if !recursive {
		infos, err := afero.ReadDir(p.fs, dir)
		if err != nil {
			return nil, err
		}
		for _, info := range infos {
			snap[filepath.Join(dir, info.Name())] = stateOf(info)
		}
		return snap, nil
	}

	err := afero.Walk(p.fs, dir, func(path string, info fs.FileInfo, err error) error {
		if err != nil {
			if path == dir {
				return err
			}
			// 扫描期间消失或不可读的条目跳过
			return nil
		}
		if path != dir {
			snap[filepath.Clean(path)] = stateOf(info)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return snap, nil
}

func stateOf(info fs.FileInfo) fileState {
	return fileState{modTime: info.ModTime(), size: info.Size(), isDir: info.IsDir()}
}

// diff 返回从 prev 到 cur 的变化，删除在前，各自按路径排序
func diff(prev, cur snapshot) []Event {
	var deleted, others []Event
	for path, old := range prev {
		now, ok := cur[path]
		switch {
		case !ok:
			deleted = append(deleted, Event{Op: Deleted, Path: path})
		case now.isDir != old.isDir:
			deleted = append(deleted, Event{Op: Deleted, Path: path})
			others = append(others, Event{Op: Created, Path: path})
		case !now.isDir && (!now.modTime.Equal(old.modTime) || now.size != old.size):
			others = append(others, Event{Op: Modified, Path: path})
		}
	}
	for path := range cur {
		if _, ok := prev[path]; !ok {
			others = append(others, Event{Op: Created, Path: path})
		}
	}
	byPath := func(list []Event) {
		sort.Slice(list, func(i, j int) bool { return list[i].Path < list[j].Path })
	}
	byPath(deleted)
	byPath(others)
	return append(deleted, others...)
}
