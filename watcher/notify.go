package watcher

import (
	"context"
	"errors"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"
)

// Notify 通过 fsnotify 使用操作系统的通知机制。
// fsnotify 不支持递归，递归模式下根目录以下的每个目录都要单独添加，包括之后新建的目录。
type Notify struct {
	logger *zap.Logger
}

type NotifyOption func(*Notify)

// WithNotifyLogger 设置日志
func WithNotifyLogger(l *zap.Logger) NotifyOption {
	return func(n *Notify) {
		if l != nil {
			n.logger = l
		}
	}
}

func NewNotify(opts ...NotifyOption) *Notify {
	n := &Notify{logger: zap.NewNop()}
	for _, opt := range opts {
		opt(n)
	}
	return n
}

func (n *Notify) Watch(ctx context.Context, dir string, recursive bool) (<-chan Event, <-chan error, error) {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, nil, err
	}

	if recursive {
		err = n.addTree(w, dir)
	} else {
		err = w.Add(dir)
	}
	if err != nil {
		_ = w.Close()
		return nil, nil, err
	}

	events := make(chan Event, defaultBuffer)
	errs := make(chan error, 1)
	go n.loop(ctx, w, recursive, events, errs)
	return events, errs, nil
}

func (n *Notify) loop(ctx context.Context, w *fsnotify.Watcher, recursive bool, events chan<- Event, errs chan<- error) {
	defer close(errs)
	defer close(events)
	defer w.Close()

	for {
		select {
		case <-ctx.Done():
			return
		case ev, ok := <-w.Events:
			if !ok {
				return
			}
			out, ok := translate(ev)
			if !ok {
				continue
			}
			// 新目录要尽快加入监听，否则其中新建的条目会漏掉
			if recursive && out.Op == Created {
				if info, err := os.Lstat(out.Path); err == nil && info.IsDir() {
					if err := n.addTree(w, out.Path); err != nil {
						n.logger.Debug("watch new directory", zap.String("path", out.Path), zap.Error(err))
					}
				}
			}
			if !send(ctx, events, out) {
				return
			}
		case err, ok := <-w.Errors:
			if !ok {
				return
			}
			n.logger.Warn("watch error", zap.Error(err))
			report(errs, err)
		}
	}
}

// addTree 添加 dir 及其下所有目录。不可读的子目录被跳过，只返回 dir 本身的错误
func (n *Notify) addTree(w *fsnotify.Watcher, dir string) error {
	if err := w.Add(dir); err != nil {
		return err
	}
	return filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			if path == dir {
				return err
			}
			if d != nil && d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		if path == dir || !d.IsDir() {
			return nil
		}
		if err := w.Add(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
			n.logger.Debug("watch directory", zap.String("path", path), zap.Error(err))
		}
		return nil
	})
}

// translate 转换 fsnotify 事件。fsnotify 把重命名报告为旧名称的 Rename
// 加上新名称的 Create，所以 Rename 按 Deleted 处理
func translate(ev fsnotify.Event) (Event, bool) {
	path := filepath.Clean(ev.Name)
	switch {
	case ev.Has(fsnotify.Create):
		return Event{Op: Created, Path: path}, true
	case ev.Has(fsnotify.Remove), ev.Has(fsnotify.Rename):
		return Event{Op: Deleted, Path: path}, true
	case ev.Has(fsnotify.Write), ev.Has(fsnotify.Chmod):
		return Event{Op: Modified, Path: path}, true
	}
	return Event{}, false
}
