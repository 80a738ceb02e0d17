package watcher

import (
	"context"
	"path/filepath"
	"strings"
	"sync"
)

// Manual 由 Emit 注入事件的监听器，便于确定性地驱动变化处理
type Manual struct {
	mu   sync.Mutex
	subs map[*subscription]struct{}
}

type subscription struct {
	ctx       context.Context
	dir       string
	recursive bool
	events    chan Event
	errs      chan error
}

func NewManual() *Manual {
	return &Manual{subs: make(map[*subscription]struct{})}
}

func (m *Manual) Watch(ctx context.Context, dir string, recursive bool) (<-chan Event, <-chan error, error) {
	sub := &subscription{
		ctx:       ctx,
		dir:       filepath.Clean(dir),
		recursive: recursive,
		events:    make(chan Event, defaultBuffer),
		errs:      make(chan error, 1),
	}
	m.mu.Lock()
	m.subs[sub] = struct{}{}
	m.mu.Unlock()

	go func() {
		<-ctx.Done()
		m.mu.Lock()
		delete(m.subs, sub)
		close(sub.events)
		close(sub.errs)
		m.mu.Unlock()
	}()
	return sub.events, sub.errs, nil
}

// Emit 把事件发给覆盖其路径的所有订阅，订阅的缓冲区满时阻塞
func (m *Manual) Emit(ev Event) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for sub := range m.subs {
		if sub.covers(ev.Path) || (ev.Op == Renamed && sub.covers(ev.OldPath)) {
			send(sub.ctx, sub.events, ev)
		}
	}
}

// Fail 向所有订阅报告错误
func (m *Manual) Fail(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for sub := range m.subs {
		report(sub.errs, err)
	}
}

// Subscribers 返回当前的订阅数
func (m *Manual) Subscribers() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.subs)
}

func (s *subscription) covers(path string) bool {
	if path == "" {
		return false
	}
	path = filepath.Clean(path)
	parent := filepath.Dir(path)
	if !s.recursive {
		return parent == s.dir
	}
	if parent == s.dir || path == s.dir {
		return true
	}
	prefix := s.dir
	if !strings.HasSuffix(prefix, string(filepath.Separator)) {
		prefix += string(filepath.Separator)
	}
	return strings.HasPrefix(path, prefix)
}
