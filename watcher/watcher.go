// Package watcher 以事件流的形式提供文件系统变化通知
package watcher

import (
	"context"
	"fmt"
)

// Op 事件的变化类型
type Op int

const (
	Created Op = iota + 1
	Deleted
	Renamed
	Modified
)

func (o Op) String() string {
	switch o {
	case Created:
		return "created"
	case Deleted:
		return "deleted"
	case Renamed:
		return "renamed"
	case Modified:
		return "modified"
	}
	return fmt.Sprintf("op(%d)", int(o))
}

// Event 一次文件系统变化，OldPath 只在 Renamed 时设置
type Event struct {
	Op      Op
	Path    string
	OldPath string
}

func (e Event) String() string {
	if e.Op == Renamed {
		return fmt.Sprintf("%s %s -> %s", e.Op, e.OldPath, e.Path)
	}
	return fmt.Sprintf("%s %s", e.Op, e.Path)
}

// Watcher 监听目录的变化。recursive 为 true 时覆盖整棵子树，否则只覆盖 dir 的直接条目。
// ctx 取消后两个通道都会关闭，事件按底层机制报告的顺序送达。
type Watcher interface {
	Watch(ctx context.Context, dir string, recursive bool) (<-chan Event, <-chan error, error)
}

const defaultBuffer = 256

// send 发送事件，ctx 先结束时返回 false
func send(ctx context.Context, ch chan<- Event, ev Event) bool {
	select {
	case ch <- ev:
		return true
	case <-ctx.Done():
		return false
	}
}

// report 非阻塞地转发错误，读取慢时丢弃错误，事件不会丢
func report(ch chan<- error, err error) {
	select {
	case ch <- err:
	default:
	}
}
