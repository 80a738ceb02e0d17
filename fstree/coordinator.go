package fstree

import (
	"context"
	"sync"
	"time"
)

// Coordinator 在单个协程中按提交顺序执行任务。
// 树和投影的所有修改都必须在这里进行，保证同一时刻只有一个写者。
type Coordinator struct {
	mu     sync.Mutex
	queue  []func()
	closed bool
	signal chan struct{}
	done   chan struct{}
	exited chan struct{}
}

// NewCoordinator 创建并启动协调器
func NewCoordinator() *Coordinator {
	c := &Coordinator{
		signal: make(chan struct{}, 1),
		done:   make(chan struct{}),
		exited: make(chan struct{}),
	}
	go c.run()
	return c
}

// Post 将任务加入队列，不等待执行。协调器已关闭时返回 false。
func (c *Coordinator) Post(fn func()) bool {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return false
	}
	c.queue = append(c.queue, fn)
	c.mu.Unlock()

	select {
	case c.signal <- struct{}{}:
	default:
	}
	return true
}

// Do 提交任务并等待其执行完毕。不能在协调器内部调用，否则会死锁。
func (c *Coordinator) Do(ctx context.Context, fn func()) error {
	finished := make(chan struct{})
	if !c.Post(func() {
		defer close(finished)
		fn()
	}) {
		return ErrClosed
	}
	select {
	case <-finished:
		return nil
	case <-c.exited:
		select {
		case <-finished:
			return nil
		default:
			return ErrClosed
		}
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Close 停止协调器，队列中未执行的任务被丢弃。可重复调用。
func (c *Coordinator) Close() {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}
	c.closed = true
	c.queue = nil
	c.mu.Unlock()
	close(c.done)
	<-c.exited
}

func (c *Coordinator) run() {
	defer close(c.exited)
	for {
		select {
		case <-c.done:
			return
		case <-c.signal:
		}
		for {
			fn, ok := c.pop()
			if !ok {
				break
			}
			fn()
		}
	}
}

func (c *Coordinator) pop() (func(), bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed || len(c.queue) == 0 {
		return nil, false
	}
	fn := c.queue[0]
	c.queue[0] = nil
	c.queue = c.queue[1:]
	return fn, true
}

// Debouncer 合并短时间内的多次调度，最后一次调度后静默 delay 才执行。
// Schedule 和 Stop 只能在协调器中调用，fn 也在协调器中执行。
type Debouncer struct {
	c        *Coordinator
	delay    time.Duration
	fn       func()
	deadline time.Time
	timer    *time.Timer
	gen      uint64
	armed    bool
}

// NewDebouncer 创建防抖器
func (c *Coordinator) NewDebouncer(delay time.Duration, fn func()) *Debouncer {
	return &Debouncer{c: c, delay: delay, fn: fn}
}

// Schedule 将截止时间推迟到 delay 之后
func (d *Debouncer) Schedule() {
	d.deadline = time.Now().Add(d.delay)
	if d.armed {
		return
	}
	d.armed = true
	d.arm(d.delay)
}

// Stop 取消尚未执行的调度
func (d *Debouncer) Stop() {
	d.armed = false
	d.gen++
	if d.timer != nil {
		d.timer.Stop()
		d.timer = nil
	}
}

// Pending 报告是否有待执行的调度
func (d *Debouncer) Pending() bool {
	return d.armed
}

func (d *Debouncer) arm(after time.Duration) {
	d.gen++
	gen := d.gen
	d.timer = time.AfterFunc(after, func() {
		d.c.Post(func() { d.fire(gen) })
	})
}

func (d *Debouncer) fire(gen uint64) {
	if !d.armed || d.gen != gen {
		return
	}
	// 截止时间被推迟过则重新计时
	if remaining := time.Until(d.deadline); remaining > 0 {
		d.arm(remaining)
		return
	}
	d.armed = false
	d.timer = nil
	d.fn()
}
