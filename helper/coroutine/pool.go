package coroutine

import (
	"context"
	"runtime"
	"sync"
)

// WorkFunc 一个有返回值的工作单元
type WorkFunc[T any] func(ctx context.Context) (T, error)

// Result 工作单元的执行结果，Index 对应输入顺序
type Result[T any] struct {
	Index int
	Value T
	Err   error
}

// Pool 固定并发数的协程池
type Pool[T any] struct {
	workers int
}

// DefaultMaxWorkers 默认并发数
func DefaultMaxWorkers() int {
	n := runtime.NumCPU()
	if n < 2 {
		return 2
	}
	return n
}

// NewCoroutinePool 创建协程池，workers <= 0 时使用默认并发数
func NewCoroutinePool[T any](workers int) *Pool[T] {
	if workers <= 0 {
		workers = DefaultMaxWorkers()
	}
	return &Pool[T]{workers: workers}
}

// Execute 执行所有工作单元，结果与输入顺序一致。
// ctx 取消后尚未开始的工作单元不再执行，其结果的 Err 为 ctx.Err()。
func (p *Pool[T]) Execute(ctx context.Context, works []WorkFunc[T]) []Result[T] {
	results := make([]Result[T], len(works))
	if len(works) == 0 {
		return results
	}

	workers := p.workers
	if workers > len(works) {
		workers = len(works)
	}

	jobs := make(chan int)
	var wg sync.WaitGroup
	wg.Add(workers)
	for w := 0; w < workers; w++ {
		go func() {
			defer wg.Done()
			for i := range jobs {
				results[i].Index = i
				// 每个工作单元开始前检查取消
				if err := ctx.Err(); err != nil {
					results[i].Err = err
					continue
				}
				results[i].Value, results[i].Err = works[i](ctx)
			}
		}()
	}

	for i := range works {
		jobs <- i
	}
	close(jobs)
	wg.Wait()

	return results
}
