package coroutine

import (
	"context"
)

// Map 并行执行 map 操作，将输入切片中的每个元素应用函数并按输入顺序返回结果
func Map[T, R any](ctx context.Context, maxWorkers int, items []T, mapFunc func(context.Context, T) (R, error)) []Result[R] {
	works := make([]WorkFunc[R], len(items))
	for i, item := range items {
		works[i] = func(ctx context.Context) (R, error) {
			return mapFunc(ctx, item)
		}
	}

	pool := NewCoroutinePool[R](maxWorkers)
	return pool.Execute(ctx, works)
}

// FirstError 返回结果中的第一个错误
func FirstError[T any](results []Result[T]) error {
	for _, r := range results {
		if r.Err != nil {
			return r.Err
		}
	}
	return nil
}
