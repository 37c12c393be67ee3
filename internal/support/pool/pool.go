// Package pool 提供按 chunk 批量分配的泛型对象 Arena
//
// 设计：
//   - Alloc 从当前 chunk 顺序切出对象，chunk 用尽时切换新 chunk
//   - chunk 从 MinChunkSize 起按 2 倍增长，上限为 maxChunk；Detach 后回到最小值
//   - 已分配对象的生命周期归调用方（解析结果树），chunk 不回收复用
//   - 小结果只钉住小 chunk，大文档把 N 次 malloc 摊成约 N/maxChunk 次
package pool

const (
	// MinChunkSize 每轮分配的首个 chunk 对象数
	MinChunkSize = 8
	// DefaultChunkSize 默认 chunk 对象数上限
	DefaultChunkSize = 256
)

// Arena 泛型对象 Arena（非并发安全，每个解析器独占一个）
type Arena[T any] struct {
	chunk    []T
	next     int
	size     int // 下一个 chunk 的对象数
	maxChunk int

	chunks int // 已创建的 chunk 数（诊断用）
	allocs int // 累计分配对象数
}

// NewArena 创建 Arena；maxChunk <= 0 时使用 DefaultChunkSize
func NewArena[T any](maxChunk int) *Arena[T] {
	if maxChunk <= 0 {
		maxChunk = DefaultChunkSize
	}
	a := &Arena[T]{maxChunk: maxChunk}
	a.rewind()
	return a
}

func (a *Arena[T]) rewind() {
	a.size = min(MinChunkSize, a.maxChunk)
}

// Alloc 分配一个零值对象
func (a *Arena[T]) Alloc() *T {
	if a.next >= len(a.chunk) {
		if a.size <= 0 {
			a.maxChunk = max(a.maxChunk, DefaultChunkSize)
			a.rewind()
		}
		a.chunk = make([]T, a.size)
		a.next = 0
		a.chunks++
		a.size = min(a.size*2, a.maxChunk)
	}
	p := &a.chunk[a.next]
	a.next++
	a.allocs++
	return p
}

// Detach 放弃当前 chunk 的剩余空间，chunk 大小回到最小值
//
// 结果树交给调用方之后调用: 后续分配不会与已交出的对象共享 chunk，
// 避免一个小结果把整块 chunk 长期钉在内存里。
func (a *Arena[T]) Detach() {
	a.chunk = nil
	a.next = 0
	a.rewind()
}

// Stats 返回 (chunk 数, 累计分配数)
func (a *Arena[T]) Stats() (chunks, allocs int) {
	return a.chunks, a.allocs
}
