// Package util 解析引擎共享的小工具: 分片计数器与容量取整
package util

import (
	"runtime"
	"sync/atomic"
	"unsafe"
)

// maxSlots 计数器 slot 上限
const maxSlots = 256

// CeilPow2 把 n 向上取到 2 的幂，并夹在 [lo, hi] 内（hi<=0 表示不设上限）
func CeilPow2(n, lo, hi int) int {
	sz := 1
	for sz < n {
		sz <<= 1
	}
	if sz < lo {
		sz = lo
	}
	if hi > 0 && sz > hi {
		sz = hi
	}
	return sz
}

// PerCPUCounter 分片计数器
//
// 驻留表与形状表的命中统计在每次解析的热路径上递增，
// 写入按 goroutine 栈地址散列到独立 cache line，读取时求和。
type PerCPUCounter struct {
	counters [maxSlots]counterSlot
	mask     int
}

type counterSlot struct {
	count atomic.Int64
	_     [56]byte // 64 - 8
}

// NewPerCPUCounter 按 GOMAXPROCS 创建计数器（至少 8 个 slot）
func NewPerCPUCounter() *PerCPUCounter {
	sz := CeilPow2(runtime.GOMAXPROCS(0), 8, maxSlots)
	return &PerCPUCounter{mask: sz - 1}
}

// Add 累加 delta
//
//go:nosplit
func (c *PerCPUCounter) Add(delta int64) {
	var x uintptr
	// goroutine 最小栈 8KB = 2^13
	id := int(uintptr(unsafe.Pointer(&x)) >> 13)
	c.counters[id&c.mask].count.Add(delta)
}

// Inc 加一
func (c *PerCPUCounter) Inc() { c.Add(1) }

// Read 返回所有 slot 之和
func (c *PerCPUCounter) Read() int64 {
	var sum int64
	for i := 0; i <= c.mask; i++ {
		sum += c.counters[i].count.Load()
	}
	return sum
}

// Reset 清零（与并发 Add 交错时结果近似）
func (c *PerCPUCounter) Reset() {
	for i := 0; i <= c.mask; i++ {
		c.counters[i].count.Store(0)
	}
}
