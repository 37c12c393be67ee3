// Package intern 跨上下文字符串物化与驻留
//
// 词法器扫描出的文本可能别名输入缓冲；要让字符串活过本次解析、
// 或在其它 goroutine 中安全读取，必须经过本包物化:
//   - 长度超过 MaxLength 的字符串从不驻留，直接拷贝（限制单条内存）
//   - 其余按内容去重: 再次出现返回共享句柄，首次出现深拷贝后登记
//   - 条目总数不超过 MaxEntries: 每个分片保留当前与上一代两张表，
//     当前代写满时整体降为上一代，原上一代丢弃；上一代命中的 key 提升回当前代
//
// Table 设计为跨解析共享的服务: 读路径无锁（sync.Map.Load），
// 插入由 LoadOrStore 保证同一代内同一 key 至多一个写者胜出。
// 淘汰只影响共享，已返回的句柄始终有效。
package intern

import (
	"strings"
	"sync"
	"sync/atomic"

	"github.com/cespare/xxhash/v2"

	"github.com/uniyakcom/literal/core"
	"github.com/uniyakcom/literal/util"
)

// Config 驻留表配置
type Config struct {
	Shards     int // 分片数（向上取 2 的幂），0 表示 16
	MaxLength  int // 驻留长度上限，0 表示 core.MaxInternLength
	MaxEntries int // 条目上限，0 表示 core.DefaultMaxInternEntries，最小为 2
}

// Stats 驻留统计
type Stats struct {
	Hits      int64 // 命中共享句柄
	Misses    int64 // 首次出现（深拷贝登记）
	Oversize  int64 // 超长直接拷贝
	Rotations int64 // 分代轮换次数
}

// generation 一代驻留条目
type generation struct {
	m sync.Map // string → string
	n atomic.Int64
}

type shard struct {
	cur atomic.Pointer[generation]
	old atomic.Pointer[generation]
	mu  sync.Mutex // 仅轮换时持有
	_   [40]byte   // padding
}

// Table 并发安全、容量有界的字符串驻留表
type Table struct {
	shards []shard
	mask   uint64
	maxLen int
	genCap int64 // 每个分片每代的条目数

	hits      *util.PerCPUCounter
	misses    *util.PerCPUCounter
	oversize  *util.PerCPUCounter
	rotations *util.PerCPUCounter
}

var _ core.Interner = (*Table)(nil)

// NewTable 创建驻留表
func NewTable(cfg Config) *Table {
	if cfg.MaxLength <= 0 {
		cfg.MaxLength = core.MaxInternLength
	}
	if cfg.MaxEntries <= 0 {
		cfg.MaxEntries = core.DefaultMaxInternEntries
	}
	if cfg.MaxEntries < 2 {
		cfg.MaxEntries = 2
	}
	n := cfg.Shards
	if n <= 0 {
		n = 16
	}
	sz := util.CeilPow2(n, 1, 0)
	// 每个分片至少容纳两代各一条
	for sz > 1 && sz*2 > cfg.MaxEntries {
		sz >>= 1
	}
	t := &Table{
		shards:    make([]shard, sz),
		mask:      uint64(sz - 1),
		maxLen:    cfg.MaxLength,
		genCap:    int64(cfg.MaxEntries / (2 * sz)),
		hits:      util.NewPerCPUCounter(),
		misses:    util.NewPerCPUCounter(),
		oversize:  util.NewPerCPUCounter(),
		rotations: util.NewPerCPUCounter(),
	}
	for i := range t.shards {
		t.shards[i].cur.Store(new(generation))
	}
	return t
}

// MaxLength 返回驻留长度上限
func (t *Table) MaxLength() int { return t.maxLen }

// MaxEntries 返回实际生效的条目上限
func (t *Table) MaxEntries() int { return int(t.genCap) * 2 * len(t.shards) }

func (t *Table) shardFor(s string) *shard {
	return &t.shards[xxhash.Sum64String(s)&t.mask]
}

// Intern 返回 s 的规范句柄
//
// 返回值从不引用 s 的内存: 首次出现时深拷贝，超长字符串每次都拷贝。
func (t *Table) Intern(s string) string {
	if len(s) > t.maxLen {
		t.oversize.Inc()
		return strings.Clone(s)
	}
	sh := t.shardFor(s)
	g := sh.cur.Load()
	if v, ok := g.m.Load(s); ok {
		t.hits.Inc()
		return v.(string)
	}

	h, known := "", false
	if old := sh.old.Load(); old != nil {
		if v, ok := old.m.Load(s); ok {
			h, known = v.(string), true
		}
	}
	if !known {
		h = strings.Clone(s)
	}
	v, loaded := g.m.LoadOrStore(h, h)
	if loaded || known {
		t.hits.Inc()
	} else {
		t.misses.Inc()
	}
	if !loaded && g.n.Add(1) >= t.genCap {
		t.rotate(sh, g)
	}
	return v.(string)
}

// rotate 当前代写满: 降为上一代，换上空表
func (t *Table) rotate(sh *shard, full *generation) {
	sh.mu.Lock()
	defer sh.mu.Unlock()
	if sh.cur.Load() != full {
		return
	}
	sh.old.Store(full)
	sh.cur.Store(new(generation))
	t.rotations.Inc()
}

// Existing 查询 s 是否已驻留（不登记）
func (t *Table) Existing(s string) (string, bool) {
	if len(s) > t.maxLen {
		return "", false
	}
	sh := t.shardFor(s)
	if v, ok := sh.cur.Load().m.Load(s); ok {
		return v.(string), true
	}
	if old := sh.old.Load(); old != nil {
		if v, ok := old.m.Load(s); ok {
			return v.(string), true
		}
	}
	return "", false
}

// Len 返回已驻留的不同字符串数（遍历计数，仅用于诊断）
func (t *Table) Len() int {
	n := 0
	for i := range t.shards {
		sh := &t.shards[i]
		cur := sh.cur.Load()
		cur.m.Range(func(_, _ any) bool {
			n++
			return true
		})
		if old := sh.old.Load(); old != nil {
			old.m.Range(func(k, _ any) bool {
				if _, dup := cur.m.Load(k); !dup {
					n++
				}
				return true
			})
		}
	}
	return n
}

// Stats 返回统计
func (t *Table) Stats() Stats {
	return Stats{
		Hits:      t.hits.Read(),
		Misses:    t.misses.Read(),
		Oversize:  t.oversize.Read(),
		Rotations: t.rotations.Read(),
	}
}

// ─── 默认共享实例 ───

var global = NewTable(Config{})

// Global 返回进程级默认驻留表
//
// 解析器未注入 Interner 时使用；需要隔离时请显式 NewTable 并注入。
func Global() *Table { return global }
