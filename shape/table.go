// Package shape 对象 shape（属性集合及其顺序）与转移缓存
//
// shape 节点存放在按整数 ID 寻址的 arena 中，对象只持有 ID。
// 转移表 (shape, key) → (newShape, offset) 惰性填充、只追加不失效，
// 相同结构的 JSON 对象重复构建时每个 key 摊还 O(1)。
//
// 缓存只是性能优化: 任何非干净转移（重复 key、字典模式、容量上限）都返回未命中，
// 由调用方走通用的按名写入路径，结果与始终走通用路径完全一致。
package shape

import (
	"math"
	"sync"

	"github.com/dolthub/swiss"

	"github.com/uniyakcom/literal/core"
	"github.com/uniyakcom/literal/util"
)

// ID shape 标识
type ID uint32

const (
	// Root 空对象的 shape
	Root ID = 0
	// Dictionary 字典模式哨兵（对象自持哈希表，不再参与转移）
	Dictionary ID = math.MaxUint32
)

// IsDictionary id 是否为字典模式哨兵
func IsDictionary(id ID) bool { return id == Dictionary }

// indexThreshold 属性数超过该值时为节点建立 key → offset 索引
const indexThreshold = 8

type node struct {
	parent ID
	key    string   // 从 parent 转移到本节点的属性名
	keys   []string // 全部属性名（按加入顺序，keys[i] 的存储偏移为 i）
	index  map[string]int

	// 单转移捷径: fanout == 1 时 single/singleKey 有效
	single    ID
	singleKey string
	fanout    int
}

type transitionKey struct {
	from ID
	key  string
}

// Config shape 表配置
type Config struct {
	MaxShapes     int // 节点上限，0 表示 core.DefaultMaxShapes
	MaxProperties int // 单 shape 属性上限，0 表示 core.DefaultMaxShapeProperties
}

// Stats 缓存统计
type Stats struct {
	Shapes int    // 节点数
	Hits   uint64 // Resolve 命中
	Misses uint64 // Resolve 未命中
}

// Table shape arena + 转移缓存
//
// 并发安全: 节点创建后除转移计数外不可变，读路径持读锁。
type Table struct {
	mu          sync.RWMutex
	nodes       []node
	transitions *swiss.Map[transitionKey, ID]

	maxShapes int
	maxProps  int

	hits   *util.PerCPUCounter
	misses *util.PerCPUCounter
}

// NewTable 创建 shape 表
func NewTable(cfg Config) *Table {
	if cfg.MaxShapes <= 0 {
		cfg.MaxShapes = core.DefaultMaxShapes
	}
	if cfg.MaxProperties <= 0 {
		cfg.MaxProperties = core.DefaultMaxShapeProperties
	}
	t := &Table{
		nodes:       make([]node, 1, 64),
		transitions: swiss.NewMap[transitionKey, ID](64),
		maxShapes:   cfg.MaxShapes,
		maxProps:    cfg.MaxProperties,
		hits:        util.NewPerCPUCounter(),
		misses:      util.NewPerCPUCounter(),
	}
	return t
}

// ─── 快速路径 ───

// TrySingleTransition 若 shape 恰有一个出边，返回该出边的目标与属性名
func (t *Table) TrySingleTransition(id ID) (ID, string, bool) {
	if id == Dictionary {
		return 0, "", false
	}
	t.mu.RLock()
	n := &t.nodes[id]
	if n.fanout != 1 {
		t.mu.RUnlock()
		return 0, "", false
	}
	next, key := n.single, n.singleKey
	t.mu.RUnlock()
	return next, key, true
}

// Transition 查询已存在的加属性转移（不创建）
func (t *Table) Transition(id ID, key string) (ID, int, bool) {
	if id == Dictionary {
		return 0, 0, false
	}
	t.mu.RLock()
	next, ok := t.transitions.Get(transitionKey{from: id, key: key})
	if !ok {
		t.mu.RUnlock()
		return 0, 0, false
	}
	off := len(t.nodes[next].keys) - 1
	t.mu.RUnlock()
	return next, off, true
}

// Resolve 转移缓存查询: 先试单转移捷径，再查转移表
//
// 命中时返回新 shape 与 key 的存储偏移。未命中（含字典模式）返回 false，
// 调用方应走通用写入路径。
func (t *Table) Resolve(id ID, key string) (ID, int, bool) {
	if next, k, ok := t.TrySingleTransition(id); ok && k == key {
		t.hits.Inc()
		return next, t.offsetOf(next), true
	}
	if next, off, ok := t.Transition(id, key); ok {
		t.hits.Inc()
		return next, off, true
	}
	t.misses.Inc()
	return 0, 0, false
}

func (t *Table) offsetOf(id ID) int {
	t.mu.RLock()
	off := len(t.nodes[id].keys) - 1
	t.mu.RUnlock()
	return off
}

// ─── 通用路径 ───

// Lookup 查找 key 在 shape 中的存储偏移
func (t *Table) Lookup(id ID, key string) (int, bool) {
	if id == Dictionary {
		return 0, false
	}
	t.mu.RLock()
	defer t.mu.RUnlock()
	n := &t.nodes[id]
	if n.index != nil {
		off, ok := n.index[key]
		return off, ok
	}
	for i, k := range n.keys {
		if k == key {
			return i, true
		}
	}
	return 0, false
}

// AddProperty 为 shape 追加属性，必要时创建转移
//
// key 已存在于 shape 时返回其偏移且 shape 不变（重复 key 原位覆盖）。
// 超出容量上限返回 false，调用方应把对象转为字典模式。
func (t *Table) AddProperty(id ID, key string) (ID, int, bool) {
	if id == Dictionary {
		return 0, 0, false
	}
	if off, ok := t.Lookup(id, key); ok {
		return id, off, true
	}
	if next, off, ok := t.Transition(id, key); ok {
		return next, off, true
	}

	t.mu.Lock()
	defer t.mu.Unlock()
	tk := transitionKey{from: id, key: key}
	// 双检: 读锁释放后可能已被其他解析创建
	if next, ok := t.transitions.Get(tk); ok {
		return next, len(t.nodes[next].keys) - 1, true
	}
	parent := &t.nodes[id]
	if len(t.nodes) >= t.maxShapes || len(parent.keys) >= t.maxProps {
		return 0, 0, false
	}
	keys := make([]string, len(parent.keys)+1)
	copy(keys, parent.keys)
	keys[len(parent.keys)] = key
	n := node{parent: id, key: key, keys: keys}
	if len(keys) > indexThreshold {
		n.index = make(map[string]int, len(keys))
		for i, k := range keys {
			n.index[k] = i
		}
	}
	next := ID(len(t.nodes))
	t.nodes = append(t.nodes, n)

	parent = &t.nodes[id] // append 可能已迁移底层数组
	parent.fanout++
	if parent.fanout == 1 {
		parent.single = next
		parent.singleKey = key
	}
	t.transitions.Put(tk, next)
	return next, len(keys) - 1, true
}

// ─── 查询 ───

// Keys 返回 shape 的属性名（按加入顺序，调用方不得修改）
func (t *Table) Keys(id ID) []string {
	if id == Dictionary {
		return nil
	}
	t.mu.RLock()
	keys := t.nodes[id].keys
	t.mu.RUnlock()
	return keys
}

// Len 返回 shape 的属性数
func (t *Table) Len(id ID) int {
	return len(t.Keys(id))
}

// Parent 返回 shape 的父节点与转移属性名（Root 返回 false）
func (t *Table) Parent(id ID) (ID, string, bool) {
	if id == Root || id == Dictionary {
		return 0, "", false
	}
	t.mu.RLock()
	n := t.nodes[id]
	t.mu.RUnlock()
	return n.parent, n.key, true
}

// Stats 返回统计
func (t *Table) Stats() Stats {
	t.mu.RLock()
	shapes := len(t.nodes)
	t.mu.RUnlock()
	return Stats{
		Shapes: shapes,
		Hits:   uint64(t.hits.Read()),
		Misses: uint64(t.misses.Read()),
	}
}
