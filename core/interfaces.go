// Package core 提供字面量解析引擎的公共契约定义
//
// 词法器、解析器、shape 缓存与字符串驻留服务之间只通过本包的类型互相引用，
// 避免包之间的循环依赖。
package core

import "fmt"

// Mode 解析方言
type Mode uint8

const (
	StrictJSON Mode = iota // 严格 JSON（JSON.parse 语义）
	SloppyJSON             // 宽松 JS 对象字面量（eval 快速路径）
	JSONP                  // JSONP 赋值语句: var x = {...};
)

// String 返回方言名称
func (m Mode) String() string {
	switch m {
	case StrictJSON:
		return "strict"
	case SloppyJSON:
		return "sloppy"
	case JSONP:
		return "jsonp"
	default:
		return "unknown"
	}
}

// ParseMode 按名称解析方言，未知名称返回 false
func ParseMode(name string) (Mode, bool) {
	switch name {
	case "strict", "json", "":
		return StrictJSON, true
	case "sloppy", "eval":
		return SloppyJSON, true
	case "jsonp":
		return JSONP, true
	}
	return StrictJSON, false
}

// MarshalText 实现 encoding.TextMarshaler（配置文件中按名称书写方言）
func (m Mode) MarshalText() ([]byte, error) {
	return []byte(m.String()), nil
}

// UnmarshalText 实现 encoding.TextUnmarshaler
func (m *Mode) UnmarshalText(b []byte) error {
	mode, ok := ParseMode(string(b))
	if !ok {
		return fmt.Errorf("core: unknown mode %q", b)
	}
	*m = mode
	return nil
}

// ═══════════════════════════════════════════════════════════════════
// 引擎常量（实现调优值，非语义约束）
// ═══════════════════════════════════════════════════════════════════

const (
	// SafeInt32Digits 整数快速路径允许的最大字符数（含负号）。
	// -99999999 到 999999999 均在 int32 范围内。
	SafeInt32Digits = 9

	// MaxInternLength 超过该长度的字符串不进入驻留表，直接拷贝
	MaxInternLength = 10000

	// DefaultMaxInternEntries 共享驻留表的条目上限，超出后按分代淘汰
	DefaultMaxInternEntries = 1 << 16

	// MaxAtomizeStringLength 字符串值不超过该长度时走驻留表共享
	MaxAtomizeStringLength = 10

	// MaxIdentifierErrorLength "Unexpected identifier" 错误信息中标识符的截断长度
	MaxIdentifierErrorLength = 200

	// ShortIdentifierErrorLength 首次截断超出消息预算时的二次截断长度
	ShortIdentifierErrorLength = 10

	// MaxErrorMessageBytes 单条错误信息的字节预算
	MaxErrorMessageBytes = 256

	// DefaultRecursionLimit 递归快速路径的默认深度余量
	DefaultRecursionLimit = 512

	// DefaultMaxDepth 迭代形式允许的最大嵌套深度
	DefaultMaxDepth = 1 << 17

	// DefaultAtomCacheSize 每个解析器的标识符缓存容量
	DefaultAtomCacheSize = 256

	// DefaultMaxShapes shape 表最大节点数，超过后新对象直接进入字典模式
	DefaultMaxShapes = 1 << 16

	// DefaultMaxShapeProperties 单个 shape 最大属性数，超过后对象退化为字典模式
	DefaultMaxShapeProperties = 64
)

// ═══════════════════════════════════════════════════════════════════
// 协作接口
// ═══════════════════════════════════════════════════════════════════

// Interner 字符串驻留服务（跨解析、跨 goroutine 共享）
//
// 同一 key 至多一个写者: 并发 Intern 相同内容时所有调用方得到同一句柄。
// 返回值不得引用调用方传入的内存（首次出现时深拷贝）。
type Interner interface {
	// Intern 返回 s 的规范句柄，首次出现时深拷贝并登记
	Intern(s string) string
	// Existing 仅查询，不登记
	Existing(s string) (string, bool)
}

// Headroom 递归余量判定
//
// 递归快速路径每次进入 '{' / '[' 时调用一次，返回 false 时
// 剩余文档交由迭代形式解析。以参数形式注入，便于测试切换点。
type Headroom func(depth int) bool

// DepthHeadroom 基于嵌套深度的余量判定
func DepthHeadroom(limit int) Headroom {
	return func(depth int) bool { return depth < limit }
}

// Observer 解析过程观测回调（指标、日志等）
//
// 所有方法都在解析 goroutine 中同步调用，实现必须是并发安全的。
type Observer interface {
	// ObserveParse 一次解析结束（err == nil 表示成功）
	ObserveParse(mode Mode, inputUnits int, err error)
	// ObserveFallback 递归快速路径退回迭代形式
	ObserveFallback(mode Mode, depth int)
}

// NopObserver 空实现
type NopObserver struct{}

// ObserveParse 空实现
func (NopObserver) ObserveParse(Mode, int, error) {}

// ObserveFallback 空实现
func (NopObserver) ObserveFallback(Mode, int) {}
