// Package literal 统一API入口
package literal

import (
	"sync"
	"unicode/utf16"
	"unsafe"

	"github.com/uniyakcom/literal/batch"
	"github.com/uniyakcom/literal/core"
	"github.com/uniyakcom/literal/optimize"
	"github.com/uniyakcom/literal/parser"
	"github.com/uniyakcom/literal/value"
)

// Value 导出值类型
type Value = value.Value

// Mode 导出方言类型
type Mode = core.Mode

// 方言
const (
	StrictJSON = core.StrictJSON
	SloppyJSON = core.SloppyJSON
	JSONP      = core.JSONP
)

// Profile 导出Profile
type Profile = optimize.Profile

// SyntaxError 导出解析错误
type SyntaxError = parser.SyntaxError

// JSONPData 导出 JSONP 语句结果
type JSONPData = parser.JSONPData

// SourceRanges 导出来源区间
type SourceRanges = parser.SourceRanges

// 错误类别（配合 errors.Is 使用）
var (
	ErrLexical        = parser.ErrLexical
	ErrSyntax         = parser.ErrSyntax
	ErrUnexpectedEOF  = parser.ErrUnexpectedEOF
	ErrProtoRedefined = parser.ErrProtoRedefined
	ErrNestingTooDeep = parser.ErrNestingTooDeep
	ErrNotJSONP       = parser.ErrNotJSONP
)

// Engine 解析引擎
//
// 并发安全: 每次调用从 sync.Pool 取一个解析器，用完归还。
// 同一 Engine 的所有解析器共享驻留表与 shape 表。
type Engine struct {
	profile *Profile
	cfg     parser.Config
	workers int

	narrow sync.Pool // *parser.Parser[byte]
	wide   sync.Pool // *parser.Parser[uint16]
}

// ═══════════════════════════════════════════════════════════════════
// 第零层：New() 零配置入口
// ═══════════════════════════════════════════════════════════════════

// New 零配置创建 Engine（严格 JSON，递归快速路径 + 迭代兜底）
//
// 用法:
//
//	e, _ := literal.New()
//	v, err := e.Parse(data)
func New() (*Engine, error) {
	return Option(optimize.AutoDetect())
}

// ═══════════════════════════════════════════════════════════════════
// 第一层：ForXxx() 三大方言（推荐使用）
// ═══════════════════════════════════════════════════════════════════

// ForStrict 创建严格 JSON Engine
// 用途: API 响应、配置文件、消息体
func ForStrict() (*Engine, error) {
	return Option(optimize.Strict())
}

// ForSloppy 创建宽松 JS 字面量 Engine
// 用途: "(expr)" 形式的 eval 快速路径
func ForSloppy() (*Engine, error) {
	return Option(optimize.Sloppy())
}

// ForJSONP 创建 JSONP Engine
// 用途: var x = {...}; cb({...}); 形式的脚本响应
func ForJSONP() (*Engine, error) {
	return Option(optimize.JSONP())
}

// ═══════════════════════════════════════════════════════════════════
// 第二层：Scenario() 字符串配置
// ═══════════════════════════════════════════════════════════════════

// Scenario 预设场景快速创建
// name: "strict", "sloppy", "jsonp", "reviver"
func Scenario(name string) (*Engine, error) {
	p := optimize.Preset(name)
	return Option(p)
}

// ═══════════════════════════════════════════════════════════════════
// 第三层：Option() 完全控制
// ═══════════════════════════════════════════════════════════════════

// Option 按 Profile 创建 Engine（完全控制）
func Option(p *Profile) (*Engine, error) {
	if p == nil {
		p = optimize.Strict()
	}
	advisor := optimize.NewAdvisor()
	advised := advisor.Advise(p)
	cfg, err := optimize.Build(advised)
	if err != nil {
		return nil, err
	}
	// 池中的解析器共享同一组表
	if cfg.Shapes == nil {
		cfg.Shapes = parser.DefaultShapes()
	}
	e := &Engine{
		profile: p,
		cfg:     cfg,
		workers: advised.Int("workers", 1),
	}
	e.narrow.New = func() any { return parser.New[byte](e.cfg) }
	e.wide.New = func() any { return parser.New[uint16](e.cfg) }
	return e, nil
}

// ─── Engine 方法 ───

// Profile 返回创建 Engine 的 Profile
func (e *Engine) Profile() *Profile { return e.profile }

// Mode 返回方言
func (e *Engine) Mode() Mode { return e.cfg.Mode }

// Parse 解析 8 位（UTF-8 / Latin-1 兼容）输入
//
// 结果不引用 data，调用方可以立即复用 data。
func (e *Engine) Parse(data []byte) (*Value, error) {
	p := e.narrow.Get().(*parser.Parser[byte])
	v, err := p.Parse(data)
	e.narrow.Put(p)
	return v, err
}

// ParseString 解析字符串（零拷贝读取 s）
func (e *Engine) ParseString(s string) (*Value, error) {
	return e.Parse(unsafe.Slice(unsafe.StringData(s), len(s)))
}

// ParseUTF16 解析 16 位（UTF-16）输入
func (e *Engine) ParseUTF16(data []uint16) (*Value, error) {
	p := e.wide.Get().(*parser.Parser[uint16])
	v, err := p.Parse(data)
	e.wide.Put(p)
	return v, err
}

// ParseWithRanges 严格 JSON 解析并返回每个值的来源区间
func (e *Engine) ParseWithRanges(data []byte) (*Value, *SourceRanges, error) {
	p := e.narrow.Get().(*parser.Parser[byte])
	v, r, err := p.ParseWithRanges(data)
	e.narrow.Put(p)
	return v, r, err
}

// ParseJSONP 识别 JSONP 语句序列（仅 JSONP 方言）
func (e *Engine) ParseJSONP(data []byte) ([]JSONPData, error) {
	p := e.narrow.Get().(*parser.Parser[byte])
	r, err := p.TryJSONPParse(data)
	e.narrow.Put(p)
	return r, err
}

// Valid 报告 data 能否按该方言完整解析
func (e *Engine) Valid(data []byte) bool {
	_, err := e.Parse(data)
	return err == nil
}

// NewBatch 创建共享本 Engine 配置的批量解析池（调用方负责 Release）
func (e *Engine) NewBatch() (*batch.Pool, error) {
	return batch.New(batch.Config{
		Parser:  e.cfg,
		Workers: e.workers,
		Logger:  e.cfg.Logger,
	})
}

// ═══════════════════════════════════════════════════════════════════
// 包级便捷 API（零初始化）
// ═══════════════════════════════════════════════════════════════════

var (
	strictEngine = mustEngine(ForStrict())
	sloppyEngine = mustEngine(ForSloppy())
	jsonpEngine  = mustEngine(ForJSONP())
)

func mustEngine(e *Engine, err error) *Engine {
	if err != nil {
		panic("literal: failed to init default engine: " + err.Error())
	}
	return e
}

// Default 返回包级默认 Engine（严格 JSON）
func Default() *Engine {
	return strictEngine
}

// Parse 严格 JSON 解析
//
// 用法:
//
//	v, err := literal.Parse([]byte(`{"user":{"name":"alice"}}`))
//	name := v.GetString("user", "name")
func Parse(data []byte) (*Value, error) {
	return strictEngine.Parse(data)
}

// ParseString 严格 JSON 解析字符串
func ParseString(s string) (*Value, error) {
	return strictEngine.ParseString(s)
}

// ParseUTF16 严格 JSON 解析 16 位输入
func ParseUTF16(data []uint16) (*Value, error) {
	return strictEngine.ParseUTF16(data)
}

// ParseStringUTF16 把 s 按 UTF-16 编码后解析（测试 16 位路径的便捷入口）
func ParseStringUTF16(s string) (*Value, error) {
	return strictEngine.ParseUTF16(utf16.Encode([]rune(s)))
}

// Eval 宽松方言解析 "(expr)" 形式的语句
func Eval(data []byte) (*Value, error) {
	return sloppyEngine.Parse(data)
}

// ParseJSONP 识别 JSONP 语句序列
func ParseJSONP(data []byte) ([]JSONPData, error) {
	return jsonpEngine.ParseJSONP(data)
}

// ParseWithRanges 严格 JSON 解析并返回来源区间
func ParseWithRanges(data []byte) (*Value, *SourceRanges, error) {
	return strictEngine.ParseWithRanges(data)
}

// Valid 报告 data 是否为合法的严格 JSON
func Valid(data []byte) bool {
	return strictEngine.Valid(data)
}

// Marshal 把值序列化为紧凑 JSON
func Marshal(v *Value) []byte {
	return value.AppendJSON(nil, v)
}

// MarshalIndent 把值序列化为缩进 JSON
func MarshalIndent(v *Value, indent string) []byte {
	return value.AppendIndent(nil, v, indent)
}

// Message 取出错误中的可读信息
func Message(err error) string {
	return parser.Message(err)
}
