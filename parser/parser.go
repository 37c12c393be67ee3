// Package parser JSON / JS 字面量 / JSONP 解析器
//
// 同一个泛型引擎服务 8 位（[]byte）与 16 位（[]uint16）输入，提供两种等价算法:
//   - 迭代形式: 显式状态栈 + 对象栈 + 属性名栈，任意深度都不消耗调用栈
//   - 递归形式: 递归下降快速路径，每进入一层容器询问一次 Headroom，
//     余量不足时当前子树交给迭代形式，完成后继续递归
//
// 两种形式对相同输入产出相同的值树。对象构建先查 shape 转移缓存，
// 未命中或遇到宽松方言的 __proto__ 时走通用的按名写入路径。
//
// 注意: Parser 不是并发安全的；解析结果不引用输入内存，可以跨 goroutine 使用。
package parser

import (
	"log/slog"
	"strings"
	"unicode/utf8"

	"github.com/uniyakcom/literal/core"
	"github.com/uniyakcom/literal/intern"
	"github.com/uniyakcom/literal/lexer"
	"github.com/uniyakcom/literal/shape"
	"github.com/uniyakcom/literal/value"
)

// Config 解析器配置
type Config struct {
	Mode core.Mode

	// Iterative 只使用迭代形式（关闭递归快速路径）
	Iterative bool
	// Headroom 递归余量判定，nil 表示 core.DepthHeadroom(core.DefaultRecursionLimit)
	Headroom core.Headroom
	// MaxDepth 最大嵌套深度，0 表示 core.DefaultMaxDepth
	MaxDepth int

	// Interner 共享驻留服务，nil 表示 intern.Global()
	Interner core.Interner
	// Shapes 共享 shape 表，nil 表示进程级默认表
	Shapes *shape.Table
	// AtomCacheSize 私有标识符缓存容量，0 表示 core.DefaultAtomCacheSize
	AtomCacheSize int

	// NeedsFullSourceInfo JSONP 中禁止调用形式 a.b(...)
	NeedsFullSourceInfo bool

	Logger   *slog.Logger  // nil 表示 slog.Default()
	Observer core.Observer // nil 表示不观测
}

var defaultShapes = shape.NewTable(shape.Config{})

// DefaultShapes 返回进程级默认 shape 表
func DefaultShapes() *shape.Table { return defaultShapes }

// Parser 字面量解析器（可复用）
//
// 用法:
//
//	p := parser.New[byte](parser.Config{Mode: core.StrictJSON})
//	v, err := p.Parse([]byte(`{"key":"value"}`))
type Parser[C byte | uint16] struct {
	cfg      Config
	mode     core.Mode
	lex      *lexer.Lexer[C]
	atoms    *intern.Atoms
	shapes   *shape.Table
	factory  *value.Factory
	headroom core.Headroom
	maxDepth int
	wide     bool
	log      *slog.Logger
	obs      core.Observer

	stateStack  []State
	objectStack []*value.Value
	identStack  []string
	depth       int // 递归形式当前深度

	visitedProto map[*value.Value]struct{}

	// 区间追踪（仅 ParseWithRanges）
	ranges     *SourceRanges
	rangeStack []*RangeEntry
	lastRange  *RangeEntry

	err *SyntaxError
}

// New 创建解析器
func New[C byte | uint16](cfg Config) *Parser[C] {
	if cfg.Headroom == nil {
		cfg.Headroom = core.DepthHeadroom(core.DefaultRecursionLimit)
	}
	if cfg.MaxDepth <= 0 {
		cfg.MaxDepth = core.DefaultMaxDepth
	}
	if cfg.Interner == nil {
		cfg.Interner = intern.Global()
	}
	if cfg.Shapes == nil {
		cfg.Shapes = defaultShapes
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	if cfg.Observer == nil {
		cfg.Observer = core.NopObserver{}
	}
	var zero C
	_, wide := any(zero).(uint16)
	return &Parser[C]{
		cfg:        cfg,
		mode:       cfg.Mode,
		lex:        lexer.New[C](nil, cfg.Mode),
		atoms:      intern.NewAtoms(cfg.AtomCacheSize, cfg.Interner),
		shapes:     cfg.Shapes,
		factory:    value.NewFactory(cfg.Shapes),
		headroom:   cfg.Headroom,
		maxDepth:   cfg.MaxDepth,
		wide:       wide,
		log:        cfg.Logger,
		obs:        cfg.Observer,
		stateStack: make([]State, 0, 32),
	}
}

// Mode 返回方言
func (p *Parser[C]) Mode() core.Mode { return p.mode }

// Config 返回生效的配置（默认值已填充）
func (p *Parser[C]) Config() Config { return p.cfg }

// Reset 清空内部状态与私有标识符缓存
func (p *Parser[C]) Reset() {
	p.clear()
	p.atoms.Purge()
}

// Release 归还词法器缓冲（Parser 之后仍可使用）
func (p *Parser[C]) Release() {
	p.lex.Release()
}

// ─── 入口 ───

// Parse 解析一个完整文档
//
// StrictJSON: 单个 JSON 值；SloppyJSON: 语句形式（"(expr)"、数组、数字、字符串）；
// JSONP 方言下按宽松词法解析单个值。根值之后只允许空白（宽松方言允许一个 ';'）。
func (p *Parser[C]) Parse(input []C) (*value.Value, error) {
	p.begin(input)
	p.lex.Next()
	var v *value.Value
	switch {
	case p.mode == core.SloppyJSON && p.cfg.Iterative:
		v = p.parse(StartParseStatement)
	case p.mode == core.SloppyJSON:
		v = p.evalRecursivelyEntry()
	case p.cfg.Iterative:
		v = p.parse(StartParseExpression)
	default:
		v = p.parseRecursivelyEntry()
	}
	if v != nil {
		v = p.expectEnd(v)
	}
	return p.finish(v, len(input))
}

// ParseWithRanges 严格 JSON 解析并记录每个值的来源区间
//
// 区间追踪模式下 true/false/null 每次新分配，以便按值身份查询区间；
// 只使用迭代形式。
func (p *Parser[C]) ParseWithRanges(input []C) (*value.Value, *SourceRanges, error) {
	if p.mode != core.StrictJSON {
		return nil, nil, &SyntaxError{Msg: ErrReviverMode.Error(), Err: ErrReviverMode}
	}
	p.begin(input)
	p.ranges = newSourceRanges()
	p.factory.SetFresh(true)
	defer p.factory.SetFresh(false)

	p.lex.Next()
	v := p.parse(StartParseExpression)
	if v != nil {
		v = p.expectEnd(v)
	}
	ranges := p.ranges
	if v != nil {
		ranges.root = p.lastRange
	}
	v, err := p.finish(v, len(input))
	if err != nil {
		return nil, nil, err
	}
	return v, ranges, nil
}

func (p *Parser[C]) begin(input []C) {
	p.clear()
	p.lex.Reset(input, p.mode)
}

func (p *Parser[C]) clear() {
	p.stateStack = p.stateStack[:0]
	clear(p.objectStack)
	p.objectStack = p.objectStack[:0]
	clear(p.identStack)
	p.identStack = p.identStack[:0]
	p.depth = 0
	if len(p.visitedProto) > 0 {
		clear(p.visitedProto)
	}
	p.ranges = nil
	p.rangeStack = p.rangeStack[:0]
	p.lastRange = nil
	p.err = nil
}

// expectEnd 根值之后的尾部检查
func (p *Parser[C]) expectEnd(v *value.Value) *value.Value {
	if p.mode != core.StrictJSON && p.lex.Current().Kind == lexer.Semicolon {
		p.lex.Next()
	}
	if p.lex.Current().Kind != lexer.End {
		p.fail(msgTrailingContent, ErrSyntax)
		return nil
	}
	return v
}

// finish 汇总结果；词法错误信息优先于结构错误信息
func (p *Parser[C]) finish(v *value.Value, units int) (*value.Value, error) {
	p.factory.Detach()
	var err error
	if v == nil {
		err = p.error()
		p.log.Debug("literal: parse failed",
			"mode", p.mode.String(),
			"offset", p.err.Offset,
			"err", err)
	}
	p.obs.ObserveParse(p.mode, units, err)
	p.clear()
	if err != nil {
		return nil, err
	}
	return v, nil
}

func (p *Parser[C]) error() error {
	if msg := p.lex.ErrorMessage(); msg != "" {
		p.err = &SyntaxError{Msg: msg, Offset: p.lex.CurrentTokenStart(), Err: ErrLexical}
	}
	if p.err == nil {
		p.err = &SyntaxError{Msg: msgUnableToParse, Offset: p.lex.CurrentTokenStart(), Err: ErrSyntax}
	}
	return p.err
}

// fail 记录第一个错误
func (p *Parser[C]) fail(msg string, kind error) {
	if p.err != nil {
		return
	}
	p.err = &SyntaxError{Msg: msg, Offset: p.lex.CurrentTokenStart(), Err: kind}
}

// failToken 期望某个 Token 时的错误信息
func (p *Parser[C]) failToken(expected lexer.Kind) {
	switch expected {
	case lexer.RBrace:
		p.fail(msgExpectedRBrace, p.structural())
	case lexer.RBracket:
		p.fail(msgExpectedRBracket, p.structural())
	case lexer.Colon:
		p.fail(msgExpectedColon, p.structural())
	}
}

// structural 当前 Token 为 End 时归类为 EOF
func (p *Parser[C]) structural() error {
	if p.lex.Current().Kind == lexer.End {
		return ErrUnexpectedEOF
	}
	return ErrSyntax
}

// ─── Token 辅助 ───

// nextKey 读取 '{' 之后的第一个 Token（16 位输入提示可能是属性名）
func (p *Parser[C]) nextKey() lexer.Kind {
	if p.wide {
		return p.lex.NextMaybeIdentifier()
	}
	return p.lex.Next()
}

func (p *Parser[C]) isPropertyKey(k lexer.Kind) bool {
	return k == lexer.String || (p.mode != core.StrictJSON && k == lexer.Identifier)
}

// materialize 把字符串 Token 物化为不引用输入的字符串
//
// 短字符串经驻留表共享，长字符串直接拷贝。
func (p *Parser[C]) materialize(tok *lexer.Token) string {
	text := p.lex.Text(tok)
	if tok.Units() <= core.MaxAtomizeStringLength {
		return p.atoms.Make(text)
	}
	if tok.Escaped() || p.wide {
		return text
	}
	return strings.Clone(text)
}

// primitive 解析标量值；失败时记录错误并返回 nil
func (p *Parser[C]) primitive() *value.Value {
	tok := p.lex.Current()
	switch tok.Kind {
	case lexer.String:
		v := p.factory.String(p.materialize(tok))
		p.lex.Next()
		return v
	case lexer.Number:
		v := p.factory.Number(tok.Number)
		p.lex.Next()
		return v
	case lexer.Null:
		p.lex.Next()
		return p.factory.Null()
	case lexer.True:
		p.lex.Next()
		return p.factory.Bool(true)
	case lexer.False:
		p.lex.Next()
		return p.factory.Bool(false)
	case lexer.Identifier:
		p.fail(p.identifierMessage(tok), ErrSyntax)
	case lexer.RBracket, lexer.RBrace, lexer.Colon, lexer.LParen, lexer.RParen,
		lexer.Comma, lexer.Dot, lexer.Assign, lexer.Semicolon:
		p.fail("Unexpected token '"+tok.Kind.String()+"'", ErrSyntax)
	case lexer.End:
		p.fail(msgUnexpectedEOF, ErrUnexpectedEOF)
	default:
		p.fail(msgValueExpression, ErrLexical)
	}
	return nil
}

// identifierMessage "Unexpected identifier" 错误信息
//
// 标识符超过 MaxIdentifierErrorLength 时截断并加省略号；
// 结果超出消息预算时再按 ShortIdentifierErrorLength 截断一次，仍超出则不带标识符。
func (p *Parser[C]) identifierMessage(tok *lexer.Token) string {
	build := func(n int) string {
		prefix, truncated := p.lex.TextPrefix(tok, n)
		ellipsis := ""
		if truncated {
			ellipsis = "..."
		}
		return msgUnexpectedIdent + ` "` + prefix + ellipsis + `"`
	}
	msg := build(core.MaxIdentifierErrorLength)
	if len(msg) <= core.MaxErrorMessageBytes && utf8.ValidString(msg) {
		return msg
	}
	if tok.Units() > core.ShortIdentifierErrorLength {
		msg = build(core.ShortIdentifierErrorLength)
		if len(msg) <= core.MaxErrorMessageBytes && utf8.ValidString(msg) {
			return msg
		}
	}
	return msgUnexpectedIdent
}

// ─── 深度 ───

// enter 进入一层容器前检查嵌套深度
func (p *Parser[C]) enter() bool {
	if p.depth+len(p.objectStack) >= p.maxDepth {
		p.fail(msgNestingTooDeep, ErrNestingTooDeep)
		return false
	}
	return true
}
