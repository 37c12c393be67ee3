package lexer

import "github.com/uniyakcom/literal/core"

// latin1Kinds 256 项字符分类表: 码元 → 粗粒度 Token 类别
//
// 未列出的码元默认为 Error。0x80 以上由 Classify 按方言兜底。
var latin1Kinds = func() (t [256]Kind) {
	for c := 'a'; c <= 'z'; c++ {
		t[c] = Identifier
	}
	for c := 'A'; c <= 'Z'; c++ {
		t[c] = Identifier
	}
	for c := '0'; c <= '9'; c++ {
		t[c] = Number
	}
	t['$'] = Identifier
	t['_'] = Identifier
	t['-'] = Number
	t['"'] = String
	t['\''] = String
	t['{'] = LBrace
	t['}'] = RBrace
	t['['] = LBracket
	t[']'] = RBracket
	t['('] = LParen
	t[')'] = RParen
	t[':'] = Colon
	t[','] = Comma
	t['='] = Assign
	t[';'] = Semicolon
	t['.'] = Dot
	t[' '] = ErrorSpace
	t['\t'] = ErrorSpace
	t['\n'] = ErrorSpace
	t['\r'] = ErrorSpace
	t['\f'] = ErrorSpace
	t['\v'] = ErrorSpace
	return
}()

// strictSafe 严格模式字符串安全字符表（无需慢速路径处理）
var strictSafe = func() (t [256]bool) {
	for c := 0x20; c < 256; c++ {
		t[c] = true
	}
	t['"'] = false
	t['\\'] = false
	return
}()

// 空白掩码（仅 < 64 的码元）
const (
	wsStrict = 1<<' ' | 1<<'\t' | 1<<'\n' | 1<<'\r'
	wsSloppy = wsStrict | 1<<'\f' | 1<<'\v'
)

// whitespaceFor 返回方言的空白掩码
//
// 严格 JSON 仅允许 RFC 8259 定义的四种空白；宽松方言额外接受 FF/VT。
func whitespaceFor(mode core.Mode) uint64 {
	if mode == core.StrictJSON {
		return wsStrict
	}
	return wsSloppy
}

// IsWhitespace 判断 c 在该方言下是否为空白
func IsWhitespace[C byte | uint16](mode core.Mode, c C) bool {
	return c < 64 && whitespaceFor(mode)&(1<<c) != 0
}

// Classify 返回码元的 Token 类别
//
// 0x80 以上: 严格模式为 Error；宽松方言一律视为标识符起始（兼容 Unicode 标识符）。
func Classify[C byte | uint16](mode core.Mode, c C) Kind {
	if c < 0x80 {
		return latin1Kinds[c]
	}
	if mode == core.StrictJSON {
		return Error
	}
	return Identifier
}

// isIdentPart 标识符后续字符
func isIdentPart[C byte | uint16](mode core.Mode, c C, wide bool) bool {
	if c < 0x80 {
		return latin1Kinds[c] == Identifier || (c >= '0' && c <= '9')
	}
	if wide && (uint16(c) == 0x200C || uint16(c) == 0x200D) {
		return true
	}
	return mode != core.StrictJSON
}
