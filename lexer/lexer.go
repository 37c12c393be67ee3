package lexer

import (
	"unicode/utf16"
	"unicode/utf8"

	"github.com/valyala/bytebufferpool"

	"github.com/uniyakcom/literal/core"
)

// Lexer 字面量词法器
//
// 注意: Lexer 不是并发安全的；8 位输入下 Text 返回的字符串别名输入内存，
// 生命周期绑定到输入。
type Lexer[C byte | uint16] struct {
	input  []C
	pos    int
	mode   core.Mode
	ws     uint64
	wide   bool
	tok    Token
	errMsg string

	scratch *bytebufferpool.ByteBuffer // 慢速路径解码缓冲
	numBuf  []byte                     // 16 位输入的数字字面量缓冲
}

// New 创建词法器
func New[C byte | uint16](input []C, mode core.Mode) *Lexer[C] {
	l := &Lexer[C]{}
	l.Reset(input, mode)
	return l
}

// Reset 重置为新的输入（复用 scratch 缓冲）
func (l *Lexer[C]) Reset(input []C, mode core.Mode) {
	var zero C
	_, l.wide = any(zero).(uint16)
	l.input = input
	l.pos = 0
	l.mode = mode
	l.ws = whitespaceFor(mode)
	l.tok = Token{}
	l.errMsg = ""
}

// Release 归还 scratch 缓冲
func (l *Lexer[C]) Release() {
	if l.scratch != nil {
		bytebufferpool.Put(l.scratch)
		l.scratch = nil
	}
}

// Mode 返回当前方言
func (l *Lexer[C]) Mode() core.Mode { return l.mode }

// Input 返回输入
func (l *Lexer[C]) Input() []C { return l.input }

// Current 返回当前 Token
func (l *Lexer[C]) Current() *Token { return &l.tok }

// CurrentTokenStart 当前 Token 起始偏移
func (l *Lexer[C]) CurrentTokenStart() int { return l.tok.Start }

// CurrentTokenEnd 当前 Token 结束偏移
func (l *Lexer[C]) CurrentTokenEnd() int { return l.tok.End }

// ErrorMessage 最近一次词法错误的可读信息
func (l *Lexer[C]) ErrorMessage() string { return l.errMsg }

// Next 前进到下一个 Token
func (l *Lexer[C]) Next() Kind {
	return l.lex(false)
}

// NextMaybeIdentifier 前进到下一个 Token，提示其可能是属性名
//
// 严格模式下字符串扫描改用逐码元路径，非 Latin-1 码元视为安全字符。
func (l *Lexer[C]) NextMaybeIdentifier() Kind {
	return l.lex(true)
}

func (l *Lexer[C]) lex(maybeIdent bool) Kind {
	in := l.input
	n := len(in)
	for l.pos < n && in[l.pos] < 64 && l.ws&(1<<in[l.pos]) != 0 {
		l.pos++
	}
	l.tok.Start = l.pos
	k := l.lexToken(maybeIdent)
	l.tok.End = l.pos
	return k
}

func (l *Lexer[C]) lexToken(maybeIdent bool) Kind {
	in := l.input
	n := len(in)
	if l.pos >= n {
		l.tok.Kind = End
		return End
	}
	l.tok.Kind = Error
	c := in[l.pos]
	switch kind := Classify(l.mode, c); kind {
	case String:
		if c == '\'' && l.mode == core.StrictJSON {
			return l.fail("Single quotes (') are not allowed in JSON")
		}
		return l.lexString(c, maybeIdent)
	case Identifier:
		switch c {
		case 't':
			if l.literal("true") {
				l.tok.Kind = True
				return True
			}
		case 'f':
			if l.literal("false") {
				l.tok.Kind = False
				return False
			}
		case 'n':
			if l.literal("null") {
				l.tok.Kind = Null
				return Null
			}
		}
		return l.lexIdentifier()
	case Number:
		return l.lexNumber()
	case Error, ErrorSpace:
		return l.fail("Unrecognized token '" + l.charAt(l.pos) + "'")
	default:
		l.tok.Kind = kind
		l.pos++
		return kind
	}
}

// literal 直接比较 true/false/null 字面量
func (l *Lexer[C]) literal(word string) bool {
	in := l.input
	if len(in)-l.pos < len(word) {
		return false
	}
	for i := 1; i < len(word); i++ {
		if in[l.pos+i] != C(word[i]) {
			return false
		}
	}
	l.pos += len(word)
	return true
}

// lexIdentifier 标识符快速路径
func (l *Lexer[C]) lexIdentifier() Kind {
	in := l.input
	start := l.pos
	for l.pos < len(in) && isIdentPart(l.mode, in[l.pos], l.wide) {
		l.pos++
	}
	l.tok.Kind = Identifier
	l.tok.textStart = start
	l.tok.textEnd = l.pos
	l.tok.escaped = false
	l.tok.text = ""
	return Identifier
}

// Text 返回 String/Identifier Token 的文本
//
// 无转义时直接引用输入（8 位输入零拷贝），含转义时返回已物化的字符串。
func (l *Lexer[C]) Text(t *Token) string {
	if t.escaped {
		return t.text
	}
	return l.span(t.textStart, t.textEnd)
}

// TextPrefix 返回载荷前 n 个码元的文本，以及是否发生截断
//
// 截断点不会落在 UTF-8 多字节序列或 UTF-16 代理对中间。
func (l *Lexer[C]) TextPrefix(t *Token, n int) (string, bool) {
	if t.escaped {
		s := t.text
		if len(s) <= n {
			return s, false
		}
		for n > 0 && !utf8.RuneStart(s[n]) {
			n--
		}
		return s[:n], true
	}
	end := t.textStart + n
	if end >= t.textEnd {
		return l.span(t.textStart, t.textEnd), false
	}
	switch in := any(l.input).(type) {
	case []byte:
		for end > t.textStart && !utf8.RuneStart(in[end]) {
			end--
		}
	case []uint16:
		if utf16.IsSurrogate(rune(in[end-1])) && in[end-1] < 0xDC00 {
			end--
		}
	}
	return l.span(t.textStart, end), true
}

// Raw 返回输入区间 [a, b) 的文本
func (l *Lexer[C]) Raw(a, b int) string {
	return l.span(a, b)
}

func (l *Lexer[C]) span(a, b int) string {
	switch in := any(l.input).(type) {
	case []byte:
		return b2s(in[a:b])
	case []uint16:
		return string(utf16.Decode(in[a:b]))
	}
	return ""
}

// fail 记录错误信息并返回 Error
func (l *Lexer[C]) fail(msg string) Kind {
	l.errMsg = msg
	l.tok.Kind = Error
	return Error
}

// charAt 返回 pos 处完整字符的 UTF-8 形式（用于错误信息）
//
// 8 位输入按 UTF-8 解码，非法字节写成 \xNN；16 位输入合并代理对，孤立代理写成 \uXXXX。
func (l *Lexer[C]) charAt(pos int) string {
	const hex = "0123456789ABCDEF"
	switch in := any(l.input).(type) {
	case []byte:
		r, size := utf8.DecodeRune(in[pos:])
		if r == utf8.RuneError && size <= 1 {
			c := in[pos]
			return string([]byte{'\\', 'x', hex[c>>4], hex[c&0xF]})
		}
		return string(r)
	case []uint16:
		u := in[pos]
		if !utf16.IsSurrogate(rune(u)) {
			return string(rune(u))
		}
		if pos+1 < len(in) {
			if r := utf16.DecodeRune(rune(u), rune(in[pos+1])); r != utf8.RuneError {
				return string(r)
			}
		}
		return string([]byte{'\\', 'u', hex[u>>12], hex[u>>8&0xF], hex[u>>4&0xF], hex[u&0xF]})
	}
	return ""
}
