package lexer

import (
	"unicode/utf16"
	"unicode/utf8"

	"github.com/valyala/bytebufferpool"

	"github.com/uniyakcom/literal/core"
)

// lexString 字符串快速路径
//
// 扫描到终止引号前未遇到不安全字符时，Token 直接别名输入区间（无分配）；
// 否则从第一个不安全字符处进入 lexStringSlow。
func (l *Lexer[C]) lexString(terminator C, maybeIdent bool) Kind {
	l.pos++
	runStart := l.pos
	switch {
	case l.mode != core.StrictJSON:
		l.pos = scanSloppy(l.input, l.pos, terminator)
	case maybeIdent:
		l.pos = scanStrictScalar(l.input, l.pos)
	default:
		l.pos = scanStrict(l.input, l.pos)
	}
	if l.pos < len(l.input) && l.input[l.pos] == terminator {
		l.tok.Kind = String
		l.tok.textStart = runStart
		l.tok.textEnd = l.pos
		l.tok.escaped = false
		l.tok.text = ""
		l.pos++
		return String
	}
	return l.lexStringSlow(runStart, terminator)
}

// scanStrict 严格模式批量扫描，返回第一个不安全码元的位置
//
// 不安全码元只有 '"' (0x22)、'\\' (0x5C) 与控制字符 (< 0x20)，全部 <= '\\'，
// 因此每个码元先做一次 > '\\' 比较，8 路展开。
func scanStrict[C byte | uint16](s []C, i int) int {
	n := len(s)
	for n-i >= 8 {
		if s[i] <= '\\' {
			goto ch
		}
		if s[i+1] <= '\\' {
			i++
			goto ch
		}
		if s[i+2] <= '\\' {
			i += 2
			goto ch
		}
		if s[i+3] <= '\\' {
			i += 3
			goto ch
		}
		if s[i+4] <= '\\' {
			i += 4
			goto ch
		}
		if s[i+5] <= '\\' {
			i += 5
			goto ch
		}
		if s[i+6] <= '\\' {
			i += 6
			goto ch
		}
		if s[i+7] <= '\\' {
			i += 7
			goto ch
		}
		i += 8
		continue
	ch:
		if !isStrictSafe(s[i]) {
			return i
		}
		i++
	}
	for i < n && isStrictSafe(s[i]) {
		i++
	}
	return i
}

// scanStrictScalar 严格模式逐码元扫描
func scanStrictScalar[C byte | uint16](s []C, i int) int {
	for i < len(s) && isStrictSafe(s[i]) {
		i++
	}
	return i
}

// scanSloppy 宽松方言扫描: 允许 \t，拒绝其它控制字符、反斜杠与终止引号
//
// 8 位与 16 位输入对 U+00FF 以上字符同样放行，同一文本两种宽度结果一致。
func scanSloppy[C byte | uint16](s []C, i int, terminator C) int {
	for i < len(s) {
		c := s[i]
		if (c >= ' ' && c != '\\' && c != terminator) || c == '\t' {
			i++
			continue
		}
		break
	}
	return i
}

func isStrictSafe[C byte | uint16](c C) bool {
	if c > 0xFF {
		return true
	}
	return strictSafe[c]
}

// lexStringSlow 慢速路径: 把已扫描的区间与解码后的转义写入 scratch 缓冲
//
// SloppyJSON 不处理转义（遇到反斜杠即报 Unterminated string，交由完整 JS 解析器处理）；
// StrictJSON 与 JSONP 解码 \n \t \r \b \f \\ \" \/ \uXXXX，非严格方言额外接受 \'。
func (l *Lexer[C]) lexStringSlow(runStart int, terminator C) Kind {
	in := l.input
	n := len(in)
	if l.scratch == nil {
		l.scratch = bytebufferpool.Get()
	}
	b := textBuilder{buf: l.scratch, high: -1}
	b.buf.Reset()
	started := false
	first := true
	for {
		if !first {
			runStart = l.pos
			if l.mode == core.StrictJSON {
				l.pos = scanStrictScalar(in, l.pos)
			} else {
				l.pos = scanSloppy(in, l.pos, terminator)
			}
			if started {
				appendRun(&b, in[runStart:l.pos])
			}
		}
		first = false

		if l.mode != core.SloppyJSON && l.pos < n && in[l.pos] == '\\' {
			if !started && runStart < l.pos {
				appendRun(&b, in[runStart:l.pos])
			}
			started = true
			l.pos++
			if l.pos >= n {
				return l.fail("Unterminated string")
			}
			switch c := in[l.pos]; c {
			case '"', '\\', '/':
				b.unit(rune(c))
				l.pos++
			case 'b':
				b.unit('\b')
				l.pos++
			case 'f':
				b.unit('\f')
				l.pos++
			case 'n':
				b.unit('\n')
				l.pos++
			case 'r':
				b.unit('\r')
				l.pos++
			case 't':
				b.unit('\t')
				l.pos++
			case 'u':
				if n-l.pos < 5 {
					return l.fail(`\u must be followed by 4 hex digits`)
				}
				var r rune
				for k := 1; k < 5; k++ {
					d := hexValue(in[l.pos+k])
					if d < 0 {
						return l.fail(`"\` + l.span(l.pos, l.pos+5) + `" is not a valid unicode escape`)
					}
					r = r<<4 | d
				}
				b.unit(r)
				l.pos += 5
			default:
				if c == '\'' && l.mode != core.StrictJSON {
					b.unit('\'')
					l.pos++
					break
				}
				return l.fail("Invalid escape character " + l.charAt(l.pos))
			}
		}

		if !(l.mode != core.SloppyJSON && l.pos != runStart && l.pos < n && in[l.pos] != terminator) {
			break
		}
	}

	if l.pos >= n || in[l.pos] != terminator {
		return l.fail("Unterminated string")
	}

	l.tok.Kind = String
	if !started {
		l.tok.textStart = runStart
		l.tok.textEnd = l.pos
		l.tok.escaped = false
		l.tok.text = ""
	} else {
		b.flush()
		l.tok.text = string(b.buf.B)
		l.tok.escaped = true
	}
	l.pos++
	return String
}

func hexValue[C byte | uint16](c C) rune {
	switch {
	case c >= '0' && c <= '9':
		return rune(c - '0')
	case c >= 'a' && c <= 'f':
		return rune(c-'a') + 10
	case c >= 'A' && c <= 'F':
		return rune(c-'A') + 10
	}
	return -1
}

// textBuilder 把 UTF-16 码元与 UTF-8 原始字节统一写成 UTF-8
//
// 高代理项暂存到 high，遇到低代理项时合并；孤立代理项写为 U+FFFD。
type textBuilder struct {
	buf  *bytebufferpool.ByteBuffer
	high rune
}

func (t *textBuilder) unit(u rune) {
	if t.high >= 0 {
		if utf16.IsSurrogate(u) && u >= 0xDC00 {
			t.buf.B = utf8.AppendRune(t.buf.B, utf16.DecodeRune(t.high, u))
			t.high = -1
			return
		}
		t.flush()
	}
	if u >= 0xD800 && u < 0xDC00 {
		t.high = u
		return
	}
	t.buf.B = utf8.AppendRune(t.buf.B, u)
}

func (t *textBuilder) flush() {
	if t.high >= 0 {
		t.buf.B = utf8.AppendRune(t.buf.B, utf8.RuneError)
		t.high = -1
	}
}

func appendRun[C byte | uint16](t *textBuilder, run []C) {
	if len(run) == 0 {
		return
	}
	switch s := any(run).(type) {
	case []byte:
		t.flush()
		t.buf.B = append(t.buf.B, s...)
	case []uint16:
		for _, u := range s {
			t.unit(rune(u))
		}
	}
}
