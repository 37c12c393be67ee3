package value

import (
	"math"
	"strconv"
	"unicode/utf8"
)

// AppendJSON 把 v 序列化为紧凑 JSON 追加到 dst
func AppendJSON(dst []byte, v *Value) []byte {
	w := writer{buf: dst}
	w.value(v)
	return w.buf
}

// AppendIndent 把 v 序列化为带缩进的 JSON 追加到 dst（indent 为空时等同 AppendJSON）
func AppendIndent(dst []byte, v *Value, indent string) []byte {
	w := writer{buf: dst, indent: indent}
	w.value(v)
	return w.buf
}

// writer 递归序列化值树
type writer struct {
	buf    []byte
	indent string
	depth  int
}

func (w *writer) value(v *Value) {
	switch v.Type() {
	case TypeNull:
		w.buf = append(w.buf, "null"...)
	case TypeBool:
		w.buf = strconv.AppendBool(w.buf, v.b)
	case TypeNumber:
		w.buf = appendNumber(w.buf, v.n)
	case TypeString:
		w.buf = appendQuoted(w.buf, v.s)
	case TypeArray:
		w.open('[')
		for i, e := range v.a {
			w.separate(i)
			w.value(e)
		}
		w.close(']', len(v.a))
	case TypeObject:
		w.open('{')
		i := 0
		v.obj.each(func(k string, e *Value) bool {
			w.separate(i)
			i++
			w.buf = appendQuoted(w.buf, k)
			w.buf = append(w.buf, ':')
			if w.indent != "" {
				w.buf = append(w.buf, ' ')
			}
			w.value(e)
			return true
		})
		w.close('}', i)
	}
}

func (w *writer) open(c byte) {
	w.buf = append(w.buf, c)
	w.depth++
}

// separate 第 i 个元素之前的逗号与换行
func (w *writer) separate(i int) {
	if i > 0 {
		w.buf = append(w.buf, ',')
	}
	w.newline()
}

// close 空容器不换行: [] / {}
func (w *writer) close(c byte, n int) {
	w.depth--
	if n > 0 {
		w.newline()
	}
	w.buf = append(w.buf, c)
}

func (w *writer) newline() {
	if w.indent == "" {
		return
	}
	w.buf = append(w.buf, '\n')
	for i := 0; i < w.depth; i++ {
		w.buf = append(w.buf, w.indent...)
	}
}

// ─── 字符串 ───

// shortEscape 单字符转义；0 表示原样输出，'u' 表示 \u00XX
var shortEscape = func() (t [utf8.RuneSelf]byte) {
	for c := 0; c < 0x20; c++ {
		t[c] = 'u'
	}
	t['\b'], t['\f'], t['\n'], t['\r'], t['\t'] = 'b', 'f', 'n', 'r', 't'
	t['"'], t['\\'] = '"', '\\'
	return t
}()

const hexDigits = "0123456789abcdef"

// appendQuoted 写入 JSON 字符串；非法 UTF-8 字节输出为 U+FFFD
//
// 连续的安全字节整段追加。
func appendQuoted(dst []byte, s string) []byte {
	dst = append(dst, '"')
	run := 0
	for i := 0; i < len(s); {
		c := s[i]
		if c < utf8.RuneSelf {
			if shortEscape[c] == 0 {
				i++
				continue
			}
			dst = append(dst, s[run:i]...)
			if e := shortEscape[c]; e == 'u' {
				dst = append(dst, '\\', 'u', '0', '0', hexDigits[c>>4], hexDigits[c&0xF])
			} else {
				dst = append(dst, '\\', e)
			}
			i++
			run = i
			continue
		}
		r, size := utf8.DecodeRuneInString(s[i:])
		if r == utf8.RuneError && size == 1 {
			dst = append(dst, s[run:i]...)
			dst = utf8.AppendRune(dst, utf8.RuneError)
			run = i + 1
		}
		i += size
	}
	dst = append(dst, s[run:]...)
	return append(dst, '"')
}

// ─── 数值 ───

// appendNumber 按 JS Number::toString 的取舍写入数值
//
// 安全整数直接输出；|f| ≥ 1e21 或 < 1e-6 时使用指数形式；NaN/Inf 输出 null。
func appendNumber(dst []byte, f float64) []byte {
	switch {
	case math.IsNaN(f) || math.IsInf(f, 0):
		return append(dst, "null"...)
	case f == math.Trunc(f) && math.Abs(f) <= 1e15:
		return strconv.AppendInt(dst, int64(f), 10)
	}
	abs := math.Abs(f)
	if abs >= 1e21 || abs < 1e-6 {
		return strconv.AppendFloat(dst, f, 'e', -1, 64)
	}
	return strconv.AppendFloat(dst, f, 'f', -1, 64)
}
