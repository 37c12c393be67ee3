package lexer

import (
	"errors"
	"math"
	"strconv"

	"github.com/valyala/fastjson/fastfloat"

	"github.com/uniyakcom/literal/core"
)

// lexNumber 按 JSON 数字文法扫描:
//
//	-?(0|[1-9][0-9]*)('.'[0-9]+)?([eE][+-]?[0-9]+)?
//
// 无小数/指数且总长度 ≤ core.SafeInt32Digits 时直接整数累加（不经浮点解析），
// 其余交给 ParseNumberGeneral。
func (l *Lexer[C]) lexNumber() Kind {
	in := l.input
	n := len(in)
	start := l.pos
	i := l.pos
	if i < n && in[i] == '-' {
		i++
	}
	if i < n && in[i] == '0' {
		i++
	} else if i < n && in[i] >= '1' && in[i] <= '9' {
		i++
		for i < n && in[i] >= '0' && in[i] <= '9' {
			i++
		}
	} else {
		l.pos = i
		return l.fail("Invalid number")
	}

	if i < n && in[i] == '.' {
		i++
		if i >= n || in[i] < '0' || in[i] > '9' {
			l.pos = i
			return l.fail("Invalid digits after decimal point")
		}
		i++
		for i < n && in[i] >= '0' && in[i] <= '9' {
			i++
		}
	} else if (i >= n || (in[i] != 'e' && in[i] != 'E')) && i-start <= core.SafeInt32Digits {
		l.pos = i
		l.tok.Kind = Number
		l.setNumberFast(in[start:i])
		return Number
	}

	if i < n && (in[i] == 'e' || in[i] == 'E') {
		i++
		if i < n && (in[i] == '-' || in[i] == '+') {
			i++
		}
		if i >= n || in[i] < '0' || in[i] > '9' {
			l.pos = i
			return l.fail("Exponent symbols should be followed by an optional '+' or '-' and then by at least one number")
		}
		i++
		for i < n && in[i] >= '0' && in[i] <= '9' {
			i++
		}
	}

	l.pos = i
	f, err := ParseNumberGeneral(l.asciiSpan(start, i))
	if err != nil {
		return l.fail("Invalid number")
	}
	l.tok.Kind = Number
	l.tok.Number = f
	l.tok.IsInt = false
	return Number
}

// setNumberFast 整数快速路径（调用方保证 digits 合法且不超过 SafeInt32Digits）
func (l *Lexer[C]) setNumberFast(digits []C) {
	v, neg := accumulate(digits)
	l.tok.IsInt = false
	switch {
	case !neg:
		l.tok.Number = float64(v)
		l.tok.Int = v
		l.tok.IsInt = true
	case v == 0:
		// -0 只能用浮点表示
		l.tok.Number = math.Copysign(0, -1)
	default:
		l.tok.Number = float64(-v)
		l.tok.Int = -v
		l.tok.IsInt = true
	}
}

func accumulate[C byte | uint16](digits []C) (int32, bool) {
	neg := false
	if len(digits) > 0 && digits[0] == '-' {
		neg = true
		digits = digits[1:]
	}
	var v int32
	for _, d := range digits {
		v = v*10 + int32(d-'0')
	}
	return v, neg
}

// ParseNumberFast 对外暴露的整数快速路径（供等价性测试与基准使用）
//
// s 必须是不含小数/指数、长度 ≤ core.SafeInt32Digits 的合法整数，否则返回 false。
func ParseNumberFast(s string) (float64, bool) {
	if len(s) == 0 || len(s) > core.SafeInt32Digits {
		return 0, false
	}
	b := []byte(s)
	i := 0
	if b[0] == '-' {
		i = 1
	}
	if i >= len(b) || (b[i] == '0' && len(b) > i+1) {
		return 0, false
	}
	for _, c := range b[i:] {
		if c < '0' || c > '9' {
			return 0, false
		}
	}
	v, neg := accumulate(b)
	if !neg {
		return float64(v), true
	}
	if v == 0 {
		return math.Copysign(0, -1), true
	}
	return float64(-v), true
}

// ParseNumberGeneral 通用字符串 → float64 转换，结果为正确舍入的 double
//
// fastfloat 只处理能一次舍入得到精确结果的输入（见 fastfloatExact），其余交给 strconv。
// 超出 float64 范围时按 ECMAScript 语义返回 ±Inf。
func ParseNumberGeneral(s string) (float64, error) {
	if fastfloatExact(s) {
		if f, err := fastfloat.Parse(s); err == nil {
			return f, nil
		}
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil && !errors.Is(err, strconv.ErrRange) {
		return 0, err
	}
	return f, nil
}

// maxExactDigits 十进制尾数 < 10^15 < 2^53，可精确表示为 float64
const maxExactDigits = 15

// maxExactPow10 10^22 是可精确表示的最大 10 的幂
const maxExactPow10 = 22

// fastfloatExact s 是否落在 fastfloat 只做一次舍入的范围内
//
// fastfloat 对小数部分做 d / 10^k，对指数做 f * math.Pow10(e)。两个操作数都精确时
// 单次 IEEE 运算即正确舍入；负指数的 Pow10 本身不精确，小数与指数并存时舍入两次。
func fastfloatExact(s string) bool {
	sig, frac := 0, 0
	inFrac, nonzero := false, false
	i := 0
	if i < len(s) && s[i] == '-' {
		i++
	}
	for ; i < len(s); i++ {
		c := s[i]
		switch {
		case c >= '0' && c <= '9':
			if c != '0' || nonzero {
				nonzero = true
				sig++
			}
			if inFrac {
				frac++
			}
		case c == '.':
			inFrac = true
		case c == 'e' || c == 'E':
			if frac > 0 || sig > maxExactDigits {
				return false
			}
			i++
			if i < len(s) && s[i] == '+' {
				i++
			} else if i < len(s) && s[i] == '-' {
				return false
			}
			exp := 0
			for ; i < len(s); i++ {
				exp = exp*10 + int(s[i]-'0')
				if exp > maxExactPow10 {
					return false
				}
			}
			return true
		default:
			return false
		}
	}
	return sig <= maxExactDigits && frac <= maxExactPow10
}

// asciiSpan 取纯 ASCII 区间为字符串（数字字面量）
func (l *Lexer[C]) asciiSpan(a, b int) string {
	switch in := any(l.input).(type) {
	case []byte:
		return b2s(in[a:b])
	case []uint16:
		buf := l.numBuf[:0]
		for _, c := range in[a:b] {
			buf = append(buf, byte(c))
		}
		l.numBuf = buf
		return string(buf)
	}
	return ""
}
