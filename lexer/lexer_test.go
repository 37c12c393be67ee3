package lexer

import (
	"math"
	"math/rand"
	"strconv"
	"testing"
	"unicode/utf16"
	"unicode/utf8"

	"github.com/uniyakcom/literal/core"
)

func u16(s string) []uint16 { return utf16.Encode([]rune(s)) }

// kinds 收集全部 Token 类型（含结尾的 End/Error）
func kinds[C byte | uint16](l *Lexer[C]) []Kind {
	var out []Kind
	for {
		k := l.Next()
		out = append(out, k)
		if k == End || k == Error {
			return out
		}
	}
}

// TestLexerTokenSequence 测试基本 Token 序列
func TestLexerTokenSequence(t *testing.T) {
	src := `{"a":[1,-2.5e3,true,false,null]}`
	want := []Kind{LBrace, String, Colon, LBracket, Number, Comma, Number, Comma,
		True, Comma, False, Comma, Null, RBracket, RBrace, End}

	got := kinds(New([]byte(src), core.StrictJSON))
	if len(got) != len(want) {
		t.Fatalf("got %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("token %d: got %s, want %s", i, got[i], want[i])
		}
	}

	got16 := kinds(New(u16(src), core.StrictJSON))
	for i := range want {
		if got16[i] != want[i] {
			t.Errorf("16-bit token %d: got %s, want %s", i, got16[i], want[i])
		}
	}
}

// TestLexerPunctuation 测试 JSONP 方言的标点
func TestLexerPunctuation(t *testing.T) {
	got := kinds(New([]byte(`var a.b[0] = (x);`), core.JSONP))
	want := []Kind{Identifier, Identifier, Dot, Identifier, LBracket, Number, RBracket,
		Assign, LParen, Identifier, RParen, Semicolon, End}
	if len(got) != len(want) {
		t.Fatalf("got %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("token %d: got %s, want %s", i, got[i], want[i])
		}
	}
}

// TestLexerTokenOffsets 测试 Token 起止偏移
func TestLexerTokenOffsets(t *testing.T) {
	l := New([]byte(`  [ "ab" ]`), core.StrictJSON)
	l.Next()
	if l.CurrentTokenStart() != 2 || l.CurrentTokenEnd() != 3 {
		t.Errorf("'[' span = [%d,%d), want [2,3)", l.CurrentTokenStart(), l.CurrentTokenEnd())
	}
	l.Next()
	if l.CurrentTokenStart() != 4 || l.CurrentTokenEnd() != 8 {
		t.Errorf("string span = [%d,%d), want [4,8)", l.CurrentTokenStart(), l.CurrentTokenEnd())
	}
}

// TestLexerStringFastPath 测试无转义字符串直接引用输入
func TestLexerStringFastPath(t *testing.T) {
	for _, src := range []string{`"hello world, this is long enough"`, `"短"`, `""`} {
		l := New([]byte(src), core.StrictJSON)
		if k := l.Next(); k != String {
			t.Fatalf("%s: kind = %s", src, k)
		}
		tok := l.Current()
		if tok.Escaped() {
			t.Errorf("%s: fast path expected", src)
		}
		if got, want := l.Text(tok), src[1:len(src)-1]; got != want {
			t.Errorf("text = %q, want %q", got, want)
		}
	}
}

// TestLexerEscapeFidelity 测试转义解码
func TestLexerEscapeFidelity(t *testing.T) {
	cases := []struct {
		src  string
		mode core.Mode
		want string
	}{
		{`"A\n\t\\\""`, core.StrictJSON, "A\n\t\\\""},
		{`"a\/b\bc\fd\re"`, core.StrictJSON, "a/b\bc\fd\re"},
		{`"xéy"`, core.StrictJSON, "xéy"},
		{`"😀"`, core.StrictJSON, "😀"},
		{`"\ud83d"`, core.StrictJSON, "�"},
		{`'it\'s'`, core.JSONP, "it's"},
		{`"tab	inside"`, core.SloppyJSON, "tab\tinside"},
		{`'中文😀'`, core.SloppyJSON, "中文😀"},
		{`"ÿĀ"`, core.SloppyJSON, "ÿĀ"},
		{`'中\'文😀'`, core.JSONP, "中'文😀"},
	}
	for _, c := range cases {
		for _, wide := range []bool{false, true} {
			var (
				k    Kind
				text string
				msg  string
			)
			if wide {
				l := New(u16(c.src), c.mode)
				k, text, msg = l.Next(), l.Text(l.Current()), l.ErrorMessage()
			} else {
				l := New([]byte(c.src), c.mode)
				k, text, msg = l.Next(), l.Text(l.Current()), l.ErrorMessage()
			}
			if k != String {
				t.Errorf("%s (wide=%v): kind = %s (%s)", c.src, wide, k, msg)
				continue
			}
			if text != c.want {
				t.Errorf("%s (wide=%v): text = %q, want %q", c.src, wide, text, c.want)
			}
		}
	}
}

// TestLexerErrors 测试词法错误信息
func TestLexerErrors(t *testing.T) {
	cases := []struct {
		src  string
		mode core.Mode
		want string
	}{
		{`"\u12"`, core.StrictJSON, `\u must be followed by 4 hex digits`},
		{`"\u12zz"`, core.StrictJSON, `"\u12zz" is not a valid unicode escape`},
		{`"\x"`, core.StrictJSON, "Invalid escape character x"},
		{`"\'"`, core.StrictJSON, "Invalid escape character '"},
		{`"abc`, core.StrictJSON, "Unterminated string"},
		{"\"a\nb\"", core.StrictJSON, "Unterminated string"},
		{`"a\nb"`, core.SloppyJSON, "Unterminated string"},
		{`'a'`, core.StrictJSON, "Single quotes (') are not allowed in JSON"},
		{`@`, core.StrictJSON, "Unrecognized token '@'"},
		{`-`, core.StrictJSON, "Invalid number"},
		{`-a`, core.StrictJSON, "Invalid number"},
		{`1.`, core.StrictJSON, "Invalid digits after decimal point"},
		{`1.e5`, core.StrictJSON, "Invalid digits after decimal point"},
		{`1e`, core.StrictJSON, "Exponent symbols should be followed by an optional '+' or '-' and then by at least one number"},
		{`1e+`, core.StrictJSON, "Exponent symbols should be followed by an optional '+' or '-' and then by at least one number"},
		{"\f1", core.StrictJSON, "Unrecognized token '\f'"},
	}
	for _, c := range cases {
		l := New([]byte(c.src), c.mode)
		if k := l.Next(); k != Error {
			t.Errorf("%q: kind = %s, want error", c.src, k)
			continue
		}
		if got := l.ErrorMessage(); got != c.want {
			t.Errorf("%q: message = %q, want %q", c.src, got, c.want)
		}
	}
}

// TestLexerErrorCharacters 测试错误信息中的非 ASCII 字符保持合法 UTF-8
func TestLexerErrorCharacters(t *testing.T) {
	narrow := []struct {
		src, want string
	}{
		{"é", "Unrecognized token 'é'"},
		{"😀", "Unrecognized token '😀'"},
		{"\xff", `Unrecognized token '\xFF'`},
		{"\xc3(", `Unrecognized token '\xC3'`},
		{`"\é"`, "Invalid escape character é"},
		{"\"\\\x80\"", `Invalid escape character \x80`},
	}
	for _, c := range narrow {
		l := New([]byte(c.src), core.StrictJSON)
		if k := l.Next(); k != Error {
			t.Fatalf("%q: kind = %s", c.src, k)
		}
		got := l.ErrorMessage()
		if got != c.want || !utf8.ValidString(got) {
			t.Errorf("%q: message = %q, want %q", c.src, got, c.want)
		}
	}

	wide := []struct {
		src  []uint16
		want string
	}{
		{u16("é"), "Unrecognized token 'é'"},
		{u16("😀"), "Unrecognized token '😀'"},
		{[]uint16{0xD800}, `Unrecognized token '\uD800'`},
		{[]uint16{0xDC00, 'a'}, `Unrecognized token '\uDC00'`},
		{append(u16(`"\`), 0xD83D, 0xDE00, '"'), "Invalid escape character 😀"},
	}
	for _, c := range wide {
		l := New(c.src, core.StrictJSON)
		if k := l.Next(); k != Error {
			t.Fatalf("%v: kind = %s", c.src, k)
		}
		got := l.ErrorMessage()
		if got != c.want || !utf8.ValidString(got) {
			t.Errorf("%v: message = %q, want %q", c.src, got, c.want)
		}
	}
}

// TestLexerSloppyWhitespace 测试宽松方言接受 FF/VT
func TestLexerSloppyWhitespace(t *testing.T) {
	l := New([]byte("\f\v 1"), core.SloppyJSON)
	if k := l.Next(); k != Number {
		t.Fatalf("kind = %s (%s)", k, l.ErrorMessage())
	}
	if !IsWhitespace(core.SloppyJSON, byte('\v')) || IsWhitespace(core.StrictJSON, byte('\v')) {
		t.Error("vertical tab classification mismatch")
	}
}

// TestLexerNumberFastPath 测试整数快速路径
func TestLexerNumberFastPath(t *testing.T) {
	cases := []struct {
		src   string
		isInt bool
		want  float64
	}{
		{"0", true, 0},
		{"7", true, 7},
		{"-7", true, -7},
		{"123456789", true, 123456789},
		{"-12345678", true, -12345678},
		{"1234567890", false, 1234567890},
		{"-123456789", false, -123456789},
		{"1.5", false, 1.5},
		{"1e3", false, 1000},
		{"-2.5E-3", false, -0.0025},
	}
	for _, c := range cases {
		l := New([]byte(c.src), core.StrictJSON)
		if k := l.Next(); k != Number {
			t.Fatalf("%s: kind = %s (%s)", c.src, k, l.ErrorMessage())
		}
		tok := l.Current()
		if tok.IsInt != c.isInt {
			t.Errorf("%s: IsInt = %v, want %v", c.src, tok.IsInt, c.isInt)
		}
		if tok.Number != c.want {
			t.Errorf("%s: number = %v, want %v", c.src, tok.Number, c.want)
		}
		if tok.IsInt && float64(tok.Int) != c.want {
			t.Errorf("%s: int = %d", c.src, tok.Int)
		}
	}
}

// TestLexerNegativeZero 测试 -0 为浮点负零
func TestLexerNegativeZero(t *testing.T) {
	l := New(u16("-0"), core.StrictJSON)
	l.Next()
	tok := l.Current()
	if tok.IsInt {
		t.Error("-0 must not take the integer representation")
	}
	if tok.Number != 0 || !math.Signbit(tok.Number) {
		t.Errorf("-0 parsed as %v", tok.Number)
	}
}

// TestLexerNumberOverflow 测试超出 float64 范围的数字
func TestLexerNumberOverflow(t *testing.T) {
	l := New([]byte("1e400"), core.StrictJSON)
	if k := l.Next(); k != Number {
		t.Fatalf("kind = %s", k)
	}
	if !math.IsInf(l.Current().Number, 1) {
		t.Errorf("1e400 = %v, want +Inf", l.Current().Number)
	}
}

// TestNumberFastPathEquivalence 测试快速路径与通用路径一致
func TestNumberFastPathEquivalence(t *testing.T) {
	check := func(s string) {
		fast, ok := ParseNumberFast(s)
		if !ok {
			t.Fatalf("%s: fast path rejected", s)
		}
		general, err := ParseNumberGeneral(s)
		if err != nil {
			t.Fatalf("%s: %v", s, err)
		}
		if math.Float64bits(fast) != math.Float64bits(general) {
			t.Errorf("%s: fast %v != general %v", s, fast, general)
		}
	}
	for i := -99999999; i <= 999999999; i += 7919 {
		check(strconv.Itoa(i))
	}
	for _, s := range []string{"0", "9", "-9", "99999999", "-99999999", "999999999"} {
		check(s)
	}
	if _, ok := ParseNumberFast("1234567890"); ok {
		t.Error("10 characters must not take the fast path")
	}
	if _, ok := ParseNumberFast("012"); ok {
		t.Error("leading zero must be rejected")
	}
}

// TestNumberGeneralCorrectlyRounded 测试通用路径与 strconv 逐位一致
func TestNumberGeneralCorrectlyRounded(t *testing.T) {
	check := func(s string) {
		t.Helper()
		got, err := ParseNumberGeneral(s)
		if err != nil {
			t.Fatalf("%s: %v", s, err)
		}
		want, _ := strconv.ParseFloat(s, 64)
		if math.Float64bits(got) != math.Float64bits(want) {
			t.Fatalf("%s: got %v, want %v", s, got, want)
		}
	}
	for _, s := range []string{
		"4739111663495868e-5", "26222426471854123e7", "965320773520391506e-3",
		"0.1", "0.3", "123.456", "-0.0", "1e22", "1e23", "9007199254740993",
		"123456789012345e22", "1.5e0", "2e-1", "0.0000000000000000000001",
	} {
		check(s)
	}

	r := rand.New(rand.NewSource(1))
	digits := func(n int) string {
		b := make([]byte, n)
		b[0] = byte('1' + r.Intn(9))
		for i := 1; i < n; i++ {
			b[i] = byte('0' + r.Intn(10))
		}
		return string(b)
	}
	for i := 0; i < 20000; i++ {
		m := digits(16 + r.Intn(4))
		e := r.Intn(61) - 30
		check(m + "e" + strconv.Itoa(e))
		p := 1 + r.Intn(len(m)-1)
		check(m[:p] + "." + m[p:])
		check("-" + m[:p] + "." + m[p:] + "e" + strconv.Itoa(e))

		short := digits(1 + r.Intn(15))
		check(short + "e" + strconv.Itoa(r.Intn(45)-22))
		if len(short) > 1 {
			q := 1 + r.Intn(len(short)-1)
			check(short[:q] + "." + short[q:])
		}
	}
}

// TestLexerNumberRounding 测试词法器输出正确舍入的数值
func TestLexerNumberRounding(t *testing.T) {
	for _, src := range []string{"4739111663495868e-5", "26222426471854123e7", "965320773520391506e-3"} {
		want, _ := strconv.ParseFloat(src, 64)
		for _, got := range []float64{
			lexNumberOf(t, New([]byte(src), core.StrictJSON)),
			lexNumberOf(t, New(u16(src), core.StrictJSON)),
		} {
			if math.Float64bits(got) != math.Float64bits(want) {
				t.Errorf("%s: got %v, want %v", src, got, want)
			}
		}
	}
}

func lexNumberOf[C byte | uint16](t *testing.T, l *Lexer[C]) float64 {
	t.Helper()
	if k := l.Next(); k != Number {
		t.Fatalf("kind = %s (%s)", k, l.ErrorMessage())
	}
	return l.Current().Number
}

// TestClassify 测试字符分类
func TestClassify(t *testing.T) {
	if Classify(core.StrictJSON, byte('"')) != String {
		t.Error(`'"' should start a string`)
	}
	if Classify(core.StrictJSON, byte('-')) != Number {
		t.Error("'-' should start a number")
	}
	if Classify(core.StrictJSON, byte('{')) != LBrace {
		t.Error("'{' should be LBrace")
	}
	if Classify(core.StrictJSON, byte(' ')) != ErrorSpace {
		t.Error("space should classify as ErrorSpace")
	}
	if Classify(core.StrictJSON, uint16(0x4E2D)) != Error {
		t.Error("non-ASCII must be an error in strict mode")
	}
	if Classify(core.SloppyJSON, uint16(0x4E2D)) != Identifier {
		t.Error("non-ASCII should start an identifier in sloppy mode")
	}
}

// TestLexerIdentifiers 测试标识符与字面量识别
//
// 字面量只比较前缀: "trueish" 产出 True 与标识符 "ish"。
func TestLexerIdentifiers(t *testing.T) {
	l := New([]byte(`trueish nul $x_1 null`), core.SloppyJSON)
	want := []struct {
		kind Kind
		text string
	}{
		{True, ""},
		{Identifier, "ish"},
		{Identifier, "nul"},
		{Identifier, "$x_1"},
		{Null, ""},
		{End, ""},
	}
	for _, w := range want {
		k := l.Next()
		if k != w.kind {
			t.Fatalf("kind = %s, want %s", k, w.kind)
		}
		if w.text != "" && l.Text(l.Current()) != w.text {
			t.Errorf("text = %q, want %q", l.Text(l.Current()), w.text)
		}
	}
}

// TestTextPrefix 测试截断不落在多字节字符中间
func TestTextPrefix(t *testing.T) {
	l := New([]byte(`abcdéfg`), core.SloppyJSON)
	l.Next()
	got, truncated := l.TextPrefix(l.Current(), 5)
	if !truncated || got != "abcd" {
		t.Errorf("prefix = %q, %v; want \"abcd\", true", got, truncated)
	}
	got, truncated = l.TextPrefix(l.Current(), 100)
	if truncated || got != "abcdéfg" {
		t.Errorf("prefix = %q, %v", got, truncated)
	}
}
