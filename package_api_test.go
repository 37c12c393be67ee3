package literal

import (
	"errors"
	"strings"
	"testing"
)

// TestPackageAPIDefault 验证 Default() 返回严格 JSON Engine
func TestPackageAPIDefault(t *testing.T) {
	e := Default()
	if e == nil {
		t.Fatal("Default() returned nil")
	}
	if e.Mode() != StrictJSON {
		t.Errorf("default mode = %s", e.Mode())
	}
}

// TestPackageAPIParse 包级解析入口
func TestPackageAPIParse(t *testing.T) {
	v, err := Parse([]byte(`{"a":[1,2,3]}`))
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	if v.Get("a").Len() != 3 {
		t.Error("array length mismatch")
	}

	v, err = ParseString(`"hello"`)
	if err != nil || v.String() != "hello" {
		t.Errorf("ParseString = %v, %v", v, err)
	}

	v, err = ParseStringUTF16(`{"π":3.14}`)
	if err != nil || v.GetFloat64("π") != 3.14 {
		t.Errorf("ParseStringUTF16 = %v, %v", v, err)
	}

	v, err = Eval([]byte(`([true, 'x'])`))
	if err != nil || string(Marshal(v)) != `[true,"x"]` {
		t.Errorf("Eval = %v, %v", v, err)
	}

	data, err := ParseJSONP([]byte(`var a = 1;`))
	if err != nil || len(data) != 1 || data[0].Value.Float64() != 1 {
		t.Errorf("ParseJSONP = %v, %v", data, err)
	}

	v, ranges, err := ParseWithRanges([]byte(` [1] `))
	if err != nil || ranges.Root().Range.Start != 1 || ranges.Root().Value != v {
		t.Errorf("ParseWithRanges = %v, %v", ranges, err)
	}
}

// TestPackageAPIValid 包级校验
func TestPackageAPIValid(t *testing.T) {
	valid := []string{`{}`, `[]`, `0`, `-0.5e3`, `"é"`, `null`, ` true `}
	invalid := []string{``, `{`, `[1,]`, `01`, `+1`, `.5`, `'x'`, `{"a":1}x`, `NaN`, `[1] [2]`}
	for _, doc := range valid {
		if !Valid([]byte(doc)) {
			t.Errorf("Valid(%q) = false", doc)
		}
	}
	for _, doc := range invalid {
		if Valid([]byte(doc)) {
			t.Errorf("Valid(%q) = true", doc)
		}
	}
}

// TestPackageAPIMarshal 包级序列化
func TestPackageAPIMarshal(t *testing.T) {
	v, err := ParseString(`{"b":[1,{"c":null}],"a":"x"}`)
	if err != nil {
		t.Fatal(err)
	}
	if got := string(Marshal(v)); got != `{"b":[1,{"c":null}],"a":"x"}` {
		t.Errorf("Marshal = %s", got)
	}
	want := "{\n  \"b\": [\n    1,\n    {\n      \"c\": null\n    }\n  ],\n  \"a\": \"x\"\n}"
	if got := string(MarshalIndent(v, "  ")); got != want {
		t.Errorf("MarshalIndent =\n%s", got)
	}
}

// TestPackageAPIErrors 包级错误类别
func TestPackageAPIErrors(t *testing.T) {
	_, err := ParseString(strings.Repeat("[", 10) + "1,")
	var se *SyntaxError
	if !errors.As(err, &se) {
		t.Fatalf("expected *SyntaxError, got %T", err)
	}
	if !errors.Is(err, ErrUnexpectedEOF) || Message(err) != "Unexpected EOF" {
		t.Errorf("err = %v", err)
	}
}
