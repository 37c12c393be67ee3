package parser

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/uniyakcom/literal/core"
	"github.com/uniyakcom/literal/value"
)

func jsonp(t *testing.T, cfg Config, doc string) ([]JSONPData, error) {
	t.Helper()
	cfg.Mode = core.JSONP
	return New[byte](cfg).TryJSONPParse([]byte(doc))
}

// TestJSONPStatements 测试多条 JSONP 语句
func TestJSONPStatements(t *testing.T) {
	doc := `var a = {"x":1}; b.c[0] = [1,2]; cb({"y":'q'});`
	got, err := jsonp(t, Config{}, doc)
	require.NoError(t, err)
	require.Len(t, got, 3)

	require.Equal(t, []PathEntry{{Kind: DeclareVar, Name: "a"}}, got[0].Path)
	require.Equal(t, `{"x":1}`, string(value.AppendJSON(nil, got[0].Value)))

	require.Equal(t, []PathEntry{
		{Kind: Dot, Name: "b"},
		{Kind: Dot, Name: "c"},
		{Kind: Lookup, Index: 0},
	}, got[1].Path)
	require.Equal(t, 2, got[1].Value.Len())

	require.Equal(t, []PathEntry{{Kind: Call, Name: "cb"}}, got[2].Path)
	require.Equal(t, "q", got[2].Value.GetString("y"))
}

// TestJSONPSingleForms 测试单条语句的各种形式
func TestJSONPSingleForms(t *testing.T) {
	cases := []struct {
		doc  string
		path []PathEntry
		want string
	}{
		{`var data = [1]`, []PathEntry{{Kind: DeclareVar, Name: "data"}}, `[1]`},
		{`window.$cb_1 ( "s" ) ;`, []PathEntry{{Kind: Dot, Name: "window"}, {Kind: Call, Name: "$cb_1"}}, `"s"`},
		{`a[2][10] = null;`, []PathEntry{{Kind: Dot, Name: "a"}, {Kind: Lookup, Index: 2}, {Kind: Lookup, Index: 10}}, `null`},
		{`x = {key:'v', "k2": [true]}`, []PathEntry{{Kind: Dot, Name: "x"}}, `{"key":"v","k2":[true]}`},
		{`obj.esc = "A\'"`, []PathEntry{{Kind: Dot, Name: "obj"}, {Kind: Dot, Name: "esc"}}, `"A'"`},
	}
	for _, c := range cases {
		got, err := jsonp(t, Config{}, c.doc)
		require.NoError(t, err, c.doc)
		require.Len(t, got, 1, c.doc)
		require.Equal(t, c.path, got[0].Path, c.doc)
		require.Equal(t, c.want, string(value.AppendJSON(nil, got[0].Value)), c.doc)
	}
}

// TestJSONPRejects 测试不合规输入整体失败
func TestJSONPRejects(t *testing.T) {
	docs := []string{
		``,
		`{"a":1}`,
		`[1,2]`,
		`var a.b = 1`,
		`var a`,
		`var if = 1`,
		`a.class = 1`,
		`a[1.5] = 1`,
		`a[-1] = 1`,
		`a["k"] = 1`,
		`a[0](1)`,
		`cb(1`,
		`cb(1) x`,
		`a = 1 b = 2`,
		`var a=1;b.c=2;bad[`,
		`a = `,
	}
	for _, doc := range docs {
		got, err := jsonp(t, Config{}, doc)
		require.Error(t, err, doc)
		require.Nil(t, got, doc)
		require.ErrorIs(t, err, ErrNotJSONP, doc)
	}
}

// TestJSONPValueErrors 测试值解析失败时保留内层错误
func TestJSONPValueErrors(t *testing.T) {
	_, err := jsonp(t, Config{}, `var a = [1,];`)
	require.ErrorIs(t, err, ErrNotJSONP)
	require.ErrorIs(t, err, ErrSyntax)
	require.Equal(t, "Unexpected comma at the end of array expression", Message(err))

	_, err = jsonp(t, Config{}, `var a = {"__proto__":[],"__proto__":[]};`)
	require.ErrorIs(t, err, ErrProtoRedefined)

	_, err = jsonp(t, Config{}, `var a = "\q";`)
	require.ErrorIs(t, err, ErrLexical)
	require.Equal(t, "Invalid escape character q", Message(err))

	_, err = jsonp(t, Config{}, `var a=1;b.c=2;bad[`)
	require.Equal(t, "Expected JSONP assignment", Message(err))
	var se *SyntaxError
	require.True(t, errors.As(err, &se))
}

// TestJSONPCallNeedsSourceInfo 测试需要完整来源信息时拒绝调用形式
func TestJSONPCallNeedsSourceInfo(t *testing.T) {
	_, err := jsonp(t, Config{NeedsFullSourceInfo: true}, `cb({"a":1})`)
	require.ErrorIs(t, err, ErrNotJSONP)

	got, err := jsonp(t, Config{NeedsFullSourceInfo: true}, `var cb = {"a":1}`)
	require.NoError(t, err)
	require.Len(t, got, 1)
}

// TestJSONPModeMismatch 测试非 JSONP 方言拒绝调用
func TestJSONPModeMismatch(t *testing.T) {
	_, err := New[byte](Config{}).TryJSONPParse([]byte(`var a = 1`))
	require.ErrorIs(t, err, ErrNotJSONP)
}

// TestJSONPWide 测试 16 位输入
func TestJSONPWide(t *testing.T) {
	p := New[uint16](Config{Mode: core.JSONP})
	got, err := p.TryJSONPParse(u16(`var 数据 = {"名":"值"};`))
	require.NoError(t, err)
	require.Len(t, got, 1)
	require.Equal(t, "数据", got[0].Path[0].Name)
	require.Equal(t, "值", got[0].Value.GetString("名"))
}

// TestIsKeyword 测试保留字
func TestIsKeyword(t *testing.T) {
	require.True(t, IsKeyword("function"))
	require.True(t, IsKeyword("var"))
	require.False(t, IsKeyword("callback"))
	require.Equal(t, "call", Call.String())
}
