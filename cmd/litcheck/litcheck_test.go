package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/uniyakcom/literal/parser"
)

func testOptions(mode string) *globalOptions {
	level := "error"
	wide := false
	depth := 0
	profile := ""
	return &globalOptions{mode: &mode, logLevel: &level, wide: &wide, maxDepth: &depth, profile: &profile}
}

func writeFiles(t *testing.T, files map[string]string) map[string]string {
	t.Helper()
	dir := t.TempDir()
	paths := make(map[string]string, len(files))
	for name, content := range files {
		p := filepath.Join(dir, name)
		require.NoError(t, os.WriteFile(p, []byte(content), 0o600))
		paths[name] = p
	}
	return paths
}

// TestCheckFiles 测试批量校验输出
func TestCheckFiles(t *testing.T) {
	paths := writeFiles(t, map[string]string{
		"good.json": `{"a":[1,2,3]}`,
		"bad.json":  `{"a":[1,2,]}`,
	})
	opts := testOptions("strict")
	e, err := opts.engine()
	require.NoError(t, err)

	jobs := 2
	cmd := &checkCommand{opts: opts, jobs: &jobs}
	var out bytes.Buffer
	failed, err := cmd.checkFiles(context.Background(), e, []string{paths["good.json"], paths["bad.json"]}, &out)
	require.NoError(t, err)
	require.Equal(t, 1, failed)
	require.Contains(t, out.String(), "good.json (13 B)")
	require.Contains(t, out.String(), "bad.json: offset 10: Unexpected comma at the end of array expression")
	require.Contains(t, out.String(), "2 files, 25 B checked, 1 failed")

	_, err = cmd.checkFiles(context.Background(), e, []string{filepath.Join(t.TempDir(), "missing")}, &out)
	require.Error(t, err)
}

// TestCheckJSONPAndWide 测试 JSONP 统计与 16 位路径
func TestCheckJSONPAndWide(t *testing.T) {
	paths := writeFiles(t, map[string]string{"feed.js": `var a = 1; cb({"x":"é"});`})
	opts := testOptions("jsonp")
	e, err := opts.engine()
	require.NoError(t, err)
	var out bytes.Buffer
	failed, err := (&checkCommand{opts: opts}).checkFiles(context.Background(), e, []string{paths["feed.js"]}, &out)
	require.NoError(t, err)
	require.Zero(t, failed)
	require.Contains(t, out.String(), "2 statements")

	opts = testOptions("strict")
	*opts.wide = true
	e, err = opts.engine()
	require.NoError(t, err)
	v, _, err := opts.parse(e, []byte(`{"名":"值😀"}`))
	require.NoError(t, err)
	require.Equal(t, "值😀", v.GetString("名"))
}

// TestPrint 测试格式化输出
func TestPrint(t *testing.T) {
	opts := testOptions("sloppy")
	e, err := opts.engine()
	require.NoError(t, err)

	indent := ""
	cmd := &printCommand{opts: opts, indent: &indent}
	var out bytes.Buffer
	require.NoError(t, cmd.print(e, []byte(`({b:'x', a:[1]})`), &out))
	require.Equal(t, "{\"b\":\"x\",\"a\":[1]}\n", out.String())

	opts = testOptions("jsonp")
	e, err = opts.engine()
	require.NoError(t, err)
	cmd = &printCommand{opts: opts, indent: &indent}
	out.Reset()
	require.NoError(t, cmd.print(e, []byte(`var a = 1; w.x[2] = [true]; w.cb({});`), &out))
	require.Equal(t, "var a = 1\nw.x[2] = [true]\nw.cb() = {}\n", out.String())

	require.Error(t, cmd.print(e, []byte(`nope(`), &out))
}

// TestProfileOverride 测试 profile 文件与深度参数
func TestProfileOverride(t *testing.T) {
	paths := writeFiles(t, map[string]string{"p.yaml": "preset: sloppy\nmax_depth: 2\n"})
	opts := testOptions("strict")
	*opts.profile = paths["p.yaml"]
	e, err := opts.engine()
	require.NoError(t, err)
	_, _, err = opts.parse(e, []byte(`([[[1]]])`))
	require.ErrorIs(t, err, parser.ErrNestingTooDeep)

	*opts.maxDepth = 10
	e, err = opts.engine()
	require.NoError(t, err)
	_, _, err = opts.parse(e, []byte(`([[[1]]])`))
	require.NoError(t, err)
}

// TestFormatPath 测试 JSONP 路径还原
func TestFormatPath(t *testing.T) {
	require.Equal(t, "cb()", formatPath([]parser.PathEntry{{Kind: parser.Call, Name: "cb"}}))
	require.Equal(t, "a[0].b", formatPath([]parser.PathEntry{
		{Kind: parser.Dot, Name: "a"}, {Kind: parser.Lookup}, {Kind: parser.Dot, Name: "b"},
	}))
}
