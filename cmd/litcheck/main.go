// Command litcheck 校验并格式化 JSON / JS 字面量 / JSONP 文件
//
//	litcheck check --mode=strict a.json b.json
//	litcheck print --mode=jsonp --indent="  " feed.js
package main

import (
	"fmt"
	"log/slog"
	"os"
	"unicode/utf16"
	"unicode/utf8"

	"github.com/alecthomas/kingpin/v2"

	"github.com/uniyakcom/literal"
	"github.com/uniyakcom/literal/optimize"
)

// globalOptions 所有子命令共享的参数
type globalOptions struct {
	mode     *string
	profile  *string
	logLevel *string
	wide     *bool
	maxDepth *int

	logger *slog.Logger
}

func main() {
	app := kingpin.New("litcheck", "Validate and pretty-print JSON, JavaScript literals and JSONP.")
	app.HelpFlag.Short('h')

	opts := &globalOptions{
		mode:     app.Flag("mode", "Dialect: strict, sloppy or jsonp.").Default("strict").Enum("strict", "sloppy", "jsonp"),
		profile:  app.Flag("profile", "YAML profile file; overrides --mode.").ExistingFile(),
		logLevel: app.Flag("log.level", "Log level: debug, info, warn or error.").Default("warn").Enum("debug", "info", "warn", "error"),
		wide:     app.Flag("utf16", "Parse through the 16-bit code path.").Bool(),
		maxDepth: app.Flag("max-depth", "Maximum nesting depth (0 keeps the profile value).").Default("0").Int(),
	}
	app.PreAction(func(*kingpin.ParseContext) error {
		opts.logger = newLogger(*opts.logLevel)
		return nil
	})

	addCheckCommand(app, opts)
	addPrintCommand(app, opts)

	kingpin.MustParse(app.Parse(os.Args[1:]))
}

func newLogger(level string) *slog.Logger {
	var lv slog.Level
	if err := lv.UnmarshalText([]byte(level)); err != nil {
		lv = slog.LevelWarn
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: lv}))
}

// engine 按参数构建解析引擎
func (o *globalOptions) engine() (*literal.Engine, error) {
	var p *optimize.Profile
	if o.profile != nil && *o.profile != "" {
		var err error
		if p, err = optimize.LoadProfileFile(*o.profile); err != nil {
			return nil, err
		}
	} else {
		p = optimize.Preset(*o.mode)
	}
	if o.maxDepth != nil && *o.maxDepth > 0 {
		p.MaxDepth = *o.maxDepth
	}
	if o.logger == nil {
		o.logger = newLogger("warn")
	}
	p.Logger = o.logger
	return literal.Option(p)
}

// parse 按方言解析一份输入；JSONP 方言返回语句列表
func (o *globalOptions) parse(e *literal.Engine, data []byte) (*literal.Value, []literal.JSONPData, error) {
	if e.Mode() == literal.JSONP {
		stmts, err := e.ParseJSONP(data)
		return nil, stmts, err
	}
	if o.wide != nil && *o.wide {
		v, err := e.ParseUTF16(toUTF16(data))
		return v, nil, err
	}
	v, err := e.Parse(data)
	return v, nil, err
}

// toUTF16 UTF-8 → UTF-16（非法字节按 U+FFFD 处理）
func toUTF16(data []byte) []uint16 {
	out := make([]uint16, 0, len(data))
	for len(data) > 0 {
		r, size := utf8.DecodeRune(data)
		data = data[size:]
		out = utf16.AppendRune(out, r)
	}
	return out
}

func exitWithErr(err error) {
	fmt.Fprintln(os.Stderr, err.Error())
	os.Exit(1)
}
