package main

import (
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/alecthomas/kingpin/v2"
	"github.com/fatih/color"

	"github.com/uniyakcom/literal"
	"github.com/uniyakcom/literal/parser"
)

// printCommand 解析单个文件并输出规范化 JSON
type printCommand struct {
	opts   *globalOptions
	file   *string
	indent *string
}

func (cmd *printCommand) run(*kingpin.ParseContext) error {
	e, err := cmd.opts.engine()
	if err != nil {
		exitWithErr(fmt.Errorf("failed to build engine: %w", err))
	}
	data, err := os.ReadFile(*cmd.file)
	if err != nil {
		exitWithErr(fmt.Errorf("failed to read file: %w", err))
	}
	if err := cmd.print(e, data, os.Stdout); err != nil {
		exitWithErr(fmt.Errorf("%s: %s", *cmd.file, describe(err)))
	}
	return nil
}

func (cmd *printCommand) print(e *literal.Engine, data []byte, out io.Writer) error {
	v, stmts, err := cmd.opts.parse(e, data)
	if err != nil {
		return err
	}
	if stmts == nil {
		_, err = out.Write(append(cmd.marshal(v), '\n'))
		return err
	}
	bold := color.New(color.Bold)
	for _, s := range stmts {
		bold.Fprint(out, formatPath(s.Path))
		fmt.Fprintf(out, " = %s\n", cmd.marshal(s.Value))
	}
	return nil
}

func (cmd *printCommand) marshal(v *literal.Value) []byte {
	if cmd.indent == nil || *cmd.indent == "" {
		return literal.Marshal(v)
	}
	return literal.MarshalIndent(v, *cmd.indent)
}

// formatPath 把 JSONP 路径还原为源码形式
func formatPath(path []parser.PathEntry) string {
	var b strings.Builder
	for i, p := range path {
		switch p.Kind {
		case parser.DeclareVar:
			b.WriteString("var ")
			b.WriteString(p.Name)
		case parser.Dot:
			if i > 0 {
				b.WriteByte('.')
			}
			b.WriteString(p.Name)
		case parser.Lookup:
			b.WriteByte('[')
			b.WriteString(strconv.Itoa(p.Index))
			b.WriteByte(']')
		case parser.Call:
			if i > 0 {
				b.WriteByte('.')
			}
			b.WriteString(p.Name)
			b.WriteString("()")
		}
	}
	return b.String()
}

func addPrintCommand(app *kingpin.Application, opts *globalOptions) {
	cmd := &printCommand{opts: opts}
	p := app.Command("print", "Parse a file and print it as canonical JSON.").Action(cmd.run)
	cmd.indent = p.Flag("indent", "Indentation string; empty prints compact JSON.").Default("").String()
	cmd.file = p.Arg("file", "File to print.").Required().ExistingFile()
}
