package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"runtime"
	"sync"

	"github.com/alecthomas/kingpin/v2"
	"github.com/dustin/go-humanize"
	"github.com/fatih/color"
	"golang.org/x/sync/errgroup"

	"github.com/uniyakcom/literal"
)

// checkCommand 校验文件，有任一文件失败时退出码为 1
type checkCommand struct {
	opts  *globalOptions
	files *[]string
	jobs  *int
}

// fileReport 单个文件的校验结果
type fileReport struct {
	name  string
	size  int
	stmts int
	err   error
}

func (cmd *checkCommand) run(*kingpin.ParseContext) error {
	e, err := cmd.opts.engine()
	if err != nil {
		exitWithErr(fmt.Errorf("failed to build engine: %w", err))
	}
	failed, err := cmd.checkFiles(context.Background(), e, *cmd.files, os.Stdout)
	if err != nil {
		exitWithErr(err)
	}
	if failed > 0 {
		os.Exit(1)
	}
	return nil
}

// checkFiles 并发读取并解析 files，按输入顺序输出结果，返回失败数
func (cmd *checkCommand) checkFiles(ctx context.Context, e *literal.Engine, files []string, out io.Writer) (int, error) {
	reports := make([]fileReport, len(files))
	g, ctx := errgroup.WithContext(ctx)
	jobs := runtime.GOMAXPROCS(0)
	if cmd.jobs != nil && *cmd.jobs > 0 {
		jobs = *cmd.jobs
	}
	g.SetLimit(jobs)

	var mu sync.Mutex
	total := 0
	for i, name := range files {
		i, name := i, name
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			data, err := os.ReadFile(name)
			if err != nil {
				return fmt.Errorf("failed to read %s: %w", name, err)
			}
			r := fileReport{name: name, size: len(data)}
			_, stmts, perr := cmd.opts.parse(e, data)
			r.err = perr
			r.stmts = len(stmts)
			reports[i] = r

			mu.Lock()
			total += len(data)
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return 0, err
	}

	ok := color.New(color.FgGreen)
	bad := color.New(color.FgRed, color.Bold)
	failed := 0
	for _, r := range reports {
		if r.err != nil {
			failed++
			bad.Fprint(out, "FAIL")
			fmt.Fprintf(out, " %s: %s\n", r.name, describe(r.err))
			continue
		}
		ok.Fprint(out, "ok  ")
		fmt.Fprintf(out, " %s (%s", r.name, humanize.Bytes(uint64(r.size)))
		if e.Mode() == literal.JSONP {
			fmt.Fprintf(out, ", %d statements", r.stmts)
		}
		fmt.Fprintln(out, ")")
	}
	fmt.Fprintf(out, "%d files, %s checked, %d failed\n", len(files), humanize.Bytes(uint64(total)), failed)
	return failed, nil
}

// describe 错误信息附带偏移
func describe(err error) string {
	var se *literal.SyntaxError
	if errors.As(err, &se) {
		return fmt.Sprintf("offset %s: %s", humanize.Comma(int64(se.Offset)), se.Msg)
	}
	return err.Error()
}

func addCheckCommand(app *kingpin.Application, opts *globalOptions) {
	cmd := &checkCommand{opts: opts}
	check := app.Command("check", "Validate files in the selected dialect.").Action(cmd.run)
	cmd.jobs = check.Flag("jobs", "Files parsed concurrently (0 uses GOMAXPROCS).").Short('j').Default("0").Int()
	cmd.files = check.Arg("file", "Files to check.").Required().ExistingFiles()
}
