// Package batch 多文档并发解析
//
// 文档分派到 ants worker pool，每个 worker 从 sync.Pool 取一个解析器；
// 所有解析器共享同一个驻留表与 shape 表，相同的 key 在不同文档之间只保留一份。
package batch

import (
	"context"
	"fmt"
	"log/slog"
	"runtime"
	"sync"
	"sync/atomic"
	"time"

	"github.com/panjf2000/ants/v2"

	"github.com/uniyakcom/literal/core"
	"github.com/uniyakcom/literal/intern"
	"github.com/uniyakcom/literal/parser"
	"github.com/uniyakcom/literal/value"
)

// releaseTimeout Release 等待 worker 退出的上限
const releaseTimeout = 3 * time.Second

// Config 批量解析配置
type Config struct {
	Parser  parser.Config
	Workers int          // worker 数，0 表示 GOMAXPROCS
	Logger  *slog.Logger // nil 表示 slog.Default()
}

// Result 单个文档的解析结果（Index 为输入下标）
type Result struct {
	Index int
	Value *value.Value       // 非 JSONP 方言
	JSONP []parser.JSONPData // JSONP 方言
	Err   error
}

// Stats 累计统计
type Stats struct {
	Parsed int64
	Failed int64
}

type task struct {
	ctx  context.Context
	doc  []byte
	res  *Result
	done *sync.WaitGroup
}

// Pool 批量解析池（并发安全）
type Pool struct {
	cfg     parser.Config
	workers *ants.PoolWithFunc
	parsers sync.Pool
	log     *slog.Logger

	parsed atomic.Int64
	failed atomic.Int64
}

// New 创建批量解析池
func New(cfg Config) (*Pool, error) {
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	if cfg.Parser.Interner == nil {
		cfg.Parser.Interner = intern.Global()
	}
	if cfg.Parser.Shapes == nil {
		cfg.Parser.Shapes = parser.DefaultShapes()
	}
	if cfg.Parser.Logger == nil {
		cfg.Parser.Logger = cfg.Logger
	}
	size := cfg.Workers
	if size <= 0 {
		size = runtime.GOMAXPROCS(0)
	}

	p := &Pool{cfg: cfg.Parser, log: cfg.Logger}
	p.parsers.New = func() any { return parser.New[byte](p.cfg) }

	workers, err := ants.NewPoolWithFunc(size, p.run,
		ants.WithLogger(antsLogger{cfg.Logger}),
		ants.WithPanicHandler(func(r any) {
			cfg.Logger.Error("batch: worker panic", "panic", r)
		}),
	)
	if err != nil {
		return nil, fmt.Errorf("batch: create pool: %w", err)
	}
	p.workers = workers
	return p, nil
}

// Mode 返回方言
func (p *Pool) Mode() core.Mode { return p.cfg.Mode }

// ParseAll 并发解析 docs，结果与输入按下标一一对应
//
// ctx 取消后尚未开始的文档以 ctx.Err() 作为错误，已开始的照常完成；
// 此时返回值的 error 为 ctx.Err()。
func (p *Pool) ParseAll(ctx context.Context, docs [][]byte) ([]Result, error) {
	results := make([]Result, len(docs))
	var wg sync.WaitGroup
	for i, doc := range docs {
		results[i].Index = i
		if err := ctx.Err(); err != nil {
			results[i].Err = err
			continue
		}
		wg.Add(1)
		t := &task{ctx: ctx, doc: doc, res: &results[i], done: &wg}
		if err := p.workers.Invoke(t); err != nil {
			wg.Done()
			results[i].Err = fmt.Errorf("batch: submit: %w", err)
			p.failed.Add(1)
		}
	}
	wg.Wait()
	return results, ctx.Err()
}

func (p *Pool) run(arg any) {
	t := arg.(*task)
	defer t.done.Done()
	if err := t.ctx.Err(); err != nil {
		t.res.Err = err
		return
	}

	ps := p.parsers.Get().(*parser.Parser[byte])
	if p.cfg.Mode == core.JSONP {
		t.res.JSONP, t.res.Err = ps.TryJSONPParse(t.doc)
	} else {
		t.res.Value, t.res.Err = ps.Parse(t.doc)
	}
	ps.Release()
	p.parsers.Put(ps)

	if t.res.Err != nil {
		p.failed.Add(1)
		p.log.Warn("batch: document rejected",
			"index", t.res.Index,
			"err", t.res.Err)
		return
	}
	p.parsed.Add(1)
}

// Stats 返回累计统计
func (p *Pool) Stats() Stats {
	return Stats{Parsed: p.parsed.Load(), Failed: p.failed.Load()}
}

// Release 关闭池并等待 worker 退出
func (p *Pool) Release() {
	if err := p.workers.ReleaseTimeout(releaseTimeout); err != nil {
		p.log.Warn("batch: release timed out", "err", err)
	}
	st := p.Stats()
	p.log.Info("batch: pool released",
		"parsed", st.Parsed,
		"failed", st.Failed)
}

// antsLogger 把 ants 的 Printf 日志转给 slog
type antsLogger struct{ l *slog.Logger }

func (a antsLogger) Printf(format string, args ...any) {
	a.l.Warn(fmt.Sprintf(format, args...))
}
