// Package metrics 基于 Prometheus 的解析观测实现
//
// Collector 实现 core.Observer，可直接放进 parser.Config / optimize.Profile:
//
//	c := metrics.New(prometheus.DefaultRegisterer)
//	p := parser.New[byte](parser.Config{Observer: c})
package metrics

import (
	"errors"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/uniyakcom/literal/core"
	"github.com/uniyakcom/literal/intern"
	"github.com/uniyakcom/literal/parser"
	"github.com/uniyakcom/literal/shape"
)

const namespace = "literal"

// 结果标签
const (
	resultOK       = "ok"
	resultLexical  = "lexical"
	resultSyntax   = "syntax"
	resultEOF      = "eof"
	resultDepth    = "depth"
	resultProto    = "proto"
	resultNotJSONP = "not_jsonp"
	resultOther    = "other"
)

// Collector 解析指标
type Collector struct {
	reg prometheus.Registerer

	parses        *prometheus.CounterVec
	units         *prometheus.CounterVec
	fallbacks     *prometheus.CounterVec
	fallbackDepth prometheus.Histogram
}

var _ core.Observer = (*Collector)(nil)

// New 创建并注册解析指标（reg 为 nil 时不注册）
func New(reg prometheus.Registerer) *Collector {
	return &Collector{
		reg: reg,
		parses: promauto.With(reg).NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "parses_total",
			Help:      "Documents parsed, by mode and result.",
		}, []string{"mode", "result"}),
		units: promauto.With(reg).NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "input_units_total",
			Help:      "Code units consumed by the parser, by mode.",
		}, []string{"mode"}),
		fallbacks: promauto.With(reg).NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "recursive_fallbacks_total",
			Help:      "Subtrees handed from the recursive form to the iterative form.",
		}, []string{"mode"}),
		fallbackDepth: promauto.With(reg).NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "recursive_fallback_depth",
			Help:      "Nesting depth at which the recursive form ran out of headroom.",
			Buckets:   prometheus.ExponentialBuckets(8, 4, 6),
		}),
	}
}

// ObserveParse 实现 core.Observer
func (c *Collector) ObserveParse(mode core.Mode, inputUnits int, err error) {
	m := mode.String()
	c.parses.WithLabelValues(m, result(err)).Inc()
	c.units.WithLabelValues(m).Add(float64(inputUnits))
}

// ObserveFallback 实现 core.Observer
func (c *Collector) ObserveFallback(mode core.Mode, depth int) {
	c.fallbacks.WithLabelValues(mode.String()).Inc()
	c.fallbackDepth.Observe(float64(depth))
}

// WatchInterner 导出驻留表的大小与命中统计
func (c *Collector) WatchInterner(name string, t *intern.Table) {
	labels := prometheus.Labels{"table": name}
	f := promauto.With(c.reg)
	f.NewGaugeFunc(prometheus.GaugeOpts{
		Namespace: namespace, Subsystem: "intern", Name: "entries",
		Help: "Strings held by the interner.", ConstLabels: labels,
	}, func() float64 { return float64(t.Len()) })
	f.NewCounterFunc(prometheus.CounterOpts{
		Namespace: namespace, Subsystem: "intern", Name: "hits_total",
		Help: "Intern calls answered by an existing handle.", ConstLabels: labels,
	}, func() float64 { return float64(t.Stats().Hits) })
	f.NewCounterFunc(prometheus.CounterOpts{
		Namespace: namespace, Subsystem: "intern", Name: "misses_total",
		Help: "Intern calls that registered a new handle.", ConstLabels: labels,
	}, func() float64 { return float64(t.Stats().Misses) })
	f.NewCounterFunc(prometheus.CounterOpts{
		Namespace: namespace, Subsystem: "intern", Name: "rotations_total",
		Help: "Generations retired to keep the interner within capacity.", ConstLabels: labels,
	}, func() float64 { return float64(t.Stats().Rotations) })
}

// WatchShapes 导出 shape 表的节点数与转移缓存命中统计
func (c *Collector) WatchShapes(name string, t *shape.Table) {
	labels := prometheus.Labels{"table": name}
	f := promauto.With(c.reg)
	f.NewGaugeFunc(prometheus.GaugeOpts{
		Namespace: namespace, Subsystem: "shape", Name: "nodes",
		Help: "Shapes created in the table.", ConstLabels: labels,
	}, func() float64 { return float64(t.Stats().Shapes) })
	f.NewCounterFunc(prometheus.CounterOpts{
		Namespace: namespace, Subsystem: "shape", Name: "transition_hits_total",
		Help: "Property writes served by the transition cache.", ConstLabels: labels,
	}, func() float64 { return float64(t.Stats().Hits) })
	f.NewCounterFunc(prometheus.CounterOpts{
		Namespace: namespace, Subsystem: "shape", Name: "transition_misses_total",
		Help: "Property writes that took the general path.", ConstLabels: labels,
	}, func() float64 { return float64(t.Stats().Misses) })
}

// result 错误类别 → 标签
func result(err error) string {
	switch {
	case err == nil:
		return resultOK
	case errors.Is(err, parser.ErrNotJSONP):
		return resultNotJSONP
	case errors.Is(err, parser.ErrNestingTooDeep):
		return resultDepth
	case errors.Is(err, parser.ErrProtoRedefined):
		return resultProto
	case errors.Is(err, parser.ErrUnexpectedEOF):
		return resultEOF
	case errors.Is(err, parser.ErrLexical):
		return resultLexical
	case errors.Is(err, parser.ErrSyntax):
		return resultSyntax
	default:
		return resultOther
	}
}
