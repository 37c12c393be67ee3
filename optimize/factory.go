// Package optimize factory工厂
package optimize

import (
	"github.com/uniyakcom/literal/core"
	"github.com/uniyakcom/literal/intern"
	"github.com/uniyakcom/literal/parser"
	"github.com/uniyakcom/literal/shape"
)

// Build 根据推荐配置构建解析器配置
//
// 默认阈值共享进程级驻留表与 shape 表；非默认值创建该配置私有的表。
func Build(advised *Advised) (parser.Config, error) {
	p := advised.Profile
	if p == nil {
		p = Strict()
		advised.Profile = p
	}
	if err := p.Validate(); err != nil {
		return parser.Config{}, err
	}

	cfg := parser.Config{
		Mode:                p.Mode,
		Iterative:           advised.Impl == ImplIterative,
		MaxDepth:            advised.Int("maxDepth", core.DefaultMaxDepth),
		AtomCacheSize:       advised.Int("atomCacheSize", core.DefaultAtomCacheSize),
		NeedsFullSourceInfo: p.NeedsFullSourceInfo,
		Logger:              p.Logger,
		Observer:            p.Observer,
	}
	if !cfg.Iterative {
		cfg.Headroom = core.DepthHeadroom(advised.Int("recursionLimit", core.DefaultRecursionLimit))
	}

	if _, ok := advised.Params["internThreshold"]; ok {
		cfg.Interner = intern.NewTable(intern.Config{
			MaxLength:  advised.Int("internThreshold", 0),
			MaxEntries: advised.Int("internCapacity", 0),
		})
	}
	if _, ok := advised.Params["maxShapes"]; ok {
		cfg.Shapes = shape.NewTable(shape.Config{
			MaxShapes:     advised.Int("maxShapes", 0),
			MaxProperties: advised.Int("maxShapeProperties", 0),
		})
	}
	return cfg, nil
}
