// Package optimize advisor推荐引擎
package optimize

import (
	"runtime"

	"github.com/uniyakcom/literal/core"
)

// 解析形式
const (
	ImplRecursive = "recursive" // 递归快速路径 + 迭代兜底
	ImplIterative = "iterative" // 只用迭代形式
)

// Advised 推荐配置
type Advised struct {
	Profile *Profile
	Params  map[string]interface{}
	Impl    string
}

// Int 读取整数参数，不存在返回 def
func (a *Advised) Int(key string, def int) int {
	if v, ok := a.Params[key]; ok {
		return v.(int)
	}
	return def
}

// Advisor 推荐引擎
type Advisor struct{}

// NewAdvisor 创建推荐引擎
func NewAdvisor() *Advisor {
	return &Advisor{}
}

// Advise 根据Profile推荐配置
func (a *Advisor) Advise(p *Profile) *Advised {
	advised := &Advised{
		Profile: p,
		Params:  make(map[string]interface{}),
		Impl:    ImplRecursive,
	}

	// 根据场景选择解析形式
	switch {
	case p.Reviver:
		// 区间追踪只在迭代形式中维护
		advised.Impl = ImplIterative
	case !p.Recursive:
		advised.Impl = ImplIterative
	}

	maxDepth := p.MaxDepth
	if maxDepth <= 0 {
		maxDepth = core.DefaultMaxDepth
	}
	advised.Params["maxDepth"] = maxDepth

	if advised.Impl == ImplRecursive {
		limit := p.RecursionLimit
		if limit <= 0 {
			limit = core.DefaultRecursionLimit
		}
		// 余量不超过最大深度，超深输入由迭代形式报错
		if limit > maxDepth {
			limit = maxDepth
		}
		advised.Params["recursionLimit"] = limit
	}

	// 非默认的驻留阈值、驻留容量与 shape 上限需要私有表
	if (p.InternThreshold > 0 && p.InternThreshold != core.MaxInternLength) ||
		(p.InternCapacity > 0 && p.InternCapacity != core.DefaultMaxInternEntries) {
		advised.Params["internThreshold"] = p.InternThreshold
		advised.Params["internCapacity"] = p.InternCapacity
	}
	if (p.MaxShapes > 0 && p.MaxShapes != core.DefaultMaxShapes) ||
		(p.MaxShapeProperties > 0 && p.MaxShapeProperties != core.DefaultMaxShapeProperties) {
		advised.Params["maxShapes"] = p.MaxShapes
		advised.Params["maxShapeProperties"] = p.MaxShapeProperties
	}
	if p.AtomCacheSize > 0 {
		advised.Params["atomCacheSize"] = p.AtomCacheSize
	}

	w := p.Workers
	if w <= 0 {
		w = runtime.GOMAXPROCS(0)
	}
	advised.Params["workers"] = w

	return advised
}
