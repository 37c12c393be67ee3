// Package optimize 提供解析配置和推荐
package optimize

import (
	"fmt"
	"log/slog"
	"os"
	"runtime"

	"gopkg.in/yaml.v3"

	"github.com/uniyakcom/literal/core"
)

// Profile 解析场景 Profile
//
// 零值字段表示使用引擎默认值。Logger / Observer 只能在代码中设置，不参与 YAML。
type Profile struct {
	Name      string    `yaml:"name"`      // 场景名称
	Mode      core.Mode `yaml:"mode"`      // "strict" / "sloppy" / "jsonp"
	Reviver   bool      `yaml:"reviver"`   // 记录来源区间（仅严格 JSON）
	Recursive bool      `yaml:"recursive"` // 启用递归快速路径

	RecursionLimit     int `yaml:"recursion_limit"`      // 递归余量（层）
	MaxDepth           int `yaml:"max_depth"`            // 最大嵌套深度
	InternThreshold    int `yaml:"intern_threshold"`     // 驻留长度上限
	InternCapacity     int `yaml:"intern_capacity"`      // 驻留表条目上限
	AtomCacheSize      int `yaml:"atom_cache_size"`      // 每个解析器的标识符缓存
	MaxShapes          int `yaml:"max_shapes"`           // shape 节点上限
	MaxShapeProperties int `yaml:"max_shape_properties"` // 单 shape 属性上限
	Workers            int `yaml:"workers"`              // 批量解析并发数

	NeedsFullSourceInfo bool `yaml:"needs_full_source_info"` // JSONP 禁止调用形式

	Logger   *slog.Logger  `yaml:"-"`
	Observer core.Observer `yaml:"-"`
}

// ═══════════════════════════════════════════════════════════════════
// 四个核心 Profile
// ═══════════════════════════════════════════════════════════════════

// Strict 严格 JSON 场景
// 用途: API 响应、配置文件、消息体
// 特点: 递归快速路径 + 迭代兜底，shape 缓存共享
func Strict() *Profile {
	return &Profile{
		Name:           "strict",
		Mode:           core.StrictJSON,
		Recursive:      true,
		RecursionLimit: core.DefaultRecursionLimit,
		MaxDepth:       core.DefaultMaxDepth,
		Workers:        runtime.NumCPU(),
	}
}

// Sloppy 宽松 JS 字面量场景
// 用途: eval 快速路径、手写的 JS 对象字面量
// 特点: 单引号、裸标识符 key，宽松方言的 __proto__ 规则
func Sloppy() *Profile {
	return &Profile{
		Name:           "sloppy",
		Mode:           core.SloppyJSON,
		Recursive:      true,
		RecursionLimit: core.DefaultRecursionLimit,
		MaxDepth:       core.DefaultMaxDepth,
		Workers:        runtime.NumCPU(),
	}
}

// JSONP JSONP 场景
// 用途: var x = {...}; cb({...}); 形式的脚本响应
// 特点: 值部分使用迭代形式，多条语句全有或全无
func JSONP() *Profile {
	return &Profile{
		Name:           "jsonp",
		Mode:           core.JSONP,
		Recursive:      true,
		RecursionLimit: core.DefaultRecursionLimit,
		MaxDepth:       core.DefaultMaxDepth,
		Workers:        runtime.NumCPU(),
	}
}

// Reviver 区间追踪场景
// 用途: 需要按值定位源文本的 reviver、诊断、编辑器
// 特点: 只用迭代形式，true/false/null 每次新分配
func Reviver() *Profile {
	return &Profile{
		Name:     "reviver",
		Mode:     core.StrictJSON,
		Reviver:  true,
		MaxDepth: core.DefaultMaxDepth,
		Workers:  runtime.NumCPU(),
	}
}

// ═══════════════════════════════════════════════════════════════════
// Presets
// ═══════════════════════════════════════════════════════════════════

// Presets 所有预设场景
var Presets = map[string]*Profile{
	"strict":  Strict(),
	"sloppy":  Sloppy(),
	"jsonp":   JSONP(),
	"reviver": Reviver(),
}

// Preset 获取预设 Profile
func Preset(name string) *Profile {
	if p, ok := Presets[name]; ok {
		// 返回副本，避免共享状态
		cp := *p
		return &cp
	}
	return Strict() // 默认使用 strict 场景
}

// ═════════════════════════════════════════════════════════════════
// 自动检测
// ═════════════════════════════════════════════════════════════════

// AutoDetect 根据运行时环境生成默认 Profile
//   - 严格 JSON，递归快速路径开启
//   - Workers 取 GOMAXPROCS
func AutoDetect() *Profile {
	p := Strict()
	p.Name = "auto"
	p.Workers = runtime.GOMAXPROCS(0)
	return p
}

// ═════════════════════════════════════════════════════════════════
// 配置文件
// ═════════════════════════════════════════════════════════════════

// LoadProfile 从 YAML 加载 Profile
//
// 若设置了 preset，以该预设为基础再覆盖文件中出现的字段:
//
//	preset: sloppy
//	max_depth: 4096
//	workers: 8
func LoadProfile(data []byte) (*Profile, error) {
	var head struct {
		Preset string `yaml:"preset"`
	}
	if err := yaml.Unmarshal(data, &head); err != nil {
		return nil, fmt.Errorf("optimize: parse profile: %w", err)
	}
	p := Strict()
	if head.Preset != "" {
		if _, ok := Presets[head.Preset]; !ok {
			return nil, fmt.Errorf("optimize: unknown preset %q", head.Preset)
		}
		p = Preset(head.Preset)
	}
	if err := yaml.Unmarshal(data, p); err != nil {
		return nil, fmt.Errorf("optimize: parse profile: %w", err)
	}
	if err := p.Validate(); err != nil {
		return nil, err
	}
	return p, nil
}

// LoadProfileFile 从 YAML 文件加载 Profile
func LoadProfileFile(path string) (*Profile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("optimize: read profile: %w", err)
	}
	return LoadProfile(data)
}

// Validate 检查 Profile 的字段组合
func (p *Profile) Validate() error {
	if p.Reviver && p.Mode != core.StrictJSON {
		return fmt.Errorf("optimize: reviver profile requires strict mode, got %s", p.Mode)
	}
	if p.RecursionLimit < 0 || p.MaxDepth < 0 || p.InternThreshold < 0 || p.InternCapacity < 0 ||
		p.AtomCacheSize < 0 || p.MaxShapes < 0 || p.MaxShapeProperties < 0 || p.Workers < 0 {
		return fmt.Errorf("optimize: profile %q has negative limits", p.Name)
	}
	return nil
}
