package value

import (
	"github.com/uniyakcom/literal/internal/support/pool"
	"github.com/uniyakcom/literal/shape"
)

// Factory 值分配器（非并发安全，每个解析器独占一个）
//
// Value 与对象存储从 Arena 批量分配；true/false/null 默认返回全局单例，
// Fresh 模式下每次分配新节点（需要按值身份区分来源区间时使用）。
type Factory struct {
	shapes  *shape.Table
	values  *pool.Arena[Value]
	objects *pool.Arena[object]
	fresh   bool
}

// NewFactory 创建分配器；shapes 为 nil 时创建私有 shape 表
func NewFactory(shapes *shape.Table) *Factory {
	if shapes == nil {
		shapes = shape.NewTable(shape.Config{})
	}
	return &Factory{
		shapes:  shapes,
		values:  pool.NewArena[Value](0),
		objects: pool.NewArena[object](0),
	}
}

// Shapes 返回 shape 表
func (f *Factory) Shapes() *shape.Table { return f.shapes }

// SetFresh 设置 true/false/null 是否每次新分配
func (f *Factory) SetFresh(fresh bool) { f.fresh = fresh }

// Detach 结果交出后调用，后续分配使用新的 chunk
func (f *Factory) Detach() {
	f.values.Detach()
	f.objects.Detach()
}

// NewObject 创建空对象（Root shape）
func (f *Factory) NewObject() *Value {
	o := f.objects.Alloc()
	o.shapes = f.shapes
	o.id = shape.Root
	v := f.values.Alloc()
	v.t = TypeObject
	v.obj = o
	return v
}

// NewArray 创建空数组
func (f *Factory) NewArray() *Value {
	v := f.values.Alloc()
	v.t = TypeArray
	return v
}

// String 创建字符串（s 必须已物化）
func (f *Factory) String(s string) *Value {
	v := f.values.Alloc()
	v.t = TypeString
	v.s = s
	return v
}

// Number 创建数值
func (f *Factory) Number(n float64) *Value {
	v := f.values.Alloc()
	v.t = TypeNumber
	v.n = n
	return v
}

// Bool 返回布尔值
func (f *Factory) Bool(b bool) *Value {
	if !f.fresh {
		if b {
			return trueValue
		}
		return falseValue
	}
	v := f.values.Alloc()
	v.t = TypeBool
	v.b = b
	return v
}

// Null 返回 null
func (f *Factory) Null() *Value {
	if !f.fresh {
		return nullValue
	}
	v := f.values.Alloc()
	v.t = TypeNull
	return v
}
