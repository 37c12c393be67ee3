// Package value 解析结果的宿主值系统
//
// Value 是 JSON / JS 字面量解析产出的树节点。对象属性按 shape 存储:
// 属性名与顺序由 shape.Table 中的节点描述，对象本身只持有 shape ID 与值槽位，
// 相同结构的对象共享同一 shape。属性过多或 shape 表满时对象退化为字典模式。
//
// true/false/null 默认使用全局单例；字符串均已物化，不引用解析输入。
package value

import (
	"math"
	"strconv"
)

// Type 值类型
type Type uint8

const (
	TypeNull   Type = iota // null
	TypeBool               // true / false
	TypeNumber             // IEEE-754 双精度数
	TypeString             // 字符串
	TypeArray              // 数组
	TypeObject             // 对象
)

// String 返回类型名称
func (t Type) String() string {
	switch t {
	case TypeNull:
		return "null"
	case TypeBool:
		return "bool"
	case TypeNumber:
		return "number"
	case TypeString:
		return "string"
	case TypeArray:
		return "array"
	case TypeObject:
		return "object"
	default:
		return "unknown"
	}
}

// Value 解析结果节点
//
//   - obj: 对象存储（shape + 槽位，或字典）
//   - a: 数组元素（nil 元素按 null 读取）
//   - s: 字符串值
//   - n: 数值
//   - t: 值类型
//   - b: 布尔值
type Value struct {
	obj *object
	a   []*Value
	s   string
	n   float64
	t   Type
	b   bool
}

// 全局单例（只读）
var (
	trueValue  = &Value{t: TypeBool, b: true}
	falseValue = &Value{t: TypeBool}
	nullValue  = &Value{t: TypeNull}
)

// True 返回 true 单例
func True() *Value { return trueValue }

// False 返回 false 单例
func False() *Value { return falseValue }

// Null 返回 null 单例
func Null() *Value { return nullValue }

// ─── 类型判断 ───

// Type 返回值类型
func (v *Value) Type() Type {
	if v == nil {
		return TypeNull
	}
	return v.t
}

// IsNull 是否为 null
func (v *Value) IsNull() bool { return v == nil || v.t == TypeNull }

// IsObject 是否为对象
func (v *Value) IsObject() bool { return v != nil && v.t == TypeObject }

// IsArray 是否为数组
func (v *Value) IsArray() bool { return v != nil && v.t == TypeArray }

// ─── 值获取（安全: 类型不匹配返回零值） ───

// String 字符串值；其它类型返回 JSON 文本
func (v *Value) String() string {
	if v != nil && v.t == TypeString {
		return v.s
	}
	return string(AppendJSON(nil, v))
}

// Float64 数值
func (v *Value) Float64() float64 {
	if v == nil || v.t != TypeNumber {
		return 0
	}
	return v.n
}

// Bool 布尔值
func (v *Value) Bool() bool {
	return v != nil && v.t == TypeBool && v.b
}

// GetString 获取字符串值，支持嵌套路径: v.GetString("user", "name")
func (v *Value) GetString(keys ...string) string {
	v = v.Get(keys...)
	if v == nil || v.t != TypeString {
		return ""
	}
	return v.s
}

// GetInt 获取整数值（截断小数部分，超出范围返回 0）
func (v *Value) GetInt(keys ...string) int {
	f := v.GetFloat64(keys...)
	if math.IsNaN(f) || f > math.MaxInt64 || f < math.MinInt64 {
		return 0
	}
	return int(f)
}

// GetFloat64 获取浮点数值
func (v *Value) GetFloat64(keys ...string) float64 {
	v = v.Get(keys...)
	if v == nil || v.t != TypeNumber {
		return 0
	}
	return v.n
}

// GetBool 获取布尔值
func (v *Value) GetBool(keys ...string) bool {
	return v.Get(keys...).Bool()
}

// Get 按路径获取嵌套值
//
//	v.Get("user", "name")  // 获取 {"user":{"name":"..."}} 中的 name
//	v.Get("items", "0")    // 获取数组第 0 个元素
func (v *Value) Get(keys ...string) *Value {
	for _, key := range keys {
		if v == nil {
			return nil
		}
		switch v.t {
		case TypeObject:
			v = v.obj.get(key)
		case TypeArray:
			idx, ok := parseIdx(key)
			if !ok || idx >= len(v.a) {
				return nil
			}
			v = v.a[idx]
		default:
			return nil
		}
	}
	return v
}

// Index 返回数组第 i 个元素（越界返回 nil）
func (v *Value) Index(i int) *Value {
	if v == nil || v.t != TypeArray || i < 0 || i >= len(v.a) {
		return nil
	}
	return v.a[i]
}

// Len 返回数组或对象的元素数量
func (v *Value) Len() int {
	if v == nil {
		return 0
	}
	switch v.t {
	case TypeArray:
		return len(v.a)
	case TypeObject:
		return v.obj.len()
	default:
		return 0
	}
}

// ArrayEach 遍历数组元素，返回 false 停止遍历
func (v *Value) ArrayEach(fn func(i int, val *Value) bool) {
	if v == nil || v.t != TypeArray {
		return
	}
	for i, elem := range v.a {
		if !fn(i, elem) {
			return
		}
	}
}

// ObjectEach 遍历对象属性（按加入顺序），返回 false 停止遍历
func (v *Value) ObjectEach(fn func(key string, val *Value) bool) {
	if v == nil || v.t != TypeObject {
		return
	}
	v.obj.each(fn)
}

// Keys 返回对象属性名（按加入顺序，新切片）
func (v *Value) Keys() []string {
	if v == nil || v.t != TypeObject {
		return nil
	}
	keys := make([]string, 0, v.obj.len())
	v.obj.each(func(k string, _ *Value) bool {
		keys = append(keys, k)
		return true
	})
	return keys
}

// ─── 比较 ───

// Equal 深度比较两个值
//
// 对象按属性集合比较（忽略顺序与原型），数值按 == 比较（0 与 -0 相等）。
func Equal(a, b *Value) bool {
	if a.Type() != b.Type() {
		return false
	}
	switch a.Type() {
	case TypeNull:
		return true
	case TypeBool:
		return a.b == b.b
	case TypeNumber:
		return a.n == b.n
	case TypeString:
		return a.s == b.s
	case TypeArray:
		if len(a.a) != len(b.a) {
			return false
		}
		for i := range a.a {
			if !Equal(a.a[i], b.a[i]) {
				return false
			}
		}
		return true
	case TypeObject:
		if a.obj.len() != b.obj.len() {
			return false
		}
		eq := true
		a.obj.each(func(k string, av *Value) bool {
			bv, ok := b.obj.lookup(k)
			if !ok || !Equal(av, bv) {
				eq = false
			}
			return eq
		})
		return eq
	}
	return false
}

// ─── 辅助函数 ───

func parseIdx(s string) (int, bool) {
	if len(s) == 0 || len(s) > 10 {
		return 0, false
	}
	n, err := strconv.Atoi(s)
	if err != nil || n < 0 {
		return 0, false
	}
	return n, true
}
