package parser

import (
	"github.com/uniyakcom/literal/core"
	"github.com/uniyakcom/literal/value"
)

const protoKey = "__proto__"

// putProperty 写入对象属性
//
// 顺序:
//  1. 宽松方言的 __proto__: 同一对象第二次出现即报错；值为对象、数组或 null 时
//     设置原型，其它值忽略。不产生自有属性，也不经过 shape 缓存
//  2. shape 转移缓存命中: 直接写入预解析的槽位（key 无需物化）
//  3. 通用路径: 物化 key 后按名写入（处理重复 key 与字典模式）
//
// key 可能别名输入内存，只在第 3 步物化后才会被对象持有。
func (p *Parser[C]) putProperty(obj *value.Value, key string, val *value.Value) bool {
	if p.mode != core.StrictJSON && key == protoKey {
		if p.visitedProto == nil {
			p.visitedProto = make(map[*value.Value]struct{})
		}
		if _, seen := p.visitedProto[obj]; seen {
			p.fail(msgProtoRedefined, ErrProtoRedefined)
			return false
		}
		p.visitedProto[obj] = struct{}{}
		switch val.Type() {
		case value.TypeObject, value.TypeArray, value.TypeNull:
			obj.SetPrototype(val)
		}
		return true
	}
	if next, off, ok := p.shapes.Resolve(obj.Shape(), key); ok {
		obj.PutDirectOffset(next, off, val)
		return true
	}
	obj.PutDirect(p.atoms.Make(key), val)
	return true
}
