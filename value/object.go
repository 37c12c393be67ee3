package value

import "github.com/uniyakcom/literal/shape"

// dictIndexThreshold 字典模式属性数超过该值时建立 key 索引
const dictIndexThreshold = 8

// object 对象存储
//
// shape 模式: slots[i] 为 shapes.Keys(id)[i] 对应的值。
// 字典模式 (id == shape.Dictionary): 属性按加入顺序存放在 dict。
type object struct {
	shapes *shape.Table
	id     shape.ID
	slots  []*Value

	dict  []kv
	index map[string]int

	proto    *Value // nil 表示默认原型
	protoSet bool
}

type kv struct {
	k string
	v *Value
}

func (o *object) len() int {
	if o.id == shape.Dictionary {
		return len(o.dict)
	}
	return len(o.slots)
}

func (o *object) lookup(key string) (*Value, bool) {
	if o.id != shape.Dictionary {
		off, ok := o.shapes.Lookup(o.id, key)
		if !ok {
			return nil, false
		}
		return o.slots[off], true
	}
	if o.index != nil {
		i, ok := o.index[key]
		if !ok {
			return nil, false
		}
		return o.dict[i].v, true
	}
	for i := range o.dict {
		if o.dict[i].k == key {
			return o.dict[i].v, true
		}
	}
	return nil, false
}

func (o *object) get(key string) *Value {
	v, _ := o.lookup(key)
	return v
}

func (o *object) each(fn func(key string, val *Value) bool) {
	if o.id != shape.Dictionary {
		keys := o.shapes.Keys(o.id)
		for i, k := range keys {
			if !fn(k, o.slots[i]) {
				return
			}
		}
		return
	}
	for i := range o.dict {
		if !fn(o.dict[i].k, o.dict[i].v) {
			return
		}
	}
}

// toDictionary 退化为字典模式（保留属性顺序）
func (o *object) toDictionary() {
	if o.id == shape.Dictionary {
		return
	}
	keys := o.shapes.Keys(o.id)
	o.dict = make([]kv, len(keys), len(keys)+4)
	for i, k := range keys {
		o.dict[i] = kv{k: k, v: o.slots[i]}
	}
	o.slots = nil
	o.id = shape.Dictionary
	if len(o.dict) > dictIndexThreshold {
		o.buildIndex()
	}
}

func (o *object) buildIndex() {
	o.index = make(map[string]int, len(o.dict)*2)
	for i := range o.dict {
		o.index[o.dict[i].k] = i
	}
}

func (o *object) dictPut(key string, val *Value) {
	if o.index != nil {
		if i, ok := o.index[key]; ok {
			o.dict[i].v = val
			return
		}
	} else {
		for i := range o.dict {
			if o.dict[i].k == key {
				o.dict[i].v = val
				return
			}
		}
	}
	o.dict = append(o.dict, kv{k: key, v: val})
	if o.index != nil {
		o.index[key] = len(o.dict) - 1
	} else if len(o.dict) > dictIndexThreshold {
		o.buildIndex()
	}
}

// ─── 对象写入 API ───

// Shape 返回对象当前 shape（非对象返回 shape.Dictionary）
func (v *Value) Shape() shape.ID {
	if v == nil || v.t != TypeObject {
		return shape.Dictionary
	}
	return v.obj.id
}

// IsDictionary 对象是否处于字典模式
func (v *Value) IsDictionary() bool {
	return v.Shape() == shape.Dictionary
}

// PutDirect 按名写入属性（通用路径）
//
// 已存在的属性原位覆盖，位置不变；新属性追加到末尾。
// shape 无法再扩展时对象转为字典模式，可观察结果不变。
func (v *Value) PutDirect(key string, val *Value) {
	o := v.obj
	if o.id != shape.Dictionary {
		if off, ok := o.shapes.Lookup(o.id, key); ok {
			o.slots[off] = val
			return
		}
		if next, off, ok := o.shapes.AddProperty(o.id, key); ok && off == len(o.slots) {
			o.id = next
			o.slots = append(o.slots, val)
			return
		}
		o.toDictionary()
	}
	o.dictPut(key, val)
}

// PutDirectOffset 转移缓存命中后的快速写入
//
// 调用方保证 next 是当前 shape 经 key 的加属性转移，offset 为新属性的槽位。
func (v *Value) PutDirectOffset(next shape.ID, offset int, val *Value) {
	o := v.obj
	o.id = next
	if offset == len(o.slots) {
		o.slots = append(o.slots, val)
		return
	}
	o.slots[offset] = val
}

// PutDirectIndex 写入数组第 i 个元素（i 超出长度时以 null 补齐）
func (v *Value) PutDirectIndex(i int, val *Value) {
	if i < len(v.a) {
		v.a[i] = val
		return
	}
	for len(v.a) < i {
		v.a = append(v.a, nil)
	}
	v.a = append(v.a, val)
}

// Push 追加数组元素
func (v *Value) Push(val *Value) {
	v.a = append(v.a, val)
}

// SetPrototype 设置对象原型（proto 为对象或 null）
func (v *Value) SetPrototype(proto *Value) {
	v.obj.proto = proto
	v.obj.protoSet = true
}

// Proto 返回显式设置的原型；未设置时返回 (nil, false)
func (v *Value) Proto() (*Value, bool) {
	if v == nil || v.t != TypeObject || !v.obj.protoSet {
		return nil, false
	}
	return v.obj.proto, true
}
