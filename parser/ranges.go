package parser

import "github.com/uniyakcom/literal/value"

// Range 输入区间 [Start, End)，单位为码元
type Range struct {
	Start int
	End   int
}

// Len 区间长度
func (r Range) Len() int { return r.End - r.Start }

// RangeEntry 一个值的来源区间
//
// 对象的子区间按属性名索引（重复 key 以最后一次为准），数组的子区间按元素顺序排列。
type RangeEntry struct {
	Value      *value.Value
	Range      Range
	Properties map[string]*RangeEntry
	Elements   []*RangeEntry
}

// SourceRanges 区间树，可按值身份查询
type SourceRanges struct {
	root  *RangeEntry
	index map[*value.Value]*RangeEntry
}

func newSourceRanges() *SourceRanges {
	return &SourceRanges{index: make(map[*value.Value]*RangeEntry)}
}

// Root 根值的区间
func (s *SourceRanges) Root() *RangeEntry {
	if s == nil {
		return nil
	}
	return s.root
}

// Lookup 按值身份查询区间
func (s *SourceRanges) Lookup(v *value.Value) (*RangeEntry, bool) {
	if s == nil || v == nil {
		return nil, false
	}
	e, ok := s.index[v]
	return e, ok
}

// Len 已记录的值数
func (s *SourceRanges) Len() int {
	if s == nil {
		return 0
	}
	return len(s.index)
}

func (s *SourceRanges) record(e *RangeEntry) {
	s.index[e.Value] = e
}

// ─── 解析器中的区间维护（未开启追踪时均为空操作） ───

func (p *Parser[C]) openRange(v *value.Value, object bool) {
	if p.ranges == nil {
		return
	}
	e := &RangeEntry{Value: v, Range: Range{Start: p.lex.CurrentTokenStart()}}
	if object {
		e.Properties = make(map[string]*RangeEntry)
	}
	p.ranges.record(e)
	p.rangeStack = append(p.rangeStack, e)
}

func (p *Parser[C]) closeRange() {
	if p.ranges == nil {
		return
	}
	n := len(p.rangeStack) - 1
	e := p.rangeStack[n]
	p.rangeStack[n] = nil
	p.rangeStack = p.rangeStack[:n]
	e.Range.End = p.lex.CurrentTokenEnd()
	p.lastRange = e
}

func (p *Parser[C]) leafRange(v *value.Value, start, end int) {
	if p.ranges == nil {
		return
	}
	e := &RangeEntry{Value: v, Range: Range{Start: start, End: end}}
	p.ranges.record(e)
	p.lastRange = e
}

func (p *Parser[C]) appendElementRange() {
	if p.ranges == nil {
		return
	}
	top := p.rangeStack[len(p.rangeStack)-1]
	top.Elements = append(top.Elements, p.lastRange)
}

func (p *Parser[C]) setLeafPropertyRange(key string, v *value.Value, start, end int) {
	if p.ranges == nil {
		return
	}
	p.leafRange(v, start, end)
	p.setPropertyRange(key)
}

func (p *Parser[C]) setPropertyRange(key string) {
	if p.ranges == nil {
		return
	}
	top := p.rangeStack[len(p.rangeStack)-1]
	top.Properties[p.atoms.Make(key)] = p.lastRange
}
