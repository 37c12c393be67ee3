// Package lexer 字面量词法器
//
// 一个泛型引擎同时服务 8 位（UTF-8 []byte）与 16 位（UTF-16 []uint16）输入。
// 每次 Next() 只产出一个当前 Token；字符串/标识符载荷以惰性方式保存:
//   - 无转义: 记录输入中的子区间，按需别名（8 位零拷贝）
//   - 含转义: 慢速路径解码到 scratch buffer，物化为新字符串
//
// 数字、字符串、标识符各有独立快速路径，遇到第一个不规则字符时退回通用路径。
package lexer

import "unsafe"

// Kind Token 类型
type Kind uint8

const (
	Error      Kind = iota // 词法错误（ErrorMessage 给出原因）
	ErrorSpace             // 空白类字符（仅出现在分类表中）
	End                    // 输入结束
	String                 // "..." 或 '...'
	Number                 // 数字
	Identifier             // 标识符
	True                   // true
	False                  // false
	Null                   // null
	LBrace                 // {
	RBrace                 // }
	LBracket               // [
	RBracket               // ]
	Colon                  // :
	Comma                  // ,
	Assign                 // =
	Semicolon              // ;
	LParen                 // (
	RParen                 // )
	Dot                    // .
)

// String 返回 Token 在错误信息中的写法
func (k Kind) String() string {
	switch k {
	case Error:
		return "error"
	case ErrorSpace:
		return "space"
	case End:
		return "EOF"
	case String:
		return "string"
	case Number:
		return "number"
	case Identifier:
		return "identifier"
	case True:
		return "true"
	case False:
		return "false"
	case Null:
		return "null"
	case LBrace:
		return "{"
	case RBrace:
		return "}"
	case LBracket:
		return "["
	case RBracket:
		return "]"
	case Colon:
		return ":"
	case Comma:
		return ","
	case Assign:
		return "="
	case Semicolon:
		return ";"
	case LParen:
		return "("
	case RParen:
		return ")"
	case Dot:
		return "."
	default:
		return "unknown"
	}
}

// Token 当前 Token（同一时刻只有一个存活）
type Token struct {
	Kind  Kind
	Start int // Token 起始偏移（码元）
	End   int // Token 结束偏移（码元，不含）

	// String/Identifier 载荷
	textStart int
	textEnd   int
	text      string // 含转义时的物化结果
	escaped   bool

	// Number 载荷
	Number float64
	Int    int32 // IsInt 时有效
	IsInt  bool  // 整数快速路径产出
}

// Escaped 字符串是否经过转义解码（载荷为新物化的字符串）
func (t *Token) Escaped() bool { return t.escaped }

// Units 载荷长度（码元数；转义解码后为 UTF-8 字节数）
func (t *Token) Units() int {
	if t.escaped {
		return len(t.text)
	}
	return t.textEnd - t.textStart
}

// b2s 零拷贝 []byte → string
func b2s(b []byte) string {
	return unsafe.String(unsafe.SliceData(b), len(b))
}
