package parser

import "errors"

// parseError 字符串类型的哨兵错误
type parseError string

func (e parseError) Error() string { return string(e) }

const (
	// ErrLexical 词法错误（非法转义、未终止字符串、非法数字、无法识别的字符）
	ErrLexical parseError = "literal: lexical error"
	// ErrSyntax 结构错误（缺少 ':'、缺少 '}'、尾逗号等）
	ErrSyntax parseError = "literal: syntax error"
	// ErrUnexpectedEOF 输入提前结束
	ErrUnexpectedEOF parseError = "literal: unexpected EOF"
	// ErrProtoRedefined 宽松方言中同一对象重复出现 __proto__
	ErrProtoRedefined parseError = "literal: __proto__ redefined"
	// ErrNestingTooDeep 迭代形式超出最大嵌套深度
	ErrNestingTooDeep parseError = "literal: nesting too deep"
	// ErrNotJSONP 输入不是可识别的 JSONP 语句序列
	ErrNotJSONP parseError = "literal: not a JSONP document"
	// ErrReviverMode 区间追踪只支持严格 JSON
	ErrReviverMode parseError = "literal: source ranges require strict JSON mode"
)

// 可读错误信息（原样返回给调用方）
const (
	msgUnableToParse     = "Unable to parse JSON string"
	msgNestingTooDeep    = "Nesting too deep"
	msgProtoRedefined    = "Attempted to redefine __proto__ property"
	msgTrailingComma     = "Unexpected comma at the end of array expression"
	msgPropertyName      = "Property name must be a string literal"
	msgTrailingContent   = "Unexpected content at end of JSON literal"
	msgUnexpectedEOF     = "Unexpected EOF"
	msgValueExpression   = "Could not parse value expression"
	msgStatement         = "Could not parse statement"
	msgUnexpectedIdent   = "Unexpected identifier"
	msgExpectedRBrace    = "Expected '}'"
	msgExpectedRBracket  = "Expected ']'"
	msgExpectedColon     = "Expected ':' before value in object property definition"
	msgExpectedJSONPPath = "Expected JSONP assignment"
)

// SyntaxError 解析失败
//
// Error() 返回可读信息本身，不加前缀；Offset 为出错 Token 的起始偏移（码元）。
// errors.Is 可按 Err 区分错误类别。
type SyntaxError struct {
	Msg    string
	Offset int
	Err    error
}

func (e *SyntaxError) Error() string { return e.Msg }

// Unwrap 返回错误类别
func (e *SyntaxError) Unwrap() error { return e.Err }

// Message 取出 err 中的可读信息（非 SyntaxError 返回 err.Error()）
func Message(err error) string {
	if err == nil {
		return ""
	}
	var se *SyntaxError
	if errors.As(err, &se) {
		return se.Msg
	}
	return err.Error()
}
