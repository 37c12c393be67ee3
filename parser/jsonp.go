package parser

import (
	"fmt"

	"github.com/uniyakcom/literal/core"
	"github.com/uniyakcom/literal/lexer"
	"github.com/uniyakcom/literal/value"
)

// PathKind JSONP 路径段类型
type PathKind uint8

const (
	DeclareVar PathKind = iota // var name
	Dot                        // .name（首段为裸标识符）
	Lookup                     // [index]
	Call                       // name(...)
)

// String 返回路径段类型名
func (k PathKind) String() string {
	switch k {
	case DeclareVar:
		return "var"
	case Dot:
		return "dot"
	case Lookup:
		return "lookup"
	case Call:
		return "call"
	default:
		return "unknown"
	}
}

// PathEntry JSONP 路径段
type PathEntry struct {
	Kind  PathKind
	Name  string // DeclareVar / Dot / Call
	Index int    // Lookup
}

// JSONPData 一条 JSONP 赋值语句的结果
type JSONPData struct {
	Path  []PathEntry
	Value *value.Value
}

// reservedWords 不能作为 JSONP 路径段的关键字
var reservedWords = map[string]struct{}{
	"await": {}, "break": {}, "case": {}, "catch": {}, "class": {}, "const": {},
	"continue": {}, "debugger": {}, "default": {}, "delete": {}, "do": {},
	"else": {}, "enum": {}, "export": {}, "extends": {}, "false": {},
	"finally": {}, "for": {}, "function": {}, "if": {}, "implements": {},
	"import": {}, "in": {}, "instanceof": {}, "interface": {}, "let": {},
	"new": {}, "null": {}, "package": {}, "private": {}, "protected": {},
	"public": {}, "return": {}, "static": {}, "super": {}, "switch": {},
	"this": {}, "throw": {}, "true": {}, "try": {}, "typeof": {}, "var": {},
	"void": {}, "while": {}, "with": {}, "yield": {},
}

// IsKeyword name 是否为保留字
func IsKeyword(name string) bool {
	_, ok := reservedWords[name]
	return ok
}

// TryJSONPParse 识别 JSONP 语句序列
//
// 接受一条或多条以 ';' 分隔的语句:
//
//	var name = <value>;
//	a.b[0].c = <value>;
//	callback(<value>);
//
// 全有或全无: 任何一条语句不合规（首 Token 不是标识符、下标不是非负整数、
// 路径段是关键字、值解析失败、尾部多余内容）都使整个调用失败，不返回部分结果。
func (p *Parser[C]) TryJSONPParse(input []C) ([]JSONPData, error) {
	if p.mode != core.JSONP {
		return nil, fmt.Errorf("%w: parser mode is %s", ErrNotJSONP, p.mode)
	}
	p.begin(input)
	results, ok := p.tryJSONP()
	if !ok {
		var inner error = &SyntaxError{Msg: msgExpectedJSONPPath, Offset: p.lex.CurrentTokenStart(), Err: ErrNotJSONP}
		if p.err != nil || p.lex.ErrorMessage() != "" {
			inner = p.error()
		}
		p.factory.Detach()
		p.obs.ObserveParse(p.mode, len(input), inner)
		p.log.Debug("literal: JSONP rejected", "offset", p.lex.CurrentTokenStart(), "err", inner)
		p.clear()
		return nil, fmt.Errorf("%w: %w", ErrNotJSONP, inner)
	}
	p.factory.Detach()
	p.obs.ObserveParse(p.mode, len(input), nil)
	p.clear()
	return results, nil
}

func (p *Parser[C]) tryJSONP() ([]JSONPData, bool) {
	if p.lex.Next() != lexer.Identifier {
		return nil, false
	}
	var results []JSONPData
	for {
		var path []PathEntry
		var entry PathEntry
		name := p.lex.Text(p.lex.Current())
		if name == "var" {
			if p.lex.Next() != lexer.Identifier {
				return nil, false
			}
			entry = PathEntry{Kind: DeclareVar, Name: p.atoms.Make(p.lex.Text(p.lex.Current()))}
		} else {
			entry = PathEntry{Kind: Dot, Name: p.atoms.Make(name)}
		}
		path = append(path, entry)
		if IsKeyword(entry.Name) {
			return nil, false
		}

		k := p.lex.Next()
		if entry.Kind == DeclareVar && k != lexer.Assign {
			return nil, false
		}
	segments:
		for k != lexer.Assign {
			switch k {
			case lexer.LBracket:
				if p.lex.Next() != lexer.Number {
					return nil, false
				}
				f := p.lex.Current().Number
				idx := int(f)
				if float64(idx) != f || idx < 0 {
					return nil, false
				}
				if p.lex.Next() != lexer.RBracket {
					return nil, false
				}
				entry = PathEntry{Kind: Lookup, Index: idx}
			case lexer.Dot:
				if p.lex.Next() != lexer.Identifier {
					return nil, false
				}
				entry = PathEntry{Kind: Dot, Name: p.atoms.Make(p.lex.Text(p.lex.Current()))}
				if IsKeyword(entry.Name) {
					return nil, false
				}
			case lexer.LParen:
				if path[len(path)-1].Kind != Dot || p.cfg.NeedsFullSourceInfo {
					return nil, false
				}
				path[len(path)-1].Kind = Call
				entry = path[len(path)-1]
				break segments
			default:
				return nil, false
			}
			path = append(path, entry)
			k = p.lex.Next()
		}

		p.lex.Next()
		v := p.parse(StartParseExpression)
		if v == nil {
			return nil, false
		}
		results = append(results, JSONPData{Path: path, Value: v})
		if entry.Kind == Call {
			if p.lex.Current().Kind != lexer.RParen {
				return nil, false
			}
			p.lex.Next()
		}
		if p.lex.Current().Kind != lexer.Semicolon {
			break
		}
		if p.lex.Next() != lexer.Identifier {
			break
		}
	}
	if p.lex.Current().Kind != lexer.End {
		return nil, false
	}
	return results, true
}
