package parser

import (
	"github.com/uniyakcom/literal/lexer"
	"github.com/uniyakcom/literal/value"
)

// State 迭代形式的状态
type State uint8

const (
	StartParseObject State = iota
	StartParseArray
	StartParseExpression
	StartParseStatement
	StartParseStatementEndStatement
	DoParseObjectStartExpression
	DoParseObjectEndExpression
	DoParseArrayStartExpression
	DoParseArrayEndExpression
)

// String 返回状态名
func (s State) String() string {
	switch s {
	case StartParseObject:
		return "StartParseObject"
	case StartParseArray:
		return "StartParseArray"
	case StartParseExpression:
		return "StartParseExpression"
	case StartParseStatement:
		return "StartParseStatement"
	case StartParseStatementEndStatement:
		return "StartParseStatementEndStatement"
	case DoParseObjectStartExpression:
		return "DoParseObjectStartExpression"
	case DoParseObjectEndExpression:
		return "DoParseObjectEndExpression"
	case DoParseArrayStartExpression:
		return "DoParseArrayStartExpression"
	case DoParseArrayEndExpression:
		return "DoParseArrayEndExpression"
	default:
		return "unknown"
	}
}

// parse 迭代形式: 从 initial 状态开始解析一个完整的值
//
// 只消费本次调用压入的状态；状态栈回到进入时的长度即返回，
// 因此可以在递归形式中途调用来完成一棵子树。失败返回 nil。
func (p *Parser[C]) parse(initial State) *value.Value {
	base := len(p.stateStack)
	st := initial
	var last *value.Value

loop:
	for {
		switch st {
		case StartParseArray:
			if !p.enter() {
				return nil
			}
			p.objectStack = append(p.objectStack, p.factory.NewArray())
			p.openRange(p.objectStack[len(p.objectStack)-1], false)
			st = DoParseArrayStartExpression
			continue loop

		case DoParseArrayStartExpression:
			lastKind := p.lex.Current().Kind
			if p.lex.Next() == lexer.RBracket {
				if lastKind == lexer.Comma {
					p.fail(msgTrailingComma, ErrSyntax)
					return nil
				}
				p.closeRange()
				p.lex.Next()
				last = p.popObject()
				break
			}
			p.stateStack = append(p.stateStack, DoParseArrayEndExpression)
			st = StartParseExpression
			continue loop

		case DoParseArrayEndExpression:
			arr := p.objectStack[len(p.objectStack)-1]
			arr.Push(last)
			p.appendElementRange()
			switch p.lex.Current().Kind {
			case lexer.Comma:
				st = DoParseArrayStartExpression
				continue loop
			case lexer.RBracket:
			default:
				p.failToken(lexer.RBracket)
				return nil
			}
			p.closeRange()
			p.lex.Next()
			last = p.popObject()

		case StartParseObject:
			if !p.enter() {
				return nil
			}
			obj := p.factory.NewObject()
			p.openRange(obj, true)
			k := p.nextKey()
			if p.isPropertyKey(k) {
				for {
					key := p.lex.Text(p.lex.Current())
					if p.lex.Next() != lexer.Colon {
						p.failToken(lexer.Colon)
						return nil
					}
					next := p.lex.Next()
					if next == lexer.LBrace || next == lexer.LBracket {
						p.objectStack = append(p.objectStack, obj)
						p.identStack = append(p.identStack, key)
						p.stateStack = append(p.stateStack, DoParseObjectEndExpression)
						if next == lexer.LBrace {
							st = StartParseObject
						} else {
							st = StartParseArray
						}
						continue loop
					}

					// 叶子属性快速路径
					start, end := p.lex.CurrentTokenStart(), p.lex.CurrentTokenEnd()
					prim := p.primitive()
					if prim == nil {
						return nil
					}
					if !p.putProperty(obj, key, prim) {
						return nil
					}
					p.setLeafPropertyRange(key, prim, start, end)

					if p.lex.Current().Kind != lexer.Comma {
						break
					}
					if !p.isPropertyKey(p.lex.Next()) {
						p.fail(msgPropertyName, p.structural())
						return nil
					}
				}
				if p.lex.Current().Kind != lexer.RBrace {
					p.failToken(lexer.RBrace)
					return nil
				}
				p.closeRange()
				p.lex.Next()
				last = obj
				break
			}
			if k != lexer.RBrace {
				p.failToken(lexer.RBrace)
				return nil
			}
			p.closeRange()
			p.lex.Next()
			last = obj

		case DoParseObjectStartExpression:
			if !p.isPropertyKey(p.lex.Next()) {
				p.fail(msgPropertyName, p.structural())
				return nil
			}
			p.identStack = append(p.identStack, p.lex.Text(p.lex.Current()))
			if p.lex.Next() != lexer.Colon {
				p.failToken(lexer.Colon)
				return nil
			}
			p.lex.Next()
			p.stateStack = append(p.stateStack, DoParseObjectEndExpression)
			st = StartParseExpression
			continue loop

		case DoParseObjectEndExpression:
			obj := p.objectStack[len(p.objectStack)-1]
			key := p.identStack[len(p.identStack)-1]
			p.identStack[len(p.identStack)-1] = ""
			p.identStack = p.identStack[:len(p.identStack)-1]
			if !p.putProperty(obj, key, last) {
				return nil
			}
			p.setPropertyRange(key)
			switch p.lex.Current().Kind {
			case lexer.Comma:
				st = DoParseObjectStartExpression
				continue loop
			case lexer.RBrace:
			default:
				p.failToken(lexer.RBrace)
				return nil
			}
			p.closeRange()
			p.lex.Next()
			last = p.popObject()

		case StartParseExpression:
			switch p.lex.Current().Kind {
			case lexer.LBracket:
				st = StartParseArray
				continue loop
			case lexer.LBrace:
				st = StartParseObject
				continue loop
			}
			start, end := p.lex.CurrentTokenStart(), p.lex.CurrentTokenEnd()
			last = p.primitive()
			if last == nil {
				return nil
			}
			p.leafRange(last, start, end)

		case StartParseStatement:
			switch k := p.lex.Current().Kind; k {
			case lexer.LBracket:
				st = StartParseArray
				continue loop
			case lexer.Number, lexer.String:
				last = p.primitive()
				if last == nil {
					return nil
				}
			case lexer.LParen:
				p.lex.Next()
				p.stateStack = append(p.stateStack, StartParseStatementEndStatement)
				st = StartParseExpression
				continue loop
			case lexer.Identifier:
				p.fail(msgUnexpectedIdent, ErrSyntax)
				return nil
			case lexer.End:
				p.fail(msgUnexpectedEOF, ErrUnexpectedEOF)
				return nil
			case lexer.RBracket, lexer.LBrace, lexer.RBrace, lexer.Colon, lexer.RParen,
				lexer.Comma, lexer.True, lexer.False, lexer.Null, lexer.Dot,
				lexer.Assign, lexer.Semicolon:
				p.fail("Unexpected token '"+k.String()+"'", ErrSyntax)
				return nil
			default:
				p.fail(msgStatement, ErrLexical)
				return nil
			}

		case StartParseStatementEndStatement:
			if p.lex.Current().Kind != lexer.RParen {
				p.fail(msgTrailingContent, p.structural())
				return nil
			}
			if p.lex.Next() != lexer.End {
				p.fail(msgTrailingContent, ErrSyntax)
				return nil
			}

		default:
			panic("parser: unknown state " + st.String())
		}

		// 一个值已完成
		if len(p.stateStack) == base {
			return last
		}
		st = p.stateStack[len(p.stateStack)-1]
		p.stateStack = p.stateStack[:len(p.stateStack)-1]
	}
}

func (p *Parser[C]) popObject() *value.Value {
	n := len(p.objectStack) - 1
	v := p.objectStack[n]
	p.objectStack[n] = nil
	p.objectStack = p.objectStack[:n]
	return v
}
