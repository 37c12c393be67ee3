package parser

import (
	"github.com/uniyakcom/literal/lexer"
	"github.com/uniyakcom/literal/value"
)

// parseRecursivelyEntry 严格 JSON / JSONP 的递归入口
func (p *Parser[C]) parseRecursivelyEntry() *value.Value {
	switch p.lex.Current().Kind {
	case lexer.LBrace, lexer.LBracket:
		return p.parseRecursively()
	}
	return p.primitive()
}

// evalRecursivelyEntry 宽松方言语句的递归入口
//
// 接受 "(expr)"、数组、数字与字符串；裸 '{' 在语句位置是代码块而不是对象字面量，直接拒绝。
func (p *Parser[C]) evalRecursivelyEntry() *value.Value {
	switch k := p.lex.Current().Kind; k {
	case lexer.LParen:
		var v *value.Value
		switch p.lex.Next() {
		case lexer.LBrace, lexer.LBracket:
			v = p.parseRecursively()
		default:
			v = p.primitive()
		}
		if v == nil {
			return nil
		}
		if p.lex.Current().Kind != lexer.RParen {
			p.fail(msgTrailingContent, p.structural())
			return nil
		}
		if p.lex.Next() != lexer.End {
			p.fail(msgTrailingContent, ErrSyntax)
			return nil
		}
		return v
	case lexer.LBrace:
		p.fail("Unexpected token '{'", ErrSyntax)
		return nil
	case lexer.LBracket:
		return p.parseRecursively()
	case lexer.Number, lexer.String:
		return p.primitive()
	}
	// 其余 Token 的错误信息与迭代形式保持一致
	return p.parse(StartParseStatement)
}

// parseRecursively 递归下降快速路径（当前 Token 为 '{' 或 '['）
//
// Headroom 判定余量不足时，当前子树交给迭代形式；迭代形式在子树完成时返回，
// 上层递归帧随后继续。
func (p *Parser[C]) parseRecursively() *value.Value {
	if !p.headroom(p.depth) {
		p.obs.ObserveFallback(p.mode, p.depth)
		p.log.Debug("literal: recursive headroom exhausted, continuing iteratively",
			"depth", p.depth,
			"offset", p.lex.CurrentTokenStart())
		return p.parse(StartParseExpression)
	}
	if !p.enter() {
		return nil
	}
	p.depth++
	var v *value.Value
	if p.lex.Current().Kind == lexer.LBracket {
		v = p.recursiveArray()
	} else {
		v = p.recursiveObject()
	}
	p.depth--
	return v
}

// element 递归形式中解析一个子值
func (p *Parser[C]) element(k lexer.Kind) *value.Value {
	if k == lexer.LBrace || k == lexer.LBracket {
		return p.parseRecursively()
	}
	return p.primitive()
}

func (p *Parser[C]) recursiveArray() *value.Value {
	arr := p.factory.NewArray()
	k := p.lex.Next()
	if k == lexer.RBracket {
		p.lex.Next()
		return arr
	}
	for {
		v := p.element(k)
		if v == nil {
			return nil
		}
		arr.Push(v)

		switch p.lex.Current().Kind {
		case lexer.Comma:
			k = p.lex.Next()
			if k == lexer.RBracket {
				p.fail(msgTrailingComma, ErrSyntax)
				return nil
			}
			continue
		case lexer.RBracket:
			p.lex.Next()
			return arr
		default:
			p.failToken(lexer.RBracket)
			return nil
		}
	}
}

func (p *Parser[C]) recursiveObject() *value.Value {
	obj := p.factory.NewObject()
	k := p.nextKey()
	if !p.isPropertyKey(k) {
		if k != lexer.RBrace {
			p.failToken(lexer.RBrace)
			return nil
		}
		p.lex.Next()
		return obj
	}
	for {
		key := p.lex.Text(p.lex.Current())
		if p.lex.Next() != lexer.Colon {
			p.failToken(lexer.Colon)
			return nil
		}
		v := p.element(p.lex.Next())
		if v == nil {
			return nil
		}
		if !p.putProperty(obj, key, v) {
			return nil
		}

		switch p.lex.Current().Kind {
		case lexer.Comma:
			if !p.isPropertyKey(p.lex.Next()) {
				p.fail(msgPropertyName, p.structural())
				return nil
			}
			continue
		case lexer.RBrace:
			p.lex.Next()
			return obj
		default:
			p.failToken(lexer.RBrace)
			return nil
		}
	}
}
