// Copyright 2023 The go-lpc Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package jec

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Formula is a compiled correction formula, as found in the text
// correction tables: an arithmetic expression of the variables x, y, z
// and t and of the parameters [0], [1], ...
type Formula struct {
	src  string
	expr node
}

// ParseFormula compiles the provided formula expression.
func ParseFormula(src string) (*Formula, error) {
	p := parser{src: src}
	p.next()
	expr, err := p.parseExpr()
	if err != nil {
		return nil, fmt.Errorf("jec: could not parse formula %q: %w", src, err)
	}
	if p.tok.kind != tokEOF {
		return nil, fmt.Errorf("jec: could not parse formula %q: unexpected %q at %d", src, p.tok.text, p.tok.pos)
	}
	return &Formula{src: src, expr: expr}, nil
}

func (f *Formula) String() string { return f.src }

// Eval evaluates the formula with the variables vars (x, y, z, t)
// and the parameters pars.
func (f *Formula) Eval(vars, pars []float64) float64 {
	return f.expr.eval(&env{vars: vars, pars: pars})
}

type env struct {
	vars []float64
	pars []float64
}

func (e *env) variable(i int) float64 {
	if i >= len(e.vars) {
		return 0
	}
	return e.vars[i]
}

func (e *env) param(i int) float64 {
	if i >= len(e.pars) {
		return 0
	}
	return e.pars[i]
}

type node interface {
	eval(e *env) float64
}

type (
	numNode   float64
	varNode   int
	parNode   int
	unaryNode struct {
		op byte
		x  node
	}
	binaryNode struct {
		op   string
		x, y node
	}
	callNode struct {
		name string
		fct  func(args []float64) float64
		args []node
	}
)

func (n numNode) eval(*env) float64   { return float64(n) }
func (n varNode) eval(e *env) float64 { return e.variable(int(n)) }
func (n parNode) eval(e *env) float64 { return e.param(int(n)) }

func (n unaryNode) eval(e *env) float64 {
	v := n.x.eval(e)
	if n.op == '-' {
		return -v
	}
	return v
}

func (n binaryNode) eval(e *env) float64 {
	x := n.x.eval(e)
	y := n.y.eval(e)
	switch n.op {
	case "+":
		return x + y
	case "-":
		return x - y
	case "*":
		return x * y
	case "/":
		return x / y
	case "^":
		return math.Pow(x, y)
	case "<":
		return b2f(x < y)
	case ">":
		return b2f(x > y)
	case "<=":
		return b2f(x <= y)
	case ">=":
		return b2f(x >= y)
	case "==":
		return b2f(x == y)
	case "!=":
		return b2f(x != y)
	case "&&":
		return b2f(x != 0 && y != 0)
	case "||":
		return b2f(x != 0 || y != 0)
	}
	panic("jec: invalid binary operator " + n.op)
}

func (n callNode) eval(e *env) float64 {
	args := make([]float64, len(n.args))
	for i, arg := range n.args {
		args[i] = arg.eval(e)
	}
	return n.fct(args)
}

func b2f(v bool) float64 {
	if v {
		return 1
	}
	return 0
}

type funcDef struct {
	narg int
	fct  func(args []float64) float64
}

func fct1(f func(float64) float64) funcDef {
	return funcDef{narg: 1, fct: func(args []float64) float64 { return f(args[0]) }}
}

func fct2(f func(x, y float64) float64) funcDef {
	return funcDef{narg: 2, fct: func(args []float64) float64 { return f(args[0], args[1]) }}
}

var funcs = map[string]funcDef{
	"abs":   fct1(math.Abs),
	"fabs":  fct1(math.Abs),
	"sqrt":  fct1(math.Sqrt),
	"exp":   fct1(math.Exp),
	"log":   fct1(math.Log),
	"log10": fct1(math.Log10),
	"sin":   fct1(math.Sin),
	"cos":   fct1(math.Cos),
	"tan":   fct1(math.Tan),
	"atan":  fct1(math.Atan),
	"cosh":  fct1(math.Cosh),
	"sinh":  fct1(math.Sinh),
	"tanh":  fct1(math.Tanh),
	"pow":   fct2(math.Pow),
	"atan2": fct2(math.Atan2),
	"max":   fct2(math.Max),
	"min":   fct2(math.Min),
}

var aliases = map[string]string{
	"TMath::Abs":   "abs",
	"TMath::Sqrt":  "sqrt",
	"TMath::Exp":   "exp",
	"TMath::Log":   "log",
	"TMath::Log10": "log10",
	"TMath::Power": "pow",
	"TMath::Max":   "max",
	"TMath::Min":   "min",
	"TMath::ATan":  "atan",
	"TMath::CosH":  "cosh",
	"TMath::SinH":  "sinh",
	"TMath::TanH":  "tanh",
}

type tokKind uint8

const (
	tokEOF tokKind = iota
	tokNum
	tokIdent
	tokParam
	tokOp
	tokLParen
	tokRParen
	tokComma
)

type token struct {
	kind tokKind
	text string
	pos  int
	num  float64
}

type parser struct {
	src string
	pos int
	tok token
	err error
}

func (p *parser) next() {
	for p.pos < len(p.src) && p.src[p.pos] == ' ' {
		p.pos++
	}
	if p.pos >= len(p.src) {
		p.tok = token{kind: tokEOF, pos: p.pos}
		return
	}

	beg := p.pos
	c := p.src[p.pos]
	switch {
	case isDigit(c) || c == '.':
		end := p.pos
		for end < len(p.src) && (isDigit(p.src[end]) || p.src[end] == '.') {
			end++
		}
		if end < len(p.src) && (p.src[end] == 'e' || p.src[end] == 'E') {
			exp := end + 1
			if exp < len(p.src) && (p.src[exp] == '+' || p.src[exp] == '-') {
				exp++
			}
			if exp < len(p.src) && isDigit(p.src[exp]) {
				end = exp
				for end < len(p.src) && isDigit(p.src[end]) {
					end++
				}
			}
		}
		v, err := strconv.ParseFloat(p.src[beg:end], 64)
		if err != nil && p.err == nil {
			p.err = fmt.Errorf("invalid number %q: %w", p.src[beg:end], err)
		}
		p.pos = end
		p.tok = token{kind: tokNum, text: p.src[beg:end], pos: beg, num: v}

	case isLetter(c):
		end := p.pos
		for end < len(p.src) && (isLetter(p.src[end]) || isDigit(p.src[end]) || p.src[end] == ':') {
			end++
		}
		p.pos = end
		p.tok = token{kind: tokIdent, text: p.src[beg:end], pos: beg}

	case c == '[':
		end := strings.IndexByte(p.src[beg:], ']')
		if end < 0 {
			if p.err == nil {
				p.err = fmt.Errorf("unbalanced parameter bracket at %d", beg)
			}
			p.pos = len(p.src)
			p.tok = token{kind: tokEOF, pos: beg}
			return
		}
		txt := p.src[beg+1 : beg+end]
		v, err := strconv.Atoi(strings.TrimSpace(txt))
		if err != nil && p.err == nil {
			p.err = fmt.Errorf("invalid parameter index %q: %w", txt, err)
		}
		p.pos = beg + end + 1
		p.tok = token{kind: tokParam, text: p.src[beg:p.pos], pos: beg, num: float64(v)}

	case c == '(':
		p.pos++
		p.tok = token{kind: tokLParen, text: "(", pos: beg}
	case c == ')':
		p.pos++
		p.tok = token{kind: tokRParen, text: ")", pos: beg}
	case c == ',':
		p.pos++
		p.tok = token{kind: tokComma, text: ",", pos: beg}

	default:
		for _, op := range []string{"<=", ">=", "==", "!=", "&&", "||", "**"} {
			if strings.HasPrefix(p.src[beg:], op) {
				p.pos += len(op)
				if op == "**" {
					op = "^"
				}
				p.tok = token{kind: tokOp, text: op, pos: beg}
				return
			}
		}
		if strings.IndexByte("+-*/^<>", c) < 0 {
			if p.err == nil {
				p.err = fmt.Errorf("unexpected character %q at %d", c, beg)
			}
		}
		p.pos++
		p.tok = token{kind: tokOp, text: string(c), pos: beg}
	}
}

var precedence = map[string]int{
	"||": 1,
	"&&": 2,
	"==": 3, "!=": 3,
	"<": 4, ">": 4, "<=": 4, ">=": 4,
	"+": 5, "-": 5,
	"*": 6, "/": 6,
}

func (p *parser) parseExpr() (node, error) {
	return p.parseBinary(1)
}

func (p *parser) parseBinary(prec int) (node, error) {
	lhs, err := p.parseUnary()
	if err != nil {
		return nil, err
	}
	for {
		op := p.tok.text
		lvl, ok := precedence[op]
		if p.tok.kind != tokOp || !ok || lvl < prec {
			return lhs, p.err
		}
		p.next()
		rhs, err := p.parseBinary(lvl + 1)
		if err != nil {
			return nil, err
		}
		lhs = binaryNode{op: op, x: lhs, y: rhs}
	}
}

func (p *parser) parseUnary() (node, error) {
	if p.tok.kind == tokOp && (p.tok.text == "-" || p.tok.text == "+") {
		op := p.tok.text[0]
		p.next()
		x, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		return unaryNode{op: op, x: x}, nil
	}
	return p.parsePower()
}

// parsePower handles the right-associative power operator,
// which binds tighter than the unary minus.
func (p *parser) parsePower() (node, error) {
	base, err := p.parsePrimary()
	if err != nil {
		return nil, err
	}
	if p.tok.kind == tokOp && p.tok.text == "^" {
		p.next()
		exp, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		return binaryNode{op: "^", x: base, y: exp}, nil
	}
	return base, nil
}

func (p *parser) parsePrimary() (node, error) {
	if p.err != nil {
		return nil, p.err
	}
	tok := p.tok
	switch tok.kind {
	case tokNum:
		p.next()
		return numNode(tok.num), nil

	case tokParam:
		p.next()
		return parNode(int(tok.num)), nil

	case tokLParen:
		p.next()
		x, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		if p.tok.kind != tokRParen {
			return nil, fmt.Errorf("missing closing parenthesis at %d", p.tok.pos)
		}
		p.next()
		return x, nil

	case tokIdent:
		p.next()
		if p.tok.kind == tokLParen {
			return p.parseCall(tok)
		}
		switch tok.text {
		case "x":
			return varNode(0), nil
		case "y":
			return varNode(1), nil
		case "z":
			return varNode(2), nil
		case "t":
			return varNode(3), nil
		case "pi", "TMath::Pi":
			return numNode(math.Pi), nil
		}
		return nil, fmt.Errorf("unknown identifier %q at %d", tok.text, tok.pos)

	case tokEOF:
		return nil, fmt.Errorf("unexpected end of formula")
	}
	return nil, fmt.Errorf("unexpected %q at %d", tok.text, tok.pos)
}

func (p *parser) parseCall(fct token) (node, error) {
	name := fct.text
	if v, ok := aliases[name]; ok {
		name = v
	}
	def, ok := funcs[name]
	if !ok {
		return nil, fmt.Errorf("unknown function %q at %d", fct.text, fct.pos)
	}

	p.next() // consume '('
	var args []node
	if p.tok.kind != tokRParen {
		for {
			arg, err := p.parseExpr()
			if err != nil {
				return nil, err
			}
			args = append(args, arg)
			if p.tok.kind != tokComma {
				break
			}
			p.next()
		}
	}
	if p.tok.kind != tokRParen {
		return nil, fmt.Errorf("missing closing parenthesis for %q at %d", fct.text, p.tok.pos)
	}
	p.next()

	if len(args) != def.narg {
		return nil, fmt.Errorf("invalid number of arguments for %q: got=%d, want=%d",
			fct.text, len(args), def.narg,
		)
	}
	return callNode{name: name, fct: def.fct, args: args}, nil
}

func isDigit(c byte) bool  { return '0' <= c && c <= '9' }
func isLetter(c byte) bool { return ('a' <= c && c <= 'z') || ('A' <= c && c <= 'Z') || c == '_' }
