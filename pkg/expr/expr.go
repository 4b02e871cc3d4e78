// Package expr evaluates operator parameter expressions.
//
// A parameter value is either a numeric literal ("2.5") or a Lisp
// expression ("(* (time) 0.5)") run by a sandboxed zygomys interpreter.
// Every evaluation gets a fresh sandbox so results depend only on the
// source and the Context passed in.
package expr

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	v3 "github.com/deadsy/sdfx/vec/v3"
	zygo "github.com/glycerine/zygomys/zygo"
)

// FramesPerSecond converts cook time to the (frame) builtin.
const FramesPerSecond = 24

// Error is a parse or runtime error in an expression.
type Error struct {
	Line    int
	Message string
}

func (e *Error) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("expr: line %d: %s", e.Line, e.Message)
	}
	return "expr: " + e.Message
}

// Point describes the element an expression is evaluated for.
type Point struct {
	Number int
	Pos    v3.Vec
}

// Context is the evaluation environment. Point is nil when the expression
// is evaluated once per cook.
type Context struct {
	Time  float64
	Point *Point
}

// Frame returns the frame number for c.Time.
func (c Context) Frame() float64 {
	return c.Time*FramesPerSecond + 1
}

// Expr is a compiled parameter value.
type Expr struct {
	src          string
	literal      bool
	value        float64
	pointVarying bool
}

// pointBuiltins matches calls that require a point context.
var pointBuiltins = regexp.MustCompile(`\(\s*(ptnum|tx|ty|tz)[\s)]`)

// IsExpression reports whether src is evaluated rather than parsed as a
// number.
func IsExpression(src string) bool {
	return strings.HasPrefix(strings.TrimSpace(src), "(")
}

// Compile parses src once. Literals are converted immediately; expressions
// are syntax checked in a throwaway sandbox and evaluated later by Eval.
func Compile(src string) (*Expr, error) {
	src = strings.TrimSpace(src)
	if !IsExpression(src) {
		if src == "" {
			return &Expr{literal: true}, nil
		}
		v, err := strconv.ParseFloat(src, 64)
		if err != nil {
			return nil, &Error{Message: fmt.Sprintf("invalid number %q", src)}
		}
		return &Expr{src: src, literal: true, value: v}, nil
	}

	e := &Expr{src: src, pointVarying: pointBuiltins.MatchString(src)}
	ch := make(chan evalResult, 1)
	go func() {
		defer recoverInto(ch)
		env := zygo.NewZlispSandbox()
		defer env.Stop()
		if err := env.LoadString(src); err != nil {
			ch <- evalResult{err: parseZygomysError(err)}
			return
		}
		ch <- evalResult{}
	}()
	if _, err := waitWithTimeout(ch, EvalTimeout); err != nil {
		return nil, err
	}
	return e, nil
}

// MustCompile is like Compile but panics on error.
func MustCompile(src string) *Expr {
	e, err := Compile(src)
	if err != nil {
		panic(err)
	}
	return e
}

// IsLiteral reports whether e is a constant.
func (e *Expr) IsLiteral() bool { return e.literal }

// PointVarying reports whether e reads the point context and so has to be
// evaluated once per point.
func (e *Expr) PointVarying() bool { return e.pointVarying }

// Eval returns the value of e in ctx. Evaluation is bounded by EvalTimeout;
// a panic inside the interpreter is returned as an error.
func (e *Expr) Eval(ctx Context) (float64, error) {
	if e.literal {
		return e.value, nil
	}
	ch := make(chan evalResult, 1)
	go func() {
		defer recoverInto(ch)
		v, err := e.evaluate(ctx)
		ch <- evalResult{value: v, err: err}
	}()
	return waitWithTimeout(ch, EvalTimeout)
}

func (e *Expr) evaluate(ctx Context) (float64, error) {
	env := zygo.NewZlispSandbox()
	defer env.Stop()
	registerBuiltins(env, ctx)

	if err := env.LoadString(e.src); err != nil {
		return 0, parseZygomysError(err)
	}
	res, err := env.Run()
	if err != nil {
		return 0, parseZygomysError(err)
	}
	v, err := toFloat64(res)
	if err != nil {
		return 0, &Error{Message: err.Error()}
	}
	return v, nil
}

// linePattern matches zygomys error messages that include "Error on line N: ..."
var linePattern = regexp.MustCompile(`(?i)(?:error )?on line (\d+):\s*(.*)`)

// linePatternShort matches simpler "line N: ..." patterns.
var linePatternShort = regexp.MustCompile(`(?i)^line (\d+):\s*(.*)`)

// parseZygomysError converts a zygomys error into an *Error, extracting the
// line number when the message carries one.
func parseZygomysError(err error) *Error {
	msg := err.Error()
	for _, re := range []*regexp.Regexp{linePattern, linePatternShort} {
		if m := re.FindStringSubmatch(msg); m != nil {
			line, _ := strconv.Atoi(m[1])
			return &Error{Line: line, Message: strings.TrimSpace(m[2])}
		}
	}
	return &Error{Message: strings.TrimSpace(msg)}
}
