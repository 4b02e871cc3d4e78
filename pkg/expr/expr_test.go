package expr

import (
	"errors"
	"math"
	"strings"
	"testing"
	"time"

	v3 "github.com/deadsy/sdfx/vec/v3"
)

func TestCompileLiteral(t *testing.T) {
	tests := []struct {
		src  string
		want float64
	}{
		{"2.5", 2.5},
		{"  -3 ", -3},
		{"1e3", 1000},
		{"", 0},
	}
	for _, tt := range tests {
		t.Run(tt.src, func(t *testing.T) {
			e, err := Compile(tt.src)
			if err != nil {
				t.Fatalf("Compile(%q) error = %v", tt.src, err)
			}
			if !e.IsLiteral() || e.PointVarying() {
				t.Errorf("Compile(%q) literal = %v, point varying = %v", tt.src, e.IsLiteral(), e.PointVarying())
			}
			got, err := e.Eval(Context{})
			if err != nil || got != tt.want {
				t.Errorf("Eval() = %v, %v; want %v", got, err, tt.want)
			}
		})
	}
}

func TestCompileInvalidLiteral(t *testing.T) {
	_, err := Compile("abc")
	var eerr *Error
	if !errors.As(err, &eerr) {
		t.Fatalf("Compile(\"abc\") error = %v, want *Error", err)
	}
}

func TestEvalExpression(t *testing.T) {
	tests := []struct {
		name string
		src  string
		ctx  Context
		want float64
	}{
		{"arithmetic", "(+ 1 2)", Context{}, 3},
		{"time", "(* (time) 2)", Context{Time: 1.5}, 3},
		{"frame", "(frame)", Context{Time: 1}, 25},
		{"clamp", "(clamp 7 0 5)", Context{}, 5},
		{"fit", "(fit 5 0 10 0 1)", Context{}, 0.5},
		{"ptnum", "(ptnum)", Context{Point: &Point{Number: 4}}, 4},
		{"position", "(+ (tx) (ty) (tz))", Context{Point: &Point{Pos: v3.Vec{X: 1, Y: 2, Z: 3}}}, 6},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e, err := Compile(tt.src)
			if err != nil {
				t.Fatalf("Compile(%q) error = %v", tt.src, err)
			}
			got, err := e.Eval(tt.ctx)
			if err != nil {
				t.Fatalf("Eval() error = %v", err)
			}
			if math.Abs(got-tt.want) > 1e-12 {
				t.Errorf("Eval() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestPointVarying(t *testing.T) {
	tests := []struct {
		src  string
		want bool
	}{
		{"(* (time) 2)", false},
		{"(ptnum)", true},
		{"(+ 1 (ty))", true},
		{"(+ 1 ( tz ))", true},
		{"(textlen)", false},
	}
	for _, tt := range tests {
		e, err := Compile(tt.src)
		if err != nil {
			t.Fatalf("Compile(%q) error = %v", tt.src, err)
		}
		if got := e.PointVarying(); got != tt.want {
			t.Errorf("PointVarying(%q) = %v, want %v", tt.src, got, tt.want)
		}
	}
}

func TestPointBuiltinWithoutPoint(t *testing.T) {
	e := MustCompile("(ptnum)")
	if _, err := e.Eval(Context{}); err == nil {
		t.Fatal("Eval() without point context succeeded")
	}
}

func TestCompileSyntaxError(t *testing.T) {
	_, err := Compile("(+ 1 2")
	var eerr *Error
	if !errors.As(err, &eerr) {
		t.Fatalf("Compile() error = %v, want *Error", err)
	}
	if eerr.Message == "" {
		t.Error("error message is empty")
	}
}

func TestEvalUndefinedSymbol(t *testing.T) {
	e, err := Compile("(+ 1 undefinedsymbol)")
	if err != nil {
		t.Fatalf("Compile() error = %v", err)
	}
	if _, err := e.Eval(Context{}); err == nil {
		t.Fatal("Eval() of undefined symbol succeeded")
	}
}

func TestEvalNonNumeric(t *testing.T) {
	e := MustCompile("(quote abc)")
	_, err := e.Eval(Context{})
	if err == nil || !strings.Contains(err.Error(), "expected number") {
		t.Fatalf("Eval() error = %v, want non-numeric error", err)
	}
}

func TestErrorFormat(t *testing.T) {
	if s := (&Error{Line: 5, Message: "boom"}).Error(); !strings.Contains(s, "line 5") || !strings.Contains(s, "boom") {
		t.Errorf("Error() = %q", s)
	}
	if s := (&Error{Message: "no location"}).Error(); strings.Contains(s, "line") {
		t.Errorf("Error() without line = %q", s)
	}
}

func TestWaitWithTimeout(t *testing.T) {
	ch := make(chan evalResult) // never sends
	start := time.Now()
	_, err := waitWithTimeout(ch, 20*time.Millisecond)
	if !errors.Is(err, ErrTimeout) {
		t.Fatalf("waitWithTimeout() error = %v, want ErrTimeout", err)
	}
	if time.Since(start) > time.Second {
		t.Error("timeout took too long")
	}

	ready := make(chan evalResult, 1)
	ready <- evalResult{value: 4}
	if v, err := waitWithTimeout(ready, time.Second); v != 4 || err != nil {
		t.Errorf("waitWithTimeout() = %v, %v; want 4, nil", v, err)
	}
}

func TestRecoverInto(t *testing.T) {
	ch := make(chan evalResult, 1)
	func() {
		defer recoverInto(ch)
		panic("boom")
	}()
	res := <-ch
	if res.err == nil || !strings.Contains(res.err.Error(), "boom") {
		t.Errorf("recovered error = %v", res.err)
	}
}

func TestParseZygomysError(t *testing.T) {
	tests := []struct {
		name     string
		msg      string
		wantLine int
		wantMsg  string
	}{
		{"error on line format", "Error on line 5: unexpected token\n", 5, "unexpected token"},
		{"no line info", "some generic error", 0, "some generic error"},
		{"line format lowercase", "line 12: missing paren", 12, "missing paren"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := parseZygomysError(errors.New(tt.msg))
			if e.Line != tt.wantLine {
				t.Errorf("line = %d, want %d", e.Line, tt.wantLine)
			}
			if !strings.Contains(e.Message, tt.wantMsg) {
				t.Errorf("message = %q, want containing %q", e.Message, tt.wantMsg)
			}
		})
	}
}

func TestFit(t *testing.T) {
	tests := []struct {
		v, omin, omax, nmin, nmax, want float64
	}{
		{5, 0, 10, 0, 1, 0.5},
		{-5, 0, 10, 0, 1, 0},
		{15, 0, 10, 0, 1, 1},
		{2, 10, 0, 0, 1, 0.8},
		{1, 3, 3, 0, 2, 1},
	}
	for _, tt := range tests {
		if got := fit(tt.v, tt.omin, tt.omax, tt.nmin, tt.nmax); math.Abs(got-tt.want) > 1e-12 {
			t.Errorf("fit(%v, %v, %v, %v, %v) = %v, want %v", tt.v, tt.omin, tt.omax, tt.nmin, tt.nmax, got, tt.want)
		}
	}
}
