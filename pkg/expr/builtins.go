package expr

import (
	"fmt"

	zygo "github.com/glycerine/zygomys/zygo"
	"github.com/samber/lo"
)

// registerBuiltins installs the functions expressions can call:
//
//	(time)                       cook time in seconds
//	(frame)                      frame number, 1 at time 0
//	(ptnum)                      point number
//	(tx) (ty) (tz)               point position components
//	(clamp v lo hi)              v limited to [lo, hi]
//	(fit v omin omax nmin nmax)  v remapped from one range to another
//
// The point builtins fail when ctx has no point.
func registerBuiltins(env *zygo.Zlisp, ctx Context) {
	constant := func(v float64) zygo.ZlispUserFunction {
		return func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
			if len(args) != 0 {
				return zygo.SexpNull, fmt.Errorf("%s: takes no arguments", name)
			}
			return &zygo.SexpFloat{Val: v}, nil
		}
	}
	env.AddFunction("time", constant(ctx.Time))
	env.AddFunction("frame", constant(ctx.Frame()))

	point := func(get func(p *Point) zygo.Sexp) zygo.ZlispUserFunction {
		return func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
			if ctx.Point == nil {
				return zygo.SexpNull, fmt.Errorf("%s: no point context", name)
			}
			return get(ctx.Point), nil
		}
	}
	env.AddFunction("ptnum", point(func(p *Point) zygo.Sexp { return &zygo.SexpInt{Val: int64(p.Number)} }))
	env.AddFunction("tx", point(func(p *Point) zygo.Sexp { return &zygo.SexpFloat{Val: p.Pos.X} }))
	env.AddFunction("ty", point(func(p *Point) zygo.Sexp { return &zygo.SexpFloat{Val: p.Pos.Y} }))
	env.AddFunction("tz", point(func(p *Point) zygo.Sexp { return &zygo.SexpFloat{Val: p.Pos.Z} }))

	env.AddFunction("clamp", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		v, err := floatArgs(name, args, 3)
		if err != nil {
			return zygo.SexpNull, err
		}
		return &zygo.SexpFloat{Val: lo.Clamp(v[0], v[1], v[2])}, nil
	})
	env.AddFunction("fit", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		v, err := floatArgs(name, args, 5)
		if err != nil {
			return zygo.SexpNull, err
		}
		return &zygo.SexpFloat{Val: fit(v[0], v[1], v[2], v[3], v[4])}, nil
	})
}

// fit maps v from [omin, omax] to [nmin, nmax], clamping to the source
// range. An empty source range maps to the midpoint of the target.
func fit(v, omin, omax, nmin, nmax float64) float64 {
	if omin == omax {
		return (nmin + nmax) / 2
	}
	lo0, hi0 := min(omin, omax), max(omin, omax)
	t := (lo.Clamp(v, lo0, hi0) - omin) / (omax - omin)
	return nmin + (nmax-nmin)*t
}

func floatArgs(name string, args []zygo.Sexp, n int) ([]float64, error) {
	if len(args) != n {
		return nil, fmt.Errorf("%s: expected %d arguments, got %d", name, n, len(args))
	}
	out := make([]float64, n)
	for i, a := range args {
		f, err := toFloat64(a)
		if err != nil {
			return nil, fmt.Errorf("%s: argument %d: %w", name, i+1, err)
		}
		out[i] = f
	}
	return out, nil
}

// toFloat64 extracts a float64 from a Sexp (SexpInt, SexpFloat or SexpBool).
func toFloat64(s zygo.Sexp) (float64, error) {
	switch v := s.(type) {
	case *zygo.SexpInt:
		return float64(v.Val), nil
	case *zygo.SexpFloat:
		return v.Val, nil
	case *zygo.SexpBool:
		if v.Val {
			return 1, nil
		}
		return 0, nil
	}
	return 0, fmt.Errorf("expected number, got %T (%s)", s, s.SexpString(nil))
}
