package sop

import "github.com/jonassorgenfrei/HoudiniHDKTools/pkg/expr"

func exprCtx(time float64) expr.Context {
	return expr.Context{Time: time}
}
