package function

import (
	"fmt"
	"math"
	"strings"

	"github.com/mwatts/graphlite"
)

// builtin is a table-driven Function: the scalar/aggregate registry is a
// list of these rather than one dedicated struct per function, since the
// set is large and each body is a handful of lines.
type builtin struct {
	name      string
	minArgs   int
	maxArgs   int // -1 unbounded
	aggregate bool
	exec      func(ctx *Context) (graphlite.Value, error)
}

func (b *builtin) Name() string        { return b.name }
func (b *builtin) MinArgs() int        { return b.minArgs }
func (b *builtin) MaxArgs() int        { return b.maxArgs }
func (b *builtin) IsAggregate() bool   { return b.aggregate }
func (b *builtin) Execute(ctx *Context) (graphlite.Value, error) {
	return b.exec(ctx)
}

func init() {
	for _, fn := range aggregates {
		DefaultRegistry.Register(fn)
	}
	for _, fn := range scalars {
		DefaultRegistry.Register(fn)
	}
}

// aggregates implements COUNT/SUM/AVG/MIN/MAX/COLLECT (§4.3), operating over
// Context.Column rather than Context.Args: the executor's aggregation phase
// reduces each group's column of per-row values before calling Execute.
var aggregates = []Function{
	&builtin{name: "COUNT", minArgs: 0, maxArgs: 1, aggregate: true, exec: execCount},
	&builtin{name: "SUM", minArgs: 1, maxArgs: 1, aggregate: true, exec: execSum},
	&builtin{name: "AVG", minArgs: 1, maxArgs: 1, aggregate: true, exec: execAvg},
	&builtin{name: "MIN", minArgs: 1, maxArgs: 1, aggregate: true, exec: execMin},
	&builtin{name: "MAX", minArgs: 1, maxArgs: 1, aggregate: true, exec: execMax},
	&builtin{name: "COLLECT", minArgs: 1, maxArgs: 1, aggregate: true, exec: execCollect},
}

func execCount(ctx *Context) (graphlite.Value, error) {
	if ctx.Star {
		return graphlite.NewNumber(float64(len(ctx.Column))), nil
	}
	n := 0
	for _, v := range ctx.Column {
		if !v.IsNull() {
			n++
		}
	}
	return graphlite.NewNumber(float64(n)), nil
}

func execSum(ctx *Context) (graphlite.Value, error) {
	sum := 0.0
	for _, v := range ctx.Column {
		if f, ok := v.AsFloat(); ok {
			sum += f
		}
	}
	return graphlite.NewNumber(sum), nil
}

func execAvg(ctx *Context) (graphlite.Value, error) {
	sum, n := 0.0, 0
	for _, v := range ctx.Column {
		if f, ok := v.AsFloat(); ok {
			sum += f
			n++
		}
	}
	if n == 0 {
		return graphlite.Null, nil
	}
	return graphlite.NewNumber(sum / float64(n)), nil
}

func execMin(ctx *Context) (graphlite.Value, error) {
	var best graphlite.Value
	found := false
	for _, v := range ctx.Column {
		if v.IsNull() {
			continue
		}
		if !found || v.Less(best) {
			best = v
			found = true
		}
	}
	if !found {
		return graphlite.Null, nil
	}
	return best, nil
}

func execMax(ctx *Context) (graphlite.Value, error) {
	var best graphlite.Value
	found := false
	for _, v := range ctx.Column {
		if v.IsNull() {
			continue
		}
		if !found || best.Less(v) {
			best = v
			found = true
		}
	}
	if !found {
		return graphlite.Null, nil
	}
	return best, nil
}

func execCollect(ctx *Context) (graphlite.Value, error) {
	out := make([]graphlite.Value, 0, len(ctx.Column))
	for _, v := range ctx.Column {
		if !v.IsNull() {
			out = append(out, v)
		}
	}
	return graphlite.NewList(out), nil
}

// scalars implements TYPE/SIZE/TRIM/REPLACE/SUBSTRING/ROUND (§4.3's
// "bespoke rules" set) plus a handful of companion string/math functions the
// same expression grammar exercises (§3's scalar expression forms).
var scalars = []Function{
	&builtin{name: "TYPE", minArgs: 1, maxArgs: 1, exec: execType},
	&builtin{name: "SIZE", minArgs: 1, maxArgs: 1, exec: execSize},
	&builtin{name: "TRIM", minArgs: 1, maxArgs: 1, exec: execTrim},
	&builtin{name: "REPLACE", minArgs: 3, maxArgs: 3, exec: execReplace},
	&builtin{name: "SUBSTRING", minArgs: 2, maxArgs: 3, exec: execSubstring},
	&builtin{name: "ROUND", minArgs: 1, maxArgs: 2, exec: execRound},
	&builtin{name: "UPPER", minArgs: 1, maxArgs: 1, exec: execUpper},
	&builtin{name: "LOWER", minArgs: 1, maxArgs: 1, exec: execLower},
	&builtin{name: "ABS", minArgs: 1, maxArgs: 1, exec: execAbs},
	&builtin{name: "CEIL", minArgs: 1, maxArgs: 1, exec: execCeil},
	&builtin{name: "FLOOR", minArgs: 1, maxArgs: 1, exec: execFloor},
	&builtin{name: "COALESCE", minArgs: 1, maxArgs: -1, exec: execCoalesce},
}

func execType(ctx *Context) (graphlite.Value, error) {
	v := ctx.Args[0]
	var name string
	switch v.Kind {
	case graphlite.KindNull:
		name = "NULL"
	case graphlite.KindString:
		name = "STRING"
	case graphlite.KindNumber:
		name = "NUMBER"
	case graphlite.KindBoolean:
		name = "BOOLEAN"
	case graphlite.KindDateTime, graphlite.KindDateTimeFixedOffset, graphlite.KindDateTimeNamedTz:
		name = "DATETIME"
	case graphlite.KindTimeWindow:
		name = "TIME_WINDOW"
	case graphlite.KindVector:
		name = "VECTOR"
	case graphlite.KindList:
		name = "LIST"
	case graphlite.KindNode:
		name = "NODE"
	default:
		name = "UNKNOWN"
	}
	return graphlite.NewString(name), nil
}

func execSize(ctx *Context) (graphlite.Value, error) {
	v := ctx.Args[0]
	switch v.Kind {
	case graphlite.KindList:
		return graphlite.NewNumber(float64(len(v.List))), nil
	case graphlite.KindVector:
		return graphlite.NewNumber(float64(len(v.Vector))), nil
	case graphlite.KindString:
		return graphlite.NewNumber(float64(len([]rune(v.Str)))), nil
	}
	return graphlite.Null, nil
}

func execTrim(ctx *Context) (graphlite.Value, error) {
	return graphlite.NewString(strings.TrimSpace(ctx.Args[0].Str)), nil
}

func execReplace(ctx *Context) (graphlite.Value, error) {
	s, old, new_ := ctx.Args[0].Str, ctx.Args[1].Str, ctx.Args[2].Str
	return graphlite.NewString(strings.ReplaceAll(s, old, new_)), nil
}

func execSubstring(ctx *Context) (graphlite.Value, error) {
	s := []rune(ctx.Args[0].Str)
	start, _ := ctx.Args[1].AsFloat()
	from := int(start)
	if from < 0 {
		from = 0
	}
	if from > len(s) {
		from = len(s)
	}
	to := len(s)
	if len(ctx.Args) == 3 {
		length, _ := ctx.Args[2].AsFloat()
		to = from + int(length)
		if to > len(s) {
			to = len(s)
		}
		if to < from {
			to = from
		}
	}
	return graphlite.NewString(string(s[from:to])), nil
}

func execRound(ctx *Context) (graphlite.Value, error) {
	f, _ := ctx.Args[0].AsFloat()
	if len(ctx.Args) == 2 {
		digits, _ := ctx.Args[1].AsFloat()
		mul := math.Pow(10, digits)
		return graphlite.NewNumber(math.Round(f*mul) / mul), nil
	}
	return graphlite.NewNumber(math.Round(f)), nil
}

func execUpper(ctx *Context) (graphlite.Value, error) {
	return graphlite.NewString(strings.ToUpper(ctx.Args[0].Str)), nil
}

func execLower(ctx *Context) (graphlite.Value, error) {
	return graphlite.NewString(strings.ToLower(ctx.Args[0].Str)), nil
}

func execAbs(ctx *Context) (graphlite.Value, error) {
	f, ok := ctx.Args[0].AsFloat()
	if !ok {
		return graphlite.Value{}, fmt.Errorf("ABS: argument is not numeric")
	}
	return graphlite.NewNumber(math.Abs(f)), nil
}

func execCeil(ctx *Context) (graphlite.Value, error) {
	f, _ := ctx.Args[0].AsFloat()
	return graphlite.NewNumber(math.Ceil(f)), nil
}

func execFloor(ctx *Context) (graphlite.Value, error) {
	f, _ := ctx.Args[0].AsFloat()
	return graphlite.NewNumber(math.Floor(f)), nil
}

func execCoalesce(ctx *Context) (graphlite.Value, error) {
	for _, v := range ctx.Args {
		if !v.IsNull() {
			return v, nil
		}
	}
	return graphlite.Null, nil
}
