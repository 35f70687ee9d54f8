package ast

import (
	"fmt"
	"strconv"
	"strings"
)

// Format renders a Document back to GQL source text. It is a debug
// formatter, not a canonicalizer, and re-parsing its output does not always
// reproduce the original AST: subquery bodies are elided, a quantified
// comparison is always printed with ANY, and forms it does not know are
// printed as comments. It does not attempt to preserve the original's exact
// whitespace or literal spelling.
func Format(doc *Document) string {
	var sb strings.Builder
	formatStatement(&sb, doc.Statement)
	return sb.String()
}

func formatStatement(sb *strings.Builder, s Statement) {
	switch st := s.(type) {
	case *QueryStatement:
		formatQuery(sb, st.Query)
	case *DataStatement:
		formatDataStatement(sb, st)
	case *TransactionStatement:
		switch st.Kind {
		case TxnStart:
			sb.WriteString("START TRANSACTION")
			if st.AccessMode != "" {
				sb.WriteString(" " + st.AccessMode)
			}
		case TxnCommit:
			sb.WriteString("COMMIT")
		case TxnRollback:
			sb.WriteString("ROLLBACK")
		}
	case *SessionStatement:
		switch st.Kind {
		case SessionSet:
			sb.WriteString("SESSION SET " + st.Key + " = " + FormatExpr(st.Value))
		case SessionReset:
			sb.WriteString("SESSION RESET " + st.Key)
		case SessionClose:
			sb.WriteString("SESSION CLOSE")
		}
	case *CallStatement:
		sb.WriteString("CALL " + st.Procedure + "(")
		for i, a := range st.Args {
			if i > 0 {
				sb.WriteString(", ")
			}
			sb.WriteString(FormatExpr(a))
		}
		sb.WriteString(")")
		if len(st.Yield) > 0 {
			sb.WriteString(" YIELD " + strings.Join(st.Yield, ", "))
		}
		if st.Where != nil {
			sb.WriteString(" WHERE " + FormatExpr(st.Where))
		}
	default:
		sb.WriteString(fmt.Sprintf("/* unformatted statement %T */", s))
	}
}

func formatDataStatement(sb *strings.Builder, st *DataStatement) {
	if len(st.Match) > 0 {
		sb.WriteString("MATCH ")
		for i, p := range st.Match {
			if i > 0 {
				sb.WriteString(", ")
			}
			sb.WriteString(FormatPattern(p))
		}
		sb.WriteString(" ")
	}
	if st.Where != nil {
		sb.WriteString("WHERE " + FormatExpr(st.Where) + " ")
	}
	switch st.Kind {
	case DataInsert:
		sb.WriteString("INSERT ")
		for i, p := range st.InsertPath {
			if i > 0 {
				sb.WriteString(", ")
			}
			sb.WriteString(FormatPattern(p))
		}
	case DataSet:
		sb.WriteString("SET ")
		for i, it := range st.SetItems {
			if i > 0 {
				sb.WriteString(", ")
			}
			switch {
			case it.Label != "":
				sb.WriteString(it.Variable + ":" + it.Label)
			case it.Property != "":
				sb.WriteString(it.Variable + "." + it.Property + " = " + FormatExpr(it.Value))
			default:
				sb.WriteString(it.Variable + " = " + FormatExpr(it.Value))
			}
		}
	case DataRemove:
		sb.WriteString("REMOVE ")
		for i, it := range st.RemoveItems {
			if i > 0 {
				sb.WriteString(", ")
			}
			switch {
			case it.Label != "":
				sb.WriteString(it.Variable + ":" + it.Label)
			case it.Property != "":
				sb.WriteString(it.Variable + "." + it.Property)
			default:
				sb.WriteString(it.Variable)
			}
		}
	case DataDelete:
		if st.Detach {
			sb.WriteString("DETACH ")
		}
		sb.WriteString("DELETE " + strings.Join(st.DeleteVars, ", "))
	}
}

func formatQuery(sb *strings.Builder, q Query) {
	switch qq := q.(type) {
	case *Basic:
		if qq.Match != nil {
			if qq.Match.Optional {
				sb.WriteString("OPTIONAL ")
			}
			sb.WriteString("MATCH ")
			for i, p := range qq.Match.Patterns {
				if i > 0 {
					sb.WriteString(", ")
				}
				sb.WriteString(FormatPattern(p))
			}
			sb.WriteString(" ")
		}
		if qq.Where != nil {
			sb.WriteString("WHERE " + FormatExpr(qq.Where) + " ")
		}
		sb.WriteString("RETURN ")
		if qq.Distinct {
			sb.WriteString("DISTINCT ")
		}
		sb.WriteString(formatReturnItems(qq.Return))
		if len(qq.GroupBy) > 0 {
			sb.WriteString(" GROUP BY ")
			for i, g := range qq.GroupBy {
				if i > 0 {
					sb.WriteString(", ")
				}
				sb.WriteString(FormatExpr(g))
			}
		}
		if qq.Having != nil {
			sb.WriteString(" HAVING " + FormatExpr(qq.Having))
		}
		formatOrderLimit(sb, qq.OrderBy, qq.Limit, qq.Offset)
	case *SetOperation:
		formatQuery(sb, qq.Left)
		switch qq.Kind {
		case SetUnion:
			sb.WriteString(" UNION ")
		case SetIntersect:
			sb.WriteString(" INTERSECT ")
		case SetExcept:
			sb.WriteString(" EXCEPT ")
		}
		if qq.All {
			sb.WriteString("ALL ")
		}
		formatQuery(sb, qq.Right)
	case *Limited:
		formatQuery(sb, qq.Input)
		formatOrderLimit(sb, qq.OrderBy, qq.Limit, qq.Offset)
	case *Return:
		sb.WriteString("RETURN ")
		if qq.Distinct {
			sb.WriteString("DISTINCT ")
		}
		sb.WriteString(formatReturnItems(qq.Items))
		formatOrderLimit(sb, qq.OrderBy, qq.Limit, qq.Offset)
	case *Unwind:
		sb.WriteString("UNWIND " + FormatExpr(qq.Clause.Expr) + " AS " + qq.Clause.Variable + " ")
		formatQuery(sb, qq.Next)
	case *Let:
		sb.WriteString("LET " + qq.Variable + " = " + FormatExpr(qq.Value) + " ")
		formatQuery(sb, qq.Next)
	case *For:
		sb.WriteString("FOR " + qq.Variable + " IN " + FormatExpr(qq.Collection) + " ")
		formatQuery(sb, qq.Next)
	case *Filter:
		sb.WriteString("FILTER " + FormatExpr(qq.Predicate) + " ")
		formatQuery(sb, qq.Next)
	case *WithQuery:
		for _, seg := range qq.Segments {
			if seg.Match != nil {
				sb.WriteString("MATCH ")
				for i, p := range seg.Match.Patterns {
					if i > 0 {
						sb.WriteString(", ")
					}
					sb.WriteString(FormatPattern(p))
				}
				sb.WriteString(" ")
			}
			if seg.Where != nil {
				sb.WriteString("WHERE " + FormatExpr(seg.Where) + " ")
			}
			if seg.With != nil {
				sb.WriteString("WITH ")
				if seg.With.Distinct {
					sb.WriteString("DISTINCT ")
				}
				sb.WriteString(formatReturnItems(seg.With.Items))
				sb.WriteString(" ")
				if seg.With.Where != nil {
					sb.WriteString("WHERE " + FormatExpr(seg.With.Where) + " ")
				}
			}
			if seg.Unwind != nil {
				sb.WriteString("UNWIND " + FormatExpr(seg.Unwind.Expr) + " AS " + seg.Unwind.Variable + " ")
			}
		}
		if qq.Final != nil {
			formatQuery(sb, qq.Final)
		}
	case *MutationPipeline:
		formatDataStatement(sb, qq.Statement)
	}
}

func formatReturnItems(items []ReturnItem) string {
	parts := make([]string, len(items))
	for i, it := range items {
		s := FormatExpr(it.Expr)
		if it.Alias != "" {
			s += " AS " + it.Alias
		}
		parts[i] = s
	}
	return strings.Join(parts, ", ")
}

func formatOrderLimit(sb *strings.Builder, order []OrderItem, limit, offset Expression) {
	if len(order) > 0 {
		sb.WriteString(" ORDER BY ")
		for i, o := range order {
			if i > 0 {
				sb.WriteString(", ")
			}
			sb.WriteString(FormatExpr(o.Expr))
			if o.Direction == OrderDesc {
				sb.WriteString(" DESC")
			}
			switch o.Nulls {
			case NullsFirst:
				sb.WriteString(" NULLS FIRST")
			case NullsLast:
				sb.WriteString(" NULLS LAST")
			}
		}
	}
	if limit != nil {
		sb.WriteString(" LIMIT " + FormatExpr(limit))
	}
	if offset != nil {
		sb.WriteString(" OFFSET " + FormatExpr(offset))
	}
}

// FormatPattern renders a PathPattern.
func FormatPattern(p *PathPattern) string {
	var sb strings.Builder
	switch p.Type {
	case PathTrail:
		sb.WriteString("TRAIL ")
	case PathSimple:
		sb.WriteString("SIMPLE PATH ")
	case PathAcyclic:
		sb.WriteString("ACYCLIC PATH ")
	}
	if p.Variable != "" {
		sb.WriteString(p.Variable + " = ")
	}
	for _, el := range p.Elements {
		switch {
		case el.Node != nil:
			sb.WriteString(formatNodeElement(el.Node))
		case el.Edge != nil:
			sb.WriteString(formatEdgeElement(el.Edge))
		}
	}
	return sb.String()
}

func formatNodeElement(n *NodeElement) string {
	var sb strings.Builder
	sb.WriteString("(")
	sb.WriteString(n.Variable)
	for _, l := range n.Labels {
		sb.WriteString(":" + l)
	}
	if n.Properties != nil {
		sb.WriteString(" " + formatPropertyMap(n.Properties))
	}
	sb.WriteString(")")
	return sb.String()
}

func formatEdgeElement(e *EdgeElement) string {
	var sb strings.Builder
	left, right := "-", "-"
	switch e.Direction {
	case DirOutgoing:
		right = "->"
	case DirIncoming:
		left = "<-"
	case DirBoth:
		left, right = "<-", "->"
	}
	sb.WriteString(left + "[")
	sb.WriteString(e.Variable)
	for _, l := range e.Labels {
		sb.WriteString(":" + l)
	}
	if e.Properties != nil {
		sb.WriteString(" " + formatPropertyMap(e.Properties))
	}
	if e.Quantifier != nil {
		sb.WriteString(formatQuantifier(e.Quantifier))
	}
	sb.WriteString("]" + right)
	return sb.String()
}

func formatQuantifier(q *Quantifier) string {
	switch q.Kind {
	case QuantOptional:
		return "?"
	case QuantExact:
		return "{" + strconv.Itoa(q.Min) + "}"
	case QuantRange:
		return "{" + strconv.Itoa(q.Min) + "," + strconv.Itoa(q.Max) + "}"
	case QuantAtLeast:
		return "{" + strconv.Itoa(q.Min) + ",}"
	case QuantAtMost:
		return "{," + strconv.Itoa(q.Max) + "}"
	}
	return ""
}

func formatPropertyMap(m *PropertyMap) string {
	var sb strings.Builder
	sb.WriteString("{")
	for i, e := range m.Entries {
		if i > 0 {
			sb.WriteString(", ")
		}
		sb.WriteString(e.Key + ": " + FormatExpr(e.Value))
	}
	sb.WriteString("}")
	return sb.String()
}

var binaryOpText = map[BinaryOp]string{
	OpAdd: "+", OpSub: "-", OpMul: "*", OpDiv: "/", OpMod: "%", OpPow: "^",
	OpEq: "=", OpNotEq: "<>", OpLt: "<", OpLtEq: "<=", OpGt: ">", OpGtEq: ">=",
	OpRegexMatch: "=~", OpFuzzyEq: "~=", OpAnd: "AND", OpOr: "OR", OpXor: "XOR",
	OpIn: "IN", OpNotIn: "NOT IN", OpContains: "CONTAINS", OpStartsWith: "STARTS WITH",
	OpEndsWith: "ENDS WITH", OpLike: "LIKE", OpMatches: "MATCHES", OpConcat: "||",
	OpWithin: "WITHIN",
}

// FormatExpr renders an Expression.
func FormatExpr(e Expression) string {
	switch ex := e.(type) {
	case nil:
		return "null"
	case *Binary:
		return "(" + FormatExpr(ex.Left) + " " + binaryOpText[ex.Op] + " " + FormatExpr(ex.Right) + ")"
	case *Unary:
		switch ex.Op {
		case OpNeg:
			return "(-" + FormatExpr(ex.Operand) + ")"
		case OpNot:
			return "(NOT " + FormatExpr(ex.Operand) + ")"
		default:
			return FormatExpr(ex.Operand)
		}
	case *FunctionCall:
		var sb strings.Builder
		sb.WriteString(ex.Name + "(")
		if ex.Star {
			sb.WriteString("*")
		} else {
			if ex.Qualifier == QualifierDistinct {
				sb.WriteString("DISTINCT ")
			}
			for i, a := range ex.Args {
				if i > 0 {
					sb.WriteString(", ")
				}
				sb.WriteString(FormatExpr(a))
			}
		}
		sb.WriteString(")")
		return sb.String()
	case *PropertyAccess:
		return FormatExpr(ex.Object) + "." + ex.Property
	case *Variable:
		return ex.Name
	case *Parameter:
		return "$" + ex.Name
	case *Literal:
		return formatLiteral(ex)
	case *Case:
		var sb strings.Builder
		sb.WriteString("CASE ")
		if ex.Operand != nil {
			sb.WriteString(FormatExpr(ex.Operand) + " ")
		}
		for _, w := range ex.Whens {
			sb.WriteString("WHEN " + FormatExpr(w.When) + " THEN " + FormatExpr(w.Then) + " ")
		}
		if ex.Else != nil {
			sb.WriteString("ELSE " + FormatExpr(ex.Else) + " ")
		}
		sb.WriteString("END")
		return sb.String()
	case *PathConstructor:
		parts := make([]string, len(ex.Elements))
		for i, el := range ex.Elements {
			parts[i] = FormatExpr(el)
		}
		return "PATH(" + strings.Join(parts, ", ") + ")"
	case *Cast:
		return "CAST(" + FormatExpr(ex.Value) + " AS " + ex.Target.String() + ")"
	case *Subquery:
		return "(" + FormatExpr(nil) + ")"
	case *ExistsSubquery:
		return "EXISTS (...)"
	case *NotExistsSubquery:
		return "NOT EXISTS (...)"
	case *InSubquery:
		return FormatExpr(ex.Expr) + " IN (...)"
	case *NotInSubquery:
		return FormatExpr(ex.Expr) + " NOT IN (...)"
	case *QuantifiedComparison:
		return FormatExpr(ex.Left) + " " + binaryOpText[ex.Op] + " ANY(" + FormatExpr(ex.Collection) + ")"
	case *IsPredicate:
		return FormatExpr(ex.Operand) + " " + isPredicateText[ex.Kind]
	case *PatternExpr:
		return FormatPattern(ex.Pattern)
	case *ArrayIndex:
		return FormatExpr(ex.Collection) + "[" + FormatExpr(ex.Index) + "]"
	}
	return fmt.Sprintf("/* unformatted expr %T */", e)
}

var isPredicateText = map[IsPredicateKind]string{
	IsNull: "IS NULL", IsNotNull: "IS NOT NULL", IsTrue: "IS TRUE",
	IsNotTrue: "IS NOT TRUE", IsFalse: "IS FALSE", IsNotFalse: "IS NOT FALSE",
}

func formatLiteral(l *Literal) string {
	switch l.Kind {
	case LitString:
		return "'" + strings.ReplaceAll(l.Str, "'", "\\'") + "'"
	case LitInt:
		return strconv.FormatInt(l.Int, 10)
	case LitFloat:
		return strconv.FormatFloat(l.Float, 'g', -1, 64)
	case LitBool:
		return strconv.FormatBool(l.Bool)
	case LitNull:
		return "null"
	case LitDateTime, LitDuration, LitTimeWindow:
		return l.Str
	case LitVector:
		parts := make([]string, len(l.Elems))
		for i, e := range l.Elems {
			parts[i] = FormatExpr(e)
		}
		return "[" + strings.Join(parts, ", ") + "]"
	case LitList:
		parts := make([]string, len(l.Elems))
		for i, e := range l.Elems {
			parts[i] = FormatExpr(e)
		}
		return "[" + strings.Join(parts, ", ") + "]"
	}
	return "null"
}
