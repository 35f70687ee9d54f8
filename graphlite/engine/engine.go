// Package engine wires the lexer, parser, validator and both planners into
// the query-submission surface §6 describes: one function from source text
// plus a session to a ResultSet or a typed error.
package engine

import (
	"github.com/mwatts/graphlite"
	"github.com/mwatts/graphlite/ast"
	"github.com/mwatts/graphlite/executor"
	"github.com/mwatts/graphlite/parser"
	"github.com/mwatts/graphlite/planner/logical"
	"github.com/mwatts/graphlite/planner/physical"
	"github.com/mwatts/graphlite/session"
	"github.com/mwatts/graphlite/store"
	"github.com/mwatts/graphlite/txn"
	"github.com/mwatts/graphlite/validator"
)

// Submit runs one GQL statement to completion against cache under sess
// (§6). Lex/parse/validate errors are rejected before anything touches
// cache; planning errors likewise abort before execution; an execution
// error while sess has an open transaction rolls that transaction back
// before the error is returned (§7).
func Submit(source string, sess *session.Session, cache store.GraphCache) (*executor.ResultSet, error) {
	doc, err := parser.Parse(source)
	if err != nil {
		return nil, graphlite.NewError(graphlite.ErrParse, "%v", err)
	}

	if verrs := validator.Validate(doc, sess.HasGraphContext()); len(verrs) > 0 {
		return nil, validationError(verrs)
	}

	exec := executor.New(cache, nil, sess.Txn)
	exec.Params = sess.Params

	switch st := doc.Statement.(type) {
	case *ast.SessionStatement:
		return runSession(st, sess, exec)
	case *ast.TransactionStatement:
		return runTransaction(st, sess, cache)
	case *ast.QueryStatement:
		rs, err := planAndRun(st.Query, exec)
		clearRolledBackTxn(sess)
		return rs, err
	case *ast.DataStatement:
		rs, err := planAndRun(&ast.MutationPipeline{Statement: st}, exec)
		clearRolledBackTxn(sess)
		return rs, err
	case *ast.SelectStatement:
		rs, err := planAndRun(selectAsQuery(st), exec)
		clearRolledBackTxn(sess)
		return rs, err
	default:
		return nil, graphlite.NewError(graphlite.ErrExecution, "engine: statement form %T has no host-independent execution path (CALL/DDL require a host binding)", st)
	}
}

func planAndRun(q ast.Query, exec *executor.Executor) (*executor.ResultSet, error) {
	lp, err := logical.Plan(q)
	if err != nil {
		return nil, graphlite.NewError(graphlite.ErrPlanning, "%v", err)
	}
	pp := physical.Plan(lp.Root)
	physical.AvoidIndexScan(pp.Root)
	return exec.Execute(pp)
}

// selectAsQuery lowers SELECT items/FROM/MATCH/WHERE/ORDER/LIMIT into the
// same ast.Basic shape a MATCH...RETURN query produces, since the logical
// planner only ever consumes ast.Query (§4.4). The graph-expression FROM
// names which graph to run against — a host-resolved binding outside the
// core's own state — so it plays no part in the in-process translation.
func selectAsQuery(st *ast.SelectStatement) ast.Query {
	items := make([]ast.ReturnItem, len(st.Items))
	for i, it := range st.Items {
		items[i] = ast.ReturnItem{Expr: it.Expr, Alias: it.Alias}
	}
	return &ast.Basic{
		Match:    st.Match,
		Where:    st.Where,
		Return:   items,
		Distinct: st.Distinct,
		OrderBy:  st.OrderBy,
		Limit:    st.Limit,
		Offset:   st.Offset,
	}
}

func runSession(st *ast.SessionStatement, sess *session.Session, exec *executor.Executor) (*executor.ResultSet, error) {
	var value graphlite.Value
	if st.Kind == ast.SessionSet && st.Value != nil {
		v, err := exec.EvalStandalone(st.Value)
		if err != nil {
			return nil, graphlite.NewError(graphlite.ErrExecution, "%v", err)
		}
		value = v
	}
	if err := sess.Apply(st, value); err != nil {
		return nil, err
	}
	return &executor.ResultSet{}, nil
}

func runTransaction(st *ast.TransactionStatement, sess *session.Session, cache store.GraphCache) (*executor.ResultSet, error) {
	switch st.Kind {
	case ast.TxnStart:
		if sess.InTransaction() {
			return nil, graphlite.NewError(graphlite.ErrTxn, "a transaction is already open")
		}
		sess.Txn = txn.Begin(st.AccessMode, st.IsolationLvl)
	case ast.TxnCommit:
		if !sess.InTransaction() {
			return nil, graphlite.NewError(graphlite.ErrTxn, "no transaction is open")
		}
		if err := sess.Txn.Commit(); err != nil {
			return nil, graphlite.NewError(graphlite.ErrTxn, "%v", err)
		}
		sess.Txn = nil
	case ast.TxnRollback:
		if !sess.InTransaction() {
			return nil, graphlite.NewError(graphlite.ErrTxn, "no transaction is open")
		}
		if err := sess.Txn.Rollback(cache); err != nil {
			return nil, graphlite.NewError(graphlite.ErrTxn, "%v", err)
		}
		sess.Txn = nil
	}
	return &executor.ResultSet{}, nil
}

// clearRolledBackTxn drops sess's transaction handle once the executor has
// already rolled it back (§7: an execution error inside an active
// transaction triggers rollback), so a subsequent COMMIT/ROLLBACK reports
// "no transaction is open" instead of attempting a second rollback.
func clearRolledBackTxn(sess *session.Session) {
	if sess.Txn != nil && sess.Txn.Status() == txn.RolledBack {
		sess.Txn = nil
	}
}

func validationError(verrs []*validator.Error) error {
	msg := verrs[0].Message
	for _, v := range verrs[1:] {
		msg += "; " + v.Message
	}
	return graphlite.NewError(graphlite.ErrValidation, "%s", msg)
}
