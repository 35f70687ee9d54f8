package engine_test

import (
	"sort"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/mwatts/graphlite/engine"
	"github.com/mwatts/graphlite/session"
	"github.com/mwatts/graphlite/store/memory"
)

// seedPeople inserts the six Person nodes the seed scenarios in §8 are
// built around, each with name, age, salary and city properties.
func seedPeople(t *testing.T, cache *memory.Store, sess *session.Session) {
	t.Helper()
	stmts := []string{
		`INSERT (a:Person {name:'Alice Smith', age:28, salary:65000, city:'Austin'})`,
		`INSERT (b:Person {name:'Bob Johnson', age:34, salary:72000, city:'Denver'})`,
		`INSERT (c:Person {name:'Charlie Brown', age:41, salary:90000, city:'Austin'})`,
		`INSERT (d:Person {name:'Diana Prince', age:37, salary:81000, city:'Denver'})`,
		`INSERT (e:Person {name:'Eve Davis', age:29, salary:55000, city:'Denver'})`,
		`INSERT (f:Person {name:'Frank Miller', age:50, salary:60000, city:'Denver'})`,
	}
	for _, s := range stmts {
		_, err := engine.Submit(s, sess, cache)
		require.NoError(t, err)
	}
}

func TestUnionDeduplicates(t *testing.T) {
	cache := memory.New()
	sess := session.New()
	sess.Graph = "default"
	seedPeople(t, cache, sess)

	rs, err := engine.Submit(
		`MATCH (p:Person) WHERE p.age < 30 RETURN p.name UNION MATCH (p:Person) WHERE p.salary < 70000 RETURN p.name`,
		sess, cache)
	require.NoError(t, err)

	got := make([]string, 0, len(rs.Rows))
	for _, row := range rs.Rows {
		got = append(got, row[rs.Variables[0]].String())
	}
	sort.Strings(got)

	seen := map[string]bool{}
	for _, n := range got {
		require.False(t, seen[n], "duplicate name %q in UNION result", n)
		seen[n] = true
	}
	require.ElementsMatch(t, []string{"Alice Smith", "Frank Miller", "Eve Davis"}, got)
}

func TestSetMultipleProperties(t *testing.T) {
	cache := memory.New()
	sess := session.New()
	sess.Graph = "default"

	_, err := engine.Submit(`INSERT (john:Person {name:'John Doe', age:30, email:'john@example.com'})`, sess, cache)
	require.NoError(t, err)

	rs, err := engine.Submit(`MATCH (p:Person {name:'John Doe'}) SET p.age=46, p.email='john.d@email.com'`, sess, cache)
	require.NoError(t, err)
	require.Equal(t, 2, rs.RowsAffected)

	check, err := engine.Submit(`MATCH (p:Person {name:'John Doe'}) RETURN p.age, p.email`, sess, cache)
	require.NoError(t, err)
	require.Len(t, check.Rows, 1)
	row := check.Rows[0]
	require.Equal(t, "46", row[check.Variables[0]].String())
	require.Equal(t, "john.d@email.com", row[check.Variables[1]].String())
}

func TestDetachDelete(t *testing.T) {
	cache := memory.New()
	sess := session.New()
	sess.Graph = "default"

	for _, s := range []string{
		`INSERT (h:Person {name:'Hub User'})`,
		`INSERT (a:Person {name:'Other A'})`,
		`MATCH (h:Person {name:'Hub User'}), (a:Person {name:'Other A'}) INSERT (h)-[:KNOWS]->(a)`,
	} {
		_, err := engine.Submit(s, sess, cache)
		require.NoError(t, err)
	}

	_, err := engine.Submit(`MATCH (h:Person {name:'Hub User'}) DELETE h`, sess, cache)
	require.Error(t, err, "bare DELETE of a node with incident edges must fail")

	rs, err := engine.Submit(`MATCH (h:Person {name:'Hub User'}) DETACH DELETE h`, sess, cache)
	require.NoError(t, err)
	require.Equal(t, 2, rs.RowsAffected, "the incident edge and the node itself are each counted")

	check, err := engine.Submit(`MATCH (p:Person {name:'Hub User'}) RETURN p`, sess, cache)
	require.NoError(t, err)
	require.Empty(t, check.Rows)

	remaining, err := engine.Submit(`MATCH (p:Person {name:'Other A'}) RETURN p`, sess, cache)
	require.NoError(t, err)
	require.Len(t, remaining.Rows, 1)
}

func TestTransactionRollsBackOnExecutionError(t *testing.T) {
	cache := memory.New()
	sess := session.New()
	sess.Graph = "default"

	_, err := engine.Submit(`START TRANSACTION`, sess, cache)
	require.NoError(t, err)

	for _, s := range []string{
		`INSERT (x:Person {name:'Inside Txn'})`,
		`INSERT (y:Person {name:'Inside Txn Target'})`,
		`MATCH (x:Person {name:'Inside Txn'}), (y:Person {name:'Inside Txn Target'}) INSERT (x)-[:KNOWS]->(y)`,
	} {
		_, err = engine.Submit(s, sess, cache)
		require.NoError(t, err)
	}

	// A bare DELETE of a node with incident edges is an execution-time
	// error (§4.6): the transaction must roll back every statement run
	// under it so far, not just this one.
	_, err = engine.Submit(`MATCH (x:Person {name:'Inside Txn'}) DELETE x`, sess, cache)
	require.Error(t, err)

	check, err := engine.Submit(`MATCH (p:Person {name:'Inside Txn'}) RETURN p`, sess, cache)
	require.NoError(t, err)
	require.Empty(t, check.Rows)

	checkTarget, err := engine.Submit(`MATCH (p:Person {name:'Inside Txn Target'}) RETURN p`, sess, cache)
	require.NoError(t, err)
	require.Empty(t, checkTarget.Rows)

	_, err = engine.Submit(`COMMIT`, sess, cache)
	require.Error(t, err, "no transaction should be open after an execution error rolled it back")
}
