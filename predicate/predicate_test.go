package predicate

import (
	"testing"

	"github.com/Jairik/Parallel-Query-Processing-System/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleRow() *schema.Row {
	return &schema.Row{
		CommandID:        1,
		RawCommand:       "rm -rf /tmp/x",
		BaseCommand:      "rm",
		ShellType:        "bash",
		ExitCode:         0,
		Timestamp:        "2026-01-01T00:00:00Z",
		SudoUsed:         true,
		WorkingDirectory: "/tmp",
		UserID:           1000,
		UserName:         "alice",
		HostName:         "box1",
		RiskLevel:        3,
	}
}

func TestComparisonEq(t *testing.T) {
	c := Compile("base_command", OpEq, "rm")
	assert.True(t, c.Eval(sampleRow()))

	c2 := Compile("base_command", OpEq, "ls")
	assert.False(t, c2.Eval(sampleRow()))
}

func TestComparisonNumericOperators(t *testing.T) {
	assert.True(t, Compile("risk_level", OpGt, "1").Eval(sampleRow()))
	assert.True(t, Compile("risk_level", OpGte, "3").Eval(sampleRow()))
	assert.False(t, Compile("risk_level", OpLt, "3").Eval(sampleRow()))
	assert.True(t, Compile("risk_level", OpNeq, "9").Eval(sampleRow()))
}

func TestComparisonUnknownFieldIsFalse(t *testing.T) {
	c := Compile("not_a_field", OpEq, "x")
	assert.False(t, c.Eval(sampleRow()))
}

func TestComparisonBadLiteralIsFalse(t *testing.T) {
	c := Compile("risk_level", OpEq, "not-a-number")
	assert.False(t, c.Eval(sampleRow()))
}

func TestChainAndFalseWhenRightLeafFalse(t *testing.T) {
	// base_command = 'rm' AND risk_level > 10  -> false, second leaf must
	// still be safely evaluatable (no panic) even though it's false.
	chain := Chain(
		[]*Node{
			Leaf(Compile("base_command", OpEq, "rm")),
			Leaf(Compile("risk_level", OpGt, "10")),
		},
		[]LogicOp{LogicAnd},
	)
	assert.False(t, chain.Eval(sampleRow()))
}

func TestChainOrShortCircuits(t *testing.T) {
	chain := Chain(
		[]*Node{
			Leaf(Compile("base_command", OpEq, "rm")),
			Leaf(Compile("risk_level", OpGt, "10")),
		},
		[]LogicOp{LogicOr},
	)
	assert.True(t, chain.Eval(sampleRow()))
}

func TestNestedGroups(t *testing.T) {
	// base_command = 'rm' AND (sudo_used = true OR risk_level > 10)
	inner := Chain(
		[]*Node{
			Leaf(Compile("sudo_used", OpEq, "true")),
			Leaf(Compile("risk_level", OpGt, "10")),
		},
		[]LogicOp{LogicOr},
	)
	outer := Chain(
		[]*Node{
			Leaf(Compile("base_command", OpEq, "rm")),
			Group(inner),
		},
		[]LogicOp{LogicAnd},
	)
	assert.True(t, outer.Eval(sampleRow()))
}

func TestNilChainEvaluatesTrue(t *testing.T) {
	var n *Node
	assert.True(t, n.Eval(sampleRow()))
}

func TestLeavesCollectsAcrossGroupsAndChain(t *testing.T) {
	inner := Chain(
		[]*Node{
			Leaf(Compile("sudo_used", OpEq, "true")),
			Leaf(Compile("risk_level", OpGt, "10")),
		},
		[]LogicOp{LogicOr},
	)
	outer := Chain(
		[]*Node{
			Leaf(Compile("base_command", OpEq, "rm")),
			Group(inner),
		},
		[]LogicOp{LogicAnd},
	)
	leaves := Leaves(outer)
	require.Len(t, leaves, 3)
	fields := []string{leaves[0].Field, leaves[1].Field, leaves[2].Field}
	assert.ElementsMatch(t, []string{"base_command", "sudo_used", "risk_level"}, fields)
}

func TestCompiledKeyAndResolvedFieldType(t *testing.T) {
	c := Compile("risk_level", OpEq, "3")
	k, ok := c.CompiledKey()
	require.True(t, ok)
	assert.Equal(t, int32(3), k.I32())

	ft, ok := c.ResolvedFieldType()
	require.True(t, ok)
	assert.Equal(t, schema.FieldInt, ft)

	bad := Compile("not_a_field", OpEq, "3")
	_, ok = bad.ResolvedFieldType()
	assert.False(t, ok)
}
