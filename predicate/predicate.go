// Package predicate implements the compiled WHERE-clause tree: a
// comparison leaf, a parenthesized sub-expression group, and a
// sibling-chain of nodes joined by AND/OR, evaluated with short-circuit
// semantics against a schema.Row.
//
// Grounded on the original's ConditionNode (tokenizer.c / sql.h):
// `is_sub_expression` selects between a leaf Condition and a nested Sub
// tree, and `logic_op` links each node to the Next node in its chain.
// tests/test_nested_conditions.c exercises exactly this shape with
// nested AND-of-OR groups, which is the scenario TestNestedGroups below
// mirrors.
package predicate

import (
	"fmt"

	"github.com/Jairik/Parallel-Query-Processing-System/key"
	"github.com/Jairik/Parallel-Query-Processing-System/schema"
)

// Operator is a comparison operator usable in a leaf condition.
type Operator int

const (
	OpEq Operator = iota
	OpNeq
	OpLt
	OpLte
	OpGt
	OpGte
)

func (o Operator) String() string {
	switch o {
	case OpEq:
		return "="
	case OpNeq:
		return "!="
	case OpLt:
		return "<"
	case OpLte:
		return "<="
	case OpGt:
		return ">"
	case OpGte:
		return ">="
	default:
		return "?"
	}
}

// LogicOp joins a node to the next node in its sibling chain.
type LogicOp int

const (
	LogicNone LogicOp = iota
	LogicAnd
	LogicOr
)

// Comparison is a single leaf test: field OP literal.
type Comparison struct {
	Field    string
	Op       Operator
	Literal  string
	fieldOK  bool
	keyOK    bool
	compiled key.Key
	fieldTy  schema.FieldType
}

// Compile resolves the comparison's field and coerces its literal once,
// up front, rather than on every row — coercion failure is recorded and
// makes the leaf permanently evaluate false (spec.md §4.3/§7), matching
// the original's behavior of treating a malformed literal as
// unsatisfiable rather than a parse error.
func Compile(field string, op Operator, literal string) *Comparison {
	c := &Comparison{Field: field, Op: op, Literal: literal}
	info, ok := schema.FieldByName(field)
	if !ok {
		return c
	}
	c.fieldOK = true
	c.fieldTy = info.Type
	k, ok := schema.CoerceLiteral(info.Type, literal)
	if !ok {
		return c
	}
	c.keyOK = true
	c.compiled = k
	return c
}

// Eval evaluates the comparison against row. An unknown field or an
// uncoercible literal evaluates to false, never panics or errors.
func (c *Comparison) Eval(row *schema.Row) bool {
	if !c.fieldOK || !c.keyOK {
		return false
	}
	actual := schema.ExtractKey(row, c.Field)
	cmp := actual.Compare(c.compiled)
	switch c.Op {
	case OpEq:
		return cmp == 0
	case OpNeq:
		return cmp != 0
	case OpLt:
		return cmp < 0
	case OpLte:
		return cmp <= 0
	case OpGt:
		return cmp > 0
	case OpGte:
		return cmp >= 0
	default:
		return false
	}
}

func (c *Comparison) String() string {
	return fmt.Sprintf("%s %s %s", c.Field, c.Op, c.Literal)
}

// CompiledKey returns the literal's coerced key value, if coercion
// succeeded at Compile time. The planner uses this to build a probe
// range without recoercing the literal.
func (c *Comparison) CompiledKey() (key.Key, bool) {
	return c.compiled, c.keyOK
}

// ResolvedFieldType returns the comparison's field type, if Field named
// a known schema attribute. The planner uses this to reject a probe
// against an index whose declared type does not match the leaf's field
// (spec.md §7).
func (c *Comparison) ResolvedFieldType() (schema.FieldType, bool) {
	return c.fieldTy, c.fieldOK
}

// Node is one link in the sibling chain making up a WHERE clause: either
// a Leaf comparison or a parenthesized Sub-group, joined to the next
// link by Logic.
type Node struct {
	IsGroup bool
	Leaf    *Comparison
	Sub     *Node
	Logic   LogicOp
	Next    *Node
}

// Leaf builds a condition node wrapping a single comparison.
func Leaf(c *Comparison) *Node {
	return &Node{Leaf: c}
}

// Group builds a condition node wrapping a parenthesized sub-expression.
func Group(sub *Node) *Node {
	return &Node{IsGroup: true, Sub: sub}
}

// Eval evaluates the full sibling chain starting at n against row, with
// short-circuit AND/OR: the next node is not evaluated when the running
// result already decides the operator (false for AND, true for OR).
// The chain is combined left to right with no precedence, matching
// spec.md §4.3 (each node's Logic field says how it combines with the
// *next* node, not the previous one).
func (n *Node) Eval(row *schema.Row) bool {
	if n == nil {
		return true
	}
	result := n.evalSelf(row)
	cur := n
	for cur.Logic != LogicNone && cur.Next != nil {
		switch cur.Logic {
		case LogicAnd:
			if result {
				result = cur.Next.evalSelf(row)
			}
		case LogicOr:
			if !result {
				result = cur.Next.evalSelf(row)
			}
		}
		cur = cur.Next
	}
	return result
}

func (n *Node) evalSelf(row *schema.Row) bool {
	if n.IsGroup {
		return n.Sub.Eval(row)
	}
	return n.Leaf.Eval(row)
}

// Leaves recursively collects every Comparison leaf reachable from n,
// descending into Group sub-expressions as well as walking the sibling
// chain — the planner needs every leaf in the WHERE tree, not just the
// top-level chain, to find an index-bound probe candidate (spec.md §4.4
// step 1).
func Leaves(n *Node) []*Comparison {
	var out []*Comparison
	for cur := n; cur != nil; cur = cur.Next {
		if cur.IsGroup {
			out = append(out, Leaves(cur.Sub)...)
		} else if cur.Leaf != nil {
			out = append(out, cur.Leaf)
		}
	}
	return out
}

// Chain links nodes a, b, c, ... with the given logic ops between
// consecutive pairs (len(ops) must equal len(nodes)-1), returning the
// head of the chain. This is the builder the parser uses once it has
// parsed every comparison/group in a WHERE clause.
func Chain(nodes []*Node, ops []LogicOp) *Node {
	if len(nodes) == 0 {
		return nil
	}
	for i := 0; i < len(nodes)-1; i++ {
		nodes[i].Logic = ops[i]
		nodes[i].Next = nodes[i+1]
	}
	return nodes[0]
}
