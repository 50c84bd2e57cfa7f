// Package sqlminiparse implements the recursive-descent parser that
// turns a sqlminitoken.Token stream into a query.ParsedQuery, including
// the §4.3 predicate tree (Comparison leaf / Group / sibling-chain
// Binary node). Like sqlminitoken, it is a collaborator outside the
// core's scope (spec.md §1) built only so the CLI drivers and tests
// have a real end-to-end path; it is deliberately small and implements
// only the SELECT/INSERT/DELETE/DESCRIBE dialect ParsedQuery names.
//
// Grounded on parse_tokens/parse_where_conditions/parse_single_condition
// in _examples/original_source/tokenizer/src/tokenizer.c: same statement
// shapes (SELECT ... FROM ... WHERE ... ORDER BY ... [DESC|ASC], INSERT
// INTO ... VALUES (...), DELETE FROM ... WHERE ..., DESCRIBE), same
// left-associative flat AND/OR with parenthesized Group nodes, the same
// WHERE terminator set (EOF, ';', ')', ORDER). The original's "legacy
// flat conditions array" (kept only for the source's own backward
// compatibility with a pre-tree representation) has no counterpart
// here — ParsedQuery carries only the tree.
package sqlminiparse

import (
	"fmt"
	"strings"

	"github.com/Jairik/Parallel-Query-Processing-System/predicate"
	"github.com/Jairik/Parallel-Query-Processing-System/query"
	"github.com/Jairik/Parallel-Query-Processing-System/sqlminitoken"
)

// SplitStatements splits raw text on ';' into individual statement
// strings, trimming surrounding whitespace and dropping empty
// statements (spec.md §6's query-file driver format: "zero or more
// statements separated by ';'. Whitespace around statements is
// trimmed."). Splitting ignores quoting, so a ';' inside a quoted
// string literal also ends a statement, even though the tokenizer
// itself would keep it in the literal (the original's driver loop has
// the same limitation).
func SplitStatements(text string) []string {
	raw := strings.Split(text, ";")
	var out []string
	for _, stmt := range raw {
		trimmed := strings.TrimSpace(stmt)
		if trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}

// Parse tokenizes and parses a single statement into a ParsedQuery.
func Parse(statement string) (*query.ParsedQuery, error) {
	tokens := sqlminitoken.Tokenize(statement)
	p := &parser{tokens: tokens}
	return p.parseStatement(statement)
}

type parser struct {
	tokens []sqlminitoken.Token
	pos    int
}

func (p *parser) cur() sqlminitoken.Token {
	if p.pos >= len(p.tokens) {
		return sqlminitoken.Token{Type: sqlminitoken.EOF}
	}
	return p.tokens[p.pos]
}

func (p *parser) advance() sqlminitoken.Token {
	t := p.cur()
	if p.pos < len(p.tokens)-1 {
		p.pos++
	}
	return t
}

func (p *parser) isSymbol(v string) bool {
	t := p.cur()
	return t.Type == sqlminitoken.Symbol && t.Value == v
}

func (p *parser) isKeyword(v string) bool {
	t := p.cur()
	return t.Type == sqlminitoken.Keyword && t.Value == v
}

func (p *parser) parseStatement(raw string) (*query.ParsedQuery, error) {
	t := p.cur()
	if t.Type != sqlminitoken.Keyword {
		return &query.ParsedQuery{Command: query.CommandUnknown, RawText: raw}, fmt.Errorf("sqlminiparse: expected a command keyword, got %q", t.Value)
	}

	switch t.Value {
	case "DESCRIBE":
		return p.parseDescribe(raw)
	case "SELECT":
		return p.parseSelect(raw)
	case "INSERT":
		return p.parseInsert(raw)
	case "DELETE":
		return p.parseDelete(raw)
	default:
		return &query.ParsedQuery{Command: query.CommandUnknown, RawText: raw}, fmt.Errorf("sqlminiparse: unsupported command %q", t.Value)
	}
}

func (p *parser) parseDescribe(raw string) (*query.ParsedQuery, error) {
	p.advance() // DESCRIBE
	q := &query.ParsedQuery{Command: query.CommandDescribe, RawText: raw}
	if p.cur().Type == sqlminitoken.Identifier {
		q.Table = p.advance().Value
	}
	return q, nil
}

func (p *parser) parseSelect(raw string) (*query.ParsedQuery, error) {
	p.advance() // SELECT
	q := &query.ParsedQuery{Command: query.CommandSelect, RawText: raw}

	for p.cur().Type != sqlminitoken.EOF {
		if p.isSymbol("*") {
			p.advance()
		} else if p.cur().Type == sqlminitoken.Identifier {
			q.Columns = append(q.Columns, p.advance().Value)
		}
		if p.isSymbol(",") {
			p.advance()
			continue
		}
		if p.isKeyword("FROM") {
			break
		}
		break
	}

	if p.isKeyword("FROM") {
		p.advance()
		if p.cur().Type == sqlminitoken.Identifier {
			q.Table = p.advance().Value
		}
	}

	if p.isKeyword("WHERE") {
		p.advance()
		where, err := p.parseWhereConditions()
		if err != nil {
			return q, err
		}
		q.Where = where
	}

	if p.isKeyword("ORDER") {
		p.advance()
		if p.isKeyword("BY") {
			p.advance()
			if p.cur().Type == sqlminitoken.Identifier {
				term := query.OrderTerm{Field: p.advance().Value}
				if p.isKeyword("DESC") {
					term.Direction = query.Descending
					p.advance()
				} else if p.isKeyword("ASC") {
					p.advance()
				}
				q.Order = append(q.Order, term)
			}
		}
	}

	return q, nil
}

func (p *parser) parseInsert(raw string) (*query.ParsedQuery, error) {
	p.advance() // INSERT
	q := &query.ParsedQuery{Command: query.CommandInsert, RawText: raw}

	if p.isKeyword("INTO") {
		p.advance()
	}
	if p.cur().Type == sqlminitoken.Identifier {
		q.Table = p.advance().Value
	}
	if p.isKeyword("VALUES") {
		p.advance()
	}
	if p.isSymbol("(") {
		p.advance()
	}
	for p.cur().Type != sqlminitoken.EOF && !p.isSymbol(")") {
		if p.isSymbol(",") {
			p.advance()
			continue
		}
		q.Values = append(q.Values, p.advance().Value)
	}
	if p.isSymbol(")") {
		p.advance()
	}
	return q, nil
}

func (p *parser) parseDelete(raw string) (*query.ParsedQuery, error) {
	p.advance() // DELETE
	q := &query.ParsedQuery{Command: query.CommandDelete, RawText: raw}

	if p.isKeyword("FROM") {
		p.advance()
	}
	if p.cur().Type == sqlminitoken.Identifier {
		q.Table = p.advance().Value
	}
	if p.isKeyword("WHERE") {
		p.advance()
		where, err := p.parseWhereConditions()
		if err != nil {
			return q, err
		}
		q.Where = where
	}
	return q, nil
}

// isWhereTerminator mirrors is_where_terminator in tokenizer.c.
func (p *parser) isWhereTerminator() bool {
	t := p.cur()
	if t.Type == sqlminitoken.EOF {
		return true
	}
	if t.Type == sqlminitoken.Symbol && (t.Value == ";" || t.Value == ")") {
		return true
	}
	if t.Type == sqlminitoken.Keyword && t.Value == "ORDER" {
		return true
	}
	return false
}

// parseWhereConditions mirrors parse_where_conditions: a left-to-right
// chain of single conditions/groups joined by AND/OR, stopping at a
// WHERE terminator. Precedence is left entirely to this flat chain,
// per spec.md §4.3's documented contract with the parser.
func (p *parser) parseWhereConditions() (*predicate.Node, error) {
	var nodes []*predicate.Node
	var ops []predicate.LogicOp

	for !p.isWhereTerminator() {
		node, err := p.parseSingleCondition()
		if err != nil {
			return nil, err
		}
		if node == nil {
			break
		}
		nodes = append(nodes, node)

		if p.isKeyword("AND") {
			ops = append(ops, predicate.LogicAnd)
			p.advance()
		} else if p.isKeyword("OR") {
			ops = append(ops, predicate.LogicOr)
			p.advance()
		} else {
			break
		}
	}

	return predicate.Chain(nodes, ops), nil
}

// parseSingleCondition mirrors parse_single_condition: either a
// parenthesized sub-expression (-> Group) or a column/operator/value
// triple (-> Leaf).
func (p *parser) parseSingleCondition() (*predicate.Node, error) {
	if p.isSymbol("(") {
		p.advance()
		sub, err := p.parseWhereConditions()
		if err != nil {
			return nil, err
		}
		if p.isSymbol(")") {
			p.advance()
		}
		return predicate.Group(sub), nil
	}

	if p.cur().Type != sqlminitoken.Identifier {
		return nil, nil
	}
	field := p.advance().Value

	opTok := p.advance()
	op, ok := operatorFromToken(opTok.Value)
	if !ok {
		return nil, fmt.Errorf("sqlminiparse: unrecognized operator %q in WHERE clause", opTok.Value)
	}

	valTok := p.cur()
	var literal string
	switch valTok.Type {
	case sqlminitoken.String, sqlminitoken.Number:
		literal = p.advance().Value
	case sqlminitoken.Keyword:
		if valTok.Value == "TRUE" || valTok.Value == "FALSE" {
			literal = p.advance().Value
		} else {
			return nil, fmt.Errorf("sqlminiparse: expected a value after %s %s, got keyword %q", field, opTok.Value, valTok.Value)
		}
	default:
		return nil, fmt.Errorf("sqlminiparse: expected a value after %s %s", field, opTok.Value)
	}

	return predicate.Leaf(predicate.Compile(field, op, literal)), nil
}

func operatorFromToken(v string) (predicate.Operator, bool) {
	switch v {
	case "=":
		return predicate.OpEq, true
	case "!=":
		return predicate.OpNeq, true
	case ">":
		return predicate.OpGt, true
	case "<":
		return predicate.OpLt, true
	case ">=":
		return predicate.OpGte, true
	case "<=":
		return predicate.OpLte, true
	default:
		return 0, false
	}
}
