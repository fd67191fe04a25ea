// Package statement classifies single-table UPDATE and DELETE statements
// into tagged variants carrying the target table and the verbatim WHERE
// predicate.
//
// Mutation reporting needs exactly two facts about a statement: which table
// it targets and which rows its predicate matches. Rather than extracting
// them with pattern matching over the raw string, this package scans the
// statement and walks its fixed head shape, which makes the single-table
// assumption explicit: multi-table DML is rejected instead of misparsed.
package statement

import (
	"strings"

	"github.com/leapstack-labs/leapgrid/pkg/core"
	"github.com/leapstack-labs/leapgrid/pkg/sqltoken"
)

// Statement is a parsed single-table mutation: either Update or Delete.
type Statement interface {
	// Target returns the table reference exactly as it appears in the
	// statement, quoting and qualification included, so it can be
	// interpolated into count and snapshot queries unchanged.
	Target() string

	// Where returns the verbatim predicate text after the top-level WHERE
	// keyword, or the empty string when the statement has no predicate.
	Where() string
}

// Update is an `UPDATE <table> SET ... [WHERE <predicate>]` statement.
type Update struct {
	Table     string
	Predicate string
}

// Delete is a `DELETE FROM <table> [WHERE <predicate>]` statement.
type Delete struct {
	Table     string
	Predicate string
}

func (u Update) Target() string { return u.Table }
func (u Update) Where() string  { return u.Predicate }
func (d Delete) Target() string { return d.Table }
func (d Delete) Where() string  { return d.Predicate }

// Parse classifies sql as an Update or Delete. Statements whose table name
// cannot be extracted from the fixed head position fail with
// core.MalformedStatementError.
func Parse(sql string) (Statement, error) {
	p := &parser{sql: sql, tokens: sqltoken.Scan(sql)}

	switch {
	case p.keyword("UPDATE"):
		return p.parseUpdate()
	case p.keyword("DELETE"):
		return p.parseDelete()
	default:
		return nil, malformed(sql, "not a single-table UPDATE or DELETE statement")
	}
}

// ParseUpdate parses sql, requiring an UPDATE statement.
func ParseUpdate(sql string) (Update, error) {
	st, err := Parse(sql)
	if err != nil {
		return Update{}, err
	}
	u, ok := st.(Update)
	if !ok {
		return Update{}, malformed(sql, "not an UPDATE statement")
	}
	return u, nil
}

// ParseDelete parses sql, requiring a DELETE statement.
func ParseDelete(sql string) (Delete, error) {
	st, err := Parse(sql)
	if err != nil {
		return Delete{}, err
	}
	d, ok := st.(Delete)
	if !ok {
		return Delete{}, malformed(sql, "not a DELETE statement")
	}
	return d, nil
}

type parser struct {
	sql    string
	tokens []sqltoken.Token
	pos    int
}

func (p *parser) cur() sqltoken.Token {
	if p.pos >= len(p.tokens) {
		return sqltoken.Token{Kind: sqltoken.EOF, Start: len(p.sql), End: len(p.sql)}
	}
	return p.tokens[p.pos]
}

func (p *parser) next() {
	p.pos++
}

// keyword reports whether the current token is the given bare keyword.
// Quoted identifiers never match: `"where"` is a name, WHERE is a clause.
func (p *parser) keyword(kw string) bool {
	tok := p.cur()
	return tok.Kind == sqltoken.Ident && strings.EqualFold(tok.Text, kw)
}

func (p *parser) symbol(sym string) bool {
	tok := p.cur()
	return tok.Kind == sqltoken.Symbol && tok.Text == sym
}

func (p *parser) parseUpdate() (Statement, error) {
	p.next() // consume UPDATE

	table, err := p.tableRef()
	if err != nil {
		return nil, err
	}
	if p.symbol(",") {
		return nil, malformed(p.sql, "multi-table UPDATE is not supported")
	}
	if !p.keyword("SET") {
		return nil, malformed(p.sql, "expected SET after table name")
	}

	return Update{Table: table, Predicate: p.topLevelWhere()}, nil
}

func (p *parser) parseDelete() (Statement, error) {
	p.next() // consume DELETE
	if !p.keyword("FROM") {
		return nil, malformed(p.sql, "expected FROM after DELETE")
	}
	p.next() // consume FROM

	table, err := p.tableRef()
	if err != nil {
		return nil, err
	}
	if p.symbol(",") || p.keyword("JOIN") {
		return nil, malformed(p.sql, "multi-table DELETE is not supported")
	}

	return Delete{Table: table, Predicate: p.topLevelWhere()}, nil
}

// tableRef consumes a possibly qualified, possibly quoted table reference and
// returns its source text verbatim. Bare clause keywords are rejected in name
// position: `UPDATE SET ...` is a missing table, not a table named SET.
func (p *parser) tableRef() (string, error) {
	tok := p.cur()
	if !isNameToken(tok) {
		return "", malformed(p.sql, "missing table name")
	}

	start := tok.Start
	end := tok.End
	p.next()

	for p.symbol(".") {
		p.next()
		part := p.cur()
		if !isNameToken(part) {
			return "", malformed(p.sql, "incomplete qualified table name")
		}
		end = part.End
		p.next()
	}

	return p.sql[start:end], nil
}

// isNameToken reports whether tok can serve as one component of a table
// reference. Quoted identifiers always qualify; bare identifiers qualify
// unless they are one of the clause keywords this statement shape reserves.
func isNameToken(tok sqltoken.Token) bool {
	switch tok.Kind {
	case sqltoken.QuotedIdent:
		return true
	case sqltoken.Ident:
		return !strings.EqualFold(tok.Text, "SET") &&
			!strings.EqualFold(tok.Text, "WHERE") &&
			!strings.EqualFold(tok.Text, "FROM")
	default:
		return false
	}
}

// topLevelWhere scans the remaining tokens for the first WHERE outside any
// parentheses and returns the verbatim text that follows it. A WHERE inside a
// subquery sits at non-zero depth and is skipped.
func (p *parser) topLevelWhere() string {
	depth := 0
	for ; p.pos < len(p.tokens); p.next() {
		tok := p.cur()
		switch {
		case tok.Kind == sqltoken.Symbol && tok.Text == "(":
			depth++
		case tok.Kind == sqltoken.Symbol && tok.Text == ")":
			depth--
		case depth == 0 && tok.Kind == sqltoken.Ident && strings.EqualFold(tok.Text, "WHERE"):
			pred := strings.TrimSpace(p.sql[tok.End:])
			pred = strings.TrimSuffix(pred, ";")
			return strings.TrimSpace(pred)
		}
	}
	return ""
}

func malformed(sql, reason string) error {
	return &core.MalformedStatementError{SQL: sql, Reason: reason}
}
