package parse

import (
	"github.com/cockroachdb/errors"
	"github.com/yashagw/craneopt/internal/parse/parserdata"
	"github.com/yashagw/craneopt/internal/query"
)

// Parser reads queries of the form
//
//	select <field> {, <field>} | * from <table> {, <table>} [where <term> {and <term>}]
//
// where every term is an equality between attributes and constants.
type Parser struct {
	lexer *Lexer
}

// NewParser creates a new Parser.
func NewParser(lexer *Lexer) *Parser {
	return &Parser{
		lexer: lexer,
	}
}

// NewParserFromString creates a new Parser from a string.
func NewParserFromString(sql string) *Parser {
	return NewParser(NewLexer(sql))
}

func (p *Parser) field() (string, error) {
	return p.lexer.EatId()
}

func (p *Parser) constant() (*query.Constant, error) {
	if p.lexer.MatchIntConstant() {
		val, err := p.lexer.EatIntConstant()
		if err != nil {
			return nil, err
		}
		return query.NewIntConstant(val), nil
	}
	val, err := p.lexer.EatStringConstant()
	if err != nil {
		return nil, err
	}
	return query.NewStringConstant(val), nil
}

func (p *Parser) expression() (*query.Expression, error) {
	if p.lexer.MatchId() {
		id, err := p.field()
		if err != nil {
			return nil, err
		}
		return query.NewAttributeExpression(id), nil
	}
	c, err := p.constant()
	if err != nil {
		return nil, err
	}
	return query.NewConstantExpression(*c), nil
}

func (p *Parser) term() (*query.Predicate, error) {
	left, err := p.expression()
	if err != nil {
		return nil, err
	}
	if err := p.lexer.EatDelim('='); err != nil {
		return nil, err
	}
	right, err := p.expression()
	if err != nil {
		return nil, err
	}
	pred, err := query.NewPredicate(*left, *right)
	if err != nil {
		return nil, errors.Mark(err, ErrBadSyntax)
	}
	return pred, nil
}

func (p *Parser) predicates() ([]*query.Predicate, error) {
	first, err := p.term()
	if err != nil {
		return nil, err
	}
	preds := []*query.Predicate{first}
	for p.lexer.MatchKeyword("and") {
		if err := p.lexer.EatKeyword("and"); err != nil {
			return nil, err
		}
		pred, err := p.term()
		if err != nil {
			return nil, err
		}
		preds = append(preds, pred)
	}
	return preds, nil
}

// Query parses a complete select statement. An optional trailing ';' is
// accepted; anything else after the statement is an error.
func (p *Parser) Query() (*parserdata.QueryData, error) {
	// Select
	if err := p.lexer.EatKeyword("select"); err != nil {
		return nil, err
	}
	// Field List
	var fields []string
	if p.lexer.MatchDelim('*') {
		if err := p.lexer.EatDelim('*'); err != nil {
			return nil, err
		}
	} else {
		var err error
		if fields, err = p.fieldList(); err != nil {
			return nil, err
		}
	}
	// From
	if err := p.lexer.EatKeyword("from"); err != nil {
		return nil, err
	}
	// Table List
	tables, err := p.tableList()
	if err != nil {
		return nil, err
	}

	// Where
	var preds []*query.Predicate
	if p.lexer.MatchKeyword("where") {
		if err := p.lexer.EatKeyword("where"); err != nil {
			return nil, err
		}
		if preds, err = p.predicates(); err != nil {
			return nil, err
		}
	}

	if p.lexer.MatchDelim(';') {
		if err := p.lexer.EatDelim(';'); err != nil {
			return nil, err
		}
	}
	if !p.lexer.AtEnd() {
		return nil, p.lexer.unexpected("end of query")
	}
	return parserdata.NewQueryData(fields, tables, preds), nil
}

func (p *Parser) fieldList() ([]string, error) {
	return p.idList()
}

func (p *Parser) tableList() ([]string, error) {
	return p.idList()
}

func (p *Parser) idList() ([]string, error) {
	first, err := p.lexer.EatId()
	if err != nil {
		return nil, err
	}
	ids := []string{first}

	// Now look for ", id" patterns.
	for p.lexer.MatchDelim(',') {
		if err := p.lexer.EatDelim(','); err != nil {
			return nil, err
		}
		id, err := p.lexer.EatId()
		if err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, nil
}
