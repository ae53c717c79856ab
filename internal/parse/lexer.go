package parse

import (
	"strconv"
	"strings"
	"text/scanner"

	"github.com/cockroachdb/errors"
)

var ErrBadSyntax = errors.New("bad syntax")

var keywords = map[string]bool{
	"select": true, "from": true, "where": true, "and": true,
}

// Lexer splits a query into tokens. Identifiers and keywords are lower-cased.
type Lexer struct {
	scanner  scanner.Scanner
	token    rune
	tokenVal string
}

func NewLexer(input string) *Lexer {
	l := &Lexer{}
	l.scanner.Init(strings.NewReader(input))
	l.scanner.Mode = scanner.ScanIdents | scanner.ScanInts | scanner.ScanStrings | scanner.ScanComments | scanner.SkipComments
	l.scanner.Whitespace = 1<<'\t' | 1<<'\n' | 1<<'\r' | 1<<' '
	l.scanner.Error = func(*scanner.Scanner, string) {}

	l.nextToken()
	return l
}

// nextToken advances to the next token. text/scanner has no notion of
// single-quoted strings, so those are read by hand; '' inside one is a quote.
func (l *Lexer) nextToken() {
	l.token = l.scanner.Scan()
	l.tokenVal = l.scanner.TokenText()

	switch l.token {
	case '\'':
		var sb strings.Builder
		for {
			ch := l.scanner.Next()
			if ch == scanner.EOF {
				break
			}
			if ch != '\'' {
				sb.WriteRune(ch)
				continue
			}
			if l.scanner.Peek() != '\'' {
				break
			}
			sb.WriteRune('\'')
			l.scanner.Next()
		}
		l.tokenVal = sb.String()
	case scanner.Ident:
		l.tokenVal = strings.ToLower(l.tokenVal)
	}
}

// MatchDelim checks if the current token is the specified delimiter.
func (l *Lexer) MatchDelim(d rune) bool {
	return l.token == d
}

// MatchIntConstant checks if the current token is an integer constant.
func (l *Lexer) MatchIntConstant() bool {
	return l.token == scanner.Int
}

// MatchStringConstant checks if the current token is a single or double quoted string.
func (l *Lexer) MatchStringConstant() bool {
	return l.token == '\'' || l.token == scanner.String
}

// MatchKeyword checks if the current token is the specified keyword.
func (l *Lexer) MatchKeyword(w string) bool {
	return l.token == scanner.Ident && l.tokenVal == strings.ToLower(w)
}

// MatchId checks if the current token is an identifier that is not a keyword.
func (l *Lexer) MatchId() bool {
	return l.token == scanner.Ident && !keywords[l.tokenVal]
}

// AtEnd reports whether all input has been consumed.
func (l *Lexer) AtEnd() bool {
	return l.token == scanner.EOF
}

// EatDelim consumes the expected delimiter.
func (l *Lexer) EatDelim(d rune) error {
	if !l.MatchDelim(d) {
		return l.unexpected(strconv.QuoteRune(d))
	}
	l.nextToken()
	return nil
}

// EatIntConstant consumes an integer constant and returns its value.
func (l *Lexer) EatIntConstant() (int, error) {
	if !l.MatchIntConstant() {
		return 0, l.unexpected("integer")
	}
	i, err := strconv.Atoi(l.tokenVal)
	if err != nil {
		return 0, errors.Wrapf(ErrBadSyntax, "integer %s out of range", l.tokenVal)
	}
	l.nextToken()
	return i, nil
}

// EatStringConstant consumes a string constant and returns it unquoted.
func (l *Lexer) EatStringConstant() (string, error) {
	if !l.MatchStringConstant() {
		return "", l.unexpected("string")
	}
	s := l.tokenVal
	if l.token == scanner.String {
		unquoted, err := strconv.Unquote(s)
		if err != nil {
			return "", errors.Wrapf(ErrBadSyntax, "malformed string %s", s)
		}
		s = unquoted
	}
	l.nextToken()
	return s, nil
}

// EatKeyword consumes the expected keyword.
func (l *Lexer) EatKeyword(w string) error {
	if !l.MatchKeyword(w) {
		return l.unexpected(strconv.Quote(w))
	}
	l.nextToken()
	return nil
}

// EatId consumes an identifier and returns its lower-cased name.
func (l *Lexer) EatId() (string, error) {
	if !l.MatchId() {
		return "", l.unexpected("identifier")
	}
	s := l.tokenVal
	l.nextToken()
	return s, nil
}

func (l *Lexer) unexpected(want string) error {
	if l.AtEnd() {
		return errors.Wrapf(ErrBadSyntax, "expected %s, got end of input", want)
	}
	return errors.Wrapf(ErrBadSyntax, "expected %s, got %q at %s", want, l.scanner.TokenText(), l.scanner.Position)
}
