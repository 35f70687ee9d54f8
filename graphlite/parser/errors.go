package parser

import (
	"fmt"
	"strings"

	"github.com/mwatts/graphlite/token"
)

// ParseError reports the first parse failure: its position, the offending
// token and the set of token kinds that would have been acceptable there (§4.2: no error
// recovery, the first error stops parsing).
type ParseError struct {
	Offset   int
	Line     int
	Column   int
	Got      token.Token
	Expected []string
}

func (e *ParseError) Error() string {
	exp := "end of input"
	if len(e.Expected) > 0 {
		exp = strings.Join(e.Expected, " or ")
	}
	return fmt.Sprintf("parse error at %d:%d: expected %s, got %s", e.Line, e.Column, exp, e.Got.Kind)
}
