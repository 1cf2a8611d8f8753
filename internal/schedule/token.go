package schedule

import (
	"regexp"
	"strings"

	"classfree/internal/model"
)

// Kind classifies a single whitespace-delimited token of a schedule string.
type Kind int

const (
	// TokenOther covers everything that is neither a day nor an hour code;
	// in practice these are instructor name fragments and the room.
	TokenOther Kind = iota
	TokenDay
	TokenHour
)

// Token is one classified token of a schedule string.
type Token struct {
	Text string
	Kind Kind
}

// Hour codes are one or two ASCII digits. No range validation happens at
// tokenize time; the block parser works with whatever value is written.
var hourPattern = regexp.MustCompile(`^[0-9]{1,2}$`)

// Tokenize splits raw on runs of whitespace and classifies every token.
//
// A record containing the literal substring "TBA" anywhere carries no usable
// schedule ("time to be announced") and yields no tokens at all.
func Tokenize(raw string) []Token {
	if strings.Contains(raw, "TBA") {
		return nil
	}

	fields := strings.Fields(raw)
	if len(fields) == 0 {
		return nil
	}

	tokens := make([]Token, 0, len(fields))
	for _, f := range fields {
		tokens = append(tokens, Token{Text: f, Kind: classify(f)})
	}
	return tokens
}

// classify matches day codes case-sensitively: "th" is a name fragment,
// "TH" is Thursday.
func classify(tok string) Kind {
	if _, ok := model.ParseDay(tok); ok {
		return TokenDay
	}
	if hourPattern.MatchString(tok) {
		return TokenHour
	}
	return TokenOther
}
