package groq

import (
	"fmt"
	"strconv"
)

// TokenKind is the type of token
type TokenKind int

const (
	TokString TokenKind = iota
	TokInteger
	TokFloat
	TokBool
	TokNull
	TokIdent

	TokEq  // ==
	TokNeq // !=
	TokLt  // <
	TokGt  // >
	TokLte // <=
	TokGte // >=
	TokAnd // &&
	TokOr  // ||
	TokNot // !

	TokMatch
	TokIn
	TokAsc
	TokDesc

	TokStar     // *
	TokDot      // .
	TokComma    // ,
	TokColon    // :
	TokPipe     // |
	TokArrow    // ->
	TokAt       // @
	TokCaret    // ^
	TokEllipsis // ...

	TokLParen   // (
	TokRParen   // )
	TokLBracket // [
	TokRBracket // ]
	TokLBrace   // {
	TokRBrace   // }

	TokEOF
)

var tokenKindNames = [...]string{
	TokString:   "String",
	TokInteger:  "Integer",
	TokFloat:    "Float",
	TokBool:     "Bool",
	TokNull:     "Null",
	TokIdent:    "Ident",
	TokEq:       "Eq",
	TokNeq:      "Neq",
	TokLt:       "Lt",
	TokGt:       "Gt",
	TokLte:      "Lte",
	TokGte:      "Gte",
	TokAnd:      "And",
	TokOr:       "Or",
	TokNot:      "Not",
	TokMatch:    "Match",
	TokIn:       "In",
	TokAsc:      "Asc",
	TokDesc:     "Desc",
	TokStar:     "Star",
	TokDot:      "Dot",
	TokComma:    "Comma",
	TokColon:    "Colon",
	TokPipe:     "Pipe",
	TokArrow:    "Arrow",
	TokAt:       "At",
	TokCaret:    "Caret",
	TokEllipsis: "Ellipsis",
	TokLParen:   "LParen",
	TokRParen:   "RParen",
	TokLBracket: "LBracket",
	TokRBracket: "RBracket",
	TokLBrace:   "LBrace",
	TokRBrace:   "RBrace",
	TokEOF:      "EOF",
}

func (k TokenKind) String() string {
	if k >= 0 && int(k) < len(tokenKindNames) && tokenKindNames[k] != "" {
		return tokenKindNames[k]
	}
	return "Unknown"
}

// keywords maps reserved words to their token kinds. true/false/null are
// handled separately because they carry a literal value.
var keywords = map[string]TokenKind{
	"match": TokMatch,
	"in":    TokIn,
	"asc":   TokAsc,
	"desc":  TokDesc,
}

// Token is one lexical unit. Only the field matching Kind is meaningful:
// Text for String and Ident, Int for Integer, Float for Float, Bool for Bool.
type Token struct {
	Kind  TokenKind
	Text  string
	Int   int64
	Float float64
	Bool  bool
}

// String renders the token for diagnostics.
func (t Token) String() string {
	switch t.Kind {
	case TokString:
		return strconv.Quote(t.Text)
	case TokInteger:
		return strconv.FormatInt(t.Int, 10)
	case TokFloat:
		return strconv.FormatFloat(t.Float, 'g', -1, 64)
	case TokBool:
		return strconv.FormatBool(t.Bool)
	case TokNull:
		return "null"
	case TokIdent:
		return t.Text
	case TokStar:
		return "*"
	case TokDot:
		return "."
	case TokEOF:
		return "EOF"
	default:
		return t.Kind.String()
	}
}

// GoString is used by %#v in test failures.
func (t Token) GoString() string {
	switch t.Kind {
	case TokString, TokIdent, TokInteger, TokFloat, TokBool:
		return fmt.Sprintf("%s(%s)", t.Kind, t)
	default:
		return t.Kind.String()
	}
}

// Span is a half-open [Start,End) byte range into the source text.
type Span struct {
	Start int
	End   int
}

// SpannedToken is a token with its source position.
type SpannedToken struct {
	Token
	Span Span
}
