package groq

import (
	"strconv"
	"unicode"
	"unicode/utf8"
)

// Lexer tokenizes a GROQ query string. Positions are byte offsets.
type Lexer struct {
	input string
	pos   int
}

// NewLexer creates a new lexer for the input string
func NewLexer(input string) *Lexer {
	return &Lexer{input: input}
}

// Tokenize scans the entire input. The result always ends with exactly one
// EOF token whose span is empty at the final offset.
func Tokenize(input string) ([]SpannedToken, error) {
	lexer := NewLexer(input)
	var tokens []SpannedToken

	for {
		tok, err := lexer.Next()
		if err != nil {
			return nil, err
		}
		tokens = append(tokens, tok)
		if tok.Kind == TokEOF {
			break
		}
	}

	return tokens, nil
}

// Next returns the next token
func (l *Lexer) Next() (SpannedToken, error) {
	l.skipWhitespaceAndComments()

	start := l.pos
	if l.pos >= len(l.input) {
		return l.emit(Token{Kind: TokEOF}, start), nil
	}

	ch, size := utf8.DecodeRuneInString(l.input[l.pos:])

	// Single-character tokens
	if kind, ok := singleCharTokens[ch]; ok {
		l.pos++
		return l.emit(Token{Kind: kind}, start), nil
	}

	switch ch {
	case '.':
		if l.peek(1) == '.' && l.peek(2) == '.' {
			l.pos += 3
			return l.emit(Token{Kind: TokEllipsis}, start), nil
		}
		l.pos++
		return l.emit(Token{Kind: TokDot}, start), nil
	case '=':
		if l.peek(1) == '=' {
			l.pos += 2
			return l.emit(Token{Kind: TokEq}, start), nil
		}
		return SpannedToken{}, &LexError{Kind: LexUnexpectedChar, Char: ch, Offset: start}
	case '!':
		return l.oneOrTwo('=', TokNeq, TokNot, start), nil
	case '<':
		return l.oneOrTwo('=', TokLte, TokLt, start), nil
	case '>':
		return l.oneOrTwo('=', TokGte, TokGt, start), nil
	case '&':
		if l.peek(1) == '&' {
			l.pos += 2
			return l.emit(Token{Kind: TokAnd}, start), nil
		}
		return SpannedToken{}, &LexError{Kind: LexUnexpectedChar, Char: ch, Offset: start}
	case '|':
		// A lone '|' is the pipe operator, not an error.
		return l.oneOrTwo('|', TokOr, TokPipe, start), nil
	case '-':
		if l.peek(1) == '>' {
			l.pos += 2
			return l.emit(Token{Kind: TokArrow}, start), nil
		}
		if isDigit(l.peek(1)) {
			// The sign belongs to the literal; there is no unary minus.
			l.pos++
			return l.scanNumber(start)
		}
		return SpannedToken{}, &LexError{Kind: LexUnexpectedChar, Char: ch, Offset: start}
	case '"', '\'':
		return l.scanString(ch, start)
	}

	if ch < utf8.RuneSelf && isDigit(byte(ch)) {
		return l.scanNumber(start)
	}

	if isIdentStart(ch) {
		l.pos += size
		return l.scanIdent(start), nil
	}

	return SpannedToken{}, &LexError{Kind: LexUnexpectedChar, Char: ch, Offset: start}
}

var singleCharTokens = map[rune]TokenKind{
	'*': TokStar,
	',': TokComma,
	':': TokColon,
	'@': TokAt,
	'^': TokCaret,
	'(': TokLParen,
	')': TokRParen,
	'[': TokLBracket,
	']': TokRBracket,
	'{': TokLBrace,
	'}': TokRBrace,
}

func (l *Lexer) emit(tok Token, start int) SpannedToken {
	return SpannedToken{Token: tok, Span: Span{Start: start, End: l.pos}}
}

// oneOrTwo emits two if the next byte is second, otherwise one.
func (l *Lexer) oneOrTwo(second byte, two, one TokenKind, start int) SpannedToken {
	if l.peek(1) == second {
		l.pos += 2
		return l.emit(Token{Kind: two}, start)
	}
	l.pos++
	return l.emit(Token{Kind: one}, start)
}

func (l *Lexer) skipWhitespaceAndComments() {
	for l.pos < len(l.input) {
		ch, size := utf8.DecodeRuneInString(l.input[l.pos:])
		switch {
		case unicode.IsSpace(ch):
			l.pos += size
		case ch == '/' && l.peek(1) == '/':
			for l.pos < len(l.input) && l.input[l.pos] != '\n' {
				l.pos++
			}
		default:
			return
		}
	}
}

// peek returns the byte at pos+offset, or 0 past the end of input.
func (l *Lexer) peek(offset int) byte {
	pos := l.pos + offset
	if pos < len(l.input) {
		return l.input[pos]
	}
	return 0
}

// scanString keeps the raw text between the delimiters. A backslash skips
// the character after it; escapes are not translated.
func (l *Lexer) scanString(quote rune, start int) (SpannedToken, error) {
	l.pos++ // opening quote
	bodyStart := l.pos

	for l.pos < len(l.input) {
		ch, size := utf8.DecodeRuneInString(l.input[l.pos:])
		if ch == quote {
			body := l.input[bodyStart:l.pos]
			l.pos++ // closing quote
			return l.emit(Token{Kind: TokString, Text: body}, start), nil
		}
		if ch == '\\' {
			l.pos += size
			if l.pos >= len(l.input) {
				break
			}
			_, size = utf8.DecodeRuneInString(l.input[l.pos:])
		}
		l.pos += size
	}

	return SpannedToken{}, &LexError{Kind: LexUnterminatedString, Offset: start}
}

// scanNumber consumes a run of digits and dots starting at l.pos. A dot
// followed by another dot ends the run so that ranges like 1..5 keep their
// integer start. start is the token start, which includes any sign.
func (l *Lexer) scanNumber(start int) (SpannedToken, error) {
	isFloat := false
	for l.pos < len(l.input) && (isDigit(l.input[l.pos]) || l.input[l.pos] == '.') {
		if l.input[l.pos] == '.' {
			if l.peek(1) == '.' {
				break
			}
			isFloat = true
		}
		l.pos++
	}

	text := l.input[start:l.pos]
	if isFloat {
		f, err := strconv.ParseFloat(text, 64)
		if err != nil {
			return SpannedToken{}, &LexError{Kind: LexInvalidNumber, Text: text, Offset: start}
		}
		return l.emit(Token{Kind: TokFloat, Float: f}, start), nil
	}
	n, err := strconv.ParseInt(text, 10, 64)
	if err != nil {
		return SpannedToken{}, &LexError{Kind: LexInvalidNumber, Text: text, Offset: start}
	}
	return l.emit(Token{Kind: TokInteger, Int: n}, start), nil
}

// scanIdent finishes an identifier whose first rune has been consumed.
func (l *Lexer) scanIdent(start int) SpannedToken {
	for l.pos < len(l.input) {
		ch, size := utf8.DecodeRuneInString(l.input[l.pos:])
		if !isIdentChar(ch) {
			break
		}
		l.pos += size
	}

	word := l.input[start:l.pos]
	switch word {
	case "true":
		return l.emit(Token{Kind: TokBool, Bool: true}, start)
	case "false":
		return l.emit(Token{Kind: TokBool, Bool: false}, start)
	case "null":
		return l.emit(Token{Kind: TokNull}, start)
	}
	if kind, ok := keywords[word]; ok {
		return l.emit(Token{Kind: kind}, start)
	}
	return l.emit(Token{Kind: TokIdent, Text: word}, start)
}

func isDigit(b byte) bool {
	return b >= '0' && b <= '9'
}

func isIdentStart(ch rune) bool {
	return unicode.IsLetter(ch) || ch == '_' || ch == '$'
}

func isIdentChar(ch rune) bool {
	return unicode.IsLetter(ch) || unicode.IsDigit(ch) || ch == '_'
}
