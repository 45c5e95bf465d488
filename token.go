package toon

import "fmt"

// TokenType represents the type of a lexical token in a TOON document.
type TokenType int

const (
	TokColon TokenType = iota
	TokComma
	TokPipe
	TokLBracket
	TokRBracket
	TokLBrace
	TokRBrace
	TokHyphen
	TokHtab

	TokIdentifier
	TokString
	TokNumber
	TokBoolean
	TokNull

	TokNewline
	TokIndent
	TokDedent
	TokSameIndent

	TokEOF
	TokError
)

var tokenNames = [...]string{
	TokColon:      "COLON",
	TokComma:      "COMMA",
	TokPipe:       "PIPE",
	TokLBracket:   "LBRACKET",
	TokRBracket:   "RBRACKET",
	TokLBrace:     "LBRACE",
	TokRBrace:     "RBRACE",
	TokHyphen:     "HYPHEN",
	TokHtab:       "HTAB",
	TokIdentifier: "IDENTIFIER",
	TokString:     "STRING",
	TokNumber:     "NUMBER",
	TokBoolean:    "BOOLEAN",
	TokNull:       "NULL",
	TokNewline:    "NEWLINE",
	TokIndent:     "INDENT",
	TokDedent:     "DEDENT",
	TokSameIndent: "SAME_INDENT",
	TokEOF:        "EOF",
	TokError:      "ERROR",
}

func (t TokenType) String() string {
	if int(t) >= 0 && int(t) < len(tokenNames) && tokenNames[t] != "" {
		return tokenNames[t]
	}
	return "UNKNOWN"
}

// IsValue reports whether a token of this type can stand as a scalar value.
func (t TokenType) IsValue() bool {
	switch t {
	case TokIdentifier, TokString, TokNumber, TokBoolean, TokNull:
		return true
	default:
		return false
	}
}

// IsDelimiter reports whether this token type separates array elements.
func (t TokenType) IsDelimiter() bool {
	switch t {
	case TokComma, TokPipe, TokHtab:
		return true
	default:
		return false
	}
}

// IsIndentation reports whether this token type is one of the tokens
// produced by the newline/indent handler.
func (t TokenType) IsIndentation() bool {
	switch t {
	case TokNewline, TokIndent, TokDedent, TokSameIndent:
		return true
	default:
		return false
	}
}

// IsStructural reports whether this token type is one of the fixed
// single-character grammar tokens.
func (t TokenType) IsStructural() bool {
	switch t {
	case TokColon, TokComma, TokPipe, TokLBracket, TokRBracket, TokLBrace, TokRBrace, TokHyphen:
		return true
	default:
		return false
	}
}

// Token is a single lexical unit produced by the Lexer.
type Token struct {
	Type   TokenType
	Value  string // raw decoded value for STRING/NUMBER/IDENTIFIER/BOOLEAN
	Line   int    // 1-based
	Column int    // 1-based, column where the token starts
}

func (t Token) String() string {
	switch t.Type {
	case TokString, TokNumber, TokIdentifier, TokBoolean:
		return fmt.Sprintf("%s(%q)", t.Type, t.Value)
	default:
		return t.Type.String()
	}
}
