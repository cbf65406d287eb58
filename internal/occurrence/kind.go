package occurrence

import "fmt"

// Kind is the coarse syntax classification attached to an occurrence.
// The set is closed; the core only compares kinds for equality.
type Kind int

const (
	KindUnspecified Kind = iota
	KindComment
	KindKeyword
	KindIdentifier
	KindIdentifierFunction
	KindIdentifierType
	KindOperator
	KindPunctuationBracket
	KindPunctuationDelimiter
	KindStringLiteral
	KindNumericLiteral
	KindBooleanLiteral
)

var kindNames = map[Kind]string{
	KindUnspecified:          "unspecified",
	KindComment:              "comment",
	KindKeyword:              "keyword",
	KindIdentifier:           "identifier",
	KindIdentifierFunction:   "identifier_function",
	KindIdentifierType:       "identifier_type",
	KindOperator:             "operator",
	KindPunctuationBracket:   "punctuation_bracket",
	KindPunctuationDelimiter: "punctuation_delimiter",
	KindStringLiteral:        "string_literal",
	KindNumericLiteral:       "numeric_literal",
	KindBooleanLiteral:       "boolean_literal",
}

func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return fmt.Sprintf("kind(%d)", int(k))
}

func (k Kind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

// ParseKind resolves a kind by its string name, as used in mapping
// table files.
func ParseKind(name string) (Kind, bool) {
	for k, n := range kindNames {
		if n == name {
			return k, true
		}
	}
	return KindUnspecified, false
}
