package lexer

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mustNext(t *testing.T, l *Lexer) Token {
	t.Helper()
	tok, err := l.Next()
	require.NoError(t, err, "unexpected lexer error")
	return tok
}

func TestSimpleIdentThenEnd(t *testing.T) {
	l := New("abc", nil)
	tok := mustNext(t, l)
	assert.Equal(t, KindIdent, tok.Kind)
	assert.Equal(t, "abc", tok.Literal)

	tok = mustNext(t, l)
	assert.Equal(t, KindEnd, tok.Kind)
}

func TestWhitespaceAndSymbolsNotMandatoryBetweenTokens(t *testing.T) {
	l := New("  (abc) (.5 2.3) .do", []string{"(", ")", ".do"})
	tests := []Token{
		{Kind: KindWS},
		{Kind: KindSymbol, Literal: "("},
		{Kind: KindIdent, Literal: "abc"},
		{Kind: KindSymbol, Literal: ")"},
		{Kind: KindWS},
		{Kind: KindSymbol, Literal: "("},
		{Kind: KindNumber, Literal: ".5", Num: 0.5},
		{Kind: KindWS},
		{Kind: KindNumber, Literal: "2.3", Num: 2.3},
		{Kind: KindSymbol, Literal: ")"},
		{Kind: KindWS},
		{Kind: KindSymbol, Literal: ".do"},
		{Kind: KindEnd},
	}

	for i, want := range tests {
		got := mustNext(t, l)
		assert.Equalf(t, want.Kind, got.Kind, "token %d kind", i)
		assert.Equalf(t, want.Literal, got.Literal, "token %d literal", i)
		if want.Kind == KindNumber {
			assert.Equalf(t, want.Num, got.Num, "token %d num", i)
		}
	}
}

func TestStringsWithQuoteDoublingNotSupported(t *testing.T) {
	l := New("  'a b''c d,  e' 'fz' ''", nil)

	tests := []struct {
		name string
		skip bool
		want string
	}{
		{name: "leading whitespace", skip: true},
		{name: "doubled-quote string", want: "a b"},
		{name: "comma-containing string", want: "c d,  e"},
		{name: "whitespace between strings", skip: true},
		{name: "simple string", want: "fz"},
		{name: "whitespace before empty string", skip: true},
		{name: "empty string", want: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tok := mustNext(t, l)
			if tt.skip {
				assert.Equal(t, KindWS, tok.Kind)
				return
			}
			assert.Equal(t, tt.want, tok.Literal)
		})
	}
}

func TestNumberErrorDoubleDot(t *testing.T) {
	l := New("1.2.3", nil)
	_, err := l.Next()
	require.Error(t, err)
	assert.Equal(t, "invalid float literal", err.Error())
}

func TestSymbolErrorAfterDot(t *testing.T) {
	l := New(".do", []string{"(", ")"})
	_, err := l.Next()
	require.Error(t, err)
	assert.Equal(t, "not a symbol .", err.Error())
}

func TestSymbolErrorOther(t *testing.T) {
	l := New("-", []string{"+"})
	_, err := l.Next()
	require.Error(t, err)
	assert.Equal(t, "not a symbol -", err.Error())
}

func TestDotDigitIsNumber(t *testing.T) {
	l := New(".5", nil)
	tok := mustNext(t, l)
	assert.Equal(t, KindNumber, tok.Kind)
	assert.Equal(t, 0.5, tok.Num)
}
