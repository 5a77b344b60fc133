package dbchanges_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	. "github.com/AntonStoeckl/dbchanges-go/dbchanges" //nolint:revive
)

func Test_LetterCase_Convert(t *testing.T) {
	assert.Equal(t, "Books", NewLetterCase(NoConversion, StrictCase).Convert("Books"))
	assert.Equal(t, "BOOKS", NewLetterCase(UpperCase, StrictCase).Convert("Books"))
	assert.Equal(t, "books", NewLetterCase(LowerCase, StrictCase).Convert("Books"))
	assert.Equal(t, "STRASSE", NewLetterCase(UpperCase, StrictCase).Convert("straße"))
}

func Test_LetterCase_IsEqual(t *testing.T) {
	tests := []struct {
		name       string
		letterCase LetterCase
		a          string
		b          string
		expected   bool
	}{
		{name: "ignore case", letterCase: DefaultLetterCase, a: "Title", b: "TITLE", expected: true},
		{name: "ignore case unicode", letterCase: DefaultLetterCase, a: "Straße", b: "STRASSE", expected: true},
		{name: "strict case", letterCase: NewLetterCase(NoConversion, StrictCase), a: "Title", b: "TITLE", expected: false},
		{name: "strict case after conversion", letterCase: NewLetterCase(LowerCase, StrictCase), a: "Title", b: "TITLE", expected: true},
		{name: "different names", letterCase: DefaultLetterCase, a: "title", b: "name", expected: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, tt.letterCase.IsEqual(tt.a, tt.b))
		})
	}
}

func Test_LetterCase_IndexOf(t *testing.T) {
	names := []string{"id", "Title", "author"}

	assert.Equal(t, 1, DefaultLetterCase.IndexOf(names, "TITLE"))
	assert.Equal(t, -1, NewLetterCase(NoConversion, StrictCase).IndexOf(names, "TITLE"))
	assert.True(t, DefaultLetterCase.Contains(names, "Author"))
	assert.False(t, DefaultLetterCase.Contains(names, "isbn"))
}

func Test_LetterCase_Zero_Value_Is_The_Default(t *testing.T) {
	var lc LetterCase

	assert.Equal(t, DefaultLetterCase, lc)
	assert.Equal(t, NoConversion, lc.Conversion())
	assert.Equal(t, IgnoreCase, lc.Comparison())
}
