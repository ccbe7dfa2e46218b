package util

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizeTagName(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{"lowercase", "DESSERT", "dessert"},
		{"already normalised", "dessert", "dessert"},
		{"trim whitespace", "  vegan  ", "vegan"},
		{"collapse inner whitespace", "slow \t  cooker", "slow cooker"},
		{"full case folding", "Straße", "strasse"},
		{"accents kept", "ÉTÉ", "été"},
		{"decomposed input composes", "e\u0301te\u0301", "\u00e9t\u00e9"},
		{"empty", "   ", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, NormalizeTagName(tt.input))
		})
	}
}

func TestNormalizeTagName_Idempotent(t *testing.T) {
	for _, in := range []string{"Slow Cooker", "Straße", "  MIXED case  "} {
		once := NormalizeTagName(in)
		assert.Equal(t, once, NormalizeTagName(once))
	}
}

func TestNormalizeTagNames_Dedupes(t *testing.T) {
	got := NormalizeTagNames([]string{"Dessert", "fruit", " dessert", "", "FRUIT", "baking"})
	assert.Equal(t, []string{"dessert", "fruit", "baking"}, got)

	assert.Empty(t, NormalizeTagNames(nil))
}

func TestSplitTagList(t *testing.T) {
	assert.Equal(t, []string{"dessert", "quick meals"}, SplitTagList("Dessert, Quick  Meals,,dessert"))
	assert.Empty(t, SplitTagList(""))
}

func TestTruncate(t *testing.T) {
	assert.Equal(t, "abc", Truncate("abcdef", 3))
	assert.Equal(t, "héé", Truncate("hééllo", 3))
	assert.Equal(t, "short", Truncate("short", 10))
	assert.Equal(t, "", Truncate("abc", 0))
	assert.Equal(t, 3, RuneLen("héé"))
}
