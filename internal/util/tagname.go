// Package util provides common text helpers.
package util

import (
	"strings"
	"unicode/utf8"

	"golang.org/x/text/cases"
	"golang.org/x/text/unicode/norm"
)

// NormalizeTagName converts user input to the canonical tag name.
// The canonical name is the tag's identity, so "Dessert", " dessert " and
// "DESSERT" all name one tag.
//
// Rules:
//  1. Unicode NFC normalisation
//  2. Trim and collapse runs of whitespace to one space
//  3. Full Unicode case folding
//
// Examples:
//
//	"  Slow   Cooker " → "slow cooker"
//	"Straße"           → "strasse"
//	"ÉTÉ"              → "été"
func NormalizeTagName(input string) string {
	return Fold(strings.Join(strings.Fields(input), " "))
}

// Fold applies NFC normalisation and full Unicode case folding, so "ÄIDIN"
// and "äidin" compare equal. Safe for concurrent use.
func Fold(s string) string {
	// Casers carry state, so one is made per call.
	return cases.Fold().String(norm.NFC.String(s))
}

// NormalizeTagNames normalises every name, dropping blanks and duplicates
// while keeping first-seen order.
func NormalizeTagNames(inputs []string) []string {
	out := make([]string, 0, len(inputs))
	seen := make(map[string]bool, len(inputs))
	for _, in := range inputs {
		name := NormalizeTagName(in)
		if name == "" || seen[name] {
			continue
		}
		seen[name] = true
		out = append(out, name)
	}
	return out
}

// SplitTagList splits a comma separated tag field, as typed into a form, and
// normalises the result.
func SplitTagList(field string) []string {
	return NormalizeTagNames(strings.Split(field, ","))
}

// RuneLen returns the number of characters in s.
func RuneLen(s string) int {
	return utf8.RuneCountInString(s)
}

// Truncate cuts s to at most limit characters without splitting a rune.
func Truncate(s string, limit int) string {
	if limit <= 0 {
		return ""
	}
	if RuneLen(s) <= limit {
		return s
	}
	i := 0
	for pos := range s {
		if i == limit {
			return s[:pos]
		}
		i++
	}
	return s
}
