// Package naming maps parsed declaration names onto canonical, collision-safe
// target identifier paths.
package naming

import (
	"strings"
	"unicode"
)

// SplitWords splits an identifier into word tokens at separator, case and
// digit boundaries.
// Examples:
//   - "QDirIterator" -> ["Q", "Dir", "Iterator"]
//   - "Qt3DWindow"   -> ["Qt", "3D", "Window"]
//   - "myFunc1"      -> ["my", "Func", "1"]
//   - "other_var2"   -> ["other", "var", "2"]
func SplitWords(s string) []string {
	if s == "" {
		return nil
	}

	var words []string

	var current strings.Builder

	runes := []rune(s)
	for i, r := range runes {
		if isSeparator(r) {
			if current.Len() > 0 {
				words = append(words, current.String())
				current.Reset()
			}

			continue
		}

		if i > 0 && startsNewWord(runes, i) && current.Len() > 0 {
			words = append(words, current.String())
			current.Reset()
		}

		current.WriteRune(r)
	}

	if current.Len() > 0 {
		words = append(words, current.String())
	}

	return words
}

func isSeparator(r rune) bool {
	return r == '_' || r == '-' || r == ' '
}

// startsNewWord reports whether a new word begins at position i.
func startsNewWord(runes []rune, i int) bool {
	r := runes[i]
	prev := runes[i-1]

	if isSeparator(prev) {
		return false // already handled as a boundary
	}

	// Letter to digit transition starts a digit-led word ("Qt3DWindow" -> "3D").
	if unicode.IsDigit(r) && !unicode.IsDigit(prev) {
		return true
	}

	if !unicode.IsUpper(r) {
		return false
	}

	// Lowercase or digit to uppercase.
	if !unicode.IsUpper(prev) && !unicode.IsDigit(prev) {
		return true
	}

	// End of an acronym: "XMLParser" splits before "Parser". An uppercase
	// letter after a digit stays in the digit-led word ("3D").
	if unicode.IsUpper(prev) && i+1 < len(runes) && unicode.IsLower(runes[i+1]) {
		return true
	}

	return false
}

// isAllDigits reports whether the word consists of digits only.
func isAllDigits(word string) bool {
	for _, r := range word {
		if !unicode.IsDigit(r) {
			return false
		}
	}

	return word != ""
}

// ToSnake joins words into a lower-case identifier. A digit-only word is
// appended to its predecessor without a separator, so "myFunc1" stays
// "my_func1" while "Qt3DWindow" becomes "qt_3d_window".
func ToSnake(words []string) string {
	var b strings.Builder

	for i, w := range words {
		if i > 0 && !isAllDigits(w) {
			b.WriteByte('_')
		}

		b.WriteString(strings.ToLower(w))
	}

	return b.String()
}

// ToClass joins words into a type-case identifier: each word gets an upper
// first rune, the rest is preserved.
func ToClass(words []string) string {
	var b strings.Builder

	for _, w := range words {
		b.WriteString(titleWord(w))
	}

	return b.String()
}

func titleWord(w string) string {
	runes := []rune(w)
	if len(runes) == 0 {
		return w
	}

	runes[0] = unicode.ToUpper(runes[0])

	return string(runes)
}
