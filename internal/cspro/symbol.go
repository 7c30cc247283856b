package cspro

import (
	"strings"
	"unicode"
)

var accentMap = map[rune]rune{
	'À': 'A', 'Á': 'A', 'Â': 'A', 'Ã': 'A', 'Ä': 'A', 'Å': 'A',
	'Ç': 'C',
	'È': 'E', 'É': 'E', 'Ê': 'E', 'Ë': 'E',
	'Ì': 'I', 'Í': 'I', 'Î': 'I', 'Ï': 'I',
	'Ñ': 'N',
	'Ò': 'O', 'Ó': 'O', 'Ô': 'O', 'Õ': 'O', 'Ö': 'O',
	'Ù': 'U', 'Ú': 'U', 'Û': 'U', 'Ü': 'U',
}

// ToSymbol converts a free-form identifier to a valid CSPro symbol: uppercase,
// ASCII letters/digits/underscores, starting with a letter. Invalid runs
// collapse to a single underscore.
func ToSymbol(identifier string) string {
	text := strings.ToUpper(identifier)

	var b strings.Builder
	prevUnderscore := false
	for _, r := range text {
		if mapped, ok := accentMap[r]; ok {
			r = mapped
		}
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			b.WriteRune(r)
			prevUnderscore = false
		} else if !prevUnderscore {
			b.WriteRune('_')
			prevUnderscore = true
		}
	}

	result := b.String()
	for len(result) > 0 && !unicode.IsLetter(rune(result[0])) {
		result = result[1:]
	}
	result = strings.TrimRight(result, "_")
	if result == "" {
		return "NAME"
	}
	return result
}

// ToLabel turns a question or section id into a human friendly label,
// prefixed with its printed number when present.
func ToLabel(number, id string) string {
	words := strings.Fields(strings.ReplaceAll(id, "_", " "))
	for i, w := range words {
		r := []rune(strings.ToLower(w))
		r[0] = unicode.ToUpper(r[0])
		words[i] = string(r)
	}
	friendly := strings.Join(words, " ")
	if number != "" {
		return number + " " + friendly
	}
	return friendly
}

// ReplaceSuffix swaps old for new when s ends with old.
func ReplaceSuffix(s, old, new string) string {
	if strings.HasSuffix(s, old) {
		return strings.TrimSuffix(s, old) + new
	}
	return s
}
