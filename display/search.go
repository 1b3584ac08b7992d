package display

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// Normalize remove acentos e converte para minúsculas, para buscas tolerantes.
func Normalize(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	out, _, err := transform.String(t, s)
	if err != nil {
		out = s
	}
	return strings.ToLower(out)
}

// MatchesSearch indica se term aparece em value, ignorando acentos e caixa.
// Um termo vazio casa com qualquer valor.
func MatchesSearch(value, term string) bool {
	return strings.Contains(Normalize(value), Normalize(term))
}

// MatchesAny é MatchesSearch aplicado a vários campos.
func MatchesAny(term string, values ...string) bool {
	for _, v := range values {
		if MatchesSearch(v, term) {
			return true
		}
	}
	return false
}
