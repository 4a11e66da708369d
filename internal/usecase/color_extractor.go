package usecase

import "strings"

// NoColorFound is the sentinel returned when no vocabulary color occurs in
// the description. It is distinct from every valid color token.
const NoColorFound = "SEM COR"

// colorVocabulary is the fixed, ordered color vocabulary. Extraction is
// first-match-in-this-order, not longest match, so earlier entries win when
// a description mentions more than one color.
var colorVocabulary = []string{
	"PRETO",
	"BRANCO",
	"VERMELHO",
	"AZUL",
	"VERDE",
	"AMARELO",
	"MARROM",
	"CINZA",
	"ROXO",
	"ROSA",
	"LARANJA",
	"BEGE",
	"DOURADO",
	"PRATA",
}

// ExtractColor returns the first vocabulary color occurring as a substring of
// the description, scanning the vocabulary in its declared order. Returns
// NoColorFound when none occurs. Deterministic and side-effect free.
func ExtractColor(description string) string {
	normalized := strings.ToUpper(strings.TrimSpace(description))
	if normalized == "" {
		return NoColorFound
	}

	for _, color := range colorVocabulary {
		if strings.Contains(normalized, color) {
			return color
		}
	}

	return NoColorFound
}
