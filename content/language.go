package content

import "regexp"

// languageMarkers maps a language code to word-boundary regexes for a
// handful of very common words. Scoring counts how many distinct markers
// appear in the text; ties go to the earlier entry, so the table order is
// part of the behavior.
var languageMarkers = []struct {
	code    string
	markers []*regexp.Regexp
}{
	{"en", compileMarkers("the", "and", "is", "was", "with", "this", "that", "have")},
	{"es", compileMarkers("el", "los", "las", "una", "que", "para", "como", "pero")},
	{"fr", compileMarkers("le", "les", "des", "est", "dans", "avec", "pour", "une")},
	{"de", compileMarkers("der", "die", "das", "und", "ist", "nicht", "auch", "mit")},
}

func compileMarkers(words ...string) []*regexp.Regexp {
	markers := make([]*regexp.Regexp, len(words))
	for i, w := range words {
		markers[i] = regexp.MustCompile(`(?i)\b` + w + `\b`)
	}

	return markers
}

// DetectLanguage guesses the language of the text by counting marker-word
// hits for English, Spanish, French and German. It returns a two-letter
// code, or an empty string when no marker matches. This is a coarse
// heuristic meant for short runs of clearly recognizable text, not a
// general language identifier: anything else comes back empty or wrong.
func DetectLanguage(text string) string {
	best := ""
	bestScore := 0

	for _, lang := range languageMarkers {
		score := 0
		for _, marker := range lang.markers {
			if marker.MatchString(text) {
				score++
			}
		}

		if score > bestScore {
			best = lang.code
			bestScore = score
		}
	}

	return best
}
