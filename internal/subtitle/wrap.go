package subtitle

import (
	"strings"
	"unicode/utf8"
)

// standard subtitle line length
const DefaultMaxCharsPerLine = 42

// breaks text that exceeds maxChars onto two lines at the word boundary
// closest to the middle. existing line breaks are collapsed first
func WrapText(text string, maxChars int) string {
	if maxChars <= 0 {
		maxChars = DefaultMaxCharsPerLine
	}

	words := strings.Fields(text)
	joined := strings.Join(words, " ")
	runeCount := utf8.RuneCountInString(joined)

	if runeCount <= maxChars || len(words) < 2 {
		return joined
	}

	middle := runeCount / 2
	bestSplit := 0
	bestDiff := runeCount

	currentLen := 0
	for i, word := range words[:len(words)-1] {
		currentLen += utf8.RuneCountInString(word)
		if i > 0 {
			currentLen++ // space
		}

		diff := currentLen - middle
		if diff < 0 {
			diff = -diff
		}
		if diff < bestDiff {
			bestDiff = diff
			bestSplit = i + 1
		}
	}

	return strings.Join(words[:bestSplit], " ") + "\n" + strings.Join(words[bestSplit:], " ")
}
