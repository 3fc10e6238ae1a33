// Package segment splits text into words with byte offsets and estimates
// how long each word takes to speak.
package segment

import (
	"strings"
	"time"
	"unicode"

	"github.com/rivo/uniseg"
)

// Word is the half-open byte range [Start, End) of one word. Weight is
// its relative speaking time.
type Word struct {
	Start  int
	End    int
	Weight float64
}

// Text returns the word within text.
func (w Word) Text(text string) string {
	return text[w.Start:w.End]
}

// Words splits text into words following the Unicode word boundary rules.
// Whitespace and punctuation are not words; punctuation lengthens the pause
// after the preceding word.
func Words(text string) []Word {
	var words []Word

	state := -1
	offset := 0
	rest := text
	for len(rest) > 0 {
		var seg string
		seg, rest, state = uniseg.FirstWordInString(rest, state)

		switch {
		case isWord(seg):
			words = append(words, Word{
				Start:  offset,
				End:    offset + len(seg),
				Weight: weight(seg),
			})
		case len(words) > 0:
			words[len(words)-1].Weight += pause(seg)
		}
		offset += len(seg)
	}

	return words
}

// Count returns the number of words in text.
func Count(text string) int {
	return len(Words(text))
}

func isWord(seg string) bool {
	for _, r := range seg {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			return true
		}
	}
	return false
}

// weight grows with word length; numbers are read slower.
func weight(word string) float64 {
	w := 1.0
	if n := uniseg.GraphemeClusterCount(word); n > 6 {
		w += float64(n-6) * 0.1
	}
	if strings.IndexFunc(word, unicode.IsDigit) >= 0 {
		w += 0.2
	}
	return w
}

func pause(seg string) float64 {
	switch {
	case strings.ContainsAny(seg, ".!?"):
		return 0.6
	case strings.ContainsAny(seg, ",;:-()"):
		return 0.3
	default:
		return 0
	}
}

// Timeline spreads total over words in proportion to their weights and
// returns the time at which each word ends.
func Timeline(words []Word, total time.Duration) []time.Duration {
	if len(words) == 0 {
		return nil
	}

	var sum float64
	for _, w := range words {
		sum += w.Weight
	}

	ends := make([]time.Duration, len(words))
	var acc float64
	for i, w := range words {
		acc += w.Weight
		ends[i] = time.Duration(float64(total) * acc / sum)
	}
	ends[len(ends)-1] = total
	return ends
}

// At returns the index of the word being spoken at position, given the
// end times from Timeline.
func At(ends []time.Duration, position time.Duration) int {
	for i, end := range ends {
		if end > position {
			return i
		}
	}
	return len(ends) - 1
}

// Duration estimates how long text takes to speak at wordsPerMinute.
func Duration(text string, wordsPerMinute int) time.Duration {
	if wordsPerMinute <= 0 {
		wordsPerMinute = 150
	}
	var units float64
	for _, w := range Words(text) {
		units += w.Weight
	}
	return time.Duration(units * float64(time.Minute) / float64(wordsPerMinute))
}
