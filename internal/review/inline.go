package review

import (
	"unicode"

	"github.com/pmezard/go-difflib/difflib"
)

// Lines less similar than this skip word-level emphasis entirely and render
// as wholly changed, the way large rewrites are easier to read unhighlighted.
const wordSimilarityThreshold = 0.35

// InlineSegment is a run of text within one side of a Modified row,
// emphasized when the word diff attributes it to the change. Concatenating
// a side's segments reproduces that side's display text.
type InlineSegment struct {
	Text       string
	Emphasized bool
}

func wordDiff(oldText, newText string) ([]InlineSegment, []InlineSegment) {
	oldWords := splitWords(oldText)
	newWords := splitWords(newText)
	matcher := difflib.NewMatcherWithJunk(oldWords, newWords, false, nil)
	if matcher.Ratio() < wordSimilarityThreshold {
		return nil, nil
	}

	var oldSegs, newSegs []InlineSegment
	oldEmphasized, newEmphasized := 0, 0
	for _, op := range matcher.GetOpCodes() {
		switch op.Tag {
		case 'e':
			for _, w := range oldWords[op.I1:op.I2] {
				oldSegs = append(oldSegs, InlineSegment{Text: w})
				newSegs = append(newSegs, InlineSegment{Text: w})
			}
		case 'r', 'd':
			for _, w := range oldWords[op.I1:op.I2] {
				oldEmphasized += len(w)
				oldSegs = append(oldSegs, InlineSegment{Text: w, Emphasized: true})
			}
			if op.Tag == 'r' {
				for _, w := range newWords[op.J1:op.J2] {
					newEmphasized += len(w)
					newSegs = append(newSegs, InlineSegment{Text: w, Emphasized: true})
				}
			}
		case 'i':
			for _, w := range newWords[op.J1:op.J2] {
				newEmphasized += len(w)
				newSegs = append(newSegs, InlineSegment{Text: w, Emphasized: true})
			}
		}
	}

	// When nearly the whole of both lines lights up, the emphasis carries
	// no signal; drop it and let the row render as a plain change.
	if emphasisRatio(oldSegs, oldEmphasized) > 0.80 && emphasisRatio(newSegs, newEmphasized) > 0.80 {
		return nil, nil
	}
	return oldSegs, newSegs
}

func emphasisRatio(segs []InlineSegment, emphasized int) float64 {
	total := 0
	for _, s := range segs {
		total += len(s.Text)
	}
	if total == 0 {
		return 1
	}
	return float64(emphasized) / float64(total)
}

// splitWords cuts a line into alternating runs of whitespace and
// non-whitespace. Both kinds are kept so joined tokens round-trip.
func splitWords(s string) []string {
	if s == "" {
		return nil
	}
	var words []string
	start := 0
	inSpace := false
	for i, r := range s {
		isSpace := unicode.IsSpace(r)
		if i == 0 {
			inSpace = isSpace
			continue
		}
		if isSpace != inSpace {
			words = append(words, s[start:i])
			start = i
			inSpace = isSpace
		}
	}
	return append(words, s[start:])
}
