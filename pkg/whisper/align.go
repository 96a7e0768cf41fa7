package whisper

import (
	"strings"

	"github.com/texttheater/golang-levenshtein/levenshtein"
	"go.uber.org/zap"

	"clipcap/internal/types"
	"clipcap/log"
)

const alignMinSimilarity = 0.6

// alignWordsToSegments attaches word-level spans to their parent segments by
// timestamp midpoint, then sanity-checks the grouping with a levenshtein
// similarity ratio between each segment's text and its grouped words.
// Segments that fail the check keep empty Words and fall back to even
// time-slicing downstream.
func alignWordsToSegments(segments []types.CaptionSegment, words []wordStamp) {
	wi := 0
	for si := range segments {
		seg := &segments[si]
		var grouped []types.WordSpan
		for wi < len(words) {
			startMs := uint64(words[wi].Start * 1000)
			endMs := uint64(words[wi].End * 1000)
			mid := (startMs + endMs) / 2
			if mid >= seg.EndMs {
				break
			}
			if mid >= seg.StartMs {
				text := strings.TrimSpace(words[wi].Word)
				if text != "" && endMs > startMs {
					grouped = append(grouped, types.WordSpan{StartMs: startMs, EndMs: endMs, Text: text})
				}
			}
			wi++
		}
		if len(grouped) == 0 {
			continue
		}

		var joined strings.Builder
		for i, w := range grouped {
			if i > 0 {
				joined.WriteByte(' ')
			}
			joined.WriteString(w.Text)
		}
		sim := textSimilarity(seg.Text, joined.String())
		if sim < alignMinSimilarity {
			log.GetLogger().Warn("alignWordsToSegments similarity too low, keeping segment timing",
				zap.String("segment", seg.Text),
				zap.Float64("similarity", sim))
			continue
		}
		seg.Words = grouped
	}
}

// textSimilarity is a normalized levenshtein ratio in [0,1], case and
// whitespace insensitive.
func textSimilarity(a, b string) float64 {
	na := normalizeForCompare(a)
	nb := normalizeForCompare(b)
	if na == "" && nb == "" {
		return 1.0
	}
	return levenshtein.RatioForStrings([]rune(na), []rune(nb), levenshtein.DefaultOptions)
}

func normalizeForCompare(s string) string {
	return strings.Join(strings.Fields(strings.ToLower(s)), " ")
}
