package whisper

import (
	"strings"

	openai "github.com/sashabaranov/go-openai"

	"clipcap/internal/types"
)

type wordStamp struct {
	Word  string
	Start float64 // seconds
	End   float64
}

// toCaptionSegments turns a verbose-json transcription into caption segments.
// splitByWords emits one segment per (merged) word; otherwise segment-level
// timing is kept with word spans aligned into their parent segments.
func toCaptionSegments(resp *openai.AudioResponse, splitByWords bool) []types.CaptionSegment {
	maxDurationMs := uint64(resp.Duration * 1000)

	words := make([]wordStamp, 0, len(resp.Words))
	for _, w := range resp.Words {
		words = append(words, wordStamp{Word: w.Word, Start: w.Start, End: w.End})
	}

	switch {
	case splitByWords && len(words) > 0:
		merged := mergeNumbersAndCurrency(words, maxDurationMs)
		out := make([]types.CaptionSegment, 0, len(merged))
		for _, m := range merged {
			if m.EndMs <= m.StartMs {
				continue
			}
			out = append(out, types.CaptionSegment{StartMs: m.StartMs, EndMs: m.EndMs, Text: m.Text})
		}
		return out

	case splitByWords && len(resp.Segments) > 0:
		return splitSegmentsByChars(resp, maxDurationMs)

	case len(resp.Segments) > 0:
		segments := segmentLevel(resp, maxDurationMs)
		if len(words) > 0 {
			alignWordsToSegments(segments, words)
		}
		return segments

	default:
		if strings.TrimSpace(resp.Text) == "" {
			return nil
		}
		endMs := maxDurationMs
		if endMs == 0 {
			endMs = 60000
		}
		return []types.CaptionSegment{{StartMs: 0, EndMs: endMs, Text: resp.Text}}
	}
}

func segmentLevel(resp *openai.AudioResponse, maxDurationMs uint64) []types.CaptionSegment {
	var out []types.CaptionSegment
	for _, seg := range resp.Segments {
		startMs := uint64(seg.Start * 1000)
		endMs := uint64(seg.End * 1000)
		if maxDurationMs > 0 {
			if startMs > maxDurationMs {
				continue
			}
			if endMs > maxDurationMs {
				endMs = maxDurationMs
			}
		}
		// very short segments carry no usable display time
		if endMs <= startMs || endMs-startMs < 50 {
			continue
		}
		out = append(out, types.CaptionSegment{StartMs: startMs, EndMs: endMs, Text: seg.Text})
	}
	return out
}

// splitSegmentsByChars synthesizes word timing when the provider returned no
// word granularity: each word in a segment gets a share of the segment's
// duration weighted by character count, floored at 100ms, and the last word
// absorbs whatever remains.
func splitSegmentsByChars(resp *openai.AudioResponse, maxDurationMs uint64) []types.CaptionSegment {
	var out []types.CaptionSegment
	for _, seg := range resp.Segments {
		startMs := uint64(seg.Start * 1000)
		endMs := uint64(seg.End * 1000)
		if maxDurationMs > 0 {
			if startMs > maxDurationMs {
				continue
			}
			if endMs > maxDurationMs {
				endMs = maxDurationMs
			}
		}
		if endMs <= startMs {
			continue
		}
		tokens := strings.Fields(seg.Text)
		if len(tokens) == 0 {
			continue
		}

		totalChars := 0
		for _, t := range tokens {
			totalChars += len(t)
		}
		baseTime := float64(endMs - startMs)

		cumulative := 0.0
		for i, tok := range tokens {
			wordStart := startMs + uint64(cumulative)
			charRatio := 1.0 / float64(len(tokens))
			if totalChars > 0 {
				charRatio = float64(len(tok)) / float64(totalChars)
			}
			dur := baseTime * charRatio
			if dur < 100 {
				dur = 100
			}
			cumulative += dur

			var wordEnd uint64
			if i == len(tokens)-1 {
				wordEnd = endMs
			} else {
				wordEnd = wordStart + uint64(dur)
				if wordEnd > endMs {
					wordEnd = endMs
				}
			}
			if wordEnd <= wordStart {
				continue
			}
			out = append(out, types.CaptionSegment{StartMs: wordStart, EndMs: wordEnd, Text: tok})
		}
	}
	return out
}
