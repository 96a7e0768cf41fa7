package service

import (
	"strings"

	"clipcap/internal/types"
)

// Phrase break heuristics: hard punctuation on the previous token,
// an inter-word gap above phraseGapMs, or phraseMaxWords already held.
const (
	phraseMaxWords = 3
	phraseGapMs    = 350
)

var hardBreakSuffixes = []string{".", "!", "?"}

// flattenWordSpans collects every non-empty word span across all segments in
// order. A segment with text but no word timing is evenly time-sliced so its
// text is never dropped: each synthetic span gets the floor-divided share of
// the segment duration and the last span absorbs the remainder.
func flattenWordSpans(segments []types.CaptionSegment) []types.WordSpan {
	var all []types.WordSpan
	for _, seg := range segments {
		for _, w := range seg.Words {
			text := strings.TrimSpace(w.Text)
			if text == "" {
				continue
			}
			all = append(all, types.WordSpan{StartMs: w.StartMs, EndMs: w.EndMs, Text: text})
		}
		if len(seg.Words) == 0 && strings.TrimSpace(seg.Text) != "" {
			toks := strings.Fields(seg.Text)
			total := seg.EndMs - seg.StartMs
			if total < 1 {
				total = 1
			}
			per := total / uint64(len(toks))
			t := seg.StartMs
			for i, tok := range toks {
				start := t
				end := t + per
				if end > seg.EndMs {
					end = seg.EndMs
				}
				if i == len(toks)-1 {
					end = seg.EndMs
				}
				t = end
				all = append(all, types.WordSpan{StartMs: start, EndMs: end, Text: tok})
			}
		}
	}
	return all
}

// coalescePhrases groups the transcript's word spans into short displayable
// phrases. Every non-empty word lands in exactly one phrase, in time order;
// no empty phrase is ever emitted.
func coalescePhrases(segments []types.CaptionSegment) []types.Phrase {
	all := flattenWordSpans(segments)

	var out []types.Phrase
	var cur []types.WordSpan
	flush := func() {
		if len(cur) == 0 {
			return
		}
		tokens := make([]string, len(cur))
		for i, s := range cur {
			tokens[i] = s.Text
		}
		out = append(out, types.Phrase{
			StartMs: cur[0].StartMs,
			EndMs:   cur[len(cur)-1].EndMs,
			Tokens:  tokens,
			Spans:   cur,
		})
	}

	for _, w := range all {
		if len(cur) == 0 {
			cur = append(cur, w)
			continue
		}
		prev := cur[len(cur)-1]
		var gap uint64
		if w.StartMs > prev.EndMs {
			gap = w.StartMs - prev.EndMs
		}
		if hasHardBreak(prev.Text) || gap > phraseGapMs || len(cur) >= phraseMaxWords {
			flush()
			cur = []types.WordSpan{w}
		} else {
			cur = append(cur, w)
		}
	}
	flush()
	return out
}

func hasHardBreak(token string) bool {
	for _, suffix := range hardBreakSuffixes {
		if strings.HasSuffix(token, suffix) {
			return true
		}
	}
	return false
}

// normalizeTokens uppercases the phrase's tokens for display, keeping
// punctuation.
func normalizeTokens(spans []types.WordSpan) []string {
	out := make([]string, 0, len(spans))
	for _, w := range spans {
		t := strings.TrimSpace(w.Text)
		if t == "" {
			continue
		}
		out = append(out, strings.ToUpper(t))
	}
	return out
}

func originalTokens(spans []types.WordSpan) []string {
	out := make([]string, 0, len(spans))
	for _, w := range spans {
		t := strings.TrimSpace(w.Text)
		if t == "" {
			continue
		}
		out = append(out, t)
	}
	return out
}

// lineSegment is a width-fitting single-line slice of a phrase.
type lineSegment struct {
	Tokens []string
	Spans  []types.WordSpan
}

// splitPhraseForWidth splits a phrase into single-line segments that fit the
// canvas. Character width is estimated at 0.56 of the font size and 85% of
// the frame width is usable.
func splitPhraseForWidth(tokens []string, spans []types.WordSpan, frameW, fontPx int) []lineSegment {
	estCharWidth := float64(fontPx) * 0.56
	if estCharWidth < 1.0 {
		estCharWidth = 1.0
	}
	maxChars := int(float64(frameW) * 0.85 / estCharWidth)

	var segments []lineSegment
	var curTokens []string
	var curSpans []types.WordSpan
	curLen := 0

	for i, token := range tokens {
		tokenLen := len(token)
		if curLen > 0 {
			tokenLen++ // joining space
		}

		if curLen > 0 && curLen+tokenLen > maxChars {
			segments = append(segments, lineSegment{Tokens: curTokens, Spans: curSpans})
			curTokens = nil
			curSpans = nil
			curLen = 0
			tokenLen = len(token)
		}

		curTokens = append(curTokens, token)
		curSpans = append(curSpans, spans[i])
		curLen += tokenLen
	}

	if len(curTokens) > 0 {
		segments = append(segments, lineSegment{Tokens: curTokens, Spans: curSpans})
	}

	if len(segments) == 0 {
		segments = append(segments, lineSegment{Tokens: tokens, Spans: spans})
	}

	return segments
}
