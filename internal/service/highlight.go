package service

import (
	"math"
	"sort"
	"strings"
	"unicode"

	"clipcap/internal/types"
)

// Highlight tuning for discrete-emphasis mode.
const (
	hlBaseThreshold  = 2.5
	hlHysteresis     = 0.7  // make back-to-back highlights harder
	hlMinGapMs       = 1200 // min time between highlights
	hlMaxRatio       = 0.35 // cap ~35% of phrases highlighted
	hlRecentWindowMs = 5000 // window for repetition penalty
)

var stopwords = map[string]struct{}{
	"a": {}, "an": {}, "the": {}, "to": {}, "of": {}, "in": {}, "on": {}, "at": {},
	"by": {}, "for": {}, "with": {}, "and": {}, "or": {}, "but": {},
	"i": {}, "you": {}, "he": {}, "she": {}, "we": {}, "they": {}, "be": {}, "is": {},
	"are": {}, "was": {}, "were": {}, "have": {}, "has": {}, "had": {},
	"do": {}, "does": {}, "did": {}, "will": {}, "would": {}, "can": {}, "could": {},
	"should": {}, "shall": {}, "may": {}, "might": {}, "must": {},
	"gonna": {}, "wanna": {}, "like": {}, "just": {}, "really": {}, "very": {},
	"actually": {}, "literally": {}, "kinda": {}, "sorta": {},
	"um": {}, "uh": {}, "know": {},
}

var powerWords = map[string]struct{}{
	"not": {}, "no": {}, "never": {}, "without": {}, "dont": {}, "can't": {},
	"cant": {}, "wont": {}, "why": {}, "must": {}, "need": {},
	"free": {}, "new": {}, "massive": {}, "insane": {}, "huge": {}, "proof": {},
	"secret": {}, "banned": {},
}

func buildGlobalTF(segments []types.CaptionSegment) map[string]int {
	tf := make(map[string]int)
	for _, s := range segments {
		for _, w := range s.Words {
			t := strings.TrimSpace(w.Text)
			if t == "" {
				continue
			}
			tf[strings.ToLower(t)]++
		}
	}
	return tf
}

func hasDigitOrCurrency(s string) bool {
	for _, c := range s {
		if (c >= '0' && c <= '9') || c == '$' || c == '%' || c == '#' {
			return true
		}
	}
	return false
}

func looksProperNoun(token string, idxInPhrase int) bool {
	if idxInPhrase == 0 {
		return false
	}
	runes := []rune(token)
	if len(runes) == 0 {
		return false
	}
	return unicode.IsUpper(runes[0]) && !isAllUpper(token)
}

func isAllUpper(token string) bool {
	for _, c := range token {
		if !unicode.IsUpper(c) {
			return false
		}
	}
	return true
}

func endsWithContentSuffix(token string) bool {
	l := strings.ToLower(token)
	return strings.HasSuffix(l, "ing") || strings.HasSuffix(l, "ed") || strings.HasSuffix(l, "ly")
}

func meanStd(vals []float64) (float64, float64) {
	if len(vals) == 0 {
		return 0, 0
	}
	var sum float64
	for _, x := range vals {
		sum += x
	}
	m := sum / float64(len(vals))
	var v float64
	for _, x := range vals {
		v += (x - m) * (x - m)
	}
	v /= float64(len(vals))
	return m, math.Sqrt(v)
}

type recentWord struct {
	token  string // lowercased
	timeMs uint64
}

// HighlightState carries the rarity controls across phrases so emphasis stays
// sparse: a global term-frequency table, a sliding window of recently shown
// words, and counters for the highlight ratio cap.
type HighlightState struct {
	tf           map[string]int
	recent       []recentWord
	lastHlMs     int64 // -1 when nothing highlighted yet
	lastHlPhrase int   // -1 when nothing highlighted yet
	phrasesDone  int
	phrasesHl    int
}

func NewHighlightState(segments []types.CaptionSegment) *HighlightState {
	return &HighlightState{
		tf:           buildGlobalTF(segments),
		lastHlMs:     -1,
		lastHlPhrase: -1,
	}
}

func (st *HighlightState) pushRecentPhrase(tokens []string, endMs uint64) {
	for len(st.recent) > 0 {
		if endMs >= st.recent[0].timeMs && endMs-st.recent[0].timeMs > hlRecentWindowMs {
			st.recent = st.recent[1:]
		} else {
			break
		}
	}
	for _, t := range tokens {
		st.recent = append(st.recent, recentWord{token: strings.ToLower(t), timeMs: endMs})
	}
}

func (st *HighlightState) recentCount(tokenLower string, nowMs uint64) int {
	n := 0
	for _, r := range st.recent {
		if r.token == tokenLower && nowMs >= r.timeMs && nowMs-r.timeMs <= hlRecentWindowMs {
			n++
		}
	}
	return n
}

// chooseHighlightIndex scores each candidate token of the phrase segment and
// returns the index of the one to emphasize, or -1 when none clears the
// rarity-adjusted threshold. State advances on every call, highlight or not.
func chooseHighlightIndex(tokensOrig []string, spans []types.WordSpan, phraseIdx int, st *HighlightState) int {
	threshold := hlBaseThreshold
	var phraseStart, phraseEnd uint64
	if len(spans) > 0 {
		phraseStart = spans[0].StartMs
		phraseEnd = spans[len(spans)-1].EndMs
	}

	if st.lastHlMs >= 0 && phraseStart >= uint64(st.lastHlMs) && phraseStart-uint64(st.lastHlMs) < hlMinGapMs {
		threshold += 1.0
	}
	if st.lastHlMs >= 0 && phraseStart < uint64(st.lastHlMs) {
		threshold += 1.0
	}
	if st.lastHlPhrase >= 0 && st.lastHlPhrase+1 == phraseIdx {
		threshold += hlHysteresis
	}
	if st.phrasesDone > 0 && float64(st.phrasesHl)/float64(st.phrasesDone) >= hlMaxRatio {
		threshold += 0.8
	}

	var cand []int
	for i, tok := range tokensOrig {
		t := strings.TrimSpace(tok)
		if t == "" {
			continue
		}
		if _, stop := stopwords[strings.ToLower(t)]; stop {
			continue
		}
		if len(t) >= 3 || hasDigitOrCurrency(t) {
			cand = append(cand, i)
		}
	}

	if len(cand) == 0 {
		st.phrasesDone++
		st.pushRecentPhrase(tokensOrig, phraseEnd)
		return -1
	}

	lens := make([]float64, len(tokensOrig))
	for i, t := range tokensOrig {
		lens[i] = float64(len(t))
	}
	lensSorted := append([]float64(nil), lens...)
	sort.Float64s(lensSorted)
	medLen := lensSorted[len(lensSorted)/2]

	durs := make([]float64, len(spans))
	for i, w := range spans {
		durs[i] = float64(w.EndMs - w.StartMs)
	}
	meanDur, stdDur := meanStd(durs)

	tfOf := func(i int) int {
		if n, ok := st.tf[strings.ToLower(tokensOrig[i])]; ok {
			return n
		}
		return math.MaxInt32
	}

	bestIdx := -1
	bestScore := 0.0
	for _, i := range cand {
		t := strings.TrimSpace(tokensOrig[i])
		low := strings.ToLower(t)
		s := 0.0

		if hasDigitOrCurrency(t) {
			s += 3.0
		}
		if n, ok := st.tf[low]; !ok || n <= 2 {
			s += 2.0
		}
		if looksProperNoun(t, i) {
			s += 1.5
		}
		if _, ok := powerWords[low]; ok {
			s += 1.5
		}
		if endsWithContentSuffix(t) {
			s += 1.0
		}
		if float64(len(t)) > medLen {
			s += 1.0
		}

		if stdDur > 0 {
			z := (durs[i] - meanDur) / stdDur
			if z > 0 {
				s += 0.5 * z // only reward longer-than-avg
			}
		}

		// pause / phrase-final emphasis
		if i+1 == len(spans) {
			s += 0.5
		} else if spans[i+1].StartMs >= spans[i].EndMs && spans[i+1].StartMs-spans[i].EndMs >= 250 {
			s += 0.5
		}

		// penalties
		if st.recentCount(low, phraseEnd) > 3 {
			s -= 2.0
		}
		if isAllUpper(t) && !allTokensUpper(tokensOrig) {
			s -= 1.0
		}

		if s >= threshold {
			if bestIdx < 0 ||
				s > bestScore ||
				(s == bestScore && i > bestIdx) ||
				(s == bestScore && durs[i] > durs[bestIdx]) ||
				(s == bestScore && tfOf(i) < tfOf(bestIdx)) {
				bestIdx = i
				bestScore = s
			}
		}
	}

	st.phrasesDone++
	st.pushRecentPhrase(tokensOrig, phraseEnd)

	if bestIdx >= 0 {
		st.phrasesHl++
		st.lastHlMs = int64(phraseEnd)
		st.lastHlPhrase = phraseIdx
	}
	return bestIdx
}

func allTokensUpper(tokens []string) bool {
	for _, t := range tokens {
		if !isAllUpper(t) {
			return false
		}
	}
	return true
}
