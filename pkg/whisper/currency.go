package whisper

import "strings"

type mergedToken struct {
	Text    string
	StartMs uint64
	EndMs   uint64
}

func isDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, c := range s {
		if c < '0' || c > '9' {
			return false
		}
	}
	return true
}

// formatWithThousands inserts a comma every three digits from the right.
func formatWithThousands(digits string) string {
	var b strings.Builder
	n := len(digits)
	for i, c := range digits {
		if i > 0 && (n-i)%3 == 0 {
			b.WriteByte(',')
		}
		b.WriteRune(c)
	}
	return b.String()
}

// mergeNumbersAndCurrency glues tokenized amounts back together: a "$" prefix
// followed by digit groups of up to three, further three-digit groups, and an
// optional "."+decimal tail become one token ("$", "225", "000" -> "$225,000").
// Plain multi-group numbers merge the same way without the symbol. A leading
// group longer than three digits falls through untouched.
func mergeNumbersAndCurrency(words []wordStamp, maxDurationMs uint64) []mergedToken {
	var out []mergedToken
	capMs := func(ms uint64) uint64 {
		if maxDurationMs > 0 && ms > maxDurationMs {
			return maxDurationMs
		}
		return ms
	}

	i := 0
	for i < len(words) {
		cur := strings.TrimSpace(words[i].Word)
		startMs := uint64(words[i].Start * 1000)
		endMs := uint64(words[i].End * 1000)
		if maxDurationMs > 0 && startMs > maxDurationMs {
			break
		}
		endMs = capMs(endMs)

		if cur == "$" && i+1 < len(words) {
			next := strings.TrimSpace(words[i+1].Word)
			if len(next) <= 3 && isDigits(next) {
				j := i + 1
				groups := []string{next}
				endMs = capMs(uint64(words[j].End * 1000))
				j++

				for j < len(words) {
					t := strings.TrimSpace(words[j].Word)
					if len(t) == 3 && isDigits(t) {
						groups = append(groups, t)
						endMs = capMs(uint64(words[j].End * 1000))
						j++
					} else {
						break
					}
				}

				if j+1 < len(words) &&
					strings.TrimSpace(words[j].Word) == "." &&
					isDigits(strings.TrimSpace(words[j+1].Word)) &&
					len(strings.TrimSpace(words[j+1].Word)) <= 2 {
					decimal := strings.TrimSpace(words[j+1].Word)
					endMs = capMs(uint64(words[j+1].End * 1000))
					out = append(out, mergedToken{
						Text:    "$" + formatWithThousands(strings.Join(groups, "")) + "." + decimal,
						StartMs: startMs,
						EndMs:   endMs,
					})
					i = j + 2
					continue
				}

				out = append(out, mergedToken{
					Text:    "$" + formatWithThousands(strings.Join(groups, "")),
					StartMs: startMs,
					EndMs:   endMs,
				})
				i = j
				continue
			}
		}

		if len(cur) <= 3 && isDigits(cur) {
			j := i + 1
			groups := []string{cur}

			for j < len(words) {
				t := strings.TrimSpace(words[j].Word)
				if len(t) == 3 && isDigits(t) {
					groups = append(groups, t)
					endMs = capMs(uint64(words[j].End * 1000))
					j++
				} else {
					break
				}
			}

			if j+1 < len(words) &&
				strings.TrimSpace(words[j].Word) == "." &&
				isDigits(strings.TrimSpace(words[j+1].Word)) &&
				len(strings.TrimSpace(words[j+1].Word)) <= 2 {
				decimal := strings.TrimSpace(words[j+1].Word)
				endMs = capMs(uint64(words[j+1].End * 1000))
				out = append(out, mergedToken{
					Text:    formatWithThousands(strings.Join(groups, "")) + "." + decimal,
					StartMs: startMs,
					EndMs:   endMs,
				})
				i = j + 2
				continue
			}

			if len(groups) > 1 {
				out = append(out, mergedToken{
					Text:    formatWithThousands(strings.Join(groups, "")),
					StartMs: startMs,
					EndMs:   endMs,
				})
				i = j
				continue
			}
		}

		if endMs > startMs {
			out = append(out, mergedToken{Text: cur, StartMs: startMs, EndMs: endMs})
		}
		i++
	}

	return out
}
