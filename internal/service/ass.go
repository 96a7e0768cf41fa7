package service

import (
	"fmt"
	"strconv"
	"strings"

	"clipcap/internal/types"
	"clipcap/pkg/errors"
)

// Entrance animation tuning.
const (
	stretchXPeak     = 1.03
	stretchUpMinMs   = 0
	stretchUpMaxMs   = 150
	bigFontSizeMulti = 1.1

	bounceStart  = 0.95
	bouncePeak   = 1.03
	bounceEnd    = 1.0
	bounceUpMs   = 100
	bounceDownMs = 66
)

// ASS timestamps are quantized to hundredths of a second.
func msToCs(ms uint64) int64 { return int64(ms / 10) }

func csToAss(cs int64) string {
	total := cs
	if total < 0 {
		total = 0
	}
	h := total / 360000
	m := (total % 360000) / 6000
	s := (total % 6000) / 100
	c := total % 100
	return fmt.Sprintf("%01d:%02d:%02d.%02d", h, m, s, c)
}

type csWindow struct {
	start, end int64
}

// contiguousCsWindows maps each word to the window [its start, the next
// word's start); the last word keeps its own end. Windows never overlap and
// hold at least one centisecond.
func contiguousCsWindows(words []types.WordSpan) []csWindow {
	out := make([]csWindow, 0, len(words))
	for i, w := range words {
		s := msToCs(w.StartMs)
		var e int64
		if i+1 < len(words) {
			e = msToCs(words[i+1].StartMs)
		} else {
			e = msToCs(w.EndMs)
		}
		if e < s+1 {
			e = s + 1
		}
		out = append(out, csWindow{start: s, end: e})
	}
	return out
}

// stretchTagMs animates scale-x from the peak back to 100% while scale-y
// holds steady, over at most stretchUpMaxMs.
func stretchTagMs(durMs int64) string {
	up := durMs
	if up < stretchUpMinMs {
		up = stretchUpMinMs
	}
	if up > stretchUpMaxMs {
		up = stretchUpMaxMs
	}
	peakX := float64(stretchXPeak)
	px := int(peakX*100 + 0.5)
	return fmt.Sprintf(`{\fscx%d\fscy100\t(0,%d,\fscx100)}`, px, up)
}

// bounceTag is the discrete-mode entrance: 95% -> 103% -> 100% over two
// chained intervals.
func bounceTag() string {
	startF, peakF, endF := float64(bounceStart), float64(bouncePeak), float64(bounceEnd)
	start := int(startF*100 + 0.5)
	peak := int(peakF*100 + 0.5)
	end := int(endF*100 + 0.5)
	return fmt.Sprintf(`{\fscx%d\fscy%d\t(0,%d,\fscx%d\fscy%d)\t(%d,%d,\fscx%d\fscy%d)}`,
		start, start, bounceUpMs, peak, peak, bounceUpMs, bounceUpMs+bounceDownMs, end, end)
}

// bgrFromAABGRR drops the "&H" prefix and alpha byte, leaving BBGGRR for \1c.
func bgrFromAABGRR(aabgrr string) string {
	s := strings.TrimPrefix(aabgrr, "&H")
	if len(s) > 2 {
		return s[2:]
	}
	return s
}

func escapeAssText(t string) string {
	t = strings.ReplaceAll(t, `\`, `\\`)
	t = strings.ReplaceAll(t, "{", `\{`)
	t = strings.ReplaceAll(t, "}", `\}`)
	return t
}

// assembleColoredLine builds a single-line dialogue body: per-token color and
// size overrides following the entrance header. hi < 0 means no emphasis; a
// valid hi renders that token in the highlight color at 1.1x the base size.
func assembleColoredLine(tokens []string, hi int, whiteBGR, hiBGR, header string, fontSize int) string {
	white := fmt.Sprintf(`{\1c&H%s&\fs%d}`, whiteBGR, fontSize)
	var hiStyle string
	if hi >= 0 {
		big := int(float64(fontSize) * bigFontSizeMulti)
		hiStyle = fmt.Sprintf(`{\1c&H%s&\fs%d}`, hiBGR, big)
	} else {
		hiStyle = fmt.Sprintf(`{\1c&H%s&\fs%d}`, hiBGR, fontSize)
	}

	var b strings.Builder
	b.WriteString(header)
	for i, tok := range tokens {
		if hi >= 0 && i == hi {
			b.WriteString(hiStyle)
		} else {
			b.WriteString(white)
		}
		b.WriteString(escapeAssText(tok))
		if i+1 < len(tokens) {
			b.WriteByte(' ')
		}
	}
	return b.String()
}

// pushGlowAndStroke emits the layered discrete-mode events: an outline-only
// blurred white glow beneath (layer 0, only when enabled) and a sharp black
// stroke with visible fill above. textBody must carry only color, size and
// animation tags; border and shadow are set here per layer.
func pushGlowAndStroke(lines *strings.Builder, start, end, textBody string, x, y int,
	strokeW float64, enableGlow bool, glowW, glowBlur float64, glowAlphaHex string, alignment int) {
	common := fmt.Sprintf(`{\an%d\q2\pos(%d,%d)\be0}`, alignment, x, y)

	if enableGlow {
		glow := fmt.Sprintf(`%s{\1a&HFF\bord%.2f\3c&HFFFFFF&\3a%s\blur%.2f\shad0}`,
			common, glowW, glowAlphaHex, glowBlur)
		fmt.Fprintf(lines, "Dialogue: 0,%s,%s,TikTok,,0,0,0,,%s%s\n", start, end, glow, textBody)
	}

	layer := 0
	if enableGlow {
		layer = 1
	}
	strokeFill := fmt.Sprintf(`%s{\1a&H00\bord%.2f\3c&H000000&\3a&H00\blur0\shad0}`, common, strokeW)
	fmt.Fprintf(lines, "Dialogue: %d,%s,%s,TikTok,,0,0,0,,%s%s\n", layer, start, end, strokeFill, textBody)
}

// buildAssDocument renders the full subtitle document for one export canvas.
// Karaoke mode emits one event per contiguous word window with a stretch
// entrance; discrete mode emits one event per phrase segment with a bounce
// entrance and an optional emphasized token chosen by the highlight selector.
func buildAssDocument(w, h int, style *AssStyle, segments []types.CaptionSegment, karaoke, glowEffect bool) (string, error) {
	if len(segments) == 0 {
		return "", errors.New(errors.CodeEmptyTranscript, "no caption segments")
	}

	header := fmt.Sprintf(`[Script Info]
ScriptType: v4.00+
PlayResX: %d
PlayResY: %d
ScaledBorderAndShadow: yes

[V4+ Styles]
Format: Name,Fontname,Fontsize,PrimaryColour,SecondaryColour,OutlineColour,BackColour,Bold,Italic,Underline,StrikeOut,ScaleX,ScaleY,Spacing,Angle,BorderStyle,Outline,Shadow,Alignment,MarginL,MarginR,MarginV,Encoding
Style: TikTok,%s,%d,%s,%s,%s,&H64000000,0,0,0,0,100,100,0,0,1,%d,%d,%d,60,60,%d,1

[Events]
Format: Layer,Start,End,Style,Name,MarginL,MarginR,MarginV,Effect,Text
`,
		w, h,
		style.FontName, style.FontSize,
		style.Primary, style.Secondary, style.Outline,
		style.OutlineW, style.Shadow, style.Align, style.MarginV)

	var lines strings.Builder
	whiteBGR := bgrFromAABGRR(style.Primary)
	hiBGR := bgrFromAABGRR(style.Highlight)

	phrases := coalescePhrases(segments)

	yPos := h - style.MarginV
	if yPos < 0 {
		yPos = 0
	}
	if style.Align == 5 {
		yPos = h / 2
	}
	x := w / 2

	if karaoke {
		for _, ph := range phrases {
			tokensUpper := normalizeTokens(ph.Spans)
			lineSegs := splitPhraseForWidth(tokensUpper, ph.Spans, w, style.FontSize)

			for _, seg := range lineSegs {
				windows := contiguousCsWindows(seg.Spans)
				for i, win := range windows {
					durMs := (win.end - win.start) * 10
					blur := 2.0
					if glowEffect {
						blur = 6.0
					}

					if glowEffect {
						glowW := strconv.FormatFloat(float64(style.OutlineW)*2.0, 'f', -1, 64)
						glowHeader := fmt.Sprintf(`{\an%d\q2\pos(%d,%d)\1a&HFF\bord%s\3c&HFFFFFF&\3a&H80\blur%.1f\shad0}%s`,
							style.Align, x, yPos, glowW, 6.0, stretchTagMs(durMs))
						glowText := assembleColoredLine(seg.Tokens, i, whiteBGR, hiBGR, glowHeader, style.FontSize)
						fmt.Fprintf(&lines, "Dialogue: 0,%s,%s,TikTok,,0,0,0,,%s\n",
							csToAss(win.start), csToAss(win.end), glowText)

						mainHeader := fmt.Sprintf(`{\an%d\q2\pos(%d,%d)\bord%d\blur0\shad0}%s`,
							style.Align, x, yPos, style.OutlineW, stretchTagMs(durMs))
						mainText := assembleColoredLine(seg.Tokens, i, whiteBGR, hiBGR, mainHeader, style.FontSize)
						fmt.Fprintf(&lines, "Dialogue: 1,%s,%s,TikTok,,0,0,0,,%s\n",
							csToAss(win.start), csToAss(win.end), mainText)
					} else {
						plainHeader := fmt.Sprintf(`{\an%d\q2\pos(%d,%d)\bord%d\blur%.1f}%s`,
							style.Align, x, yPos, style.OutlineW, blur, stretchTagMs(durMs))
						text := assembleColoredLine(seg.Tokens, i, whiteBGR, hiBGR, plainHeader, style.FontSize)
						fmt.Fprintf(&lines, "Dialogue: 0,%s,%s,TikTok,,0,0,0,,%s\n",
							csToAss(win.start), csToAss(win.end), text)
					}
				}
			}
		}
	} else {
		hlState := NewHighlightState(segments)

		for pIdx, ph := range phrases {
			tokensUpper := normalizeTokens(ph.Spans)
			lineSegs := splitPhraseForWidth(tokensUpper, ph.Spans, w, style.FontSize)

			for _, seg := range lineSegs {
				tokensOrig := originalTokens(seg.Spans)
				start := csToAss(msToCs(seg.Spans[0].StartMs))
				end := csToAss(msToCs(seg.Spans[len(seg.Spans)-1].EndMs))

				hi := chooseHighlightIndex(tokensOrig, seg.Spans, pIdx, hlState)

				textBody := assembleColoredLine(seg.Tokens, hi, whiteBGR, hiBGR, bounceTag(), style.FontSize)

				pushGlowAndStroke(&lines, start, end, textBody, x, yPos,
					float64(style.OutlineW), glowEffect,
					float64(style.OutlineW)*2.0, 6.0, "&H80", style.Align)
			}
		}
	}

	return header + lines.String(), nil
}
