package service

import (
	"fmt"
	"math"
	"strings"
)

// AssStyle holds the resolved style values for the generated subtitle
// document. Color fields are in ASS &HAABBGGRR order.
type AssStyle struct {
	FontName  string
	FontSize  int
	Primary   string
	Secondary string
	Outline   string
	OutlineW  int
	Shadow    int
	Align     int // 1..9 grid; 2 = bottom-center, 5 = middle-center
	MarginV   int // pixels from bottom
	Highlight string
}

// Reference canvas is the 9:16 portrait frame at 1080p height. Font size
// scales with the square root of the area ratio so captions keep the same
// relative size on every export format.
const (
	refFrameWidth   = 608.0
	refFrameHeight  = 1080.0
	minFontSize     = 18
	captionYPctTop  = 88.0
	defaultOutlineW = 4
)

func calculateProportionalFontSize(frameW, frameH int) int {
	refArea := refFrameWidth * refFrameHeight
	refFontSize := refFrameHeight * 0.06
	areaRatio := float64(frameW) * float64(frameH) / refArea
	size := refFontSize * math.Sqrt(areaRatio)
	if size < minFontSize {
		size = minFontSize
	}
	return int(size)
}

func pctToMarginV(frameH int, yPctFromTop float64) int {
	y := int(math.Round(float64(frameH) * yPctFromTop / 100.0))
	margin := frameH - y
	if margin < 0 {
		margin = 0
	}
	return margin
}

// hexToAssColor converts "#rrggbb" to ASS "&H00BBGGRR". Hex digits are
// validated and emitted uppercase; invalid input falls back to opaque white.
func hexToAssColor(hex string) string {
	hex = strings.TrimPrefix(hex, "#")
	if len(hex) != 6 || !isHex(hex) {
		return "&H00FFFFFF"
	}
	r, g, b := hex[0:2], hex[2:4], hex[4:6]
	return fmt.Sprintf("&H00%s%s%s", strings.ToUpper(b), strings.ToUpper(g), strings.ToUpper(r))
}

func isHex(s string) bool {
	for _, c := range s {
		if !((c >= '0' && c <= '9') || (c >= 'a' && c <= 'f') || (c >= 'A' && c <= 'F')) {
			return false
		}
	}
	return true
}

func defaultAssStyle(frameW, frameH int, fontName, textColor, highlightColor, outlineColor, position string) *AssStyle {
	primary := "&H00FFFFFF"
	if textColor != "" {
		primary = hexToAssColor(textColor)
	}
	highlight := "&H0000FFFE"
	if highlightColor != "" {
		highlight = hexToAssColor(highlightColor)
	}
	outline := "&H00000000"
	if outlineColor != "" {
		outline = hexToAssColor(outlineColor)
	}
	if fontName == "" {
		fontName = "Montserrat Black"
	}

	align, marginV := 2, pctToMarginV(frameH, captionYPctTop)
	if position == "center" {
		align, marginV = 5, 0
	}

	return &AssStyle{
		FontName:  fontName,
		FontSize:  calculateProportionalFontSize(frameW, frameH),
		Primary:   primary,
		Secondary: primary,
		Outline:   outline,
		OutlineW:  defaultOutlineW,
		Shadow:    0,
		Align:     align,
		MarginV:   marginV,
		Highlight: highlight,
	}
}
