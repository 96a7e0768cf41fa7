package service

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"clipcap/internal/types"
	apperrors "clipcap/pkg/errors"
)

func TestMsToCsQuantization(t *testing.T) {
	assert.Equal(t, int64(123), msToCs(1234))
	assert.Equal(t, int64(0), msToCs(9))
	assert.Equal(t, int64(1), msToCs(10))
}

func TestCsToAssFormat(t *testing.T) {
	assert.Equal(t, "0:00:01.23", csToAss(123))
	assert.Equal(t, "0:00:00.00", csToAss(0))
	assert.Equal(t, "0:00:00.00", csToAss(-5))
	assert.Equal(t, "1:01:01.01", csToAss(360000+6000+100+1))
	assert.Equal(t, "0:59:59.99", csToAss(359999))
}

func TestContiguousCsWindows(t *testing.T) {
	words := []types.WordSpan{
		span(0, 450, "a"),
		span(500, 900, "b"),
		span(900, 1300, "c"),
	}

	windows := contiguousCsWindows(words)

	require.Len(t, windows, 3)
	// each window ends where the next word starts
	assert.Equal(t, csWindow{start: 0, end: 50}, windows[0])
	assert.Equal(t, csWindow{start: 50, end: 90}, windows[1])
	// last word keeps its own end
	assert.Equal(t, csWindow{start: 90, end: 130}, windows[2])
}

func TestContiguousCsWindows_MinimumOneCs(t *testing.T) {
	words := []types.WordSpan{
		span(100, 104, "quick"),
		span(104, 108, "one"),
	}
	windows := contiguousCsWindows(words)
	require.Len(t, windows, 2)
	assert.Equal(t, windows[0].start+1, windows[0].end)
	assert.Equal(t, windows[1].start+1, windows[1].end)
}

func TestStretchTag(t *testing.T) {
	assert.Equal(t, `{\fscx103\fscy100\t(0,150,\fscx100)}`, stretchTagMs(400))
	assert.Equal(t, `{\fscx103\fscy100\t(0,80,\fscx100)}`, stretchTagMs(80))
	assert.Equal(t, `{\fscx103\fscy100\t(0,0,\fscx100)}`, stretchTagMs(0))
}

func TestBounceTag(t *testing.T) {
	assert.Equal(t, `{\fscx95\fscy95\t(0,100,\fscx103\fscy103)\t(100,166,\fscx100\fscy100)}`, bounceTag())
}

func TestEscapeAssText(t *testing.T) {
	assert.Equal(t, `\\n \{x\}`, escapeAssText(`\n {x}`))
	assert.Equal(t, "plain", escapeAssText("plain"))
}

func TestBgrFromAABGRR(t *testing.T) {
	assert.Equal(t, "FFFFFF", bgrFromAABGRR("&H00FFFFFF"))
	assert.Equal(t, "00FFFE", bgrFromAABGRR("&H0000FFFE"))
}

func TestAssembleColoredLine(t *testing.T) {
	got := assembleColoredLine([]string{"BIG", "WIN"}, 1, "FFFFFF", "00FFFE", "{hdr}", 60)
	assert.Equal(t, `{hdr}{\1c&HFFFFFF&\fs60}BIG {\1c&H00FFFE&\fs66}WIN`, got)

	// no highlight keeps every token at the base size
	got = assembleColoredLine([]string{"BIG", "WIN"}, -1, "FFFFFF", "00FFFE", "{hdr}", 60)
	assert.NotContains(t, got, "fs66")
}

func testSegments() []types.CaptionSegment {
	return []types.CaptionSegment{{
		StartMs: 0, EndMs: 1200, Text: "hello world",
		Words: []types.WordSpan{
			span(0, 500, "hello"),
			span(500, 1200, "world"),
		},
	}}
}

func TestBuildAssDocument_Header(t *testing.T) {
	style := defaultAssStyle(608, 1080, "", "", "", "", "")
	doc, err := buildAssDocument(608, 1080, style, testSegments(), false, false)
	require.NoError(t, err)

	assert.Contains(t, doc, "PlayResX: 608")
	assert.Contains(t, doc, "PlayResY: 1080")
	assert.Contains(t, doc, "ScaledBorderAndShadow: yes")
	assert.Contains(t, doc, "Style: TikTok,Montserrat Black,64,&H00FFFFFF,")
	assert.Contains(t, doc, "Format: Layer,Start,End,Style,Name,MarginL,MarginR,MarginV,Effect,Text")
}

func TestBuildAssDocument_EmptySegments(t *testing.T) {
	style := defaultAssStyle(608, 1080, "", "", "", "", "")
	_, err := buildAssDocument(608, 1080, style, nil, true, false)
	require.Error(t, err)
	assert.True(t, apperrors.Is(err, apperrors.CodeEmptyTranscript))
}

func TestBuildAssDocument_KaraokeWindows(t *testing.T) {
	style := defaultAssStyle(608, 1080, "", "", "", "", "")
	doc, err := buildAssDocument(608, 1080, style, testSegments(), true, false)
	require.NoError(t, err)

	// one event per word window, abutting at the second word's start
	assert.Contains(t, doc, "Dialogue: 0,0:00:00.00,0:00:00.50,TikTok,,0,0,0,,")
	assert.Contains(t, doc, "Dialogue: 0,0:00:00.50,0:00:01.20,TikTok,,0,0,0,,")
	assert.Contains(t, doc, "HELLO")
	assert.Contains(t, doc, "WORLD")
	assert.Contains(t, doc, `\t(0,150,\fscx100)`)
	// no glow requested, single layer only
	assert.NotContains(t, doc, `\3c&HFFFFFF&`)
}

func TestBuildAssDocument_KaraokeGlowLayers(t *testing.T) {
	style := defaultAssStyle(608, 1080, "", "", "", "", "")
	doc, err := buildAssDocument(608, 1080, style, testSegments(), true, true)
	require.NoError(t, err)

	glowLines := 0
	mainLines := 0
	for _, line := range strings.Split(doc, "\n") {
		if strings.HasPrefix(line, "Dialogue: 0,") {
			glowLines++
		}
		if strings.HasPrefix(line, "Dialogue: 1,") {
			mainLines++
		}
	}
	// two windows, each rendered as glow underlay plus main layer
	assert.Equal(t, 2, glowLines)
	assert.Equal(t, 2, mainLines)
	// border has no trailing zeros, blur keeps one decimal
	assert.Contains(t, doc, `\1a&HFF\bord8\3c&HFFFFFF&\3a&H80\blur6.0\shad0`)
	assert.NotContains(t, doc, `\bord8.0\3c`)
}

func TestBuildAssDocument_DiscreteMode(t *testing.T) {
	style := defaultAssStyle(608, 1080, "", "", "", "", "")
	doc, err := buildAssDocument(608, 1080, style, testSegments(), false, false)
	require.NoError(t, err)

	// one event for the whole phrase, first word start to last word end
	assert.Contains(t, doc, "Dialogue: 0,0:00:00.00,0:00:01.20,TikTok,,0,0,0,,")
	assert.Contains(t, doc, `\fscx95\fscy95`)
	// stroke layer carries the solid fill
	assert.Contains(t, doc, `\1a&H00\bord4.00\3c&H000000&\3a&H00\blur0\shad0`)
}

func TestBuildAssDocument_DiscreteGlowAddsUnderlay(t *testing.T) {
	style := defaultAssStyle(608, 1080, "", "", "", "", "")
	doc, err := buildAssDocument(608, 1080, style, testSegments(), false, true)
	require.NoError(t, err)

	assert.Contains(t, doc, `\1a&HFF\bord8.00\3c&HFFFFFF&\3a&H80\blur6.00\shad0`)
	// glow underlay on layer 0, stroke/fill promoted to layer 1
	assert.Contains(t, doc, "Dialogue: 1,0:00:00.00,0:00:01.20,")
}

func TestBuildAssDocument_CenterPosition(t *testing.T) {
	style := defaultAssStyle(608, 1080, "", "", "", "", "center")
	doc, err := buildAssDocument(608, 1080, style, testSegments(), false, false)
	require.NoError(t, err)

	assert.Contains(t, doc, `\an5`)
	assert.Contains(t, doc, `\pos(304,540)`)
}
