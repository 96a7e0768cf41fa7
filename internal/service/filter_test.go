package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"clipcap/internal/types"
	apperrors "clipcap/pkg/errors"
)

func TestParseTargetAR(t *testing.T) {
	ar, err := parseTargetAR("9:16")
	require.NoError(t, err)
	assert.InDelta(t, 0.5625, ar, 1e-9)

	ar, err = parseTargetAR("16:9")
	require.NoError(t, err)
	assert.InDelta(t, 16.0/9.0, ar, 1e-9)

	for _, bad := range []string{"916", "0:16", "9:0", "a:b", "", "-1:1"} {
		_, err := parseTargetAR(bad)
		require.Error(t, err, "format %q", bad)
		assert.True(t, apperrors.Is(err, apperrors.CodeBadExportFormat))
	}
}

func TestCanvasNoUpscale(t *testing.T) {
	// portrait crop of a landscape source pins height and derives width
	w, h := canvasNoUpscale(1920, 1080, 9.0/16.0)
	assert.Equal(t, 608, w)
	assert.Equal(t, 1080, h)

	// matching aspect ratio keeps the source resolution
	w, h = canvasNoUpscale(1920, 1080, 16.0/9.0)
	assert.Equal(t, 1920, w)
	assert.Equal(t, 1080, h)

	// square inside landscape
	w, h = canvasNoUpscale(1920, 1080, 1.0)
	assert.Equal(t, 1080, w)
	assert.Equal(t, 1080, h)

	// odd dimensions are rounded down to even
	w, h = canvasNoUpscale(1001, 1001, 1.0)
	assert.Equal(t, 1000, w)
	assert.Equal(t, 1000, h)

	// never exceeds the source in either dimension
	w, h = canvasNoUpscale(640, 360, 9.0/16.0)
	assert.LessOrEqual(t, w, 640)
	assert.LessOrEqual(t, h, 360)
}

func TestBuildFitpadFilter(t *testing.T) {
	got := buildFitpadFilter(608, 1080, "/tmp/a.ass", EncoderSoftware)
	assert.Equal(t,
		"scale=608:1080:force_original_aspect_ratio=decrease,"+
			"pad=608:1080:(ow-iw)/2:(oh-ih)/2,"+
			`ass='/tmp/a.ass',format=yuv420p`,
		got)

	got = buildFitpadFilter(1080, 1080, "", EncoderNvenc)
	assert.NotContains(t, got, "ass=")
	assert.Contains(t, got, "format=nv12")
}

func TestEscapeFilterPath(t *testing.T) {
	assert.Equal(t, `C\:\\tmp\\a.ass`, escapeFilterPath(`C:\tmp\a.ass`))
	assert.Equal(t, `it\'s.ass`, escapeFilterPath(`it's.ass`))
	assert.Equal(t, "/tmp/a.ass", escapeFilterPath("/tmp/a.ass"))
}

func TestDetermineAudioCodec(t *testing.T) {
	codec, extra := determineAudioCodec(nil)
	assert.Equal(t, "aac", codec)
	assert.Empty(t, extra)

	codec, _ = determineAudioCodec(&types.ProbeResult{HasAudio: false})
	assert.Equal(t, "aac", codec)

	codec, _ = determineAudioCodec(&types.ProbeResult{HasAudio: true, AudioCodec: "aac"})
	assert.Equal(t, "copy", codec)

	codec, _ = determineAudioCodec(&types.ProbeResult{HasAudio: true, AudioCodec: "mp3"})
	assert.Equal(t, "aac", codec)
}

func TestGopSizeFor(t *testing.T) {
	assert.Equal(t, 48, gopSizeFor(nil))
	assert.Equal(t, 48, gopSizeFor(&types.ProbeResult{}))
	assert.Equal(t, 48, gopSizeFor(&types.ProbeResult{Fps: 23.976}))
	assert.Equal(t, 60, gopSizeFor(&types.ProbeResult{Fps: 30}))
	assert.Equal(t, 120, gopSizeFor(&types.ProbeResult{Fps: 59.94}))
}
