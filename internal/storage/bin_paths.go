package storage

// Resolved external binary paths, published by the dependency check at
// startup. Defaults assume the binaries are reachable on PATH.
var (
	FfmpegPath  = "ffmpeg"
	FfprobePath = "ffprobe"
)
