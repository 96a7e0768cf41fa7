package deps

import (
	"fmt"

	"go.uber.org/zap"

	"clipcap/internal/storage"
	"clipcap/log"
)

// CheckDependency resolves the external binaries the pipeline shells out to
// and publishes the resolved paths. Missing must-tier binaries are fatal.
func CheckDependency() error {
	states := ResolveDependencyInventory()

	var missing []string
	for _, state := range states {
		if state.Status == DependencyStatusOK {
			switch state.ID {
			case "ffmpeg":
				storage.FfmpegPath = state.ResolvedPath
			case "ffprobe":
				storage.FfprobePath = state.ResolvedPath
			}
			log.GetLogger().Info("dependency resolved",
				zap.String("name", state.Name),
				zap.String("path", state.ResolvedPath),
				zap.String("source", string(state.Source)))
			continue
		}
		if state.Tier == DependencyTierMust {
			missing = append(missing, state.Name)
		}
		log.GetLogger().Warn("dependency unavailable",
			zap.String("name", state.Name),
			zap.String("status", string(state.Status)),
			zap.String("error", state.Error))
	}

	if len(missing) > 0 {
		log.GetLogger().Error("required dependencies missing", zap.Strings("missing", missing))
		return fmt.Errorf("required dependencies missing: %v\n%s", missing, FormatDependencyReport(states))
	}
	return nil
}
