package service

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"

	"go.uber.org/zap"

	"clipcap/log"
)

// execRunner shells out to the given binary. The context is accepted for the
// interface but a started subprocess always runs to completion; callers that
// need a deadline wrap the whole pipeline instead.
type execRunner struct{}

func (execRunner) Run(_ context.Context, bin string, args ...string) error {
	cmd := exec.Command(bin, args...)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		tail := stderr.String()
		if len(tail) > 2048 {
			tail = tail[len(tail)-2048:]
		}
		log.GetLogger().Error("Run subprocess error",
			zap.String("bin", bin),
			zap.Strings("args", args),
			zap.String("stderr", tail),
			zap.Error(err))
		return fmt.Errorf("%s failed: %w", bin, err)
	}
	return nil
}
