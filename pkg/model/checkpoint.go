package model

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
)

// Checkpoints live in the result directory as model_<epoch>.ckpt. Their
// contents belong to the model kind; here we only resolve which file a run
// uses, so a missing checkpoint is caught before any inference happens.

// ResolveCheckpoint returns the checkpoint path and epoch for a result.
// epoch 0 selects the latest one. A result with no checkpoints at all is
// fine (the built-in weightless models), reported as epoch 0 and no path.
func ResolveCheckpoint(resultDir string, epoch int) (string, int, error) {
	matches, err := filepath.Glob(filepath.Join(resultDir, "model_*.ckpt"))
	if err != nil {
		return "", 0, err
	}

	epochs := map[int]string{}
	latest := 0
	for _, m := range matches {
		name := strings.TrimSuffix(filepath.Base(m), ".ckpt")
		e, err := strconv.Atoi(strings.TrimPrefix(name, "model_"))
		if err != nil {
			continue
		}
		epochs[e] = m
		if e > latest {
			latest = e
		}
	}

	if epoch == 0 {
		if latest == 0 {
			return "", 0, nil
		}
		epoch = latest
	}

	path, ok := epochs[epoch]
	if !ok {
		return "", 0, fmt.Errorf("checkpoint for epoch %d does not exist in %s", epoch, resultDir)
	}
	if _, err := os.Stat(path); err != nil {
		return "", 0, fmt.Errorf("checkpoint %s: %v", path, err)
	}
	return path, epoch, nil
}
