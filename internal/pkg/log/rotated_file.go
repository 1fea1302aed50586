package log

import (
	"fmt"
	"os"
	"path/filepath"

	rotatelogs "github.com/lestrrat-go/file-rotatelogs"
)

// newRotatedFile opens a log file under cfg.Dir that is rotated every cfg.RotatePeriod.
func newRotatedFile(cfg *FileConfig) (*rotatelogs.RotateLogs, error) {
	if err := os.MkdirAll(cfg.Dir, 0755); err != nil {
		return nil, fmt.Errorf("create log directory: %w", err)
	}

	pattern := filepath.Join(cfg.Dir, cfg.Prefix+"-%Y.%m.%dT%H-%M.log")

	return rotatelogs.New(pattern,
		rotatelogs.WithLinkName(filepath.Join(cfg.Dir, cfg.Prefix+".log")),
		rotatelogs.WithRotationTime(cfg.RotatePeriod),
	)
}
