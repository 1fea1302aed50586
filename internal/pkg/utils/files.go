package utils

import (
	"github.com/spf13/afero"
)

// FileExists checks if a file exists and is not a directory before we
// try using it to prevent further errors
func FileExists(fs afero.Fs, filename string) bool {
	info, err := fs.Stat(filename)
	if err != nil {
		return false
	}
	return !info.IsDir()
}
