//go:build !linux && !darwin && !windows

package transform

import (
	"os"
	"time"
)

func createdTime(string, os.FileInfo) (time.Time, bool) {
	return time.Time{}, false
}
