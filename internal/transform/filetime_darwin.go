//go:build darwin

package transform

import (
	"os"
	"time"

	"golang.org/x/sys/unix"
)

func createdTime(path string, info os.FileInfo) (time.Time, bool) {
	if info.Sys() == nil {
		return time.Time{}, false
	}
	var st unix.Stat_t
	if err := unix.Stat(path, &st); err != nil {
		return time.Time{}, false
	}
	return time.Unix(st.Birthtimespec.Unix()), true
}
