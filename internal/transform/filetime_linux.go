//go:build linux

package transform

import (
	"os"
	"syscall"
	"time"

	"golang.org/x/sys/unix"
)

// createdTime prefers the statx birth time and falls back to the inode change
// time. Entries that do not come from the OS filesystem have neither.
func createdTime(path string, info os.FileInfo) (time.Time, bool) {
	st, ok := info.Sys().(*syscall.Stat_t)
	if !ok {
		return time.Time{}, false
	}
	var stx unix.Statx_t
	if err := unix.Statx(unix.AT_FDCWD, path, 0, unix.STATX_BTIME, &stx); err == nil && stx.Mask&unix.STATX_BTIME != 0 {
		return time.Unix(stx.Btime.Sec, int64(stx.Btime.Nsec)), true
	}
	return time.Unix(int64(st.Ctim.Sec), int64(st.Ctim.Nsec)), true
}
