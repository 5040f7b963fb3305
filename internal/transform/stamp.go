package transform

import (
	"time"

	"github.com/aidanlsb/rnm/internal/settings"
)

// StampLayout is the time layout of a date stamp: YYYY_MM_DD-HH_MM_SS.
const StampLayout = "2006_01_02-15_04_05"

const (
	tagCreated  = "[DateCreated]"
	tagModified = "[DateUpdated]"
)

// stamp renders the configured timestamp of path, prefixed by its tag.
func (t *Transformer) stamp(path string) (string, error) {
	ts, err := t.timestamp(path)
	if err != nil {
		return "", err
	}
	tag := tagModified
	if t.st.DateType == settings.DateCreated {
		tag = tagCreated
	}
	return tag + ts.Local().Format(StampLayout), nil
}

func (t *Transformer) timestamp(path string) (time.Time, error) {
	info, err := t.fs.Stat(path)
	if err != nil {
		return time.Time{}, err
	}
	if t.st.DateType == settings.DateCreated {
		if created, ok := createdTime(path, info); ok {
			return created, nil
		}
	}
	return info.ModTime(), nil
}
