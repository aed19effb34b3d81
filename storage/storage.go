package storage

import (
	"time"

	"git.sr.ht/~pdg/lectern/canvas"
)

// DateCursor selects events starting inside [T, T+D). A negative D selects
// the interval ending at T.
type DateCursor struct {
	T time.Time
	D time.Duration
}

func Cursor(st time.Time, d time.Duration) DateCursor {
	return DateCursor{
		T: st,
		D: d,
	}
}

type Saver interface {
	SaveEvents(courseID int64, events ...canvas.Event) error
}

type Loader interface {
	LoadEvents(cursor DateCursor, courses ...int64) ([]canvas.Event, error)
	LoadEvent(courseID int64, date time.Time, id int64) canvas.Event
}
