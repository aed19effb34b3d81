package boltdb

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	bolt "go.etcd.io/bbolt"

	"git.sr.ht/~pdg/lectern/canvas"
	"git.sr.ht/~pdg/lectern/storage"
)

type LoggerFn func(string, ...interface{})

// Events are kept in a bucket tree keyed by course id and start time,
// course/yy/mm/dd/hh/min, so a date range maps to a key range scan.
type repo struct {
	d    *bolt.DB
	root []byte
	path string
	log  LoggerFn
	err  LoggerFn
}

const (
	rootBucket = "courses"

	// DefaultFile is the database file name under the storage path.
	DefaultFile = "lectern.bdb"
)

type Config struct {
	Path  string
	LogFn LoggerFn
	ErrFn LoggerFn
}

// New returns an event repository backed by a boltdb file.
func New(c Config) *repo {
	b := repo{
		root: []byte(rootBucket),
		path: c.Path,
		log:  func(string, ...interface{}) {},
		err:  func(string, ...interface{}) {},
	}
	if c.ErrFn != nil {
		b.err = c.ErrFn
	}
	if c.LogFn != nil {
		b.log = c.LogFn
	}
	return &b
}

func (r *repo) open() error {
	var err error
	r.d, err = bolt.Open(r.path, 0600, nil)
	if err != nil {
		return fmt.Errorf("could not open db %s: %w", r.path, err)
	}
	err = r.d.Update(func(tx *bolt.Tx) error {
		root, err := tx.CreateBucketIfNotExists(r.root)
		if err != nil {
			return fmt.Errorf("unable to create root bucket %s: %w", r.root, err)
		}
		if !root.Writable() {
			return fmt.Errorf("non writeable root bucket %s", r.root)
		}
		return nil
	})
	return err
}

func (r *repo) close() error {
	if r.d == nil {
		return nil
	}
	return r.d.Close()
}

// LoadEvent returns the stored event with the given id starting around
// date, or the zero event when nothing matches. The cursor is widened an
// hour each way so the event's bucket sits fully inside the scanned range.
func (r *repo) LoadEvent(courseID int64, date time.Time, id int64) canvas.Event {
	events, err := r.LoadEvents(storage.DateCursor{T: date.Add(-time.Hour), D: 2 * time.Hour}, courseID)
	if err != nil {
		r.err("error loading events: %s", err)
	}
	for _, event := range events {
		if event.ID == id {
			return event
		}
	}
	return canvas.Event{}
}

// LoadEvents returns the stored events of the given courses starting in
// the cursor interval.
func (r *repo) LoadEvents(cursor storage.DateCursor, courses ...int64) ([]canvas.Event, error) {
	if err := r.open(); err != nil {
		return nil, err
	}
	defer r.close()
	return loadFromBucket(r.d, r.root, cursor, courses...)
}

var pathSeparator = []byte{'/'}

func courseKey(courseID int64) []byte {
	return []byte(strconv.FormatInt(courseID, 10))
}

func itemBucketPath(course []byte, date time.Time) []byte {
	pathEl := [][]byte{
		course,
		[]byte(date.UTC().Format("06")),
		[]byte(date.UTC().Format("01")),
		[]byte(date.UTC().Format("02")),
		[]byte(date.UTC().Format("15")),
		[]byte(date.UTC().Format("04")),
	}
	return bytes.Join(pathEl, pathSeparator)
}

func getCursorPaths(c storage.DateCursor, course []byte) ([]byte, []byte) {
	var min, max []byte
	if c.D < 0 {
		max = itemBucketPath(course, c.T)
		min = itemBucketPath(course, c.T.Add(c.D))
	} else {
		min = itemBucketPath(course, c.T)
		max = itemBucketPath(course, c.T.Add(c.D))
	}
	return min, max
}

func loadItem(raw []byte) (canvas.Event, error) {
	ev := canvas.Event{}
	if len(raw) == 0 {
		return ev, fmt.Errorf("empty raw item")
	}
	err := json.Unmarshal(raw, &ev)
	return ev, err
}

func loadFromBucketRecursive(b *bolt.Bucket, min, max []byte) []canvas.Event {
	events := make([]canvas.Event, 0)
	if b == nil {
		return events
	}

	c := b.Cursor()
	first := func() ([]byte, []byte) { return c.First() }
	compare := func(k, v []byte) bool { return k != nil }
	if min != nil {
		first = func() ([]byte, []byte) { return c.Seek(min) }
	}
	if max != nil {
		compare = func(k, v []byte) bool { return k != nil && bytes.Compare(k, max) <= 0 }
	}
	for key, raw := first(); compare(key, raw); key, raw = c.Next() {
		if raw == nil {
			// a nested bucket: descend
			events = append(events, loadFromBucketRecursive(b.Bucket(key), nil, nil)...)
		} else {
			if ev, err := loadItem(raw); err == nil && ev.ID > 0 {
				events = append(events, ev)
			}
		}
	}
	return events
}

func loadFromBucket(db *bolt.DB, root []byte, cursor storage.DateCursor, courses ...int64) ([]canvas.Event, error) {
	events := make([]canvas.Event, 0)

	err := db.View(func(tx *bolt.Tx) error {
		rb := tx.Bucket(root)
		if rb == nil {
			return fmt.Errorf("invalid bucket %s", root)
		}
		for _, course := range courses {
			min, max := getCursorPaths(cursor, courseKey(course))
			b, min, max, err := descendToLastCommonBucket(rb, min, max)
			if err != nil {
				return err
			}
			events = append(events, loadFromBucketRecursive(b, min, max)...)
		}
		return nil
	})

	return events, err
}

func descendToLastCommonBucket(root *bolt.Bucket, min, max []byte) (*bolt.Bucket, []byte, []byte, error) {
	minPieces := bytes.Split(min, pathSeparator)
	maxPieces := bytes.Split(max, pathSeparator)

	b := root
	lvl := 0
	for i, k := range minPieces {
		if !bytes.Equal(k, maxPieces[i]) {
			break
		}
		cb := b.Bucket(k)
		if cb == nil {
			break
		}
		lvl = i
		b = cb
	}
	min = bytes.Join(minPieces[lvl+1:], pathSeparator)
	max = bytes.Join(maxPieces[lvl+1:], pathSeparator)
	return b, min, max, nil
}

func descendInBucket(root *bolt.Bucket, path []byte, create bool) (*bolt.Bucket, []byte, error) {
	if root == nil {
		return nil, path, fmt.Errorf("trying to descend into nil bucket")
	}
	if len(path) == 0 {
		return root, path, nil
	}
	buckets := bytes.Split(path, pathSeparator)

	lvl := 0
	b := root
	for _, name := range buckets {
		lvl++
		if len(name) == 0 {
			continue
		}
		if b == nil {
			return root, path, fmt.Errorf("trying to load from nil bucket")
		}
		var cb *bolt.Bucket
		if create {
			cb, _ = b.CreateBucketIfNotExists(name)
		} else {
			cb = b.Bucket(name)
		}
		if cb == nil {
			lvl--
			break
		}
		b = cb
	}
	path = bytes.Join(buckets[lvl:], pathSeparator)

	return b, path, nil
}

// SaveEvents stores the events under the course's date buckets.
func (r *repo) SaveEvents(courseID int64, events ...canvas.Event) error {
	if err := r.open(); err != nil {
		return err
	}
	defer r.close()

	var err error
	for _, ev := range events {
		if saveErr := save(r, courseID, ev); saveErr != nil {
			r.err("error saving event %d: %s", ev.ID, saveErr)
			err = saveErr
		}
	}
	return err
}

// SaveEvent stores a single event.
func (r *repo) SaveEvent(courseID int64, ev canvas.Event) error {
	if err := r.open(); err != nil {
		return err
	}
	defer r.close()
	return save(r, courseID, ev)
}

func save(r *repo, courseID int64, ev canvas.Event) error {
	path := itemBucketPath(courseKey(courseID), ev.StartAt)

	return r.d.Update(func(tx *bolt.Tx) error {
		root := tx.Bucket(r.root)
		if root == nil {
			return fmt.Errorf("invalid bucket %s", r.root)
		}
		if !root.Writable() {
			return fmt.Errorf("non writeable bucket %s", r.root)
		}
		b, path, err := descendInBucket(root, path, true)
		if err != nil {
			return fmt.Errorf("unable to find %s in root bucket: %w", path, err)
		}
		if !b.Writable() {
			return fmt.Errorf("non writeable bucket %s", path)
		}
		entryBytes, err := json.Marshal(ev)
		if err != nil {
			return fmt.Errorf("could not marshal object: %w", err)
		}
		objectID := []byte(strconv.FormatInt(ev.ID, 10))
		if err = b.Put(objectID, entryBytes); err != nil {
			return fmt.Errorf("could not store encoded object: %w", err)
		}
		return nil
	})
}
