package cmd

import (
	"encoding/gob"
	"errors"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"time"

	"github.com/urfave/cli"

	"git.sr.ht/~pdg/lectern/canvas"
)

var now = time.Now()

var (
	// half a year of events, enough to cover a teaching semester
	defaultDuration  = 26 * 7 * 24 * time.Hour
	defaultStartTime = time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
)

const (
	AppName    = "lectern"
	AppVersion = "(unknown)"
)

const (
	EnvURL    = "CANVAS_URL"
	EnvToken  = "CANVAS_TOKEN"
	EnvCourse = "CANVAS_COURSE"
)

type logFn func(string, ...interface{})

var info = func(s string, args ...interface{}) {
	fmt.Printf(s+"\n", args...)
}

var errFn = func(s string, args ...interface{}) {
	fmt.Fprintf(os.Stderr, s+"\n", args...)
}

func MkDirIfNotExists(p string) error {
	fi, err := os.Stat(p)
	if err != nil && os.IsNotExist(err) {
		err = os.MkdirAll(p, os.ModeDir|os.ModePerm|0700)
	}
	if err != nil {
		return err
	}
	fi, err = os.Stat(p)
	if err != nil {
		return err
	} else if !fi.IsDir() {
		return fmt.Errorf("path exists, and is not a folder %s", p)
	}
	return nil
}

func CachePath() string {
	xdgCachePath, _ := os.UserCacheDir()
	return filepath.Join(xdgCachePath, AppName)
}

func DataPath() string {
	homeDir, _ := os.UserHomeDir()
	xdgDataPath := filepath.Join(homeDir, ".local", "share")
	appPath := filepath.Join(xdgDataPath, AppName)

	if _, err := os.Stat(appPath); err != nil && errors.Is(err, os.ErrNotExist) {
		err := MkDirIfNotExists(appPath)
		if err != nil {
			log.Fatalf("Error: %s", err.Error())
		}
	}
	return appPath
}

// stringValue looks a string flag up on the command and all its parents.
func stringValue(c *cli.Context, p string) string {
	for {
		if c.IsSet(p) {
			if val := c.String(p); val != "" {
				return val
			}
		}
		if c = c.Parent(); c == nil {
			break
		}
	}
	return ""
}

func int64Value(c *cli.Context, p string) int64 {
	for {
		if c.IsSet(p) {
			if val := c.Int64(p); val != 0 {
				return val
			}
		}
		if c = c.Parent(); c == nil {
			break
		}
	}
	return 0
}

func boolValue(c *cli.Context, p string) bool {
	for {
		if c.IsSet(p) && c.Bool(p) {
			return true
		}
		if c = c.Parent(); c == nil {
			break
		}
	}
	return false
}

// credentials is what the auth command persists so the other commands
// don't need the token on every invocation.
type credentials struct {
	URL    string
	Token  string
	Course int64
}

func credentialsPath(base string) string {
	return filepath.Join(base, "credentials")
}

func loadCredentials(cr *credentials, path string) error {
	f, err := os.OpenFile(path, os.O_RDONLY, 0600)
	if err != nil {
		return fmt.Errorf("unable to load credentials file %s: %w", path, err)
	}
	defer f.Close()
	d := gob.NewDecoder(f)
	return d.Decode(cr)
}

func saveCredentials(cr credentials, path string) error {
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0600)
	if err != nil {
		return fmt.Errorf("unable to open file %w", err)
	}
	defer f.Close()

	d := gob.NewEncoder(f)
	return d.Encode(cr)
}

// loadClient resolves the Canvas coordinates from flags, then environment,
// then the saved credentials file, and builds a client from them.
func loadClient(c *cli.Context) (*canvas.Client, error) {
	base := stringValue(c, "url")
	token := stringValue(c, "token")
	course := int64Value(c, "course")

	if base == "" {
		base = os.Getenv(EnvURL)
	}
	if token == "" {
		token = os.Getenv(EnvToken)
	}
	if course == 0 {
		course = envCourse()
	}

	if base == "" || token == "" || course == 0 {
		cr := credentials{}
		if err := loadCredentials(&cr, credentialsPath(c.GlobalString("path"))); err == nil {
			if base == "" {
				base = cr.URL
			}
			if token == "" {
				token = cr.Token
			}
			if course == 0 {
				course = cr.Course
			}
		}
	}
	if course == 0 {
		return nil, fmt.Errorf("no course id given, pass --course or run %s auth", AppName)
	}

	cfg := canvas.Config{
		URL:    base,
		Token:  token,
		Course: course,
	}
	if boolValue(c, "debug") {
		cfg.LogFn = info
		cfg.ErrFn = errFn
	}
	return canvas.New(cfg)
}

func envCourse() int64 {
	v := os.Getenv(EnvCourse)
	if v == "" {
		return 0
	}
	var id int64
	if _, err := fmt.Sscanf(v, "%d", &id); err != nil {
		return 0
	}
	return id
}

func parseStartDate(s string) time.Time {
	d := defaultStartTime
	if s != "" {
		if parsed, err := time.ParseInLocation("2006-01-02", s, time.Local); err == nil {
			d = parsed
		}
	}
	return d
}
