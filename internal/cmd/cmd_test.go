package cmd

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCredentialsRoundTrip(t *testing.T) {
	path := credentialsPath(t.TempDir())
	saved := credentials{URL: "https://qub.instructure.com", Token: "sekrit", Course: 1187}
	require.NoError(t, saveCredentials(saved, path))

	loaded := credentials{}
	require.NoError(t, loadCredentials(&loaded, path))
	assert.Equal(t, saved, loaded)
}

func TestLoadCredentials_Missing(t *testing.T) {
	cr := credentials{}
	err := loadCredentials(&cr, filepath.Join(t.TempDir(), "credentials"))
	require.Error(t, err)
}

func TestParseDueDate(t *testing.T) {
	tests := []struct {
		in   string
		want time.Time
	}{
		{"2026-02-13T16:00:00Z", time.Date(2026, time.February, 13, 16, 0, 0, 0, time.UTC)},
		{"2026-02-13 16:00", time.Date(2026, time.February, 13, 16, 0, 0, 0, time.Local)},
		{"2026-02-13", time.Date(2026, time.February, 13, 0, 0, 0, 0, time.Local)},
		{"13/02/2026", time.Date(2026, time.February, 13, 0, 0, 0, 0, time.Local)},
		{" 2026-02-13 ", time.Date(2026, time.February, 13, 0, 0, 0, 0, time.Local)},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := parseDueDate(tt.in)
			require.NoError(t, err)
			assert.True(t, tt.want.Equal(got), "want %s, got %s", tt.want, got)
		})
	}

	_, err := parseDueDate("next friday")
	require.Error(t, err)
}

func TestParseStartDate(t *testing.T) {
	got := parseStartDate("2026-02-01")
	assert.Equal(t, time.Date(2026, time.February, 1, 0, 0, 0, 0, time.Local), got)

	assert.Equal(t, defaultStartTime, parseStartDate(""))
	assert.Equal(t, defaultStartTime, parseStartDate("not a date"))
}

func TestEnvCourse(t *testing.T) {
	t.Setenv(EnvCourse, "1187")
	assert.EqualValues(t, 1187, envCourse())

	t.Setenv(EnvCourse, "not-a-number")
	assert.Zero(t, envCourse())

	t.Setenv(EnvCourse, "")
	assert.Zero(t, envCourse())
}
