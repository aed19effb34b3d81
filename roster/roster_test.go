package roster

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"git.sr.ht/~pdg/lectern/canvas"
	"git.sr.ht/~pdg/lectern/tabular"
)

func TestFromTable(t *testing.T) {
	table := tabular.New("Student ID", "Name", "2026-02-13")
	table.Append("40291001", "Ana Pop", "LAB1")
	table.Append("", "ignored", "")
	table.Append(" 40291002 ", "Ben Ito", "")

	r, err := FromTable(table)
	require.NoError(t, err)
	require.Len(t, r, 2)
	assert.Equal(t, Entry{SISID: "40291001", Name: "Ana Pop"}, r[0])
	assert.Equal(t, Entry{SISID: "40291002", Name: "Ben Ito"}, r[1])
}

func TestFromTable_Headerless(t *testing.T) {
	table, err := tabular.ReadCSV(strings.NewReader("40291001,Ana Pop\n40291002,Ben Ito\n"))
	require.NoError(t, err)

	// the first record landed in the table header; it is still a student
	r, err := FromTable(table)
	require.NoError(t, err)
	require.Len(t, r, 2)
	assert.Equal(t, Entry{SISID: "40291001", Name: "Ana Pop"}, r[0])
	assert.Equal(t, Entry{SISID: "40291002", Name: "Ben Ito"}, r[1])

	d := r.Compare([]canvas.User{{ID: 102, SISUserID: "40291002"}})
	require.Len(t, d.MissingInCanvas, 1)
	assert.Equal(t, "40291001", d.MissingInCanvas[0].SISID)
}

func TestFromTable_HeaderlessSingleStudent(t *testing.T) {
	table, err := tabular.ReadCSV(strings.NewReader("40291001,Ana Pop\n"))
	require.NoError(t, err)

	r, err := FromTable(table)
	require.NoError(t, err)
	require.Len(t, r, 1)
	assert.Equal(t, Entry{SISID: "40291001", Name: "Ana Pop"}, r[0])
}

func TestFromTable_Empty(t *testing.T) {
	_, err := FromTable(tabular.New("Student ID", "Name"))
	require.Error(t, err)

	onlyBlank := tabular.New("Student ID", "Name")
	onlyBlank.Append("", "no id")
	_, err = FromTable(onlyBlank)
	require.Error(t, err)
}

func TestRoster_Compare(t *testing.T) {
	r := Roster{
		{SISID: "40291001", Name: "Ana Pop"},
		{SISID: "40291002", Name: "Ben Ito"},
	}
	enrolled := []canvas.User{
		{ID: 101, SortableName: "Pop, Ana", SISUserID: "40291001"},
		{ID: 103, SortableName: "Marsh, Cleo", SISUserID: "40291003"},
	}

	d := r.Compare(enrolled)
	assert.False(t, d.Clean())
	require.Len(t, d.MissingInCanvas, 1)
	assert.Equal(t, "40291002", d.MissingInCanvas[0].SISID)
	require.Len(t, d.MissingInRoster, 1)
	assert.Equal(t, "40291003", d.MissingInRoster[0].SISUserID)

	out := d.String()
	assert.Contains(t, out, "Students missing in Canvas:")
	assert.Contains(t, out, "- Ben Ito (ID: 40291002)")
	assert.Contains(t, out, "- Marsh, Cleo (ID: 40291003)")
}

func TestRoster_Compare_Clean(t *testing.T) {
	r := Roster{{SISID: "40291001", Name: "Ana Pop"}}
	enrolled := []canvas.User{{ID: 101, SISUserID: " 40291001 "}}

	d := r.Compare(enrolled)
	assert.True(t, d.Clean())
	assert.Equal(t, "All students are accounted for.", d.String())
}
