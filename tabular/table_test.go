package tabular

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReadCSV(t *testing.T) {
	in := strings.NewReader("Student ID, Name, 2026-02-13\n40291001, Ana Pop, LAB1\n40291002, Ben Ito,\n")
	table, err := ReadCSV(in)
	require.NoError(t, err)

	assert.Equal(t, []string{"Student ID", "Name", "2026-02-13"}, table.Header)
	require.Len(t, table.Rows, 2)
	assert.Equal(t, "40291001", table.Cell(0, 0))
	assert.Equal(t, "Ben Ito", table.Cell(1, 1))
	assert.Equal(t, "", table.Cell(1, 2))
}

func TestTable_Column(t *testing.T) {
	table := New("Student ID", " Name ", "Due Date")

	assert.Equal(t, 0, table.Column("student id"))
	assert.Equal(t, 1, table.Column("Name"))
	assert.Equal(t, 2, table.Column(" due date"))
	assert.Equal(t, -1, table.Column("email"))
}

func TestTable_Append(t *testing.T) {
	table := New("a", "b", "c")
	table.Append("1")
	table.Append("1", "2", "3", "4")

	assert.Equal(t, []string{"1", "", ""}, table.Rows[0])
	assert.Equal(t, []string{"1", "2", "3"}, table.Rows[1])
}

func TestTable_Cell_OutOfRange(t *testing.T) {
	table := New("a")
	table.Append(" x ")

	assert.Equal(t, "x", table.Cell(0, 0))
	assert.Equal(t, "", table.Cell(0, 5))
	assert.Equal(t, "", table.Cell(3, 0))
	assert.Equal(t, "", table.Cell(-1, -1))
}

func TestTable_WriteCSV(t *testing.T) {
	table := New("id", "name")
	table.Append("101", "Ana Pop")

	b := bytes.Buffer{}
	require.NoError(t, table.WriteCSV(&b))
	assert.Equal(t, "id,name\n101,Ana Pop\n", b.String())
}

func TestFlattenHTML(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{name: "plain text", in: "  just   text ", want: "just text"},
		{name: "paragraphs", in: "<p>Supervised by Dr. Finch</p>\n<p>Bring laptops</p>", want: "Supervised by Dr. Finch Bring laptops"},
		{name: "nested markup", in: "<div><strong>Week 1</strong>: <em>intro</em></div>", want: "Week 1: intro"},
		{name: "empty", in: "", want: ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, FlattenHTML(tt.in))
		})
	}
}
