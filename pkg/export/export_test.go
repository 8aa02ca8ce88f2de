package export

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleTable() Table {
	return Table{
		Title:   "Applicants",
		Columns: []string{"Name", "Email", "GPA"},
		Rows: [][]string{
			{"Sara", "sara@example.com", "3.90"},
			{"Omar, Jr.", "omar@example.com", "3.10"},
		},
	}
}

func TestParseFormat(t *testing.T) {
	f, err := ParseFormat("")
	require.NoError(t, err)
	assert.Equal(t, FormatCSV, f)

	f, err = ParseFormat(" PDF ")
	require.NoError(t, err)
	assert.Equal(t, FormatPDF, f)

	_, err = ParseFormat("xlsx")
	assert.Error(t, err)
}

func TestCSVRender(t *testing.T) {
	out, err := For(FormatCSV).Render(sampleTable())
	require.NoError(t, err)
	assert.Equal(t, "Name,Email,GPA\nSara,sara@example.com,3.90\n\"Omar, Jr.\",omar@example.com,3.10\n", string(out))
}

func TestPDFRender(t *testing.T) {
	out, err := For(FormatPDF).Render(sampleTable())
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(out, []byte("%PDF-")))
}

func TestRenderRejectsRaggedRows(t *testing.T) {
	table := sampleTable()
	table.Rows = append(table.Rows, []string{"only-one"})

	_, err := CSVRenderer{}.Render(table)
	assert.Error(t, err)
	_, err = PDFRenderer{}.Render(Table{})
	assert.Error(t, err)
}
