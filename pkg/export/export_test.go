package export

import (
	"bytes"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func rosterDataset(rows int) Dataset {
	data := Dataset{Headers: []string{"ID", "Name", "Level"}}
	for i := 1; i <= rows; i++ {
		data.Rows = append(data.Rows, map[string]string{
			"ID":    fmt.Sprint(i),
			"Name":  fmt.Sprintf("Student %d", i),
			"Level": "BEGINNER",
		})
	}
	return data
}

func TestCSVRenderOrdersCellsByHeader(t *testing.T) {
	data := rosterDataset(2)
	data.Rows[1]["Name"] = "Lopez, Ana"
	delete(data.Rows[1], "Level")

	out, err := NewCSVExporter().Render(data)
	require.NoError(t, err)
	assert.Equal(t, "ID,Name,Level\n1,Student 1,BEGINNER\n2,\"Lopez, Ana\",\n", string(out))
}

func TestCSVRenderAppendsTotals(t *testing.T) {
	data := Dataset{
		Headers: []string{"Payment", "Amount"},
		Rows:    []map[string]string{{"Payment": "1", "Amount": "10.00"}, {"Payment": "2", "Amount": "5.50"}},
		Totals:  map[string]string{"Payment": "Total", "Amount": "15.50"},
	}
	exporter := &CSVExporter{Comma: ';'}

	out, err := exporter.Render(data)
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(string(out)), "\n")
	require.Len(t, lines, 4)
	assert.Equal(t, "Payment;Amount", lines[0])
	assert.Equal(t, "Total;15.50", lines[3])
}

func TestRenderRejectsBadHeaders(t *testing.T) {
	_, err := NewCSVExporter().Render(Dataset{})
	assert.Error(t, err)

	_, err = NewPDFExporter().Render(Dataset{Headers: []string{"ID", "ID"}}, "x")
	assert.Error(t, err)
}

func TestPDFRenderProducesDocument(t *testing.T) {
	exporter := NewPDFExporter()
	exporter.now = func() time.Time { return time.Date(2026, 6, 1, 9, 0, 0, 0, time.UTC) }

	out, err := exporter.Render(rosterDataset(120), "Student Roster")
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(out, []byte("%PDF")))
}

func TestPDFRenderWideDatasetInLandscape(t *testing.T) {
	headers := []string{"A", "B", "C", "D", "E", "F", "G", "H"}
	data := Dataset{Headers: headers, Totals: map[string]string{"A": "Total"}}

	out, err := NewPDFExporter().Render(data, "")
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(out, []byte("%PDF")))
}

func TestColumnWidthsFitPage(t *testing.T) {
	data := Dataset{
		Headers: []string{"ID", "Email", "Notes"},
		Rows: []map[string]string{
			{"ID": "1", "Email": "someone.with.a.long.address@school.test", "Notes": strings.Repeat("x", 80)},
		},
	}

	widths := columnWidths(data, 190)
	require.Len(t, widths, 3)
	var sum float64
	for _, w := range widths {
		assert.GreaterOrEqual(t, w, minColumnWidth)
		sum += w
	}
	assert.InDelta(t, 190, sum, 0.001)
	assert.Greater(t, widths[2], widths[1])
}
