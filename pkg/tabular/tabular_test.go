package tabular

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseFormat(t *testing.T) {
	f, err := ParseFormat("clients.XLSX")
	require.NoError(t, err)
	assert.Equal(t, FormatXLSX, f)

	f, err = ParseFormat("csv")
	require.NoError(t, err)
	assert.Equal(t, FormatCSV, f)

	_, err = ParseFormat("clients.pdf")
	assert.ErrorIs(t, err, ErrUnsupportedFormat)
}

func TestReadCSV(t *testing.T) {
	body := "\ufeffFull Name,Email,Phone Number,Tags\n" +
		"Alice, alice@x.com ,07700 900123,vip;colour\n" +
		",,,\n" +
		"Bob,,+44 7700 900999\n"

	records, err := Read(strings.NewReader(body), FormatCSV)
	require.NoError(t, err)
	require.Len(t, records, 2)

	assert.Equal(t, 2, records[0].Line)
	assert.Equal(t, "Alice", records[0].Get("name", "full_name"))
	assert.Equal(t, "alice@x.com", records[0].Get("email"))
	assert.Equal(t, "07700 900123", records[0].Get("phone", "Phone Number"))
	assert.Equal(t, 4, records[1].Line)
	assert.Equal(t, "", records[1].Get("tags"))
}

func TestReadEmpty(t *testing.T) {
	_, err := Read(strings.NewReader(""), FormatCSV)
	assert.Error(t, err)
}

func TestWriteAndReadBack(t *testing.T) {
	for _, format := range []Format{FormatCSV, FormatXLSX} {
		t.Run(string(format), func(t *testing.T) {
			var buf bytes.Buffer
			w, err := NewWriter(&buf, format, []string{"name", "email"})
			require.NoError(t, err)
			require.NoError(t, w.WriteRow([]string{"Alice", "alice@x.com"}))
			require.NoError(t, w.WriteRow([]string{"Bob", ""}))
			require.NoError(t, w.Close())

			records, err := Read(&buf, format)
			require.NoError(t, err)
			require.Len(t, records, 2)
			assert.Equal(t, "Alice", records[0].Get("name"))
			assert.Equal(t, "alice@x.com", records[0].Get("email"))
			assert.Equal(t, "Bob", records[1].Get("name"))
		})
	}
}
