package utils

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseCSV(t *testing.T) {
	csvData := "\ufeffserial_number,program_name,notes\nAB12-CD34-EF56-GH78,Editor, first batch\nSER-2,Viewer"

	got, err := ParseCSV(strings.NewReader(csvData))
	require.NoError(t, err)

	want := [][]string{
		{"serial_number", "program_name", "notes"},
		{"AB12-CD34-EF56-GH78", "Editor", "first batch"},
		{"SER-2", "Viewer"},
	}
	assert.Equal(t, want, got)
}

func TestParseCSVMalformed(t *testing.T) {
	_, err := ParseCSV(strings.NewReader("a,\"b\nc"))
	assert.Error(t, err)
}
