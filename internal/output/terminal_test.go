package output

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTerminalWidth_NonTerminal(t *testing.T) {
	var buf bytes.Buffer
	assert.Equal(t, defaultTermWidth, TerminalWidth(&buf))
}

func TestRenderTable(t *testing.T) {
	var buf bytes.Buffer
	err := RenderTable(NewWrappingTable(&buf, 20, 20), []string{"Field", "Value"}, [][]string{
		{"Registrar", "Example Registrar, Inc."},
		{"ASN", "AS15169"},
	})
	require.NoError(t, err)
	out := buf.String()
	assert.Contains(t, out, "Example Registrar, Inc.")
	assert.Contains(t, out, "AS15169")
}

func TestRenderTable_Grouped(t *testing.T) {
	var buf bytes.Buffer
	err := RenderTable(NewGroupedWrappingTable(&buf, 20, 20), []string{"Type", "Value"}, [][]string{
		{"A", "93.184.216.34"},
		{"MX", "mail.example.com"},
	})
	require.NoError(t, err)
	assert.Contains(t, buf.String(), "mail.example.com")
}
