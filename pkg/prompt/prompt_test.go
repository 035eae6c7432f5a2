package prompt

import (
	"bytes"
	"os"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"minkowski3d/internal/monitoring"
)

func TestMain(m *testing.M) {
	monitoring.SetLogger(nil)
	os.Exit(m.Run())
}

func TestConfirmAnswers(t *testing.T) {
	testCases := []struct {
		input string
		want  bool
	}{
		{"y\n", true},
		{"YES\n", true},
		{"  Yes  \n", true},
		{"n\n", false},
		{"No\n", false},
		{"y", true},
	}

	for _, tc := range testCases {
		t.Run(strings.TrimSpace(tc.input), func(t *testing.T) {
			var out bytes.Buffer
			got, err := NewReader(strings.NewReader(tc.input), &out, !tc.want).Confirm("generate? ")
			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
			assert.Equal(t, "generate? ", out.String())
		})
	}
}

func TestConfirmRepeatsUntilValid(t *testing.T) {
	var out bytes.Buffer
	got, err := NewReader(strings.NewReader("maybe\n\nyes, y\nn\n"), &out, true).Confirm("q? ")
	require.NoError(t, err)
	assert.False(t, got)
	assert.Equal(t, 4, strings.Count(out.String(), "q? "))
}

func TestConfirmFallsBackAtEOF(t *testing.T) {
	var out bytes.Buffer
	got, err := NewReader(strings.NewReader("what\n"), &out, true).Confirm("q? ")
	require.NoError(t, err)
	assert.True(t, got)
}

func TestConfirmNonInteractive(t *testing.T) {
	f, err := os.Open(os.DevNull)
	require.NoError(t, err)
	defer f.Close()

	var out bytes.Buffer
	term := NewTerminal(f, &out, false)
	got, err := term.Confirm("q? ")
	require.NoError(t, err)
	assert.False(t, got)
	assert.Empty(t, out.String(), "non-interactive input must not be prompted")
}

func TestFixed(t *testing.T) {
	yes, err := Fixed(true).Confirm("anything")
	require.NoError(t, err)
	assert.True(t, yes)

	no, err := Fixed(false).Confirm("anything")
	require.NoError(t, err)
	assert.False(t, no)
}
