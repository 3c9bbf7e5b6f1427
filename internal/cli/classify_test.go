package cli

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// newClassifyTestCmd builds a throwaway command wired to buffers.
func newClassifyTestCmd(stdin string) (*cobra.Command, *bytes.Buffer) {
	cmd := &cobra.Command{}
	out := &bytes.Buffer{}
	cmd.SetOut(out)
	cmd.SetIn(strings.NewReader(stdin))
	return cmd, out
}

func TestClassifyCommand_Text(t *testing.T) {
	defer resetClassifyFlags()

	tests := []struct {
		name string
		text string
		want string
	}{
		{
			name: "kex failure",
			text: "Unable to negotiate with 10.0.0.5: no matching key exchange method found",
			want: "kex-incompatible",
		},
		{
			name: "auth rejection is compatible",
			text: "user@host: Permission denied (publickey,password).",
			want: "compatible",
		},
		{
			name: "empty output is compatible",
			text: " ",
			want: "compatible",
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			classifyText = tc.text
			classifyFile = ""

			cmd, out := newClassifyTestCmd("")
			require.NoError(t, classifyCommand(cmd))
			assert.Equal(t, tc.want, strings.TrimSpace(out.String()))
		})
	}
}

func TestClassifyCommand_File(t *testing.T) {
	defer resetClassifyFlags()

	path := filepath.Join(t.TempDir(), "transcript.log")
	require.NoError(t, os.WriteFile(path,
		[]byte("Unable to negotiate a key exchange method\n"), 0o644))

	classifyText = ""
	classifyFile = path

	cmd, out := newClassifyTestCmd("")
	require.NoError(t, classifyCommand(cmd))
	assert.Equal(t, "kex-incompatible", strings.TrimSpace(out.String()))
}

func TestClassifyCommand_Stdin(t *testing.T) {
	defer resetClassifyFlags()

	classifyText = ""
	classifyFile = ""

	cmd, out := newClassifyTestCmd("Protocol Version mismatch\n")
	require.NoError(t, classifyCommand(cmd))
	assert.Equal(t, "kex-incompatible", strings.TrimSpace(out.String()))
}

func TestClassifyCommand_TextAndFileConflict(t *testing.T) {
	defer resetClassifyFlags()

	classifyText = "something"
	classifyFile = "somewhere"

	cmd, _ := newClassifyTestCmd("")
	err := classifyCommand(cmd)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "cannot be used together")
}

func TestClassifyCommand_MissingFile(t *testing.T) {
	defer resetClassifyFlags()

	classifyText = ""
	classifyFile = filepath.Join(t.TempDir(), "nope.log")

	cmd, _ := newClassifyTestCmd("")
	assert.Error(t, classifyCommand(cmd))
}

func resetClassifyFlags() {
	classifyText = ""
	classifyFile = ""
}
