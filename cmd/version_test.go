package cmd

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// withVersion sets the reported version for the duration of the test.
func withVersion(t *testing.T, v string) {
	t.Helper()
	original := rootCmd.Version
	t.Cleanup(func() { rootCmd.Version = original })
	SetVersion(v)
}

func TestVersionCmd(t *testing.T) {
	tests := []struct {
		name    string
		version string
		want    string
	}{
		{name: "development build", version: "dev", want: "mcp-service-objects version dev\n"},
		{name: "release", version: "v0.4.0", want: "mcp-service-objects version v0.4.0\n"},
		{name: "release candidate", version: "v1.0.0-rc.2", want: "mcp-service-objects version v1.0.0-rc.2\n"},
		{name: "unset", version: "", want: "mcp-service-objects version \n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			withVersion(t, tt.version)

			cmd := newVersionCmd()
			var out bytes.Buffer
			cmd.SetOut(&out)
			cmd.SetArgs([]string{})

			require.NoError(t, cmd.Execute())
			assert.Equal(t, tt.want, out.String())
		})
	}
}

func TestVersionCmdProperties(t *testing.T) {
	cmd := newVersionCmd()

	assert.Equal(t, "version", cmd.Use)
	assert.Contains(t, cmd.Short, "mcp-service-objects")
	assert.Contains(t, cmd.Long, "self-update")
}
