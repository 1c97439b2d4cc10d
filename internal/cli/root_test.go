package cli

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIsUnknownCommandError(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{
			name: "unknown command error",
			err:  errors.New(`unknown command "foo" for "sensorwatch"`),
			want: true,
		},
		{
			name: "unknown flag error",
			err:  errors.New(`unknown flag: --foo`),
			want: true,
		},
		{
			name: "other error",
			err:  errors.New("connection refused"),
			want: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, isUnknownCommandError(tt.err))
		})
	}
}

func TestExtractUnknownCommand(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want string
	}{
		{
			name: "standard cobra format",
			err:  errors.New(`unknown command "foo" for "sensorwatch"`),
			want: "foo",
		},
		{
			name: "command with hyphen",
			err:  errors.New(`unknown command "live-view" for "sensorwatch"`),
			want: "live-view",
		},
		{
			name: "no quotes returns empty",
			err:  errors.New("unknown command foo"),
			want: "",
		},
		{
			name: "single quote returns empty",
			err:  errors.New(`unknown command "foo`),
			want: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, extractUnknownCommand(tt.err))
		})
	}
}

func TestRootCommandsRegistered(t *testing.T) {
	names := make(map[string]bool)
	for _, cmd := range rootCmd.Commands() {
		names[cmd.Name()] = true
	}
	for _, want := range []string{"watch", "tail", "history", "tags", "config", "version", "completion"} {
		assert.True(t, names[want], "missing command %q", want)
	}
}

func TestFilterFlagsRegistered(t *testing.T) {
	for _, cmd := range []string{"watch", "tail", "history"} {
		c, _, err := rootCmd.Find([]string{cmd})
		if !assert.NoError(t, err) {
			continue
		}
		for _, flag := range []string{"sensor-type", "location", "from", "to"} {
			assert.NotNil(t, c.Flags().Lookup(flag), "%s --%s", cmd, flag)
		}
	}
}

func TestTailMinLevelFlag(t *testing.T) {
	c, _, err := rootCmd.Find([]string{"tail"})
	require.NoError(t, err)
	f := c.Flags().Lookup("min-level")
	require.NotNil(t, f)
	assert.Equal(t, "info", f.DefValue)
}
