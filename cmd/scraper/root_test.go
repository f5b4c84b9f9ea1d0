package main

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/westhuggin/prca-standings-scraper/internal/output"
	"github.com/westhuggin/prca-standings-scraper/pkg/models"
)

func TestRootCmd_RejectsBadArguments(t *testing.T) {
	tests := []struct {
		name string
		args []string
		want error
	}{
		{name: "unknown event", args: []string{"XX"}, want: models.ErrUnknownEvent},
		{name: "bad year", args: []string{"BB", "twenty"}, want: models.ErrInvalidSeason},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var stdout bytes.Buffer
			emitter := output.NewEmitter(&stdout)

			cmd := newRootCmd(emitter)
			cmd.SetArgs(tt.args)
			err := cmd.Execute()

			require.ErrorIs(t, err, tt.want)
			assert.Empty(t, stdout.String())

			require.NoError(t, emitter.EmitEmpty())
			assert.Equal(t, "[]\n", stdout.String())
		})
	}
}

func TestRootCmd_TooManyArgs(t *testing.T) {
	var stdout bytes.Buffer
	cmd := newRootCmd(output.NewEmitter(&stdout))
	cmd.SetArgs([]string{"BB", "2025", "extra"})

	assert.Error(t, cmd.Execute())
	assert.Empty(t, stdout.String())
}

func TestRootCmd_HelpStaysOffStdout(t *testing.T) {
	var stdout, stderr bytes.Buffer
	cmd := newRootCmd(output.NewEmitter(&stdout))
	cmd.SetOut(&stderr)
	cmd.SetArgs([]string{"--help"})

	require.NoError(t, cmd.Execute())
	assert.Empty(t, stdout.String())
	assert.Contains(t, stderr.String(), "--summary")
}
