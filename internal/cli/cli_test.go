package cli

import (
	"bytes"
	"testing"

	"github.com/specialistvlad/gridgraph/internal/app"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse(t *testing.T) {
	tests := []struct {
		name     string
		args     []string
		want     *app.Config
		wantExit bool
		wantErr  string
	}{
		{
			name: "positional path with defaults",
			args: []string{"grid.hcl"},
			want: &app.Config{ConfigPath: "grid.hcl", LogFormat: "json", LogLevel: "info", Cycles: 1, AdmissionLimit: 1},
		},
		{
			name: "long flag wins over positional",
			args: []string{"-config", "a", "-log-format", "TEXT", "-log-level", "debug", "-cycles", "3", "-admission-limit", "2", "-healthcheck-port", "9000", "b"},
			want: &app.Config{ConfigPath: "a", LogFormat: "text", LogLevel: "debug", Cycles: 3, AdmissionLimit: 2, HealthcheckPort: 9000},
		},
		{
			name: "shorthand flag",
			args: []string{"-c", "dir"},
			want: &app.Config{ConfigPath: "dir", LogFormat: "json", LogLevel: "info", Cycles: 1, AdmissionLimit: 1},
		},
		{name: "no path prints usage", args: nil, wantExit: true},
		{name: "help", args: []string{"-h"}, wantExit: true},
		{name: "unknown flag", args: []string{"-nope"}, wantErr: "flag provided but not defined"},
		{name: "bad format", args: []string{"-log-format", "xml", "x"}, wantErr: "invalid log-format"},
		{name: "bad level", args: []string{"-log-level", "loud", "x"}, wantErr: "invalid log-level"},
		{name: "zero cycles", args: []string{"-cycles", "0", "x"}, wantErr: "invalid cycles"},
		{name: "zero admission", args: []string{"-admission-limit", "0", "x"}, wantErr: "invalid admission-limit"},
		{name: "bad port", args: []string{"-healthcheck-port", "99999", "x"}, wantErr: "out of range"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out := &bytes.Buffer{}
			got, exit, err := Parse(tt.args, out)
			if tt.wantErr != "" {
				require.Error(t, err)
				var exitErr *ExitError
				require.ErrorAs(t, err, &exitErr)
				assert.Equal(t, 2, exitErr.Code)
				assert.Contains(t, exitErr.Message, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantExit, exit)
			if tt.wantExit {
				assert.Contains(t, out.String(), "Usage:")
				return
			}
			assert.Equal(t, tt.want, got)
		})
	}
}
