package app

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewConfig(t *testing.T) {
	tests := []struct {
		name    string
		in      Config
		want    *Config
		wantErr string
	}{
		{
			name: "defaults",
			in:   Config{ConfigPath: "grid"},
			want: &Config{ConfigPath: "grid", Cycles: 1, AdmissionLimit: 1},
		},
		{
			name: "explicit values",
			in:   Config{ConfigPath: "grid", Cycles: 3, AdmissionLimit: 4, HealthcheckPort: 8080},
			want: &Config{ConfigPath: "grid", Cycles: 3, AdmissionLimit: 4, HealthcheckPort: 8080},
		},
		{name: "missing path", in: Config{}, wantErr: "ConfigPath is a required"},
		{name: "negative cycles", in: Config{ConfigPath: "grid", Cycles: -1}, wantErr: "cycles must not be negative"},
		{name: "negative admission", in: Config{ConfigPath: "grid", AdmissionLimit: -2}, wantErr: "admission limit must not be negative"},
		{name: "port out of range", in: Config{ConfigPath: "grid", HealthcheckPort: 70000}, wantErr: "out of range"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := NewConfig(tt.in)
			if tt.wantErr != "" {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}
