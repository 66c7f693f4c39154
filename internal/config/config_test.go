package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("BACKEND_DRIVER", "")
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, "admin@mvsaqua.com", cfg.Admin.Email)
	assert.Equal(t, "redis", cfg.KV.Driver)
	assert.IsType(t, Local{}, cfg.Mode())
}

func TestConfig_Mode(t *testing.T) {
	tests := []struct {
		name string
		cfg  Config
		want BackendMode
	}{
		{
			name: "firestore_configured",
			cfg: Config{
				Backend:  BackendConfig{Driver: "firestore"},
				Firebase: FirebaseConfig{APIKey: "AIzaSyA-0123456789", ProjectID: "mvs-aqua"},
			},
			want: RemoteFirestore{Firebase: FirebaseConfig{APIKey: "AIzaSyA-0123456789", ProjectID: "mvs-aqua"}},
		},
		{
			name: "firestore_short_key",
			cfg: Config{
				Backend:  BackendConfig{Driver: "firestore"},
				Firebase: FirebaseConfig{APIKey: "short", ProjectID: "mvs-aqua"},
			},
			want: Local{},
		},
		{
			name: "firestore_placeholder_project",
			cfg: Config{
				Backend:  BackendConfig{Driver: "firestore"},
				Firebase: FirebaseConfig{APIKey: "AIzaSyA-0123456789", ProjectID: "your_project_id"},
			},
			want: Local{},
		},
		{
			name: "postgres_configured",
			cfg: Config{
				Backend: BackendConfig{Driver: "postgres"},
				DB:      DBConfig{Host: "db", Port: 5432},
			},
			want: RemotePostgres{DB: DBConfig{Host: "db", Port: 5432}},
		},
		{
			name: "postgres_without_host",
			cfg:  Config{Backend: BackendConfig{Driver: "postgres"}},
			want: Local{},
		},
		{
			name: "unknown_driver",
			cfg:  Config{Backend: BackendConfig{Driver: "dynamo"}},
			want: Local{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.cfg.Mode())
		})
	}
}

func TestDBConfig_DSN(t *testing.T) {
	c := DBConfig{User: "u", Password: "p", Host: "h", Port: 5433, Name: "n", SSLMode: "disable"}
	assert.Equal(t, "postgres://u:p@h:5433/n?sslmode=disable", c.DSN())
}
