package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildDSN(t *testing.T) {
	tests := []struct {
		name    string
		db      Database
		want    string
		wantErr bool
	}{
		{
			name: "postgres monta URL com usuário e senha",
			db: Database{
				Driver:   DriverPostgres,
				User:     "sales",
				Password: "secret",
				URL:      "db:5432/northpalm?sslmode=disable",
			},
			want: "postgres://sales:secret@db:5432/northpalm?sslmode=disable",
		},
		{
			name: "sqlite usa caminho do arquivo com chaves estrangeiras",
			db:   Database{Driver: DriverSQLite, URL: "./data/sales.db"},
			want: "file:./data/sales.db?_foreign_keys=on&_busy_timeout=5000",
		},
		{
			name:    "driver desconhecido",
			db:      Database{Driver: "mysql"},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := BuildDSN(tt.db)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestConfig_ResolveSecretKey(t *testing.T) {
	t.Run("produção sem chave falha", func(t *testing.T) {
		cfg := &Config{App: App{Env: EnvProduction}}

		err := cfg.ResolveSecretKey()
		require.ErrorIs(t, err, ErrMissingSecretKey)
		assert.Empty(t, cfg.SecretKey)
	})

	t.Run("ambiente vazio é tratado como produção", func(t *testing.T) {
		cfg := &Config{}

		assert.ErrorIs(t, cfg.ResolveSecretKey(), ErrMissingSecretKey)
	})

	t.Run("desenvolvimento usa chave local", func(t *testing.T) {
		cfg := &Config{App: App{Env: EnvDevelopment}}

		require.NoError(t, cfg.ResolveSecretKey())
		assert.Equal(t, devSecretKey, cfg.SecretKey)
	})

	t.Run("chave configurada é mantida", func(t *testing.T) {
		cfg := &Config{App: App{Env: EnvProduction}, SecretKey: "segredo"}

		require.NoError(t, cfg.ResolveSecretKey())
		assert.Equal(t, "segredo", cfg.SecretKey)
	})
}
