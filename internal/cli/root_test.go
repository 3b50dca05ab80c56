package cli

import (
	"bytes"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCommandPresence(t *testing.T) {
	cmd := NewRootCommand()

	for _, name := range []string{"migrate", "seed", "create-user"} {
		t.Run(name, func(t *testing.T) {
			subCmd, _, err := cmd.Find([]string{name})
			require.NoError(t, err)
			assert.Equal(t, name, subCmd.Name())
		})
	}
}

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()

	cmd := NewRootCommand()
	out := &bytes.Buffer{}
	cmd.SetOut(out)
	cmd.SetErr(out)
	cmd.SetArgs(append(args, "--log-level", "warn"))

	err := cmd.Execute()
	return out.String(), err
}

func TestSeedAndCreateUser(t *testing.T) {
	dsn := filepath.Join(t.TempDir(), "ledger.db") + "?_foreign_keys=on"
	db := []string{"--driver", "sqlite3", "--dsn", dsn}

	out, err := execute(t, append([]string{"migrate"}, db...)...)
	require.NoError(t, err)
	assert.Contains(t, out, "schema aplicado (sqlite3)")

	out, err = execute(t, append([]string{"seed", "--admin-password", "admin123"}, db...)...)
	require.NoError(t, err)
	assert.Contains(t, out, "pontos de venda criados: 4")
	assert.Contains(t, out, "usuário criado: admin (admin) senha: admin123")
	assert.Contains(t, out, "usuário criado: staff1 (staff)")

	out, err = execute(t, append([]string{"seed"}, db...)...)
	require.NoError(t, err)
	assert.Contains(t, out, "pontos de venda criados: 0")
	assert.Contains(t, out, "usuário existente: admin")

	out, err = execute(t, append([]string{"create-user", "-u", "staff2", "-n", "직원2", "-p", "staff234"}, db...)...)
	require.NoError(t, err)
	assert.Contains(t, out, "usuário criado: staff2")

	_, err = execute(t, append([]string{"create-user", "-u", "staff2", "-n", "직원2", "-p", "staff234"}, db...)...)
	assert.ErrorContains(t, err, "nome de usuário já cadastrado")

	_, err = execute(t, append([]string{"create-user", "-u", "boss", "-n", "Boss", "-p", "boss1234", "-r", "owner"}, db...)...)
	assert.ErrorContains(t, err, "papel inválido")
}

func TestDSNRequiresDriver(t *testing.T) {
	_, err := execute(t, "migrate", "--dsn", "ledger.db")
	assert.ErrorContains(t, err, "--dsn exige --driver")
}
