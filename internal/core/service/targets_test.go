package service

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const targetsYAML = `
services:
  - name: payments
    start_date: 2019-01-01
    languages: [Python, go]
    extensions: [".proto", "py"]
    repositories:
      - name: acme/payments
        initial_loc: 1200
        excluding: ["migrations/"]
      - name: acme/payments-v2
        start_date: 2020-06-01
`

func TestLoadTargets(t *testing.T) {
	path := filepath.Join(t.TempDir(), "targets.yaml")
	require.NoError(t, os.WriteFile(path, []byte(targetsYAML), 0o644))

	targets, err := LoadTargets(path)
	require.NoError(t, err)
	require.Len(t, targets, 1)

	svc := targets[0]
	assert.Equal(t, "payments", svc.Name)
	assert.Equal(t, []string{"proto", "py", "go"}, svc.ResolvedExtensions())
	require.Len(t, svc.Repositories, 2)
	assert.Equal(t, 1200, *svc.Repositories[0].InitialLOC)
	assert.Equal(t, []string{"migrations/"}, svc.Repositories[0].Excluding)
	assert.Nil(t, svc.Repositories[1].InitialLOC)
}

func TestLoadTargetsRejectsBadDate(t *testing.T) {
	path := filepath.Join(t.TempDir(), "targets.yaml")
	require.NoError(t, os.WriteFile(path, []byte("services:\n  - name: x\n    start_date: yesterday\n"), 0o644))

	_, err := LoadTargets(path)
	assert.Error(t, err)
}

func TestParseDate(t *testing.T) {
	d, err := ParseDate("")
	require.NoError(t, err)
	assert.Nil(t, d)

	d, err = ParseDate("2020-02-03")
	require.NoError(t, err)
	assert.Equal(t, date(2020, 2, 3), *d)

	d, err = ParseDate("2020-02-03T10:00:00+02:00")
	require.NoError(t, err)
	assert.Equal(t, 8, d.Hour())
}
