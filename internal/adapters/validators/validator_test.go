package validators

import (
	"testing"

	"github.com/just-nibble/service-miner/pkg/errcodes"
	"github.com/stretchr/testify/assert"
)

func TestRepo(t *testing.T) {
	assert.NoError(t, Repo("acme/api").Validate())
	assert.ErrorIs(t, Repo("acme").Validate(), errcodes.ErrInvalidRepositoryName)
	assert.ErrorIs(t, Repo("a/b/c").Validate(), errcodes.ErrInvalidRepositoryName)

	owner, name := Repo("acme/api").Split()
	assert.Equal(t, "acme", owner)
	assert.Equal(t, "api", name)
}

func TestBinDays(t *testing.T) {
	assert.NoError(t, BinDays(30).Validate())
	assert.ErrorIs(t, BinDays(0).Validate(), errcodes.ErrInvalidTimeBins)
	assert.Error(t, BinDays(maxBinDays+1).Validate())
}

func TestServiceNames(t *testing.T) {
	assert.Equal(t, []string{"a", "b"}, ServiceNames(" a, ,b ").List())
	assert.Error(t, ServiceNames(" , ").Validate())
}
