package profile

import (
	"strings"
	"testing"

	ierr "github.com/flexprice/checkout/internal/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizeName(t *testing.T) {
	name, err := NormalizeName("  Bat-Erdene  ")
	require.NoError(t, err)
	assert.Equal(t, "Bat-Erdene", name)

	_, err = NormalizeName("   ")
	assert.True(t, ierr.IsValidation(err))

	_, err = NormalizeName(strings.Repeat("a", MaxNameLength+1))
	assert.True(t, ierr.IsValidation(err))

	name, err = NormalizeName(strings.Repeat("ө", MaxNameLength))
	require.NoError(t, err)
	assert.Len(t, []rune(name), MaxNameLength)
}
