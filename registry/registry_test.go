package registry

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegisterAndGet(t *testing.T) {
	r := New()
	require.NoError(t, r.Register("BETA_DOCS", "new docs renderer", false))
	require.NoError(t, r.Register("ALPHA", "", true))

	f, err := r.Get("BETA_DOCS")
	require.NoError(t, err)
	assert.Equal(t, "new docs renderer", f.Description)
	assert.False(t, f.EnabledByDefault)

	names := []string{}
	for _, f := range r.List() {
		names = append(names, f.Name)
	}
	assert.Equal(t, []string{"BETA_DOCS", "ALPHA"}, names)
}

func TestRegisterRejectsBadInput(t *testing.T) {
	r := New()
	assert.ErrorIs(t, r.Register("beta-docs", "", false), ErrInvalidFeatureName)
	assert.ErrorIs(t, r.Register("", "", false), ErrInvalidFeatureName)

	require.NoError(t, r.Register("X", "", false))
	assert.ErrorIs(t, r.Register("X", "", true), ErrDuplicateFeature)

	r.Seal()
	assert.True(t, r.Sealed())
	assert.ErrorIs(t, r.Register("Y", "", false), ErrRegistrySealed)
}

func TestGetUnknown(t *testing.T) {
	_, err := New().Get("MISSING")
	assert.ErrorIs(t, err, ErrUnknownFeature)
}

func TestListIsACopy(t *testing.T) {
	r := New()
	require.NoError(t, r.Register("X", "", false))
	list := r.List()
	list[0].Name = "MUTATED"

	f, err := r.Get("X")
	require.NoError(t, err)
	assert.Equal(t, "X", f.Name)
}

func TestDefaultCatalogue(t *testing.T) {
	r := Default()
	assert.True(t, r.Sealed())
	assert.Len(t, r.List(), len(defaultFeatures))
	assert.True(t, r.Has(InlineDocs))

	f, err := r.Get(DiscordTokenRemover)
	require.NoError(t, err)
	assert.True(t, f.EnabledByDefault)
}
