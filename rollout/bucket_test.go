package rollout

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"guildgate/models"
)

func TestBucketIsStableAndInRange(t *testing.T) {
	for g := int64(0); g < 500; g++ {
		b := Bucket("beta-docs", g)
		assert.GreaterOrEqual(t, b, 0)
		assert.Less(t, b, Buckets)
		assert.Equal(t, b, Bucket("beta-docs", g))
	}
}

func TestBucketDependsOnRolloutName(t *testing.T) {
	differs := false
	for g := int64(0); g < 50; g++ {
		if Bucket("a", g) != Bucket("b", g) {
			differs = true
			break
		}
	}
	assert.True(t, differs)
}

func TestInclusionIsMonotonic(t *testing.T) {
	r := &models.Rollout{Name: "beta-docs"}
	for g := int64(1000); g < 1300; g++ {
		includedAt := -1
		for p := 0; p <= 100; p++ {
			r.CurrentPercent = p
			in := IsGuildIncluded(r, g)
			if includedAt >= 0 {
				assert.True(t, in, "guild %d dropped out at %d%% after joining at %d%%", g, p, includedAt)
			} else if in {
				includedAt = p
			}
		}
		assert.GreaterOrEqual(t, includedAt, 1, "nobody is included at 0%%")
	}
}

func TestInclusionShareTracksPercent(t *testing.T) {
	r := &models.Rollout{Name: "share", CurrentPercent: 30}
	included := 0
	const guilds = 10000
	for g := int64(0); g < guilds; g++ {
		if IsGuildIncluded(r, g) {
			included++
		}
	}
	assert.InDelta(t, 0.30, float64(included)/guilds, 0.03)
}
