package rollout

import (
	"crypto/sha256"
	"encoding/binary"
	"strconv"

	"guildgate/models"
)

// Buckets is the number of buckets guilds are hashed into.
const Buckets = 100

// Bucket maps (rolloutName, guildID) to a stable value in [0, Buckets).
func Bucket(rolloutName string, guildID int64) int {
	sum := sha256.Sum256([]byte(rolloutName + ":" + strconv.FormatInt(guildID, 10)))
	return int(binary.BigEndian.Uint64(sum[:8]) % Buckets)
}

// IsGuildIncluded reports whether guildID falls within the rollout's
// current percentage. A guild included at P stays included at any P' >= P.
func IsGuildIncluded(r *models.Rollout, guildID int64) bool {
	return Bucket(r.Name, guildID) < r.CurrentPercent
}
