package tour

import (
	"strconv"
	"time"

	"github.com/google/uuid"
)

// NewPropertyID returns a collision-resistant identifier for a new property.
// Random 128-bit UUIDs replace short random strings so concurrent additions
// within one session cannot silently collide.
func NewPropertyID() string {
	return uuid.New().String()
}

// NewShareID returns the identifier a schedule is published under: the
// given moment's Unix milliseconds in base 36. Re-publishing within the
// same millisecond overwrites the prior snapshot, which is the intended
// overwrite semantics for share ids.
func NewShareID(now time.Time) string {
	return strconv.FormatInt(now.UnixMilli(), 36)
}
