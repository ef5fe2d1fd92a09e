package job

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestVariantKey(t *testing.T) {
	assert.Equal(t, "thumbs/medium/1700000000000-a1b2c3.png", VariantKey("medium", "1700000000000-a1b2c3.png"))
}

func TestWithinGracePeriod(t *testing.T) {
	fresh := fmt.Sprintf("%d-abcdef.png", time.Now().UnixMilli())
	assert.True(t, withinGracePeriod(fresh))

	stale := fmt.Sprintf("%d-abcdef.png", time.Now().Add(-2*time.Hour).UnixMilli())
	assert.False(t, withinGracePeriod(stale))

	// Variant keys carry the timestamp in the basename.
	assert.False(t, withinGracePeriod(VariantKey("thumbnail", stale)))

	// Unparsable keys are never reclaimed.
	assert.True(t, withinGracePeriod("legacy-import.png"))
	assert.True(t, withinGracePeriod("no_timestamp.png"))
}
