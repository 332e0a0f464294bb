package utils

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLikeContains_EscapesWildcards(t *testing.T) {
	assert.Equal(t, `%ann%`, LikeContains("ann"))
	assert.Equal(t, `%50\%\_off\\%`, LikeContains(`50%_off\`))
}

func TestNormalizeSpace(t *testing.T) {
	assert.Equal(t, "Ann Lee", NormalizeSpace("  Ann \t  Lee\n"))
}

func TestParseDay(t *testing.T) {
	d, err := ParseDay("2024-01-05")
	require.NoError(t, err)
	assert.Equal(t, time.Date(2024, 1, 5, 0, 0, 0, 0, time.UTC), d)

	d, err = ParseDay("2024-01-05T23:30:00-02:00")
	require.NoError(t, err)
	assert.Equal(t, time.Date(2024, 1, 6, 0, 0, 0, 0, time.UTC), d, "truncated to the UTC day")

	_, err = ParseDay("05/01/2024")
	assert.Error(t, err)
}

func TestRequestIDContext(t *testing.T) {
	ctx := WithRequestID(context.Background(), "rid-1")
	assert.Equal(t, "rid-1", RequestID(ctx))
	assert.Empty(t, RequestID(context.Background()))
}
