package persistence

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/a1dsv/NOVA-sub002/internal/domain"
)

func TestCursorRoundTrip(t *testing.T) {
	c := &domain.Cursor{Date: time.Date(2026, 2, 3, 4, 5, 6, 7, time.UTC), ID: "w|1"}

	decoded, err := DecodeCursor(EncodeCursor(c))
	require.NoError(t, err)
	require.Equal(t, c, decoded)
}

func TestDecodeCursorEdgeCases(t *testing.T) {
	require.Empty(t, EncodeCursor(nil))

	c, err := DecodeCursor("  ")
	require.NoError(t, err)
	require.Nil(t, c)

	_, err = DecodeCursor("!!!")
	require.Error(t, err)

	_, err = DecodeCursor("bm8tc2VwYXJhdG9y")
	require.Error(t, err)
}
