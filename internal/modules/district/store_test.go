package district

import (
	"context"
	"testing"

	"freightquote/internal/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStore_FindByLocation(t *testing.T) {
	store := NewStore(testutil.DB(t))
	ctx := context.Background()

	tests := []struct {
		key  string
		want string
	}{
		{key: "manchester", want: "MAN"},
		{key: "m1 4bt", want: "MAN"},
		{key: "ls1", want: "LDS"},
		{key: "ec1 2aa", want: "LDN"},
	}
	for _, tt := range tests {
		d, err := store.FindByLocation(ctx, tt.key)
		require.NoError(t, err, tt.key)
		assert.Equal(t, tt.want, d.Code, tt.key)
	}

	_, err := store.FindByLocation(ctx, "m14")
	assert.ErrorIs(t, err, ErrNotFound)

	d, err := store.Get(ctx, "LDN")
	require.NoError(t, err)
	assert.Equal(t, "1.25", d.BaseMultiplier.StringFixed(2))

	all, err := store.List(ctx)
	require.NoError(t, err)
	assert.GreaterOrEqual(t, len(all), 5)
}
