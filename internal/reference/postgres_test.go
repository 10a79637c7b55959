package reference_test

import (
	"context"
	"os"
	"testing"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/seenimoa/intrinsic/internal/reference"
)

func TestPostgresSourceRoundTrip(t *testing.T) {
	url := os.Getenv("INTRINSIC_TEST_DATABASE_URL")
	if url == "" {
		t.Skip("INTRINSIC_TEST_DATABASE_URL not set")
	}
	ctx := context.Background()
	pool, err := pgxpool.New(ctx, url)
	require.NoError(t, err)
	defer pool.Close()

	src := reference.PostgresSource{DB: pool}
	want := reference.Default()
	require.NoError(t, src.Seed(ctx, want))

	got, err := src.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, want.Spreads, got.Spreads)
	assert.ElementsMatch(t, want.Countries, got.Countries)
	assert.Equal(t, want.Regions, got.Regions)
	assert.Equal(t, want.RDLives, got.RDLives)
}
