package main

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"virasat-setu/internal/artisan"
	"virasat-setu/internal/logger"
)

func init() { logger.Use(logger.Discard()) }

func TestSampleArtisansAreValid(t *testing.T) {
	for _, a := range sampleArtisans() {
		require.NoError(t, a.Validate(), a.Name)
	}
}

func TestSeedIsIdempotent(t *testing.T) {
	ctx := context.Background()
	repo := artisan.NewMemoryRepository()
	rows := sampleArtisans()

	added, skipped, err := seed(ctx, repo, rows)
	require.NoError(t, err)
	assert.Equal(t, len(rows), added)
	assert.Zero(t, skipped)

	added, skipped, err = seed(ctx, repo, sampleArtisans())
	require.NoError(t, err)
	assert.Zero(t, added)
	assert.Equal(t, len(rows), skipped)

	got, err := repo.List(ctx, artisan.Query{City: "Jaipur"})
	require.NoError(t, err)
	assert.Len(t, got, 3)
}
