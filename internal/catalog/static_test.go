package catalog_test

import (
	"cartstore/internal/catalog"
	"cartstore/internal/models"
	"cartstore/pkg/config"
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStatic_GetProduct(t *testing.T) {
	c := catalog.NewStatic([]models.Product{
		{Id: 20, Name: "Widget"},
		{Id: 30, Name: "Gadget"},
		{Id: 20, Name: "Widget v2"},
	})
	assert.Equal(t, 2, c.Len())

	p, ok, err := c.GetProduct(context.Background(), 20)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, models.Product{Id: 20, Name: "Widget v2"}, p)

	_, ok, err = c.GetProduct(context.Background(), 99)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestStatic_ContextCanceled(t *testing.T) {
	c := catalog.NewStatic(nil)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, _, err := c.GetProduct(ctx, 1)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestFromConfig(t *testing.T) {
	c := catalog.FromConfig(config.CatalogConfig{
		Products: []config.ProductConfig{
			{Id: 20, Name: "Widget", Description: "blue", Price: 2.5},
		},
	})

	p, ok, err := c.GetProduct(context.Background(), 20)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, models.Product{Id: 20, Name: "Widget", Description: "blue", Price: 2.5}, p)
}
