package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/smartcity/parking/internal/domain"
)

func TestEventCatalogFilters(t *testing.T) {
	c := NewEventCatalog(DefaultEvents())

	assert.Len(t, c.List(0, ""), 10)
	assert.Len(t, c.List(6, ""), 2)
	assert.Len(t, c.List(0, "2026-02-07"), 2)

	onDay := c.List(6, "2026-02-08")
	require.Len(t, onDay, 1)
	assert.Equal(t, "Super Bowl Watch Party", onDay[0].Name)

	assert.Empty(t, c.List(5, ""))
	assert.NotNil(t, c.List(5, ""))
}

func TestEventCatalogGet(t *testing.T) {
	c := NewEventCatalog(DefaultEvents())
	e, err := c.Get(7)
	require.NoError(t, err)
	assert.Equal(t, "Mariners vs Yankees", e.Name)

	_, err = c.Get(99)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}
