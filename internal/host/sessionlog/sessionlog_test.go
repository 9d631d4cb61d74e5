package sessionlog

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLogCommandAndGetRecent(t *testing.T) {
	log := New(10)
	log.LogCommand("move", map[string]any{"command_id": "1"})
	log.LogCommand("focus", map[string]any{"command_id": "2"})

	recent := log.GetRecent(10)
	require.Len(t, recent, 2)
	assert.Equal(t, CategoryCommand, recent[0].Category)
	assert.Equal(t, "move", recent[0].Data["type"])
	assert.Equal(t, "focus", recent[1].Data["type"])
}

func TestGetByCategoryFilters(t *testing.T) {
	log := New(10)
	log.LogCommand("move", nil)
	log.LogError("boom", nil)
	log.LogState(map[string]any{"status": "idle"})

	errs := log.GetByCategory(CategoryError, 10)
	require.Len(t, errs, 1)
	assert.Equal(t, "boom", errs[0].Data["error"])
}

func TestCircularBufferDropsOldest(t *testing.T) {
	log := New(3)
	for i := 0; i < 5; i++ {
		log.LogCommand("cmd", map[string]any{"n": i})
	}
	assert.Equal(t, 3, log.Len())
	recent := log.GetRecent(3)
	require.Len(t, recent, 3)
	assert.Equal(t, 2, recent[0].Data["n"])
	assert.Equal(t, 3, recent[1].Data["n"])
	assert.Equal(t, 4, recent[2].Data["n"])
}

func TestClearEmptiesLog(t *testing.T) {
	log := New(10)
	log.LogCommand("move", nil)
	log.Clear()
	assert.Equal(t, 0, log.Len())
}
