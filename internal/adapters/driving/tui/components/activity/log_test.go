package activity

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLog_Add(t *testing.T) {
	log := NewLog(nil)

	log.Add(LevelInfo, "snapshot updated")
	log.Add(LevelError, "reassignment failed: %v", "conflict")

	require.Equal(t, 2, log.Len())
	assert.Equal(t, "snapshot updated", log.Entries()[0].Text)
	assert.Equal(t, "reassignment failed: conflict", log.Entries()[1].Text)
	assert.Equal(t, LevelError, log.Entries()[1].Level)
}

func TestLog_EvictsOldestAtCapacity(t *testing.T) {
	log := NewLog(nil)

	for i := 0; i < maxEntries+25; i++ {
		log.Add(LevelInfo, "entry %d", i)
	}

	require.Equal(t, maxEntries, log.Len())
	assert.Equal(t, "entry 25", log.Entries()[0].Text)
	assert.Equal(t, fmt.Sprintf("entry %d", maxEntries+24), log.Entries()[log.Len()-1].Text)
}

func TestLog_View_Empty(t *testing.T) {
	log := NewLog(nil)

	assert.Contains(t, log.View(), "No activity yet")
}

func TestLog_View_ShowsNewestEntries(t *testing.T) {
	log := NewLog(nil)
	log.SetDimensions(80, 8)

	for i := 0; i < 20; i++ {
		log.Add(LevelInfo, "entry %d", i)
	}

	view := log.View()
	assert.Contains(t, view, "entry 19")
	assert.NotContains(t, view, "entry 0\n")
}
