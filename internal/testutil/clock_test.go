package testutil

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestManualClock_Now(t *testing.T) {
	at := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	c := NewManualClock(at)
	assert.Equal(t, at, c.Now())

	// Repeated reads do not advance
	assert.Equal(t, at, c.Now())
}

func TestManualClock_Advance(t *testing.T) {
	at := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	c := NewManualClock(at)

	c.Advance(90 * 24 * time.Hour)
	assert.Equal(t, at.Add(90*24*time.Hour), c.Now())

	c.Advance(-time.Hour)
	assert.Equal(t, at.Add(90*24*time.Hour-time.Hour), c.Now())
}

func TestManualClock_Set(t *testing.T) {
	c := NewManualClock(time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC))
	later := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

	c.Set(later)
	assert.Equal(t, later, c.Now())
}
