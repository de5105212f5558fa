package main

import (
	"fmt"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestWatchConfigValidate(t *testing.T) {
	t.Run("defaults are valid", func(t *testing.T) {
		assert.NoError(t, NewWatchConfig().Validate())
	})

	t.Run("negative debounce rejected", func(t *testing.T) {
		config := &WatchConfig{DebounceTime: -1}
		assert.Error(t, config.Validate())
	})
}

func TestEventDebouncer(t *testing.T) {
	base := time.Date(2026, 8, 30, 12, 0, 0, 0, time.UTC)

	t.Run("suppresses repeats within the window", func(t *testing.T) {
		d := newEventDebouncer(500 * time.Millisecond)
		assert.True(t, d.allow("CREATE issues/bug-x", base))
		assert.False(t, d.allow("CREATE issues/bug-x", base.Add(100*time.Millisecond)))
		assert.True(t, d.allow("CREATE issues/bug-x", base.Add(600*time.Millisecond)))
	})

	t.Run("distinct keys are independent", func(t *testing.T) {
		d := newEventDebouncer(500 * time.Millisecond)
		assert.True(t, d.allow("CREATE issues/bug-x", base))
		assert.True(t, d.allow("WRITE issues/bug-x", base))
	})

	t.Run("stale entries are evicted", func(t *testing.T) {
		d := newEventDebouncer(500 * time.Millisecond)
		for i := 0; i < 100; i++ {
			d.allow(fmt.Sprintf("WRITE issues/bug-%d", i), base)
		}
		assert.Len(t, d.lastSeen, 100)

		d.allow("WRITE issues/bug-x", base.Add(time.Second))
		assert.Len(t, d.lastSeen, 1)
	})
}

func TestSplitPath(t *testing.T) {
	assert.Equal(t, []string{"bug-x"}, splitPath("bug-x"))
	assert.Equal(t, []string{"bug-x", "problem.md"}, splitPath(filepath.Join("bug-x", "problem.md")))
	assert.Empty(t, splitPath("."))
}
