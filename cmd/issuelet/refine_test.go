package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseTemplateArgs(t *testing.T) {
	t.Run("valid pairs", func(t *testing.T) {
		args, err := parseTemplateArgs([]string{"priority=high", "owner=platform-team"})
		require.NoError(t, err)
		assert.Equal(t, map[string]string{
			"priority": "high",
			"owner":    "platform-team",
		}, args)
	})

	t.Run("value may contain equals signs", func(t *testing.T) {
		args, err := parseTemplateArgs([]string{"query=status=OPEN"})
		require.NoError(t, err)
		assert.Equal(t, "status=OPEN", args["query"])
	})

	t.Run("empty input", func(t *testing.T) {
		args, err := parseTemplateArgs(nil)
		require.NoError(t, err)
		assert.Empty(t, args)
	})

	t.Run("missing separator", func(t *testing.T) {
		_, err := parseTemplateArgs([]string{"no-separator"})
		assert.Error(t, err)
	})

	t.Run("empty key", func(t *testing.T) {
		_, err := parseTemplateArgs([]string{"=value"})
		assert.Error(t, err)
	})

	t.Run("later pair wins", func(t *testing.T) {
		args, err := parseTemplateArgs([]string{"k=first", "k=second"})
		require.NoError(t, err)
		assert.Equal(t, "second", args["k"])
	})
}
