package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jwulff/abyss-go/internal/config"
	"github.com/jwulff/abyss-go/internal/domain"
)

func TestRootCommands(t *testing.T) {
	root := newRootCmd()

	names := make(map[string]bool)
	for _, c := range root.Commands() {
		names[c.Name()] = true
	}
	for _, want := range []string{"serve", "report", "fetch", "history", "preview", "figure"} {
		assert.True(t, names[want], want)
	}

	assert.NotNil(t, root.PersistentFlags().Lookup("config"))
	assert.NotNil(t, root.PersistentFlags().Lookup("verbose"))
}

func TestFigureRejectsUnknownFloor(t *testing.T) {
	root := newRootCmd()
	root.SetArgs([]string{"figure", "--floor", "Floor 8"})

	err := root.Execute()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "floor")
}

func TestFetchTimeout(t *testing.T) {
	cfg := config.Default()
	assert.Equal(t, 3*cfg.Homa.Timeout, fetchTimeout(cfg))

	cfg.Homa.Timeout = 0
	assert.Positive(t, fetchTimeout(cfg))
}

func TestDisplayAddr(t *testing.T) {
	assert.Equal(t, "localhost:8050", displayAddr(":8050"))
	assert.Equal(t, "0.0.0.0:80", displayAddr("0.0.0.0:80"))
}

func TestFormatFetchState(t *testing.T) {
	state := domain.NewFetchState(domain.SourceNames)
	assert.Contains(t, formatFetchState(state), "never fetched")

	state.RecordSuccess(12)
	assert.Contains(t, formatFetchState(state), "ok")

	state.RecordError("connection refused")
	line := formatFetchState(state)
	assert.Contains(t, line, "failing")
	assert.Contains(t, line, "1 error(s): connection refused")
}
