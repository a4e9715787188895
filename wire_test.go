package main

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hay-kot/shopcart/internal/commands"
	"github.com/hay-kot/shopcart/internal/core/cart"
	"github.com/hay-kot/shopcart/internal/core/config"
)

func TestWireService_LogsOneComponentPerLine(t *testing.T) {
	var buf bytes.Buffer
	prev := log.Logger
	log.Logger = zerolog.New(&buf).Level(zerolog.DebugLevel)
	t.Cleanup(func() { log.Logger = prev })

	cfg := config.DefaultConfig()
	cfg.DataDir = t.TempDir()
	flags := &commands.Flags{Config: &cfg}

	require.NoError(t, wireService(flags))
	require.NotNil(t, flags.Service)
	require.NotNil(t, flags.Carts)

	_, err := flags.Service.AddSnapshot(context.Background(), cart.Snapshot{ID: "echo", Name: "Echo Dot", Price: 2999})
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.NotEmpty(t, lines)

	var sawShop bool
	for _, line := range lines {
		assert.LessOrEqual(t, strings.Count(line, `"component"`), 1, line)
		sawShop = sawShop || strings.Contains(line, `"component":"shop"`)
	}
	assert.True(t, sawShop, "cart update is logged by the shop component")
}
