package gateway

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tinyland-inc/clawbridge/pkg/bus"
	"github.com/tinyland-inc/clawbridge/pkg/config"
)

func TestNewGatewayCommand(t *testing.T) {
	cmd := NewGatewayCommand()

	require.NotNil(t, cmd)

	assert.Equal(t, "gateway", cmd.Use)
	assert.Contains(t, cmd.Aliases, "g")

	assert.Nil(t, cmd.Run)
	assert.NotNil(t, cmd.RunE)

	assert.True(t, cmd.HasFlags())
	assert.NotNil(t, cmd.Flags().Lookup("debug"))
}

func TestBuildChannels(t *testing.T) {
	msgBus := bus.NewMessageBus()
	defer msgBus.Close()

	cfg := config.DefaultConfig()
	assert.Empty(t, buildChannels(cfg, msgBus))

	cfg.Channels.Telegram.Enabled = true
	cfg.Channels.Telegram.Token = "tg"
	chs := buildChannels(cfg, msgBus)
	require.Len(t, chs, 1)
	assert.Equal(t, "telegram", chs[0].Name())

	cfg.Channels.Discord.Enabled = true
	cfg.Channels.Discord.Token = "dc"
	chs = buildChannels(cfg, msgBus)
	require.Len(t, chs, 2)
}
