package gateway

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"

	"github.com/tinyland-inc/clawbridge/cmd/clawbridge/internal"
	"github.com/tinyland-inc/clawbridge/pkg/bus"
	"github.com/tinyland-inc/clawbridge/pkg/channels"
	"github.com/tinyland-inc/clawbridge/pkg/channels/discord"
	"github.com/tinyland-inc/clawbridge/pkg/channels/telegram"
	"github.com/tinyland-inc/clawbridge/pkg/config"
	"github.com/tinyland-inc/clawbridge/pkg/logger"
)

func gatewayCmd(debug bool) error {
	if debug {
		logger.SetLevel(logger.DEBUG)
		fmt.Println("🔍 Debug mode enabled")
	}

	cfg, err := internal.LoadConfig()
	if err != nil {
		return fmt.Errorf("error loading config: %w", err)
	}

	msgBus := bus.NewMessageBus()
	channelManager := channels.NewManager(msgBus, buildChannels(cfg, msgBus)...)

	names := channelManager.Names()
	if len(names) > 0 {
		fmt.Printf("✓ Channels enabled: %s\n", strings.Join(names, ", "))
	} else {
		fmt.Println("⚠ Warning: No channels enabled")
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if err := channelManager.StartAll(ctx); err != nil {
		return fmt.Errorf("error starting channels: %w", err)
	}

	go channelManager.Run(ctx)
	go consumeInbound(ctx, msgBus, cfg.Gateway.LogInbound)

	fmt.Println("✓ Gateway started")
	fmt.Println("Press Ctrl+C to stop")

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt)
	<-sigChan

	fmt.Println("\nShutting down...")
	cancel()
	channelManager.StopAll(context.Background())
	msgBus.Close()
	fmt.Println("✓ Gateway stopped")

	return nil
}

// buildChannels constructs an adapter for each channel enabled in config.
func buildChannels(cfg *config.Config, msgBus *bus.MessageBus) []channels.Channel {
	var chs []channels.Channel
	if cfg.Channels.Telegram.Enabled {
		chs = append(chs, telegram.NewTelegramChannel(cfg.Channels.Telegram, msgBus))
	}
	if cfg.Channels.Discord.Enabled {
		chs = append(chs, discord.NewDiscordChannel(cfg.Channels.Discord, msgBus))
	}
	return chs
}

// consumeInbound drains the inbound side of the bus. The gateway binary
// has no application handler of its own; it logs each normalized message
// so the bus never backs up and operators can watch traffic.
func consumeInbound(ctx context.Context, msgBus *bus.MessageBus, logInbound bool) {
	for {
		env, ok := msgBus.ConsumeInbound(ctx)
		if !ok {
			return
		}
		if !logInbound {
			continue
		}
		logger.InfoCF("gateway", "Inbound message", map[string]any{
			"channel": env.Channel,
			"type":    string(env.Message.Type),
			"from":    env.Message.From.ID,
			"to":      env.Message.To.ID,
			"id":      env.Message.ID.String(),
		})
	}
}
