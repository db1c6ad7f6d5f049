package main

import (
	"context"
	"fmt"
	"math/rand/v2"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	"webexbot/internal/adapter/transport"
	"webexbot/internal/adapter/webexapi"
	"webexbot/internal/adapter/webhook"
	"webexbot/internal/domain"
	"webexbot/internal/infra/config"
	"webexbot/internal/infra/logger"
	"webexbot/internal/usecase"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "fatal: %v\n", err)
		os.Exit(1)
	}
}

func configPath() string {
	for i, arg := range os.Args {
		if arg == "--config" && i+1 < len(os.Args) {
			return os.Args[i+1]
		}
		if strings.HasPrefix(arg, "--config=") {
			return strings.TrimPrefix(arg, "--config=")
		}
	}
	if p := os.Getenv("WEBEXBOT_CONFIG"); p != "" {
		return p
	}
	return "config.yaml"
}

func run() error {
	// 1. Config
	cfg, err := config.Load(configPath())
	if err != nil {
		return fmt.Errorf("config: %w", err)
	}

	// 2. Logger
	log, logCloser, err := logger.New(cfg.Logger)
	if err != nil {
		return fmt.Errorf("logger: %w", err)
	}
	defer logCloser()

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	// 3. REST client and runtime
	client := webexapi.New(cfg.API, cfg.Bot, log)
	runtime := usecase.NewRuntime(client, log)
	registerCommands(runtime)

	// 4. Webhook front door
	if cfg.Webhook.Enabled {
		srv := webhook.NewServer(cfg.Webhook, log, runtime.HandleMessageEvent)
		if err := srv.Start(ctx); err != nil {
			return fmt.Errorf("webhook: %w", err)
		}
		defer func() {
			stopCtx, stopCancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer stopCancel()
			if err := srv.Stop(stopCtx); err != nil {
				log.Error("webhook shutdown error", "error", err)
			}
		}()
	}

	// 5. Provision the device and connect the realtime transport
	device, err := client.ResolveOrCreateDevice(ctx, true)
	if err != nil {
		return fmt.Errorf("device provisioning: %w", err)
	}
	log.Info("device ready", "name", device.Name, "endpoint", device.WebSocketURL)

	tr := transport.New(cfg.Bot.Token, log,
		transport.WithCloseTimeout(cfg.Transport.CloseTimeout))
	if err := tr.Connect(ctx, device.WebSocketURL); err != nil {
		return fmt.Errorf("realtime connect: %w", err)
	}

	// 6. Receive loop; blocks until shutdown or the peer goes away
	listenErr := tr.Listen(ctx, func(payload string) {
		runtime.HandleFrame(ctx, payload)
	})

	// 7. Graceful close, then drain in-flight handlers
	closeCtx, closeCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer closeCancel()
	if err := tr.Close(closeCtx); err != nil {
		log.Error("transport close error", "error", err)
	}
	runtime.Wait()

	return listenErr
}

// registerCommands installs the built-in commands.
func registerCommands(rt *usecase.Runtime) {
	rt.AddCommand("ping", nil, domain.HandlerFunc(handlePing))
	rt.AddCommand("roll",
		[]domain.ArgumentSpec{domain.RequiredArg("sides")},
		domain.HandlerFunc(handleRoll))
	rt.AddCommand("help", nil, domain.HandlerFunc(
		func(ctx context.Context, client domain.Messenger, msg domain.Message, _, _ []domain.ArgBinding) {
			client.SendMessage(ctx, msg.Reply("commands: "+strings.Join(rt.Commands(), ", ")))
		}))
}

func handlePing(ctx context.Context, client domain.Messenger, msg domain.Message, _, _ []domain.ArgBinding) {
	client.SendMessage(ctx, msg.Reply("pong"))
}

func handleRoll(ctx context.Context, client domain.Messenger, msg domain.Message, required, _ []domain.ArgBinding) {
	sides, err := strconv.Atoi(required[0].Value)
	if err != nil || sides < 1 {
		client.SendMessage(ctx, msg.Reply("roll needs a positive number of sides"))
		return
	}
	client.SendMessage(ctx, msg.Reply(fmt.Sprintf("rolled a %d", 1+rand.IntN(sides))))
}
