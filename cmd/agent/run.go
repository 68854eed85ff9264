package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/RodolfoMedinaCS/LinkLensV4/internal/dispatcher"
	"github.com/RodolfoMedinaCS/LinkLensV4/internal/extractor"
	"github.com/RodolfoMedinaCS/LinkLensV4/internal/session"
	"github.com/RodolfoMedinaCS/LinkLensV4/pkg/httpclient"
	"github.com/RodolfoMedinaCS/LinkLensV4/pkg/logger"
	"github.com/RodolfoMedinaCS/LinkLensV4/pkg/redisclient"
)

func newRunCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "run",
		Short: "Run the agent's message loop",
		Long:  "Listens on the agent's redis channel for capture and session sync messages.",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			log, err := createLogger(cfg)
			if err != nil {
				return err
			}
			defer func() { _ = log.Sync() }()

			redisClient, err := redisclient.New(cfg.Redis)
			if err != nil {
				return err
			}
			defer func() { _ = redisClient.Close() }()

			d := dispatcher.New(
				cfg.Capture,
				extractor.New(log),
				session.NewStore(redisClient),
				httpclient.NewDefault(),
				log,
			)

			ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			channel := "extension:" + cfg.Bridge.ExtensionID
			log.Info("agent message loop starting",
				logger.String("channel", channel))

			sub := redisClient.Subscribe(ctx, channel)
			defer sub.Close()

			for {
				select {
				case <-ctx.Done():
					log.Info("agent message loop stopped")
					return nil
				case msg, ok := <-sub.Channel():
					if !ok {
						return nil
					}
					handleMessage(ctx, d, log, []byte(msg.Payload))
				}
			}
		},
	}
}

func handleMessage(ctx context.Context, d *dispatcher.Dispatcher, log logger.Logger, payload []byte) {
	resp, err := d.HandleMessage(ctx, payload)
	if err != nil {
		log.Warn("ignoring malformed message", logger.Error(err))
		return
	}
	if resp == nil {
		return
	}
	log.Info("message handled", logger.Any("response", resp))
}
