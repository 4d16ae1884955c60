package cli

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/Prikur76/quiz-bots/internal/config"
	"github.com/Prikur76/quiz-bots/internal/logging"
	"github.com/Prikur76/quiz-bots/internal/transport/telegram"
)

// NewTelegramCmd builds the subcommand running the Telegram bot.
func NewTelegramCmd(configPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "telegram",
		Short: "Run the Telegram quiz bot",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTelegram(cmd.Context(), *configPath)
		},
	}
}

func runTelegram(parent context.Context, configPath string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}
	if cfg.Telegram.Token == "" {
		return fmt.Errorf("telegram token is not configured")
	}
	log := logging.New(cfg.Logging)

	ctx, stop := signal.NotifyContext(parent, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	eng, err := buildEngine(ctx, cfg, log)
	if err != nil {
		return err
	}

	bot, err := telegram.New(cfg.Telegram, eng, log)
	if err != nil {
		return err
	}
	err = bot.Run(ctx)
	log.Info("telegram bot stopped")
	return err
}
