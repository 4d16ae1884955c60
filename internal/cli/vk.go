package cli

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/Prikur76/quiz-bots/internal/config"
	"github.com/Prikur76/quiz-bots/internal/logging"
	"github.com/Prikur76/quiz-bots/internal/transport/vk"
)

// NewVKCmd builds the subcommand running the VK bot.
func NewVKCmd(configPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "vk",
		Short: "Run the VK quiz bot",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runVK(cmd.Context(), *configPath)
		},
	}
}

func runVK(parent context.Context, configPath string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}
	if cfg.VK.Token == "" || cfg.VK.GroupID == 0 {
		return fmt.Errorf("vk token and group id are not configured")
	}
	log := logging.New(cfg.Logging)

	ctx, stop := signal.NotifyContext(parent, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	eng, err := buildEngine(ctx, cfg, log)
	if err != nil {
		return err
	}

	bot := vk.New(cfg.VK, eng, log)
	err = bot.Run(ctx)
	log.Info("vk bot stopped")
	return err
}
