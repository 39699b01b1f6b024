package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:           "authcore",
	Short:         "Credential issuance and session lifecycle API",
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		// .envは無くてもよい（本番は環境変数で渡す）
		_ = godotenv.Load()
	},
}

func init() {
	rootCmd.AddCommand(serveCmd, migrateCmd, pruneCmd)
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		log.Error().Err(err).Msg("authcore exited")
		stop()
		os.Exit(1)
	}
}
