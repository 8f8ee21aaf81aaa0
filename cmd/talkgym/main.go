package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/talkgym/talkgym-client/internal/app"
	"github.com/talkgym/talkgym-client/internal/config"
	"github.com/talkgym/talkgym-client/internal/log"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "talkgym:", err)
		os.Exit(1)
	}
}

// cliEnv carries pieces shared by all subcommands, resolved once in the root
// PersistentPreRun.
type cliEnv struct {
	cfg    config.Config
	logger *zerolog.Logger
	app    *app.App
}

func newRootCmd() *cobra.Command {
	env := &cliEnv{}
	var configPath string

	root := &cobra.Command{
		Use:           "talkgym",
		Short:         "Client for the group-discussion and interview practice platform",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			bootstrap := log.New("info")
			cfg, path, err := config.Load(bootstrap, configPath)
			if err != nil {
				return err
			}

			env.cfg = cfg
			env.logger = log.New(cfg.LogLevel)
			env.logger.Debug().Str("config", path).Msg("configuration loaded")

			a, err := app.New(cfg, env.logger)
			if err != nil {
				return err
			}
			env.app = a
			return nil
		},
		PersistentPostRun: func(*cobra.Command, []string) {
			if env.app != nil {
				env.app.Close()
			}
		},
	}

	root.PersistentFlags().StringVar(&configPath, "config", "", "path to config.yaml")

	root.AddCommand(
		newLoginCmd(env),
		newLogoutCmd(env),
		newSessionsCmd(env),
		newJoinCmd(env),
		newRoomCmd(env),
		newEndCmd(env),
		newAnalysisCmd(env),
	)
	return root
}
