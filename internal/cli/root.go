package cli

import (
	"os"

	"github.com/spf13/cobra"

	"quizforge/internal/config"
	"quizforge/internal/logger"
)

type rootOptions struct {
	configPath string
	workDir    string
}

// Execute runs the CLI.
func Execute() error {
	return newRootCmd().Execute()
}

func newRootCmd() *cobra.Command {
	envConfig := os.Getenv("CONFIG_PATH")
	if envConfig == "" {
		envConfig = "config/config.yaml"
	}

	opts := &rootOptions{}
	cmd := &cobra.Command{
		Use:          "quizforge",
		Short:        "Generate quizzes from PDFs or pasted text",
		SilenceUsage: true,
	}

	cmd.PersistentFlags().StringVar(&opts.configPath, "config", envConfig, "path to YAML config")
	cmd.PersistentFlags().StringVar(&opts.workDir, "workdir", "", "directory for intermediate and final artifacts (overrides config)")
	cmd.AddCommand(newGenerateCmd(opts))
	cmd.AddCommand(newServeCmd(opts))
	cmd.AddCommand(newShuffleCmd(opts))
	return cmd
}

// load reads config and builds the logger every subcommand shares.
func (o *rootOptions) load() (config.Config, *logger.Logger, error) {
	cfg, err := config.LoadWithEnv(o.configPath)
	if err != nil {
		return cfg, nil, err
	}
	if o.workDir != "" {
		cfg.Output.WorkDir = o.workDir
	}
	log, err := logger.New(cfg.Log.Mode)
	if err != nil {
		return cfg, nil, err
	}
	for _, w := range cfg.Warnings {
		log.Warn("ignoring config value", "detail", w)
	}
	return cfg, log, nil
}
