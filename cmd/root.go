// Package cmd wires the command line interface.
package cmd

import (
	"context"
	"fmt"
	"os"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"manuscript_editor/config"
	"manuscript_editor/generator"
	"manuscript_editor/rules"
)

func NewRootCommand() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "manuscript-editor",
		Short: "LLM-backed academic manuscript editor",
		Long: `manuscript-editor copy-edits, proofreads and restructures academic manuscript excerpts
against a journal's rules, and offers a chat consultant grounded on those rules.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.PersistentFlags().String("config", "", "Path to config file (json, yaml or toml)")
	rootCmd.PersistentFlags().Bool("debug", false, "Enable debug logging")

	rootCmd.AddCommand(NewServeCommand())
	rootCmd.AddCommand(NewTasksCommand())
	rootCmd.AddCommand(NewRunCommand())
	rootCmd.AddCommand(NewExtractCommand())
	rootCmd.AddCommand(NewChatCommand())

	return rootCmd
}

// Execute runs the root command
func Execute() {
	if err := NewRootCommand().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// runtime is what every command needs once configuration is loaded.
type runtime struct {
	cfg       config.Config
	agent     *generator.Agent
	extractor *rules.Extractor
}

func loadRuntime(ctx context.Context, cmd *cobra.Command) (*runtime, error) {
	path, _ := cmd.Flags().GetString("config")
	cfg, err := config.Load(path)
	if err != nil {
		return nil, err
	}

	level := cfg.Level()
	if debug, _ := cmd.Flags().GetBool("debug"); debug {
		level = zerolog.DebugLevel
	}
	zerolog.SetGlobalLevel(level)

	llm, err := generator.NewLLM(ctx, cfg.Settings())
	if err != nil {
		return nil, err
	}
	agent, err := generator.NewAgent(llm)
	if err != nil {
		return nil, err
	}
	extractor, err := rules.NewExtractor(llm)
	if err != nil {
		return nil, err
	}

	log.Debug().
		Str("provider", cfg.LLM.Provider).
		Str("fast_model", cfg.LLM.FastModel).
		Str("pro_model", cfg.LLM.ProModel).
		Msg("runtime ready")

	return &runtime{cfg: cfg, agent: agent, extractor: extractor}, nil
}

// resolveRules returns inline rules, or the rules extracted from file when set.
func (rt *runtime) resolveRules(ctx context.Context, inline, file string) (string, error) {
	if file == "" {
		return inline, nil
	}
	data, err := os.ReadFile(file)
	if err != nil {
		return "", err
	}
	return rt.extractor.Extract(ctx, rules.Artifact{
		Data:     data,
		MIMEType: rules.DetectMIME(file, data),
	})
}
