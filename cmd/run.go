package cmd

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"manuscript_editor/export"
	"manuscript_editor/generator"
)

func NewRunCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run a one-shot editorial task",
		Example: `  manuscript-editor run --task proofread-grammar --draft intro.txt --rules "APA 7th, no passive voice"
  manuscript-editor run --task template-abstract --draft abstract.txt --rules-file guidelines.png --out abstract.html`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			flags := cmd.Flags()
			taskID, _ := flags.GetString("task")
			draftPath, _ := flags.GetString("draft")
			inlineRules, _ := flags.GetString("rules")
			rulesFile, _ := flags.GetString("rules-file")
			useDefault, _ := flags.GetBool("default-rules")
			outPath, _ := flags.GetString("out")
			pretty, _ := flags.GetBool("pretty")

			task, err := generator.LookupTask(taskID)
			if err != nil {
				return err
			}
			draft, err := readDraft(cmd, draftPath)
			if err != nil {
				return err
			}

			rt, err := loadRuntime(ctx, cmd)
			if err != nil {
				return err
			}
			rulesContext, err := rt.resolveRules(ctx, inlineRules, rulesFile)
			if err != nil {
				return err
			}
			if rulesContext == "" && useDefault {
				rulesContext = task.DefaultRules
			}

			res, err := rt.agent.Run(ctx, task, draft, rulesContext)
			if err != nil {
				return err
			}

			if outPath == "" {
				_, err = fmt.Fprintln(cmd.OutOrStdout(), markdownRenderer(pretty)(res.Text))
				return err
			}
			return writeExport(res, outPath)
		},
	}
	cmd.Flags().String("task", "", "Task id (see `tasks`)")
	cmd.Flags().String("draft", "-", "Draft text file, - for stdin")
	cmd.Flags().String("rules", "", "Rules context as text")
	cmd.Flags().String("rules-file", "", "Rules file (text/plain, JPEG or PNG)")
	cmd.Flags().Bool("default-rules", false, "Use the task's default rules when none are given")
	cmd.Flags().String("out", "", "Write the result to this file (.txt or .html)")
	cmd.Flags().Bool("pretty", false, "Render the markdown result for the terminal")
	_ = cmd.MarkFlagRequired("task")
	cmd.MarkFlagsMutuallyExclusive("rules", "rules-file")
	return cmd
}

func readDraft(cmd *cobra.Command, path string) (string, error) {
	if path == "" || path == "-" {
		data, err := io.ReadAll(cmd.InOrStdin())
		return string(data), err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}
	return string(data), nil
}

func writeExport(res generator.Result, outPath string) error {
	format := export.FormatText
	if filepath.Ext(outPath) == ".html" {
		format = export.FormatHTML
	}
	dl, err := export.Render(res.Title, res.Text, format)
	if err != nil {
		return err
	}
	if fi, err := os.Stat(outPath); err == nil && fi.IsDir() {
		outPath = filepath.Join(outPath, dl.Filename)
	} else if err != nil && !errors.Is(err, os.ErrNotExist) {
		return err
	}
	if err := os.WriteFile(outPath, dl.Body, 0o644); err != nil {
		return err
	}
	log.Info().Str("task", res.TaskID).Str("file", outPath).Msg("result exported")
	return nil
}
