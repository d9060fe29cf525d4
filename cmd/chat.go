package cmd

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"manuscript_editor/generator"
)

func NewChatCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "chat",
		Short: "Chat with an editor grounded on the journal rules",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			inlineRules, _ := cmd.Flags().GetString("rules")
			rulesFile, _ := cmd.Flags().GetString("rules-file")
			pretty, _ := cmd.Flags().GetBool("pretty")

			rt, err := loadRuntime(ctx, cmd)
			if err != nil {
				return err
			}
			rulesContext, err := rt.resolveRules(ctx, inlineRules, rulesFile)
			if err != nil {
				return err
			}
			model, err := generator.ParseModelVariant(rt.cfg.ChatModel)
			if err != nil {
				return err
			}

			conv := generator.NewConversation(uuid.NewString(), rt.agent.LLM()).WithModel(model)
			r := &repl{
				conv:   conv,
				rules:  rulesContext,
				in:     cmd.InOrStdin(),
				out:    cmd.OutOrStdout(),
				render: markdownRenderer(pretty),
			}
			return r.run(ctx)
		},
	}
	cmd.Flags().String("rules", "", "Rules context as text")
	cmd.Flags().String("rules-file", "", "Rules file (text/plain, JPEG or PNG)")
	cmd.Flags().Bool("pretty", false, "Render replies as markdown for the terminal")
	cmd.MarkFlagsMutuallyExclusive("rules", "rules-file")
	return cmd
}

// repl is the interactive chat loop.
type repl struct {
	conv   *generator.Conversation
	rules  string
	in     io.Reader
	out    io.Writer
	render func(string) string
}

func (r *repl) run(ctx context.Context) error {
	if err := r.start(ctx); err != nil {
		return err
	}

	scanner := bufio.NewScanner(r.in)
	for {
		fmt.Fprint(r.out, "> ")
		if !scanner.Scan() {
			break
		}
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		if strings.HasPrefix(line, "/") {
			if r.handleCommand(ctx, line) {
				break
			}
			continue
		}
		r.send(ctx, line)
	}
	return scanner.Err()
}

func (r *repl) start(ctx context.Context) error {
	if _, err := r.conv.Sync(ctx, r.rules); err != nil {
		return err
	}
	r.printLast()
	return nil
}

func (r *repl) handleCommand(ctx context.Context, line string) bool {
	fields := strings.Fields(line)
	cmd := strings.TrimPrefix(fields[0], "/")
	args := strings.TrimSpace(strings.TrimPrefix(line, "/"+cmd))

	switch cmd {
	case "exit", "quit":
		return true
	case "help":
		fmt.Fprintln(r.out, "/rules TEXT  replace the rules (restarts the session)")
		fmt.Fprintln(r.out, "/reset       restart the session")
		fmt.Fprintln(r.out, "/transcript  print the conversation")
		fmt.Fprintln(r.out, "/exit        quit")
	case "rules":
		if args == "" {
			fmt.Fprintf(r.out, "rules: %s\n", r.conv.Grounding())
			return false
		}
		r.rules = args
		r.restart(ctx)
	case "reset":
		r.conv.Reset()
		r.restart(ctx)
	case "transcript":
		for _, t := range r.conv.Transcript() {
			fmt.Fprintf(r.out, "[%s] %s\n", t.Role, t.Content)
		}
	default:
		fmt.Fprintf(r.out, "unknown command /%s (try /help)\n", cmd)
	}
	return false
}

func (r *repl) restart(ctx context.Context) {
	reset, err := r.conv.Sync(ctx, r.rules)
	if err != nil {
		fmt.Fprintf(r.out, "error: %v\n", err)
		return
	}
	if reset {
		r.printLast()
	}
}

func (r *repl) send(ctx context.Context, message string) {
	before := r.conv.State()
	turn, err := r.conv.Send(ctx, r.rules, message)
	if errors.Is(err, generator.ErrSessionInterrupted) {
		fmt.Fprintf(r.out, "error: %v\n", err)
		fmt.Fprintln(r.out, "the next message starts a new session (or type /reset)")
		return
	}
	if err != nil {
		fmt.Fprintf(r.out, "error: %v\n", err)
		return
	}
	if before == generator.StateUninitialized {
		fmt.Fprintln(r.out, "(new session started)")
		if t := r.conv.Transcript(); len(t) > 0 {
			r.show(t[0].Content)
		}
	}
	r.show(turn.Content)
}

func (r *repl) show(text string) {
	if r.render != nil {
		text = r.render(text)
	}
	fmt.Fprintln(r.out, text)
}

func (r *repl) printLast() {
	t := r.conv.Transcript()
	if len(t) > 0 {
		r.show(t[len(t)-1].Content)
	}
}
