package cmd

import (
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/KaramelBytes/tdfdash/internal/ai"
	"github.com/KaramelBytes/tdfdash/internal/chat"
	"github.com/KaramelBytes/tdfdash/internal/report"
	"github.com/KaramelBytes/tdfdash/internal/stages"
	"github.com/KaramelBytes/tdfdash/internal/utils"
)

var (
	chatProvider   string
	chatModel      string
	chatOllamaHost string
	chatStream     bool
	chatShowPrompt bool
)

var chatCmd = &cobra.Command{
	Use:   "chat <question>",
	Short: "Ask a question about the data; SQL in the answer filters the leaderboards",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		out := cmd.OutOrStdout()
		reg, _, err := newRegistry(cmd.Context(), chatProvider, chatModel, chatOllamaHost)
		if err != nil {
			return err
		}
		defer reg.Close()

		if chatShowPrompt {
			fmt.Fprintf(out, "--system prompt (≈%d tokens)--\n%s\n", utils.CountTokens(reg.SystemPrompt()), reg.SystemPrompt())
		}

		sess := reg.Create()
		var reply *chat.Reply
		if chatStream {
			reply, err = sess.AskStream(cmd.Context(), args[0], func(d string) { fmt.Fprint(out, d) })
			if err == nil {
				fmt.Fprintln(out)
			}
		} else {
			reply, err = sess.Ask(cmd.Context(), args[0])
			if err == nil {
				fmt.Fprintln(out, reply.Text)
			}
		}
		if err != nil {
			return withHint(err)
		}

		if reply.QueryError != "" {
			fmt.Fprintln(cmd.ErrOrStderr(), warning("filter not applied: %s", reply.QueryError))
		}
		if !reply.Filtered {
			return nil
		}
		rows := sess.Rows()
		fmt.Fprintf(out, "\n%s %d rows\n", color.CyanString("Filtered:"), len(rows))
		report.Leaderboard(out, "Stage wins", stages.StageWinCounts(rows))
		report.Leaderboard(out, "Stages completed", stages.StagesCompletedCounts(rows))
		return nil
	},
}

// withHint appends a remediation hint to provider errors.
func withHint(err error) error {
	if hint := ai.Hint(err); hint != "" {
		return fmt.Errorf("%w (%s)", err, hint)
	}
	return err
}

func init() {
	rootCmd.AddCommand(chatCmd)
	chatCmd.Flags().StringVar(&chatProvider, "provider", "", "chat provider: openrouter|ollama (default from config)")
	chatCmd.Flags().StringVar(&chatModel, "model", "", "chat model (default from config)")
	chatCmd.Flags().StringVar(&chatOllamaHost, "ollama-host", "", "Ollama host (default from config)")
	chatCmd.Flags().BoolVar(&chatStream, "stream", false, "print the answer as it arrives")
	chatCmd.Flags().BoolVar(&chatShowPrompt, "print-prompt", false, "print the system prompt before asking")
}
