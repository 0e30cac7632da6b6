package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/barribox/barribox-backend/internal/assistant"
	"github.com/barribox/barribox-backend/internal/voice"
	"github.com/barribox/barribox-backend/pkg/models"
)

var (
	assistantUser    string
	assistantSurface string
)

var assistantCmd = &cobra.Command{
	Use:   "assistant",
	Short: "Talk to the assistant as a registered user",
}

var assistantAskCmd = &cobra.Command{
	Use:   "ask [text]",
	Short: "Send one utterance and print the reply",
	Long: `Sends the text to the assistant as the given user.

Surfaces:
  voice   - the voice assistant, which may act on orders
  faq     - the help center answers
  support - the support agent`,
	Args: cobra.MinimumNArgs(1),
	RunE: runAssistantAsk,
}

var assistantListenCmd = &cobra.Command{
	Use:   "listen",
	Short: "Run the voice loop with stdin as the microphone",
	Long: `Each line read from stdin is treated as recognized speech.

Say a wake word (hola, barri, oye) first; the assistant greets you and
listens for a command. Replies are printed instead of spoken.`,
	Args: cobra.NoArgs,
	RunE: runAssistantListen,
}

func init() {
	assistantCmd.PersistentFlags().StringVar(&assistantUser, "user", "", "id of the user to act as")
	_ = assistantCmd.MarkPersistentFlagRequired("user")
	assistantAskCmd.Flags().StringVar(&assistantSurface, "surface", "voice", "voice, faq or support")
	assistantCmd.AddCommand(assistantAskCmd, assistantListenCmd)
}

func actingUser() (models.User, error) {
	user, ok := application.State.User(assistantUser)
	if !ok {
		return models.User{}, fmt.Errorf("user %q not found", assistantUser)
	}
	return user, nil
}

func runAssistantAsk(cmd *cobra.Command, args []string) error {
	user, err := actingUser()
	if err != nil {
		return err
	}
	input := strings.Join(args, " ")
	out := cmd.OutOrStdout()

	switch assistantSurface {
	case assistant.SurfaceVoice:
		reply, err := application.Assistant.Voice(cmd.Context(), user, input)
		if err != nil {
			return err
		}
		fmt.Fprintln(out, reply.Text)
		for _, d := range reply.Directives {
			fmt.Fprintf(out, "  -> %s %s %s\n", d.Type, d.Tab, d.OrderID)
		}
	case assistant.SurfaceFAQ:
		text, err := application.Assistant.FAQ(cmd.Context(), user, input)
		if err != nil {
			return err
		}
		fmt.Fprintln(out, text)
	case assistant.SurfaceSupport:
		text, err := application.Assistant.Support(cmd.Context(), user, input)
		if err != nil {
			return err
		}
		fmt.Fprintln(out, text)
	default:
		return fmt.Errorf("unknown surface %q", assistantSurface)
	}
	return nil
}

func runAssistantListen(cmd *cobra.Command, args []string) error {
	user, err := actingUser()
	if err != nil {
		return err
	}
	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()

	out := cmd.OutOrStdout()
	rec := &lineRecognizer{in: cmd.InOrStdin(), onEOF: cancel}
	process := func(ctx context.Context, input string) (string, error) {
		reply, err := application.Assistant.Voice(ctx, user, input)
		if err != nil {
			return "", err
		}
		for _, d := range reply.Directives {
			fmt.Fprintf(out, "  -> %s %s %s\n", d.Type, d.Tab, d.OrderID)
		}
		return reply.Text, nil
	}

	runner, err := voice.NewRunner(user.Name, rec, &printSpeaker{out: out}, process,
		voice.WithLogger(logg),
		voice.WithStateHook(func(m voice.Machine) {
			logg.Debug(logg.WithField(ctx, "state", string(m.State)), "voice.state")
		}),
	)
	if err != nil {
		return err
	}
	rec.send = runner.Send

	fmt.Fprintf(out, "Escuchando, %s. Di \"hola\" para empezar.\n", user.Name)
	return runner.Run(ctx)
}
