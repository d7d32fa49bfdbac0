package cli

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/tasktalk/tasktalk/internal/gateway"
)

var chatMessage string

var chatCmd = &cobra.Command{
	Use:   "chat",
	Short: "Chat with the assistant",
	Long:  "Send a single message with -m, or start an interactive session.",
	RunE:  runChat,
}

func init() {
	chatCmd.Flags().StringVarP(&chatMessage, "message", "m", "", "Message to send (one-shot mode)")
}

func runChat(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	rt, err := newRuntime(ctx)
	if err != nil {
		return err
	}
	defer rt.Close()

	if chatMessage != "" {
		reply, err := rt.loop.HandleTurn(ctx, chatMessage)
		if err != nil {
			return friendlyChatError(err)
		}
		fmt.Println(reply)
		return nil
	}

	printHeader("💬 TaskTalk Chat")
	fmt.Println("Type your message, or 'exit' to quit.")
	fmt.Println()

	prompt := color.New(color.FgGreen, color.Bold)
	scanner := bufio.NewScanner(os.Stdin)
	for {
		prompt.Print("you> ")
		if !scanner.Scan() {
			fmt.Println()
			return scanner.Err()
		}
		line := strings.TrimSpace(scanner.Text())
		if line == "exit" || line == "quit" {
			return nil
		}
		if line == "" {
			continue
		}

		reply, err := rt.loop.HandleTurn(ctx, line)
		if err != nil {
			color.Red("  %v", friendlyChatError(err))
			continue
		}
		fmt.Printf("%s %s\n", color.CyanString("tasktalk>"), reply)
	}
}

// friendlyChatError maps gateway failures onto messages a user can act on.
func friendlyChatError(err error) error {
	switch {
	case errors.Is(err, gateway.ErrProviderRejected):
		return fmt.Errorf("the model provider rejected the request, check your API key and quota")
	case errors.Is(err, gateway.ErrProviderUnavailable):
		return fmt.Errorf("the model provider is unreachable right now, try again in a moment")
	default:
		return err
	}
}
