package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"zen-backend/internal/client"
	"zen-backend/internal/services"
)

var chatCmd = &cobra.Command{
	Use:   "chat",
	Short: "Start an interactive conversation",
	Long: `Start an interactive conversation with Neura.

The conversation lives only in this terminal session and is discarded on
exit. Type /sair or press Ctrl+D to leave.`,
	RunE: runChat,
}

var askCmd = &cobra.Command{
	Use:   "ask [message]",
	Short: "Send a single message and print the reply",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runAsk,
}

var healthCmd = &cobra.Command{
	Use:   "health",
	Short: "Check that the relay is up",
	RunE:  runHealth,
}

func runChat(cmd *cobra.Command, args []string) error {
	transport, closeFn, err := newTransport()
	if err != nil {
		return err
	}
	defer closeFn()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	conv := client.NewConversation(transport, timeout)
	conv.OnPending(func(pending bool) {
		if pending {
			fmt.Fprint(os.Stderr, "Neura está digitando...\r")
		} else {
			fmt.Fprint(os.Stderr, strings.Repeat(" ", 24)+"\r")
		}
	})

	fmt.Println("💬 Neura")
	fmt.Println(strings.Repeat("─", 60))
	for _, m := range conv.Messages() {
		printMessage(m)
	}

	scanner := bufio.NewScanner(os.Stdin)
	scanner.Buffer(make([]byte, 64*1024), 1<<20)
	for {
		fmt.Print("> ")
		if !scanner.Scan() {
			fmt.Println()
			return scanner.Err()
		}
		line := scanner.Text()
		if strings.TrimSpace(line) == "/sair" {
			return nil
		}

		msg, sent := conv.Send(ctx, line)
		if !sent {
			continue
		}
		printMessage(msg)

		if ctx.Err() != nil {
			return nil
		}
	}
}

func runAsk(cmd *cobra.Command, args []string) error {
	transport, closeFn, err := newTransport()
	if err != nil {
		return err
	}
	defer closeFn()

	conv := client.NewConversation(transport, timeout)
	msg, sent := conv.Send(context.Background(), strings.Join(args, " "))
	if !sent {
		return errors.New("mensagem vazia")
	}
	fmt.Println(msg.Text)
	if conv.Status() == client.StatusError {
		return errors.New("a mensagem não foi respondida")
	}
	return nil
}

func runHealth(cmd *cobra.Command, args []string) error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	health, err := client.NewHTTPTransport(apiURL, nil).HealthCheck(ctx)
	if err != nil {
		return fmt.Errorf("relay at %s is unreachable: %w", apiURL, err)
	}

	fmt.Printf("Relay:  %s (%s)\n", health.Status, apiURL)
	fmt.Printf("Gemini: configured=%t\n", health.GeminiConfigured)
	fmt.Printf("Time:   %s\n", health.Timestamp)
	return nil
}

// newTransport picks the relay or the in-process fallback.
func newTransport() (client.Transport, func(), error) {
	if !direct {
		return client.NewHTTPTransport(apiURL, nil), func() {}, nil
	}

	if cfg.GeminiAPIKey == "" {
		return nil, nil, errors.New("--direct requires GEMINI_API_KEY")
	}
	gemini, err := services.NewGeminiProvider(context.Background(), cfg.GeminiAPIKey, cfg.GeminiModel, 1, zap.NewNop())
	if err != nil {
		return nil, nil, fmt.Errorf("failed to initialize Gemini client: %w", err)
	}
	relay := services.NewRelayService(gemini, services.DefaultChatTimeout, true, zap.NewNop())
	return client.NewDirectTransport(relay), gemini.Close, nil
}

func printMessage(m client.Message) {
	who := "Você"
	if m.Role == client.RoleAssistant {
		who = "Neura"
	}
	fmt.Printf("\n%s [%s]\n%s\n\n", who, m.Timestamp.Format("15:04"), m.Text)
}
