// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pdiddy/research-match/pkg/types"
)

var askCmd = &cobra.Command{
	Use:   "ask <query>",
	Short: "Ask the recommendation agent a question",
	Long: `Ask submits the question to the agent, polls until the job finishes or
the polling budget runs out, and prints the response envelope with the
text reply and professor cards.

The exit status is non-zero when the envelope code is not 0.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runAsk,
}

func init() {
	askCmd.Flags().String("bot-id", "", "agent id (default agent.bot_id)")
	askCmd.Flags().String("user-id", "", "end-user id (default agent.user_id)")
	askCmd.Flags().String("conversation-id", "", "continue an existing conversation")
	askCmd.Flags().String("format", formatJSON, "output format: json or yaml (yaml omits raw)")

	rootCmd.AddCommand(askCmd)
}

func runAsk(cmd *cobra.Command, args []string) error {
	format, _ := cmd.Flags().GetString("format")
	botID, _ := cmd.Flags().GetString("bot-id")
	userID, _ := cmd.Flags().GetString("user-id")
	convID, _ := cmd.Flags().GetString("conversation-id")

	cfg := loadConfig(viper.GetViper(), loadedSecrets)
	store, err := openLedger(cfg.Ledger)
	if err != nil {
		return err
	}
	if store != nil {
		defer store.Close()
	}

	orch, err := newOrchestrator(cfg, store, logger)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	resp := orch.Handle(ctx, types.ChatRequest{
		Input:          strings.Join(args, " "),
		BotID:          botID,
		UserID:         userID,
		ConversationID: convID,
	})
	if format == formatYAML && resp.Data != nil {
		resp.Data.Raw = nil
	}
	if err := writeOutput(cmd.OutOrStdout(), format, resp); err != nil {
		return err
	}
	if resp.Code != types.CodeOK {
		return fmt.Errorf("request failed with code %d: %s", resp.Code, resp.Message)
	}
	return nil
}
