package main

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
)

var (
	defaultProducts []string
	defaultLocales  []string
	defaultDryRun   bool
)

// setDefaultCmd represents the set-default command
var setDefaultCmd = &cobra.Command{
	Use:   "set-default <message-id>",
	Short: "Set a message as the default for products and locales",
	Long: `Set an approved message as the default retention message for every
combination of the given products and locales. Locales default to en-US when
none are given. Each (product, locale) pair is applied independently, so one
rejection does not stop the rest.`,
	Example: `  message-service set-default welcome_offer --product-id com.example.app
  message-service set-default welcome_offer --product-id app1 --product-id app2 --locale en-US --locale de-DE`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runDefaults(args[0])
	},
}

// deleteDefaultCmd represents the delete-default command
var deleteDefaultCmd = &cobra.Command{
	Use:   "delete-default",
	Short: "Clear the default message for products and locales",
	Long: `Clear the default retention message for every combination of the given
products and locales. Locales default to en-US when none are given.`,
	Example: `  message-service delete-default --product-id com.example.app
  message-service delete-default --product-id app1 --locale de-DE`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runDefaults("")
	},
}

func init() {
	rootCmd.AddCommand(setDefaultCmd)
	rootCmd.AddCommand(deleteDefaultCmd)

	for _, cmd := range []*cobra.Command{setDefaultCmd, deleteDefaultCmd} {
		cmd.Flags().StringArrayVar(&defaultProducts, "product-id", nil, "product ID to apply to (repeatable, required)")
		cmd.Flags().StringArrayVar(&defaultLocales, "locale", nil, "locale to apply to (repeatable, defaults to en-US)")
		cmd.Flags().BoolVar(&defaultDryRun, "dry-run", false, "plan the run without mutating anything")
		cmd.MarkFlagRequired("product-id")
	}
}

func runDefaults(messageID string) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	imp, err := newImporter(defaultDryRun, nil, nil)
	if err != nil {
		return err
	}

	result, err := imp.ApplyDefaults(ctx, messageID, defaultProducts, defaultLocales)
	if err != nil {
		return err
	}

	archiveRun(context.Background(), result)

	if err := renderRunResult(result); err != nil {
		return err
	}

	if !result.Ok() {
		return fmt.Errorf("%d of %d pairs failed", result.Failed, result.Total)
	}
	return nil
}
