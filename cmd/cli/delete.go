package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/winback/message-service/internal/appstore"
)

// deleteCmd represents the delete command
var deleteCmd = &cobra.Command{
	Use:   "delete <message-id>",
	Short: "Delete a retention message",
	Long: `Delete a retention message by its identifier. Deleting a message that
does not exist is reported but not treated as a failure.`,
	Example: `  message-service delete welcome_offer
  message-service delete welcome_offer --environment SANDBOX`,
	Args: cobra.ExactArgs(1),
	RunE: runDelete,
}

func init() {
	rootCmd.AddCommand(deleteCmd)
}

func runDelete(cmd *cobra.Command, args []string) error {
	messageID := args[0]

	client, env, err := newRemoteClient()
	if err != nil {
		return err
	}

	err = client.DeleteMessage(context.Background(), messageID)
	if appstore.IsNotFound(err) {
		fmt.Printf("Message %s not found in %s, nothing to delete\n", messageID, env)
		return nil
	}
	if err != nil {
		return err
	}

	fmt.Printf("Deleted message %s from %s\n", messageID, env)
	return nil
}
