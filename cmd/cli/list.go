package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

// listCmd represents the list command
var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List remote messages or images",
}

// listMessagesCmd represents the list messages command
var listMessagesCmd = &cobra.Command{
	Use:   "messages",
	Short: "List all retention messages with their review state",
	Example: `  message-service list messages
  message-service list messages --environment SANDBOX --json`,
	RunE: runListMessages,
}

// listImagesCmd represents the list images command
var listImagesCmd = &cobra.Command{
	Use:   "images",
	Short: "List all uploaded images with their review state",
	Example: `  message-service list images
  message-service list images --environment SANDBOX`,
	RunE: runListImages,
}

func init() {
	rootCmd.AddCommand(listCmd)
	listCmd.AddCommand(listMessagesCmd)
	listCmd.AddCommand(listImagesCmd)
}

func runListMessages(cmd *cobra.Command, args []string) error {
	client, env, err := newRemoteClient()
	if err != nil {
		return err
	}

	messages, err := client.ListMessages(context.Background())
	if err != nil {
		return err
	}

	if jsonOutput {
		encoder := json.NewEncoder(os.Stdout)
		encoder.SetIndent("", "  ")
		return encoder.Encode(messages)
	}

	fmt.Printf("%d messages in %s\n\n", len(messages), env)
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 3, ' ', 0)
	fmt.Fprintln(w, "MESSAGE ID\tSTATE")
	for _, m := range messages {
		state := string(m.MessageState)
		if state == "" {
			state = "-"
		}
		fmt.Fprintf(w, "%s\t%s\n", m.MessageIdentifier, state)
	}
	return w.Flush()
}

func runListImages(cmd *cobra.Command, args []string) error {
	client, env, err := newRemoteClient()
	if err != nil {
		return err
	}

	images, err := client.ListImages(context.Background())
	if err != nil {
		return err
	}

	if jsonOutput {
		encoder := json.NewEncoder(os.Stdout)
		encoder.SetIndent("", "  ")
		return encoder.Encode(images)
	}

	fmt.Printf("%d images in %s\n\n", len(images), env)
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 3, ' ', 0)
	fmt.Fprintln(w, "IMAGE ID\tSTATE")
	for _, img := range images {
		state := string(img.ImageState)
		if state == "" {
			state = "-"
		}
		fmt.Fprintf(w, "%s\t%s\n", img.ImageIdentifier, state)
	}
	return w.Flush()
}
