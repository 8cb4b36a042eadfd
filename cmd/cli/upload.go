package main

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/winback/message-service/internal/appstore"
	"github.com/winback/message-service/internal/validate"
)

var (
	uploadMessageID string
	uploadHeader    string
	uploadBody      string
	uploadImageID   string
	uploadAltText   string
)

// uploadCmd represents the upload command
var uploadCmd = &cobra.Command{
	Use:   "upload",
	Short: "Upload a single retention message",
	Long: `Upload a single retention message for review. The header is limited to
66 characters, the body to 144 and the image alt text to 150. An optional
image is referenced by the ID of a previously uploaded image asset. When no
--message-id is given a random identifier is generated and printed.`,
	Example: `  message-service upload --message-id welcome_offer --header "Stay" --body "Keep your benefits"
  message-service upload --message-id promo --header "Offer" --body "..." --image-id hero_img --alt-text "Hero"`,
	RunE: runUpload,
}

func init() {
	rootCmd.AddCommand(uploadCmd)

	uploadCmd.Flags().StringVar(&uploadMessageID, "message-id", "", "message identifier (generated when omitted)")
	uploadCmd.Flags().StringVar(&uploadHeader, "header", "", "message header (required)")
	uploadCmd.Flags().StringVar(&uploadBody, "body", "", "message body (required)")
	uploadCmd.Flags().StringVar(&uploadImageID, "image-id", "", "identifier of a previously uploaded image")
	uploadCmd.Flags().StringVar(&uploadAltText, "alt-text", "", "image alt text")
	uploadCmd.MarkFlagRequired("header")
	uploadCmd.MarkFlagRequired("body")
}

func runUpload(cmd *cobra.Command, args []string) error {
	if errs := validate.MessageFields(uploadHeader, uploadBody, uploadAltText); len(errs) > 0 {
		return fmt.Errorf("invalid message: %s", validate.Join(errs))
	}
	if uploadMessageID == "" {
		uploadMessageID = uuid.NewString()
	}

	client, env, err := newRemoteClient()
	if err != nil {
		return err
	}

	req := appstore.UploadMessageRequest{
		Header: uploadHeader,
		Body:   uploadBody,
	}
	if uploadImageID != "" || uploadAltText != "" {
		req.Image = &appstore.UploadMessageImage{
			ImageIdentifier: uploadImageID,
			AltText:         uploadAltText,
		}
	}

	err = client.UploadMessage(context.Background(), uploadMessageID, req)
	if appstore.IsDuplicate(err) {
		return fmt.Errorf("message %s already exists in %s", uploadMessageID, env)
	}
	if err != nil {
		return err
	}

	fmt.Printf("Uploaded message %s to %s, pending review\n", uploadMessageID, env)
	return nil
}
