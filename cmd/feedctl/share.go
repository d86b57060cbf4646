package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

var captionCmd = &cobra.Command{
	Use:   "caption <post-id> <text...>",
	Short: "Rewrite your post's caption",
	Long: `Rewrite the caption of one of your posts. For a shared post this edits
the share caption; the original snapshot never changes.

Examples:
  feedctl caption 12 "Updated caption" --user 1`,
	Args: cobra.MinimumNArgs(2),
	RunE: runCaption,
}

func runCaption(cmd *cobra.Command, args []string) error {
	key, err := parsePostKey(args[0])
	if err != nil {
		return err
	}
	caption := strings.Join(args[1:], " ")

	a, err := newApp(cmd.Context())
	if err != nil {
		return err
	}
	defer a.Close()

	if err := a.client.UpdateCaption(cmd.Context(), a.userID, key, caption); err != nil {
		return fmt.Errorf("failed to update caption: %w", err)
	}
	fmt.Printf("Caption updated on post %s\n", keyLabel(key))
	return nil
}

var shareCmd = &cobra.Command{
	Use:   "share <post-id> [caption...]",
	Short: "Share a post to your profile",
	Long: `Share a regular post to your profile with an optional caption of your
own. Sharing an already-shared post shares its original.

Examples:
  feedctl share 12 --user 2
  feedctl share 12 "worth a look" --user 2`,
	Args: cobra.MinimumNArgs(1),
	RunE: runShare,
}

func runShare(cmd *cobra.Command, args []string) error {
	postID := args[0]
	caption := strings.Join(args[1:], " ")

	a, err := newApp(cmd.Context())
	if err != nil {
		return err
	}
	defer a.Close()

	if a.userID == "" {
		return fmt.Errorf("sharing requires a user; set session.user_id or pass --user")
	}
	if err := a.client.SharePost(cmd.Context(), a.userID, postID, caption); err != nil {
		return fmt.Errorf("failed to share post: %w", err)
	}
	fmt.Printf("Shared post %s\n", postID)
	return nil
}

var healthCmd = &cobra.Command{
	Use:   "health",
	Short: "Check gateway health",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp(cmd.Context())
		if err != nil {
			return err
		}
		defer a.Close()

		if err := a.client.Ping(cmd.Context()); err != nil {
			return fmt.Errorf("gateway unreachable at %s: %w", a.cfg.Gateway.BaseURL, err)
		}
		fmt.Printf("Gateway OK: %s\n", a.cfg.Gateway.BaseURL)
		return nil
	},
}
