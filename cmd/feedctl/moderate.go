package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/campuslink/campusfeed/internal/gateway"
)

var deleteFrom string

func init() {
	moderateCmd.AddCommand(moderateArchiveCmd)
	moderateCmd.AddCommand(moderateTrashCmd)
	moderateCmd.AddCommand(moderateRestoreCmd)
	moderateCmd.AddCommand(moderateDeleteCmd)

	moderateDeleteCmd.Flags().StringVar(&deleteFrom, "from", "trash", "bucket the post sits in: archive or trash")
}

var moderateCmd = &cobra.Command{
	Use:   "moderate",
	Short: "Manage your posts' lifecycle",
	Long: `Archive, trash, restore or permanently delete your own posts.

Archived and trashed posts leave the feed but stay recoverable; deletion is
permanent and only allowed out of the bucket the post already sits in.

Examples:
  feedctl moderate archive 12 --user 1
  feedctl moderate restore 12 --user 1
  feedctl moderate delete shared:5 --from trash --user 2`,
}

var moderateArchiveCmd = &cobra.Command{
	Use:   "archive <post-id>",
	Short: "Move a post to your archive",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runStatusChange(cmd, args[0], gateway.StatusArchived)
	},
}

var moderateTrashCmd = &cobra.Command{
	Use:   "trash <post-id>",
	Short: "Move a post to your trash",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runStatusChange(cmd, args[0], gateway.StatusTrashed)
	},
}

var moderateRestoreCmd = &cobra.Command{
	Use:   "restore <post-id>",
	Short: "Return an archived or trashed post to the feed",
	Args:  cobra.ExactArgs(1),
	RunE:  runRestore,
}

var moderateDeleteCmd = &cobra.Command{
	Use:   "delete <post-id>",
	Short: "Permanently delete a post",
	Args:  cobra.ExactArgs(1),
	RunE:  runDelete,
}

func runStatusChange(cmd *cobra.Command, arg string, status gateway.Status) error {
	key, err := parsePostKey(arg)
	if err != nil {
		return err
	}

	a, err := newApp(cmd.Context())
	if err != nil {
		return err
	}
	defer a.Close()

	if err := a.client.UpdateStatus(cmd.Context(), a.userID, key, status); err != nil {
		return fmt.Errorf("failed to update status: %w", err)
	}
	fmt.Printf("Post %s moved to %s\n", keyLabel(key), status)
	return nil
}

func runRestore(cmd *cobra.Command, args []string) error {
	key, err := parsePostKey(args[0])
	if err != nil {
		return err
	}

	a, err := newApp(cmd.Context())
	if err != nil {
		return err
	}
	defer a.Close()

	if err := a.client.RestorePost(cmd.Context(), a.userID, key); err != nil {
		return fmt.Errorf("failed to restore post: %w", err)
	}
	fmt.Printf("Post %s restored\n", keyLabel(key))
	return nil
}

func runDelete(cmd *cobra.Command, args []string) error {
	key, err := parsePostKey(args[0])
	if err != nil {
		return err
	}
	target, err := parseStatus(strings.ToLower(deleteFrom))
	if err != nil {
		return err
	}

	a, err := newApp(cmd.Context())
	if err != nil {
		return err
	}
	defer a.Close()

	if err := a.client.DeletePost(cmd.Context(), a.userID, key, target); err != nil {
		return fmt.Errorf("failed to delete post: %w", err)
	}
	fmt.Printf("Post %s permanently deleted\n", keyLabel(key))
	return nil
}
