package main

import (
	"fmt"
	"os"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/campuslink/campusfeed/internal/tui"
)

func init() {
	commentCmd.AddCommand(commentListCmd)
	commentCmd.AddCommand(commentAddCmd)
	commentCmd.AddCommand(commentEditCmd)
	commentCmd.AddCommand(commentDeleteCmd)
}

var commentCmd = &cobra.Command{
	Use:   "comment",
	Short: "Read and write post comments",
	Long: `Read and write comments on a post.

Examples:
  feedctl comment list 12
  feedctl comment add 12 "Great shots!" --user 3
  feedctl comment edit 12 4 "Great shots indeed!" --user 3
  feedctl comment delete shared:5 9 --user 2`,
}

var commentListCmd = &cobra.Command{
	Use:   "list <post-id>",
	Short: "List a post's comments, oldest first",
	Args:  cobra.ExactArgs(1),
	RunE:  runCommentList,
}

var commentAddCmd = &cobra.Command{
	Use:   "add <post-id> <message...>",
	Short: "Add a comment",
	Args:  cobra.MinimumNArgs(2),
	RunE:  runCommentAdd,
}

var commentEditCmd = &cobra.Command{
	Use:   "edit <post-id> <comment-id> <message...>",
	Short: "Edit your own comment",
	Args:  cobra.MinimumNArgs(3),
	RunE:  runCommentEdit,
}

var commentDeleteCmd = &cobra.Command{
	Use:   "delete <post-id> <comment-id>",
	Short: "Delete your own comment",
	Args:  cobra.ExactArgs(2),
	RunE:  runCommentDelete,
}

func runCommentList(cmd *cobra.Command, args []string) error {
	key, err := parsePostKey(args[0])
	if err != nil {
		return err
	}

	a, err := newApp(cmd.Context())
	if err != nil {
		return err
	}
	defer a.Close()

	thread, err := a.client.GetComments(cmd.Context(), key)
	if err != nil {
		return fmt.Errorf("failed to fetch comments: %w", err)
	}
	if len(thread) == 0 {
		fmt.Println("No comments.")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tAUTHOR\tAGE\tMESSAGE")
	now := time.Now()
	for _, c := range thread {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\n",
			c.ID, c.UserName, tui.FormatAge(c.CreatedAt, now), tui.Truncate(c.Message, 70))
	}
	return w.Flush()
}

func runCommentAdd(cmd *cobra.Command, args []string) error {
	key, err := parsePostKey(args[0])
	if err != nil {
		return err
	}
	message := strings.TrimSpace(strings.Join(args[1:], " "))
	if message == "" {
		return fmt.Errorf("comment message is empty")
	}

	a, err := newApp(cmd.Context())
	if err != nil {
		return err
	}
	defer a.Close()

	if a.userID == "" {
		return fmt.Errorf("commenting requires a user; set session.user_id or pass --user")
	}
	if err := a.client.AddComment(cmd.Context(), a.userID, key, message); err != nil {
		return fmt.Errorf("failed to add comment: %w", err)
	}
	fmt.Printf("Comment added to post %s\n", keyLabel(key))
	return nil
}

func runCommentEdit(cmd *cobra.Command, args []string) error {
	key, err := parsePostKey(args[0])
	if err != nil {
		return err
	}
	commentID := args[1]
	message := strings.TrimSpace(strings.Join(args[2:], " "))
	if message == "" {
		return fmt.Errorf("comment message is empty")
	}

	a, err := newApp(cmd.Context())
	if err != nil {
		return err
	}
	defer a.Close()

	if err := a.client.EditComment(cmd.Context(), a.userID, key, commentID, message); err != nil {
		return fmt.Errorf("failed to edit comment: %w", err)
	}
	fmt.Printf("Comment %s updated\n", commentID)
	return nil
}

func runCommentDelete(cmd *cobra.Command, args []string) error {
	key, err := parsePostKey(args[0])
	if err != nil {
		return err
	}
	commentID := args[1]

	a, err := newApp(cmd.Context())
	if err != nil {
		return err
	}
	defer a.Close()

	if err := a.client.DeleteComment(cmd.Context(), a.userID, key, commentID); err != nil {
		return fmt.Errorf("failed to delete comment: %w", err)
	}
	fmt.Printf("Comment %s deleted\n", commentID)
	return nil
}
