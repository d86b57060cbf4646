package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/campuslink/campusfeed/internal/feed"
)

var reactCmd = &cobra.Command{
	Use:   "react <post-id> <kind>",
	Short: "Add, change or remove a reaction",
	Long: `React to a post. Reacting with the kind you already have removes it;
a different kind replaces it.

Kinds: like, love, haha, sad, angry, wow

Examples:
  feedctl react 12 love --user 2
  feedctl react shared:5 wow --user 2`,
	Args: cobra.ExactArgs(2),
	RunE: runReact,
}

func runReact(cmd *cobra.Command, args []string) error {
	key, err := parsePostKey(args[0])
	if err != nil {
		return err
	}
	kind := feed.ReactionKind(args[1])
	if !kind.Valid() {
		return fmt.Errorf("unknown reaction %q", args[1])
	}

	a, err := newApp(cmd.Context())
	if err != nil {
		return err
	}
	defer a.Close()

	if a.userID == "" {
		return fmt.Errorf("reacting requires a user; set session.user_id or pass --user")
	}

	action, err := a.client.AddReaction(cmd.Context(), a.userID, key, kind)
	if err != nil {
		return fmt.Errorf("failed to react: %w", err)
	}

	switch action {
	case feed.ActionRemoved:
		fmt.Printf("Removed your reaction from post %s\n", keyLabel(key))
	case feed.ActionChanged:
		fmt.Printf("Changed your reaction on post %s to %s %s\n", keyLabel(key), kind.Emoji(), kind.Label())
	default:
		fmt.Printf("Reacted %s %s to post %s\n", kind.Emoji(), kind.Label(), keyLabel(key))
	}
	return nil
}
