package main

import (
	"fmt"
	"os"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/campuslink/campusfeed/internal/feed"
	"github.com/campuslink/campusfeed/internal/tui"
)

var (
	feedStatus string
	feedQuery  string
	feedOwner  string
)

func init() {
	feedCmd.Flags().StringVar(&feedStatus, "status", "", "list an inactive bucket instead: archive or trash")
	feedCmd.Flags().StringVar(&feedQuery, "query", "", "filter by free-text search")
	feedCmd.Flags().StringVar(&feedOwner, "owner", "", "filter by owner user id")
}

var feedCmd = &cobra.Command{
	Use:   "feed",
	Short: "List feed posts",
	Long: `List the active feed, or one of your inactive buckets.

Examples:
  # Active feed
  feedctl feed

  # Search the feed
  feedctl feed --query "exhibit"

  # Your archived posts
  feedctl feed --status archive --user 2`,
	RunE: runFeed,
}

func runFeed(cmd *cobra.Command, args []string) error {
	a, err := newApp(cmd.Context())
	if err != nil {
		return err
	}
	defer a.Close()

	var posts []feed.Post
	if feedStatus == "" {
		posts, err = a.client.FetchPosts(cmd.Context(), a.userID)
	} else {
		status, serr := parseStatus(feedStatus)
		if serr != nil {
			return serr
		}
		posts, err = a.client.FetchInactive(cmd.Context(), a.userID, status)
	}
	if err != nil {
		return fmt.Errorf("failed to fetch posts: %w", err)
	}

	posts = feed.Filter{Query: feedQuery, ProfileUserID: feedOwner}.Apply(posts)
	if len(posts) == 0 {
		fmt.Println("No posts.")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tAUTHOR\tAGE\tREACTIONS\tCAPTION")
	now := time.Now()
	for _, p := range posts {
		fmt.Fprintf(w, "%s\t%s\t%s\t%d\t%s\n",
			keyLabel(p.Key()),
			p.Owner().Name,
			tui.FormatAge(p.Posted(), now),
			p.Counts().Total,
			tui.Truncate(captionLine(p), 60),
		)
	}
	return w.Flush()
}

// captionLine is the one-line caption for tabular output. Shares show the
// share caption with the original's attribution appended.
func captionLine(p feed.Post) string {
	sp, ok := p.(*feed.SharedPost)
	if !ok {
		return p.Text()
	}
	if sp.Caption == "" {
		return "↻ " + sp.Original.Author.Name + ": " + sp.Original.Caption
	}
	return sp.Caption + " (↻ " + sp.Original.Author.Name + ")"
}
