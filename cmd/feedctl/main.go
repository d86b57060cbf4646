// Package main implements the feedctl CLI for the campus feed gateway.
package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/campuslink/campusfeed/internal/feed"
	"github.com/campuslink/campusfeed/internal/gateway"
)

var (
	// configPath overrides the default config file location
	configPath string
	// userID overrides the session user from config
	userID string
	// version information
	version = "dev"
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "feedctl",
	Short: "CLI for the campus feed gateway",
	Long: `feedctl is a command-line interface for the campus feed backend.
It browses the feed, leaves reactions and comments, and manages your own
posts through the same gateway RPC the web dashboard uses.

Posts are addressed by id; shared posts take a "shared:" prefix:

  feedctl react 12 love
  feedctl react shared:5 wow`,
	Version: version,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "config file (default ~/.config/campusfeed/config.yaml)")
	rootCmd.PersistentFlags().StringVar(&userID, "user", "", "act as this user id (overrides config)")

	rootCmd.AddCommand(browseCmd)
	rootCmd.AddCommand(feedCmd)
	rootCmd.AddCommand(reactCmd)
	rootCmd.AddCommand(commentCmd)
	rootCmd.AddCommand(captionCmd)
	rootCmd.AddCommand(moderateCmd)
	rootCmd.AddCommand(shareCmd)
	rootCmd.AddCommand(healthCmd)
}

// parsePostKey parses a CLI post address. A bare id is a regular post; a
// "shared:" (or "s:") prefix addresses a shared post.
func parsePostKey(s string) (feed.PostKey, error) {
	kind := feed.KindRegular
	id := s
	if rest, ok := strings.CutPrefix(s, "shared:"); ok {
		kind, id = feed.KindShared, rest
	} else if rest, ok := strings.CutPrefix(s, "s:"); ok {
		kind, id = feed.KindShared, rest
	}
	if id == "" {
		return feed.PostKey{}, fmt.Errorf("invalid post id %q", s)
	}
	return feed.PostKey{Kind: kind, ID: id}, nil
}

// parseStatus parses an archive/trash bucket name.
func parseStatus(s string) (gateway.Status, error) {
	switch s {
	case "archive", "archived":
		return gateway.StatusArchived, nil
	case "trash", "trashed":
		return gateway.StatusTrashed, nil
	}
	return "", fmt.Errorf("unknown status %q (want archive or trash)", s)
}

// keyLabel renders a post key back in CLI address form.
func keyLabel(key feed.PostKey) string {
	if key.Kind == feed.KindShared {
		return "shared:" + key.ID
	}
	return key.ID
}
