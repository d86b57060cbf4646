package main

import (
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/campuslink/campusfeed/internal/comments"
	"github.com/campuslink/campusfeed/internal/feed"
	"github.com/campuslink/campusfeed/internal/images"
	"github.com/campuslink/campusfeed/internal/lifecycle"
	"github.com/campuslink/campusfeed/internal/reaction"
	"github.com/campuslink/campusfeed/internal/tui"
)

var browseCmd = &cobra.Command{
	Use:   "browse",
	Short: "Open the interactive feed browser",
	Long: `Open the full-screen feed browser.

Keys inside the browser:
  j/k        move            enter      open post
  /          search          r          reaction picker
  v          switch view     c          comment
  a/t        archive/trash   s          share
  q          quit

Examples:
  feedctl browse --user 2`,
	RunE: runBrowse,
}

func runBrowse(cmd *cobra.Command, args []string) error {
	a, err := newApp(cmd.Context())
	if err != nil {
		return err
	}
	defer a.Close()

	store := feed.NewStore()
	logger := a.logger.Underlying()

	pickers := reaction.NewPickerSet(reaction.DefaultDelays(), nil)
	engine, err := reaction.NewEngine(store, a.client, a.userID, logger, reaction.WithPickerSet(pickers))
	if err != nil {
		return fmt.Errorf("failed to create reaction engine: %w", err)
	}
	cache, err := comments.NewCache(a.client, a.userID, logger)
	if err != nil {
		return fmt.Errorf("failed to create comment cache: %w", err)
	}
	ctrl, err := lifecycle.NewController(store, a.client, a.userID, logger)
	if err != nil {
		return fmt.Errorf("failed to create lifecycle controller: %w", err)
	}

	model, err := tui.NewModel(tui.Deps{
		Client:    a.client,
		Store:     store,
		Engine:    engine,
		Pickers:   pickers,
		Comments:  cache,
		Lifecycle: ctrl,
		Resolver:  images.Resolver{DriveBase: images.DefaultDriveBase, DriveSize: images.DefaultDriveSize, UploadPath: a.cfg.Gateway.BaseURL + images.DefaultUploadPath},
		UserID:    a.userID,
		UserName:  a.userName(),
		Logger:    logger,
	})
	if err != nil {
		return fmt.Errorf("failed to create browser: %w", err)
	}

	p := tea.NewProgram(model, tea.WithAltScreen(), tea.WithContext(cmd.Context()))
	_, err = p.Run()
	pickers.CloseAll()
	return err
}
