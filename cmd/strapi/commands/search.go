package commands

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/nats-io/nats.go"
	"github.com/spf13/cobra"

	"github.com/cmsflow-io/strapi/pkg/search"
	"github.com/cmsflow-io/strapi/pkg/search/algolia"
	"github.com/cmsflow-io/strapi/pkg/strapi"
)

// ErrNoSearchContentTypes is returned when the search configuration lists
// no content types.
var ErrNoSearchContentTypes = errors.New("no search content types configured (see 'strapi config view')")

// NewSearchCommand creates the search command group.
func NewSearchCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "search",
		Short: "Manage search index mirroring",
		Long:  "Rebuild search indexes from the content API, or watch lifecycle events and keep indexes in sync",
	}

	cmd.AddCommand(newSearchRebuildCommand())
	cmd.AddCommand(newSearchWatchCommand())

	return cmd
}

func buildSyncer(logger strapi.Logger) (*search.Syncer, error) {
	config := loadConfig()

	if len(config.Search.ContentTypes) == 0 {
		return nil, ErrNoSearchContentTypes
	}

	provider, err := algolia.New(algolia.Config{
		ApplicationID: config.Search.ApplicationID,
		APIKey:        config.Search.APIKey,
	})
	if err != nil {
		return nil, err
	}

	client, err := CreateClient()
	if err != nil {
		return nil, err
	}

	contentTypes := make([]search.ContentTypeConfig, 0, len(config.Search.ContentTypes))
	for _, spec := range config.Search.ContentTypes {
		contentTypes = append(contentTypes, search.ContentTypeConfig{
			Name:           spec.Name,
			Index:          spec.Index,
			IDPrefix:       spec.IDPrefix,
			Fields:         spec.Fields,
			ExcludedFields: spec.ExcludedFields,
		})
	}

	return search.NewSyncer(client, provider, search.Config{
		Prefix:       config.Search.Prefix,
		ContentTypes: contentTypes,
	}, logger)
}

func newSearchRebuildCommand() *cobra.Command {
	var (
		models   []string
		pageSize int
		timeout  time.Duration
	)

	cmd := &cobra.Command{
		Use:   "rebuild",
		Short: "Rebuild search indexes",
		Long:  "Clear and repopulate the configured search indexes from the content API",
		RunE: func(cmd *cobra.Command, args []string) error {
			syncer, err := buildSyncer(&stderrLogger{})
			if err != nil {
				return err
			}

			var selected []string
			if cmd.Flags().Changed("type") {
				selected = models
			}

			err = syncer.Rebuild(context.Background(), selected, nil, strapi.TraversalOptions{
				PageSize: pageSize,
				Timeout:  timeout,
			})
			if err != nil {
				return fmt.Errorf("rebuild failed: %w", err)
			}

			cmd.Println("Search indexes rebuilt")

			return nil
		},
	}

	cmd.Flags().StringSliceVar(&models, "type", nil, "content types to rebuild (default all configured)")
	cmd.Flags().IntVar(&pageSize, "page-size", 0, "traversal window size")
	cmd.Flags().DurationVar(&timeout, "timeout", 0, "wall-clock budget per content type")

	return cmd
}

func newSearchWatchCommand() *cobra.Command {
	var (
		natsURL string
		subject string
	)

	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Watch lifecycle events",
		Long:  "Subscribe to entry lifecycle events over NATS and mirror them into the search indexes until interrupted",
		RunE: func(cmd *cobra.Command, args []string) error {
			syncer, err := buildSyncer(&stderrLogger{})
			if err != nil {
				return err
			}

			conn, err := nats.Connect(natsURL, nats.Name("strapi-search-watch"))
			if err != nil {
				return fmt.Errorf("connecting to NATS at %s: %w", natsURL, err)
			}
			defer conn.Close()

			sub, err := syncer.Subscribe(conn, subject)
			if err != nil {
				return err
			}
			defer func() { _ = sub.Unsubscribe() }()

			cmd.Printf("Watching %s (ctrl-c to stop)\n", subject)

			stop := make(chan os.Signal, 1)
			signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
			<-stop

			return nil
		},
	}

	cmd.Flags().StringVar(&natsURL, "nats-url", nats.DefaultURL, "NATS server URL")
	cmd.Flags().StringVar(&subject, "subject", "cms.lifecycle.>", "subject to subscribe to")

	return cmd
}
