package search

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/nats-io/nats.go"

	"github.com/cmsflow-io/strapi/pkg/strapi"
)

// Lifecycle actions carried by entry events.
const (
	ActionCreate = "create"
	ActionUpdate = "update"
	ActionDelete = "delete"
)

// LifecycleEvent is one entry lifecycle notification: an entry of a model
// was created, updated, or deleted. Entry carries the full normalised
// entity for create and update, and at least the id for delete.
type LifecycleEvent struct {
	Action string         `json:"action"`
	Model  string         `json:"model"`
	Entry  map[string]any `json:"entry"`
}

// Syncer applies lifecycle events to a search provider and rebuilds
// indexes from the content API.
type Syncer struct {
	client   strapi.Client
	provider Provider
	config   Config
	logger   strapi.Logger
	byModel  map[string]ContentTypeConfig
}

// NewSyncer creates a syncer for the configured content types.
func NewSyncer(client strapi.Client, provider Provider, config Config, logger strapi.Logger) (*Syncer, error) {
	if client == nil {
		return nil, ErrClientRequired
	}

	if provider == nil {
		return nil, ErrProviderRequired
	}

	byModel := make(map[string]ContentTypeConfig, len(config.ContentTypes))
	for _, ct := range config.ContentTypes {
		byModel[ct.Name] = ct
	}

	return &Syncer{
		client:   client,
		provider: provider,
		config:   config,
		logger:   logger,
		byModel:  byModel,
	}, nil
}

// published reports whether an entry should be visible in the index. An
// entry with an explicit null publishedAt is a draft; a missing
// publishedAt means draft/publish is not enabled for the type.
func published(entry map[string]any) bool {
	value, ok := entry["publishedAt"]
	if !ok {
		return true
	}

	return value != nil
}

// Apply applies one lifecycle event. Draft entries are kept out of the
// index: a create of a draft is a no-op, an update that unpublishes an
// entry removes it. Events for unconfigured models return
// ErrUnknownSearchConfig.
func (s *Syncer) Apply(ctx context.Context, event LifecycleEvent) error {
	cfg, ok := s.byModel[event.Model]
	if !ok {
		return fmt.Errorf("%w: %q", ErrUnknownSearchConfig, event.Model)
	}

	index := cfg.IndexName(s.config.Prefix)
	entity := strapi.Entity(event.Entry)

	switch event.Action {
	case ActionCreate:
		if !published(event.Entry) {
			return nil
		}

		record, err := Sanitize(cfg, entity)
		if err != nil {
			return err
		}

		return s.provider.Create(ctx, index, record)
	case ActionUpdate:
		if !published(event.Entry) {
			return s.provider.Delete(ctx, index, MakeObjectID(entity.ID(), cfg.IDPrefix))
		}

		record, err := Sanitize(cfg, entity)
		if err != nil {
			return err
		}

		return s.provider.Create(ctx, index, record)
	case ActionDelete:
		return s.provider.Delete(ctx, index, MakeObjectID(entity.ID(), cfg.IDPrefix))
	default:
		return fmt.Errorf("unknown lifecycle action %q", event.Action)
	}
}

// Subscribe listens for lifecycle events on subject and applies them as
// they arrive. Undecodable messages and apply failures are logged and
// skipped, so one bad event does not stall the stream.
func (s *Syncer) Subscribe(conn *nats.Conn, subject string) (*nats.Subscription, error) {
	sub, err := conn.Subscribe(subject, func(msg *nats.Msg) {
		var event LifecycleEvent

		err := json.Unmarshal(msg.Data, &event)
		if err != nil {
			s.logError("decoding lifecycle event", map[string]any{
				"subject": msg.Subject,
				"error":   err.Error(),
			})

			return
		}

		err = s.Apply(context.Background(), event)
		if err != nil {
			s.logError("applying lifecycle event", map[string]any{
				"action": event.Action,
				"model":  event.Model,
				"error":  err.Error(),
			})
		}
	})
	if err != nil {
		return nil, fmt.Errorf("subscribing to %q: %w", subject, err)
	}

	return sub, nil
}

// Rebuild clears and repopulates the indexes for the named models, or
// every configured model when models is nil. Entries come from the
// content API via a full traversal.
func (s *Syncer) Rebuild(ctx context.Context, models []string, params *strapi.Params, opts strapi.TraversalOptions) error {
	wanted := map[string]bool{}
	for _, model := range models {
		wanted[model] = true
	}

	for _, cfg := range s.config.ContentTypes {
		if models != nil && !wanted[cfg.Name] {
			continue
		}

		err := s.rebuildOne(ctx, cfg, params, opts)
		if err != nil {
			return fmt.Errorf("rebuilding index for %q: %w", cfg.Name, err)
		}
	}

	return nil
}

func (s *Syncer) rebuildOne(ctx context.Context, cfg ContentTypeConfig, params *strapi.Params, opts strapi.TraversalOptions) error {
	index := cfg.IndexName(s.config.Prefix)

	s.logInfo("rebuilding search index", map[string]any{
		"contentType": cfg.Name,
		"index":       index,
	})

	err := s.provider.Clear(ctx, index)
	if err != nil {
		return fmt.Errorf("clearing index: %w", err)
	}

	entities, err := s.client.FetchAll(ctx, cfg.Name, params, opts)
	if err != nil {
		return fmt.Errorf("fetching entries: %w", err)
	}

	if len(entities) == 0 {
		return nil
	}

	records := make([]Record, 0, len(entities))

	for _, entity := range entities {
		record, err := Sanitize(cfg, entity)
		if err != nil {
			return err
		}

		records = append(records, record)
	}

	err = s.provider.CreateMany(ctx, index, records)
	if err != nil {
		return fmt.Errorf("indexing %d entries: %w", len(records), err)
	}

	s.logInfo("search index rebuilt", map[string]any{
		"contentType": cfg.Name,
		"index":       index,
		"entries":     len(records),
	})

	return nil
}

func (s *Syncer) logInfo(msg string, fields map[string]any) {
	if s.logger != nil {
		s.logger.Info(msg, fields)
	}
}

func (s *Syncer) logError(msg string, fields map[string]any) {
	if s.logger != nil {
		s.logger.Error(msg, fields)
	}
}
