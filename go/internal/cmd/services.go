package main

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/mcdev12/draftroom/go/internal/draft/events"
	"github.com/mcdev12/draftroom/go/internal/draft/gateway"
	"github.com/mcdev12/draftroom/go/internal/draft/history"
	"github.com/mcdev12/draftroom/go/internal/draft/session"
	"github.com/mcdev12/draftroom/go/internal/roster"
	"github.com/rs/zerolog/log"
)

type Services struct {
	Roster      *roster.Service
	Drafts      *session.Service
	Archive     *history.Service
	Gateway     *gateway.WebSocketHandler
	Manager     *session.Manager
	Connections *gateway.ConnectionManager
	Health      *HealthChecker

	closers []func()
}

// Close releases the NATS connection and stops the countdown.
func (s *Services) Close() {
	s.Manager.Close()
	for i := len(s.closers) - 1; i >= 0; i-- {
		s.closers[i]()
	}
}

func setupServices(ctx context.Context, cfg *Config, database *sql.DB) (*Services, error) {
	// Repository layer → App layer → Service layer, with the session manager in the middle
	services := &Services{}

	rosterRepo, err := setupRosterRepository(ctx, cfg, database)
	if err != nil {
		return nil, err
	}
	rosterApp := roster.NewApp(rosterRepo)

	var manager *session.Manager
	connections := gateway.NewConnectionManager(
		gateway.DefaultConnectionConfig(),
		gateway.StateProviderFunc(func() session.Snapshot { return manager.Snapshot() }),
	)

	publishers := events.MultiPublisher{events.LogPublisher{}, connections}
	health := &HealthChecker{connections: func() int { return connections.Stats().TotalConnections }}
	if database != nil {
		health.db = database
	}

	if cfg.Events.NATSURL != "" {
		natsCfg := events.DefaultNATSConfig()
		natsCfg.URL = cfg.Events.NATSURL
		natsCfg.SubjectPrefix = cfg.Events.SubjectPrefix
		natsPublisher, err := events.NewNATSPublisher(natsCfg)
		if err != nil {
			return nil, err
		}
		publishers = append(publishers, natsPublisher)
		health.nats = natsPublisher
		services.closers = append(services.closers, natsPublisher.Close)
	}

	if cfg.Archive.Enabled {
		store := history.NewPostgresStore(database)
		if err := store.EnsureSchema(ctx); err != nil {
			return nil, err
		}
		archiver := history.NewArchiver(store)
		publishers = append(publishers, archiver)
		services.Archive = history.NewService(store)
		log.Info().Str("run_id", archiver.RunID().String()).Msg("session archive enabled")
	}

	manager = session.NewManager(rosterRepo, session.NewClockScheduler(nil), publishers)

	health.sessions = manager

	services.Manager = manager
	services.Health = health
	services.Connections = connections
	services.Roster = roster.NewService(rosterApp, manager)
	services.Drafts = session.NewService(manager, cfg.Draft.DefaultDurationSec)
	services.Gateway = gateway.NewWebSocketHandler(connections)
	return services, nil
}

func setupRosterRepository(ctx context.Context, cfg *Config, database *sql.DB) (roster.Repository, error) {
	switch cfg.Draft.RosterBackend {
	case rosterBackendPostgres:
		repo := roster.NewPostgresRepository(database)
		if err := repo.EnsureSchema(ctx); err != nil {
			return nil, err
		}
		existing, err := repo.List(ctx)
		if err != nil {
			return nil, err
		}
		if len(existing) == 0 {
			for _, m := range cfg.seedMembers() {
				if _, err := repo.Add(ctx, m); err != nil {
					return nil, fmt.Errorf("failed to seed roster: %w", err)
				}
			}
			log.Info().Int("members", len(cfg.Draft.SeedMembers)).Msg("seeded empty postgres roster")
		}
		log.Info().Msg("roster backed by postgres")
		return repo, nil
	default:
		log.Info().Int("members", len(cfg.Draft.SeedMembers)).Msg("roster backed by memory")
		return roster.NewMemoryRepository(cfg.seedMembers()), nil
	}
}
