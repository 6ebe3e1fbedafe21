package main

import (
	"context"
	"database/sql"
	"time"

	"github.com/mcdev12/draftroom/go/internal/dbconfig"
	"github.com/rs/zerolog/log"
)

func setupDatabase(ctx context.Context) (*sql.DB, error) {
	dbCfg := dbconfig.NewConfigFromEnv()

	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	database, err := dbCfg.Open(ctx)
	if err != nil {
		return nil, err
	}

	log.Info().
		Str("user", dbCfg.User).
		Str("host", dbCfg.Host).
		Int("port", dbCfg.Port).
		Str("database", dbCfg.Database).
		Msg("connected to database")
	return database, nil
}
