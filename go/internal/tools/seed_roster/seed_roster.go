package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/mcdev12/draftroom/go/internal/dbconfig"
	"github.com/mcdev12/draftroom/go/internal/models"
	"github.com/mcdev12/draftroom/go/internal/roster"
)

func main() {
	path := flag.String("file", "go/internal/assets/roster.json", "roster JSON file")
	truncate := flag.Bool("truncate", false, "empty roster_members before seeding")
	flag.Parse()

	// 1) Load the JSON snapshot
	members, err := loadMembers(*path)
	if err != nil {
		fmt.Fprintf(os.Stderr, "%v\n", err)
		os.Exit(1)
	}

	// 2) Connect using shared dbconfig
	ctx := context.Background()
	cfg := dbconfig.NewConfigFromEnv()
	pool, err := pgxpool.New(ctx, cfg.DSN())
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to connect: %v\n", err)
		os.Exit(1)
	}
	defer pool.Close()

	if *truncate {
		if _, err := pool.Exec(ctx, `TRUNCATE roster_members RESTART IDENTITY`); err != nil {
			fmt.Fprintf(os.Stderr, "truncate roster_members: %v\n", err)
			os.Exit(1)
		}
	}

	// 3) Insert members that are not already present by name, and count
	var (
		total    = len(members)
		inserted int
		skipped  int
		errs     int
	)

	for _, m := range members {
		cmdTag, err := pool.Exec(ctx, `
            INSERT INTO roster_members (name, score, member_rank)
            SELECT $1, $2, $3
            WHERE NOT EXISTS (SELECT 1 FROM roster_members WHERE name = $1)
        `, m.Name, m.Score, m.Rank)
		if err != nil {
			fmt.Fprintf(os.Stderr, "error inserting member %q: %v\n", m.Name, err)
			errs++
			continue
		}
		if cmdTag.RowsAffected() == 1 {
			inserted++
		} else {
			skipped++
		}
	}

	// 4) Print summary
	fmt.Printf(
		"Roster seed complete: %d total, %d inserted, %d skipped, %d errors\n",
		total, inserted, skipped, errs,
	)
}

// loadMembers reads the roster file. Entries are checked against the same rules as the roster API.
func loadMembers(path string) ([]models.Member, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read JSON: %w", err)
	}
	var raw []roster.AddMemberRequest
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("unmarshal JSON: %w", err)
	}

	validate := validator.New()
	members := make([]models.Member, 0, len(raw))
	for i, m := range raw {
		m.Name = strings.TrimSpace(m.Name)
		if err := validate.Struct(m); err != nil {
			return nil, fmt.Errorf("entry %d: %w: %v", i, models.ErrValidation, err)
		}
		members = append(members, models.Member{Name: m.Name, Score: m.Score, Rank: m.Rank})
	}
	return members, nil
}
