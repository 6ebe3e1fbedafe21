package roster

import (
	"context"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/mcdev12/draftroom/go/internal/models"
	"github.com/rs/zerolog/log"
)

// AddMemberRequest is the input for a new roster member.
type AddMemberRequest struct {
	Name  string `json:"name" validate:"required"`
	Score int    `json:"score" validate:"gte=0"`
	Rank  int    `json:"rank" validate:"gte=0"`
}

// UpdateMemberRequest lists the fields to change on an existing member.
type UpdateMemberRequest struct {
	Name  *string `json:"name,omitempty"`
	Score *int    `json:"score,omitempty" validate:"omitempty,gte=0"`
	Rank  *int    `json:"rank,omitempty" validate:"omitempty,gte=0"`
}

// App handles roster business logic. It knows nothing about draft sessions.
type App struct {
	repo     Repository
	validate *validator.Validate
}

// NewApp creates a new roster App
func NewApp(repo Repository) *App {
	return &App{
		repo:     repo,
		validate: validator.New(),
	}
}

// AddMember validates req and appends it to the roster with a fresh identifier.
func (a *App) AddMember(ctx context.Context, req AddMemberRequest) (models.Member, error) {
	req.Name = strings.TrimSpace(req.Name)
	if err := a.validate.StructCtx(ctx, req); err != nil {
		return models.Member{}, fmt.Errorf("%w: %v", models.ErrValidation, err)
	}

	member, err := a.repo.Add(ctx, models.Member{Name: req.Name, Score: req.Score, Rank: req.Rank})
	if err != nil {
		return models.Member{}, err
	}

	log.Info().Int("member_id", member.ID).Str("name", member.Name).Msg("roster member added")
	return member, nil
}

// UpdateMember merges the supplied fields into member id.
func (a *App) UpdateMember(ctx context.Context, id int, req UpdateMemberRequest) (models.Member, error) {
	if req.Name != nil {
		name := strings.TrimSpace(*req.Name)
		if name == "" {
			return models.Member{}, fmt.Errorf("%w: name must not be empty", models.ErrValidation)
		}
		req.Name = &name
	}
	if err := a.validate.StructCtx(ctx, req); err != nil {
		return models.Member{}, fmt.Errorf("%w: %v", models.ErrValidation, err)
	}

	member, err := a.repo.Update(ctx, id, models.MemberUpdate{Name: req.Name, Score: req.Score, Rank: req.Rank})
	if err != nil {
		return models.Member{}, err
	}

	log.Info().Int("member_id", member.ID).Msg("roster member updated")
	return member, nil
}

// RemoveMember deletes member id. Unknown ids are ignored.
func (a *App) RemoveMember(ctx context.Context, id int) error {
	if err := a.repo.Remove(ctx, id); err != nil {
		return err
	}
	log.Info().Int("member_id", id).Msg("roster member removed")
	return nil
}

// ListMembers returns the roster in insertion order.
func (a *App) ListMembers(ctx context.Context) ([]models.Member, error) {
	return a.repo.List(ctx)
}
