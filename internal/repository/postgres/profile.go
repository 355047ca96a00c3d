package postgres

import (
	"context"

	"github.com/flexprice/checkout/internal/domain/profile"
	"github.com/flexprice/checkout/internal/logger"
	"github.com/flexprice/checkout/internal/postgres"
)

type profileRepository struct {
	db     *postgres.DB
	logger *logger.Logger
}

func NewProfileRepository(db *postgres.DB, logger *logger.Logger) profile.Repository {
	return &profileRepository{db: db, logger: logger}
}

func (r *profileRepository) Get(ctx context.Context, owner string) (*profile.Profile, error) {
	query := `SELECT owner, name, role, created_at, updated_at FROM profiles WHERE owner = $1`

	var p profile.Profile
	if err := r.db.GetQuerier(ctx).GetContext(ctx, &p, query, owner); err != nil {
		return nil, translate(err, "profile", map[string]any{"owner": owner})
	}
	return &p, nil
}

func (r *profileRepository) Create(ctx context.Context, p *profile.Profile) error {
	query := `
	INSERT INTO profiles (owner, name, role, created_at, updated_at)
	VALUES (:owner, :name, :role, :created_at, :updated_at)
	`
	_, err := r.db.GetQuerier(ctx).NamedExecContext(ctx, query, p)
	return translate(err, "profile", map[string]any{"owner": p.Owner})
}

func (r *profileRepository) UpdateName(ctx context.Context, owner, name string) error {
	query := `UPDATE profiles SET name = $2, updated_at = now() WHERE owner = $1`

	res, err := r.db.GetQuerier(ctx).ExecContext(ctx, query, owner, name)
	if err != nil {
		return translate(err, "profile", map[string]any{"owner": owner})
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return translate(sqlNoRows(), "profile", map[string]any{"owner": owner})
	}
	return nil
}
