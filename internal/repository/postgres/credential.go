package postgres

import (
	"context"
	"database/sql"

	"github.com/flexprice/checkout/internal/domain/credential"
	"github.com/flexprice/checkout/internal/logger"
	"github.com/flexprice/checkout/internal/postgres"
)

type credentialRepository struct {
	db     *postgres.DB
	logger *logger.Logger
}

func NewCredentialRepository(db *postgres.DB, logger *logger.Logger) credential.Repository {
	return &credentialRepository{db: db, logger: logger}
}

func (r *credentialRepository) GetCredentials(ctx context.Context) (*credential.Credentials, error) {
	query := `SELECT username, password_encrypted, invoice_code, updated_by, updated_at FROM gateway_credentials WHERE id = 1`

	var c credential.Credentials
	if err := r.db.GetQuerier(ctx).GetContext(ctx, &c, query); err != nil {
		return nil, translate(err, "gateway credentials", nil)
	}
	return &c, nil
}

func (r *credentialRepository) SaveCredentials(ctx context.Context, c *credential.Credentials) error {
	query := `
	INSERT INTO gateway_credentials (id, username, password_encrypted, invoice_code, updated_by, updated_at)
	VALUES (1, :username, :password_encrypted, :invoice_code, :updated_by, :updated_at)
	ON CONFLICT (id) DO UPDATE SET
		username = EXCLUDED.username,
		password_encrypted = EXCLUDED.password_encrypted,
		invoice_code = EXCLUDED.invoice_code,
		updated_by = EXCLUDED.updated_by,
		updated_at = EXCLUDED.updated_at
	`
	_, err := r.db.GetQuerier(ctx).NamedExecContext(ctx, query, c)
	return translate(err, "gateway credentials", nil)
}

func (r *credentialRepository) GetTemplate(ctx context.Context) (*credential.InvoiceTemplate, error) {
	query := `SELECT sender_invoice_number, receiver_code, description, amount, updated_by, updated_at FROM invoice_templates WHERE id = 1`

	var t credential.InvoiceTemplate
	if err := r.db.GetQuerier(ctx).GetContext(ctx, &t, query); err != nil {
		return nil, translate(err, "invoice template", nil)
	}
	return &t, nil
}

func (r *credentialRepository) SaveTemplate(ctx context.Context, t *credential.InvoiceTemplate) error {
	query := `
	INSERT INTO invoice_templates (id, sender_invoice_number, receiver_code, description, amount, updated_by, updated_at)
	VALUES (1, :sender_invoice_number, :receiver_code, :description, :amount, :updated_by, :updated_at)
	ON CONFLICT (id) DO UPDATE SET
		sender_invoice_number = EXCLUDED.sender_invoice_number,
		receiver_code = EXCLUDED.receiver_code,
		description = EXCLUDED.description,
		amount = EXCLUDED.amount,
		updated_by = EXCLUDED.updated_by,
		updated_at = EXCLUDED.updated_at
	`
	_, err := r.db.GetQuerier(ctx).NamedExecContext(ctx, query, t)
	return translate(err, "invoice template", nil)
}

func sqlNoRows() error {
	return sql.ErrNoRows
}
