package postgres

import (
	"context"
	"fmt"
	"strings"

	"github.com/flexprice/checkout/internal/domain/invoice"
	"github.com/flexprice/checkout/internal/logger"
	"github.com/flexprice/checkout/internal/postgres"
	"github.com/flexprice/checkout/internal/types"
)

type invoiceRepository struct {
	db     *postgres.DB
	logger *logger.Logger
}

func NewInvoiceRepository(db *postgres.DB, logger *logger.Logger) invoice.Repository {
	return &invoiceRepository{db: db, logger: logger}
}

const invoiceColumns = `id, owner, invoice_id, payload, amount, is_paid, COALESCE(idempotency_key, '') AS idempotency_key, created_at, updated_at`

func (r *invoiceRepository) Create(ctx context.Context, inv *invoice.Invoice) error {
	if err := inv.Validate(); err != nil {
		return err
	}

	query := `
	INSERT INTO invoices (id, owner, invoice_id, payload, amount, is_paid, idempotency_key, created_at, updated_at)
	VALUES (:id, :owner, :invoice_id, :payload, :amount, :is_paid, NULLIF(:idempotency_key, ''), :created_at, :updated_at)
	`
	_, err := r.db.GetQuerier(ctx).NamedExecContext(ctx, query, inv)
	return translate(err, "invoice", map[string]any{"owner": inv.Owner, "invoice_id": inv.InvoiceID})
}

func (r *invoiceRepository) GetLatestByOwner(ctx context.Context, owner string) (*invoice.Invoice, error) {
	query := `SELECT ` + invoiceColumns + ` FROM invoices WHERE owner = $1 ORDER BY created_at DESC LIMIT 1`

	var inv invoice.Invoice
	if err := r.db.GetQuerier(ctx).GetContext(ctx, &inv, query, owner); err != nil {
		return nil, translate(err, "invoice", map[string]any{"owner": owner})
	}
	return &inv, nil
}

func (r *invoiceRepository) List(ctx context.Context, filter *types.InvoiceFilter) ([]*invoice.Invoice, error) {
	if filter == nil {
		filter = types.NewInvoiceFilter()
	}
	where, args := invoiceWhere(filter)
	query := `SELECT ` + invoiceColumns + ` FROM invoices` + where + ` ORDER BY created_at DESC`
	if !filter.IsUnlimited() {
		query += fmt.Sprintf(" LIMIT %d OFFSET %d", filter.GetLimit(), filter.GetOffset())
	}

	invoices := make([]*invoice.Invoice, 0)
	if err := r.db.GetQuerier(ctx).SelectContext(ctx, &invoices, query, args...); err != nil {
		return nil, translate(err, "invoice", nil)
	}
	return invoices, nil
}

func (r *invoiceRepository) Count(ctx context.Context, filter *types.InvoiceFilter) (int, error) {
	where, args := invoiceWhere(filter)

	var count int
	if err := r.db.GetQuerier(ctx).GetContext(ctx, &count, `SELECT count(*) FROM invoices`+where, args...); err != nil {
		return 0, translate(err, "invoice", nil)
	}
	return count, nil
}

func (r *invoiceRepository) MarkPaid(ctx context.Context, invoiceID string) error {
	query := `UPDATE invoices SET is_paid = true, updated_at = now() WHERE invoice_id = $1`

	res, err := r.db.GetQuerier(ctx).ExecContext(ctx, query, invoiceID)
	if err != nil {
		return translate(err, "invoice", map[string]any{"invoice_id": invoiceID})
	}
	if n, _ := res.RowsAffected(); n == 0 {
		r.logger.Warnw("no ledger row matched paid invoice", "invoice_id", invoiceID)
	}
	return nil
}

func invoiceWhere(filter *types.InvoiceFilter) (string, []interface{}) {
	if filter == nil {
		return "", nil
	}
	clauses := make([]string, 0, 2)
	args := make([]interface{}, 0, 2)
	if filter.Owner != "" {
		args = append(args, filter.Owner)
		clauses = append(clauses, fmt.Sprintf("owner = $%d", len(args)))
	}
	if filter.IsPaid != nil {
		args = append(args, *filter.IsPaid)
		clauses = append(clauses, fmt.Sprintf("is_paid = $%d", len(args)))
	}
	if len(clauses) == 0 {
		return "", args
	}
	return " WHERE " + strings.Join(clauses, " AND "), args
}
