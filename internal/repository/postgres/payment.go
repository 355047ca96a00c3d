package postgres

import (
	"context"
	"fmt"
	"strings"

	"github.com/flexprice/checkout/internal/domain/payment"
	"github.com/flexprice/checkout/internal/logger"
	"github.com/flexprice/checkout/internal/postgres"
	"github.com/flexprice/checkout/internal/types"
)

type paymentRepository struct {
	db     *postgres.DB
	logger *logger.Logger
}

func NewPaymentRepository(db *postgres.DB, logger *logger.Logger) payment.Repository {
	return &paymentRepository{db: db, logger: logger}
}

func (r *paymentRepository) CreateAttempt(ctx context.Context, attempt *payment.PaymentAttempt) error {
	if err := attempt.Status.Validate(); err != nil {
		return err
	}

	query := `
	INSERT INTO payment_attempts (id, owner, invoice_id, amount, status, idempotency_key, created_at)
	VALUES (:id, :owner, :invoice_id, :amount, :status, NULLIF(:idempotency_key, ''), :created_at)
	`
	_, err := r.db.GetQuerier(ctx).NamedExecContext(ctx, query, attempt)
	return translate(err, "payment attempt", map[string]any{"owner": attempt.Owner})
}

func (r *paymentRepository) ListAttempts(ctx context.Context, filter *types.PaymentAttemptFilter) ([]*payment.PaymentAttempt, error) {
	if filter == nil {
		filter = types.NewPaymentAttemptFilter()
	}
	where, args := attemptWhere(filter)
	query := `SELECT id, owner, invoice_id, amount, status, COALESCE(idempotency_key, '') AS idempotency_key, created_at FROM payment_attempts` + where + ` ORDER BY created_at DESC`
	if !filter.IsUnlimited() {
		query += fmt.Sprintf(" LIMIT %d OFFSET %d", filter.GetLimit(), filter.GetOffset())
	}

	attempts := make([]*payment.PaymentAttempt, 0)
	if err := r.db.GetQuerier(ctx).SelectContext(ctx, &attempts, query, args...); err != nil {
		return nil, translate(err, "payment attempt", nil)
	}
	return attempts, nil
}

func (r *paymentRepository) CountAttempts(ctx context.Context, filter *types.PaymentAttemptFilter) (int, error) {
	where, args := attemptWhere(filter)

	var count int
	if err := r.db.GetQuerier(ctx).GetContext(ctx, &count, `SELECT count(*) FROM payment_attempts`+where, args...); err != nil {
		return 0, translate(err, "payment attempt", nil)
	}
	return count, nil
}

func attemptWhere(filter *types.PaymentAttemptFilter) (string, []interface{}) {
	if filter == nil {
		return "", nil
	}
	clauses := make([]string, 0, 2)
	args := make([]interface{}, 0, 2)
	if filter.Owner != "" {
		args = append(args, filter.Owner)
		clauses = append(clauses, fmt.Sprintf("owner = $%d", len(args)))
	}
	if filter.Status != "" {
		args = append(args, filter.Status)
		clauses = append(clauses, fmt.Sprintf("status = $%d", len(args)))
	}
	if len(clauses) == 0 {
		return "", args
	}
	return " WHERE " + strings.Join(clauses, " AND "), args
}
