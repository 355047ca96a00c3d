package repository

import (
	"github.com/flexprice/checkout/internal/domain/credential"
	"github.com/flexprice/checkout/internal/domain/invoice"
	"github.com/flexprice/checkout/internal/domain/payment"
	"github.com/flexprice/checkout/internal/domain/profile"
	"github.com/flexprice/checkout/internal/logger"
	"github.com/flexprice/checkout/internal/postgres"
	postgresRepo "github.com/flexprice/checkout/internal/repository/postgres"
)

func NewInvoiceRepository(db *postgres.DB, logger *logger.Logger) invoice.Repository {
	return postgresRepo.NewInvoiceRepository(db, logger)
}

func NewPaymentRepository(db *postgres.DB, logger *logger.Logger) payment.Repository {
	return postgresRepo.NewPaymentRepository(db, logger)
}

func NewProfileRepository(db *postgres.DB, logger *logger.Logger) profile.Repository {
	return postgresRepo.NewProfileRepository(db, logger)
}

func NewCredentialRepository(db *postgres.DB, logger *logger.Logger) credential.Repository {
	return postgresRepo.NewCredentialRepository(db, logger)
}
