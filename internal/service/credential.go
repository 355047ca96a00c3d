package service

import (
	"context"
	"time"

	"github.com/flexprice/checkout/internal/api/dto"
	"github.com/flexprice/checkout/internal/cache"
	"github.com/flexprice/checkout/internal/config"
	"github.com/flexprice/checkout/internal/domain/credential"
	ierr "github.com/flexprice/checkout/internal/errors"
	"github.com/flexprice/checkout/internal/integration/qpay"
	"github.com/flexprice/checkout/internal/logger"
	"github.com/flexprice/checkout/internal/security"
	"github.com/flexprice/checkout/internal/types"
)

// InvoiceTemplateProvider yields the template new invoices are issued from
type InvoiceTemplateProvider interface {
	// InvoiceTemplate falls back to the configured default when none is stored
	InvoiceTemplate(ctx context.Context) qpay.InvoiceTemplate
}

// CredentialService manages the merchant's gateway credentials and invoice template
type CredentialService interface {
	qpay.CredentialProvider
	InvoiceTemplateProvider

	GetCredentials(ctx context.Context) (*dto.CredentialsResponse, error)
	UpdateCredentials(ctx context.Context, req *dto.UpdateCredentialsRequest) (*dto.CredentialsResponse, error)
	GetInvoiceTemplate(ctx context.Context) (*dto.InvoiceTemplateResponse, error)
	UpdateInvoiceTemplate(ctx context.Context, req *dto.UpdateInvoiceTemplateRequest) (*dto.InvoiceTemplateResponse, error)
}

type credentialService struct {
	repo              credential.Repository
	encryptionService security.EncryptionService
	cache             cache.Cache
	config            *config.Configuration
	logger            *logger.Logger
}

// NewCredentialService is built outside ServiceParams because the gateway
// client it feeds is itself a ServiceParams member
func NewCredentialService(
	repo credential.Repository,
	encryptionService security.EncryptionService,
	cache cache.Cache,
	config *config.Configuration,
	logger *logger.Logger,
) CredentialService {
	return &credentialService{
		repo:              repo,
		encryptionService: encryptionService,
		cache:             cache,
		config:            config,
		logger:            logger,
	}
}

func (s *credentialService) credentials(ctx context.Context) (*credential.Credentials, error) {
	key := cache.GenerateKey(cache.PrefixCredential, "merchant")
	if v, ok := s.cache.Get(ctx, key); ok {
		if creds, ok := v.(*credential.Credentials); ok {
			return creds, nil
		}
	}

	creds, err := s.repo.GetCredentials(ctx)
	if err != nil {
		if ierr.IsNotFound(err) {
			return nil, ierr.WithError(err).
				WithHint("Payment gateway credentials are not configured").
				Mark(ierr.ErrNotFound)
		}
		return nil, err
	}
	s.cache.Set(ctx, key, creds, 0)
	return creds, nil
}

// GatewayCredentials decrypts the stored password for a gateway call
func (s *credentialService) GatewayCredentials(ctx context.Context) (*qpay.Credentials, error) {
	creds, err := s.credentials(ctx)
	if err != nil {
		return nil, err
	}

	password, err := s.encryptionService.Decrypt(creds.PasswordEncrypted)
	if err != nil {
		return nil, ierr.WithError(err).
			WithHint("Stored gateway credentials could not be decrypted").
			Mark(ierr.ErrInternal)
	}

	return &qpay.Credentials{
		Username:    creds.Username,
		Password:    password,
		InvoiceCode: creds.InvoiceCode,
	}, nil
}

func (s *credentialService) GetCredentials(ctx context.Context) (*dto.CredentialsResponse, error) {
	creds, err := s.GatewayCredentials(ctx)
	if err != nil {
		return nil, err
	}
	stored, err := s.credentials(ctx)
	if err != nil {
		return nil, err
	}
	return &dto.CredentialsResponse{
		Username:       creds.Username,
		PasswordMasked: security.Mask(creds.Password),
		InvoiceCode:    creds.InvoiceCode,
		UpdatedBy:      stored.UpdatedBy,
		UpdatedAt:      stored.UpdatedAt,
	}, nil
}

func (s *credentialService) UpdateCredentials(ctx context.Context, req *dto.UpdateCredentialsRequest) (*dto.CredentialsResponse, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	encrypted, err := s.encryptionService.Encrypt(req.Password)
	if err != nil {
		return nil, ierr.WithError(err).
			WithHint("Failed to secure the gateway password").
			Mark(ierr.ErrInternal)
	}

	creds := &credential.Credentials{
		Username:          req.Username,
		PasswordEncrypted: encrypted,
		InvoiceCode:       req.InvoiceCode,
		UpdatedBy:         types.GetUserID(ctx),
		UpdatedAt:         time.Now().UTC(),
	}
	if err := s.repo.SaveCredentials(ctx, creds); err != nil {
		return nil, err
	}
	s.cache.Delete(ctx, cache.GenerateKey(cache.PrefixCredential, "merchant"))

	s.logger.WithContext(ctx).Infow("gateway credentials updated",
		"username", req.Username,
		"updated_by", creds.UpdatedBy)

	return &dto.CredentialsResponse{
		Username:       creds.Username,
		PasswordMasked: security.Mask(req.Password),
		InvoiceCode:    creds.InvoiceCode,
		UpdatedBy:      creds.UpdatedBy,
		UpdatedAt:      creds.UpdatedAt,
	}, nil
}

func (s *credentialService) defaultTemplate() *credential.InvoiceTemplate {
	d := s.config.Payment.DefaultTemplate
	return &credential.InvoiceTemplate{
		SenderInvoiceNumber: d.SenderInvoiceNumber,
		ReceiverCode:        d.ReceiverCode,
		Description:         d.Description,
		Amount:              d.Amount,
	}
}

// template returns the stored template or the default, and whether the default applies
func (s *credentialService) template(ctx context.Context) (*credential.InvoiceTemplate, bool) {
	key := cache.GenerateKey(cache.PrefixTemplate, "merchant")
	if v, ok := s.cache.Get(ctx, key); ok {
		if tmpl, ok := v.(*credential.InvoiceTemplate); ok {
			return tmpl, false
		}
	}

	tmpl, err := s.repo.GetTemplate(ctx)
	if err != nil {
		if !ierr.IsNotFound(err) {
			s.logger.WithContext(ctx).Warnw("failed to load invoice template, using default",
				"error", err)
		}
		return s.defaultTemplate(), true
	}
	s.cache.Set(ctx, key, tmpl, 0)
	return tmpl, false
}

func (s *credentialService) InvoiceTemplate(ctx context.Context) qpay.InvoiceTemplate {
	tmpl, _ := s.template(ctx)
	return qpay.InvoiceTemplate{
		SenderInvoiceNumber: tmpl.SenderInvoiceNumber,
		ReceiverCode:        tmpl.ReceiverCode,
		Description:         tmpl.Description,
		Amount:              tmpl.Amount,
	}
}

func (s *credentialService) GetInvoiceTemplate(ctx context.Context) (*dto.InvoiceTemplateResponse, error) {
	tmpl, isDefault := s.template(ctx)
	return &dto.InvoiceTemplateResponse{InvoiceTemplate: tmpl, IsDefault: isDefault}, nil
}

func (s *credentialService) UpdateInvoiceTemplate(ctx context.Context, req *dto.UpdateInvoiceTemplateRequest) (*dto.InvoiceTemplateResponse, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	tmpl := req.ToInvoiceTemplate(types.GetUserID(ctx))
	if err := s.repo.SaveTemplate(ctx, tmpl); err != nil {
		return nil, err
	}
	s.cache.Delete(ctx, cache.GenerateKey(cache.PrefixTemplate, "merchant"))

	return &dto.InvoiceTemplateResponse{InvoiceTemplate: tmpl}, nil
}
