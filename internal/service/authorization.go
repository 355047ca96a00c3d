package service

import (
	"context"

	ierr "github.com/flexprice/checkout/internal/errors"
	"github.com/flexprice/checkout/internal/integration/qpay"
	"github.com/flexprice/checkout/internal/sentry"
)

// AccessToken is a gateway token together with the response it was parsed from
type AccessToken struct {
	Raw   string
	Value string
}

// AuthorizationAcquirer fetches gateway access tokens
type AuthorizationAcquirer interface {
	Acquire(ctx context.Context) (*AccessToken, error)
}

type authorizationAcquirer struct {
	ServiceParams
}

func NewAuthorizationAcquirer(params ServiceParams) AuthorizationAcquirer {
	return &authorizationAcquirer{ServiceParams: params}
}

func (a *authorizationAcquirer) Acquire(ctx context.Context) (*AccessToken, error) {
	span, ctx := a.Sentry.StartGatewaySpan(ctx, "qpay.token", nil)

	raw, err := a.Gateway.RequestToken(ctx)
	if err != nil {
		sentry.FinishSpan(span, err)
		return nil, ierr.WithError(err).
			WithHint("Unable to authorize with the payment gateway").
			Mark(ierr.ErrAuthorization)
	}

	value, err := qpay.ParseAccessToken(raw)
	sentry.FinishSpan(span, err)
	if err != nil {
		return nil, ierr.WithError(err).
			WithHint("Payment gateway returned an unusable token").
			Mark(ierr.ErrAuthorization)
	}

	return &AccessToken{Raw: raw, Value: value}, nil
}
