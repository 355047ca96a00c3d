package types

import (
	ierr "github.com/flexprice/checkout/internal/errors"
	"github.com/samber/lo"
)

const (
	FILTER_DEFAULT_LIMIT = 50
	FILTER_MAX_LIMIT     = 1000
)

// BaseFilter defines common pagination capabilities
type BaseFilter interface {
	GetLimit() int
	GetOffset() int
	Validate() error
	IsUnlimited() bool
}

// QueryFilter represents a pagination query with optional fields
type QueryFilter struct {
	Limit  *int `json:"limit,omitempty" form:"limit" validate:"omitempty,min=1,max=1000"`
	Offset *int `json:"offset,omitempty" form:"offset" validate:"omitempty,min=0"`
}

// NewDefaultQueryFilter returns a filter with the default page size
func NewDefaultQueryFilter() *QueryFilter {
	return &QueryFilter{
		Limit:  lo.ToPtr(FILTER_DEFAULT_LIMIT),
		Offset: lo.ToPtr(0),
	}
}

func (f *QueryFilter) GetLimit() int {
	if f == nil || f.Limit == nil {
		return FILTER_DEFAULT_LIMIT
	}
	return *f.Limit
}

func (f *QueryFilter) GetOffset() int {
	if f == nil || f.Offset == nil {
		return 0
	}
	return *f.Offset
}

func (f *QueryFilter) IsUnlimited() bool {
	return f == nil || f.Limit == nil
}

func (f *QueryFilter) Validate() error {
	if f == nil {
		return nil
	}
	if f.Limit != nil && (*f.Limit < 1 || *f.Limit > FILTER_MAX_LIMIT) {
		return ierr.NewError("invalid limit").
			WithHint("Limit must be between 1 and 1000").
			Mark(ierr.ErrValidation)
	}
	if f.Offset != nil && *f.Offset < 0 {
		return ierr.NewError("invalid offset").
			WithHint("Offset cannot be negative").
			Mark(ierr.ErrValidation)
	}
	return nil
}

// InvoiceFilter narrows ledger invoice listings
type InvoiceFilter struct {
	*QueryFilter
	Owner  string `json:"owner,omitempty" form:"owner"`
	IsPaid *bool  `json:"is_paid,omitempty" form:"is_paid"`
}

func NewInvoiceFilter() *InvoiceFilter {
	return &InvoiceFilter{QueryFilter: NewDefaultQueryFilter()}
}

func (f *InvoiceFilter) Validate() error {
	if f == nil {
		return nil
	}
	return f.QueryFilter.Validate()
}

// PaymentAttemptFilter narrows payment attempt listings
type PaymentAttemptFilter struct {
	*QueryFilter
	Owner  string               `json:"owner,omitempty" form:"owner"`
	Status PaymentAttemptStatus `json:"status,omitempty" form:"status"`
}

func NewPaymentAttemptFilter() *PaymentAttemptFilter {
	return &PaymentAttemptFilter{QueryFilter: NewDefaultQueryFilter()}
}

func (f *PaymentAttemptFilter) Validate() error {
	if f == nil {
		return nil
	}
	if f.Status != "" {
		if err := f.Status.Validate(); err != nil {
			return err
		}
	}
	return f.QueryFilter.Validate()
}
