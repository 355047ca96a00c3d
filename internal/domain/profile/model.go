package profile

import (
	"strings"
	"time"

	ierr "github.com/flexprice/checkout/internal/errors"
	"github.com/flexprice/checkout/internal/types"
)

const MaxNameLength = 100

type Profile struct {
	Owner     string         `db:"owner" json:"owner"`
	Name      string         `db:"name" json:"name"`
	Role      types.UserRole `db:"role" json:"role"`
	CreatedAt time.Time      `db:"created_at" json:"created_at"`
	UpdatedAt time.Time      `db:"updated_at" json:"updated_at"`
}

func NewProfile(owner string, role types.UserRole) *Profile {
	now := time.Now().UTC()
	return &Profile{
		Owner:     owner,
		Role:      role,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// NormalizeName trims the display name and enforces its bounds
func NormalizeName(name string) (string, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return "", ierr.NewError("name is required").
			WithHint("Please enter your name").
			Mark(ierr.ErrValidation)
	}
	if len([]rune(name)) > MaxNameLength {
		return "", ierr.NewError("name too long").
			WithHintf("Name must be at most %d characters", MaxNameLength).
			WithReportableDetails(map[string]any{"max_length": MaxNameLength}).
			Mark(ierr.ErrValidation)
	}
	return name, nil
}
