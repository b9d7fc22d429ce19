package contributors

import (
	"context"
	"errors"
	"strings"

	"github.com/familyplate/recipebox/pkg/logging"
)

// DefaultName labels submissions from numbers absent from the directory.
const DefaultName = "MMS Submission"

type directory interface {
	FindByPhone(ctx context.Context, phone string) (*Contributor, error)
}

// Resolver maps raw sender phone numbers to contributor display names.
// Matching is tolerant and best-effort: a failed lookup never blocks
// ingestion.
type Resolver struct {
	directory directory
	logger    *logging.Logger
}

// NewResolver creates a Resolver over the given directory.
func NewResolver(d directory, logger *logging.Logger) *Resolver {
	if d == nil {
		panic("contributors: directory cannot be nil")
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &Resolver{directory: d, logger: logger}
}

// Resolve returns the display name for rawPhone, or DefaultName when no
// candidate form matches. Lookup errors are logged and treated as misses.
func (r *Resolver) Resolve(ctx context.Context, rawPhone string) string {
	for _, candidate := range phoneCandidates(rawPhone) {
		c, err := r.directory.FindByPhone(ctx, candidate)
		if err != nil {
			if !errors.Is(err, ErrNotFound) {
				r.logger.Warn("contributor lookup failed", "phone", candidate, "error", err)
			}
			continue
		}
		if c != nil && c.Name != "" {
			return c.Name
		}
	}
	return DefaultName
}

// phoneCandidates returns the whitespace-stripped number plus the same
// number with the leading + toggled, absorbing country-code prefix variance
// between the provider and the directory.
func phoneCandidates(raw string) []string {
	phone := strings.Join(strings.Fields(raw), "")
	if phone == "" {
		return nil
	}
	if strings.HasPrefix(phone, "+") {
		return []string{phone, strings.TrimPrefix(phone, "+")}
	}
	return []string{phone, "+" + phone}
}
