package certstore

import (
	"context"
	"errors"
	"time"

	"github.com/oshokin/msix-gen/internal/logger"
)

// Identity describes one code-signing certificate found in a store.
type Identity struct {
	// FriendlyName is the store's display name for the certificate (may be empty).
	FriendlyName string
	// Thumbprint is the certificate hash, printed for operator confirmation.
	Thumbprint string
	// Subject is the distinguished name the package Publisher must match,
	// quoting included.
	Subject string
	// NotBefore is the start of the validity window.
	NotBefore time.Time
	// NotAfter is the end of the validity window.
	NotAfter time.Time
}

// Store lists code-signing certificate identities from a certificate store.
type Store interface {
	// List returns all certificates flagged for code signing,
	// regardless of validity.
	List(ctx context.Context) ([]Identity, error)
}

// errNoValidCertificate is returned when no certificate's validity window
// contains the current time.
var errNoValidCertificate = errors.New("no valid code-signing certificate found")

// SelectLatest filters identities whose validity window contains now and
// returns the one expiring furthest in the future. Picking the latest
// expiration means a freshly installed replacement certificate wins over
// one about to lapse, surfacing subject changes at build time rather than
// when the old certificate expires.
func SelectLatest(ids []Identity, now time.Time) (Identity, error) {
	var (
		best  Identity
		found bool
	)

	for _, id := range ids {
		if !id.NotBefore.Before(now) || !id.NotAfter.After(now) {
			continue
		}

		if !found || id.NotAfter.After(best.NotAfter) {
			best = id
			found = true
		}
	}

	if !found {
		return Identity{}, errNoValidCertificate
	}

	return best, nil
}

// Resolve returns the explicit subject unchanged when provided; otherwise
// it queries the store and selects the latest-expiring valid certificate,
// logging its friendly name and thumbprint for operator confirmation.
func Resolve(ctx context.Context, explicitSubject string, store Store) (string, error) {
	if explicitSubject != "" {
		return explicitSubject, nil
	}

	ids, err := store.List(ctx)
	if err != nil {
		return "", err
	}

	selected, err := SelectLatest(ids, time.Now())
	if err != nil {
		return "", err
	}

	logger.InfoKV(ctx, "Using code signing certificate",
		"friendly_name", selected.FriendlyName,
		"thumbprint", selected.Thumbprint)

	return selected.Subject, nil
}
