package adapter

import (
	"context"

	"telegram-media-relay/internal/domain/model"
)

// LinkResolver resolves one submitted URL into downloadable variants.
// One implementation exists per model.LinkDomain; a failed call is
// surfaced to the user and never retried.
type LinkResolver interface {
	Resolve(ctx context.Context, url string) (*model.ResolvedLink, error)
}
