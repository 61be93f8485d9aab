// Package source provides the country data source interface and the
// REST Countries HTTP implementation.
package source

import (
	"context"
	"errors"

	"github.com/rcliao/country-explorer/internal/model"
)

// Error classes returned by every Source. Match them with errors.Is.
var (
	// ErrTransport means the request could not complete or the service
	// answered with an unexpected status.
	ErrTransport = errors.New("transport error")

	// ErrParse means the body was not valid JSON or lacked expected fields.
	ErrParse = errors.New("parse error")

	// ErrNotFound means the lookup matched no record.
	ErrNotFound = errors.New("not found")

	// ErrAmbiguous means a name lookup matched several records and none of
	// them carries exactly the requested common name.
	ErrAmbiguous = errors.New("ambiguous match")
)

// Source retrieves country records. Every call is one-shot: nothing is
// retried, cached or deduplicated.
type Source interface {
	// FetchAll retrieves every known country, in service order.
	FetchAll(ctx context.Context) ([]model.Country, error)

	// FetchByName retrieves the record whose common name matches name.
	FetchByName(ctx context.Context, name string) (model.Country, error)

	// FetchByCode retrieves the record for a short country code (e.g. "ARG").
	FetchByCode(ctx context.Context, code string) (model.Country, error)
}

// pickByName chooses the record for a name lookup among the candidates the
// service returned.
func pickByName(name string, candidates []model.Country) (model.Country, error) {
	switch len(candidates) {
	case 0:
		return model.Country{}, ErrNotFound
	case 1:
		return candidates[0], nil
	}
	for _, c := range candidates {
		if c.Name.Common == name {
			return c, nil
		}
	}
	return model.Country{}, ErrAmbiguous
}
