package country

import (
	"context"
	"log/slog"

	apperrors "github.com/serfi-platform/user-management/internal"
)

const cacheKeyNames = "countries:names"

// ClientAPI abstracts the upstream country source.
type ClientAPI interface {
	FetchAll(ctx context.Context) ([]Country, error)
}

type Service struct {
	client ClientAPI
	cache  *Cache
	logger *slog.Logger
}

func NewService(client ClientAPI, cache *Cache, logger *slog.Logger) *Service {
	return &Service{
		client: client,
		cache:  cache,
		logger: logger,
	}
}

// GetCountries returns the cached country list, fetching from the upstream
// API on a cold cache.
func (s *Service) GetCountries(ctx context.Context) ([]Country, error) {
	var countries []Country
	err := s.cache.FetchJSON(ctx, cacheKeyNames, &countries, func(ctx context.Context) (interface{}, error) {
		s.logger.Info("country cache miss, fetching from upstream")
		return s.client.FetchAll(ctx)
	})
	if err != nil {
		s.logger.Error("failed to load countries", "error", err)
		return nil, apperrors.NewExternalError(apperrors.ErrCodeCountryLookupFailed, "failed to load countries", err)
	}
	return countries, nil
}
