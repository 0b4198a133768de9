package country

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/serfi-platform/user-management/internal/transport"
	"github.com/serfi-platform/user-management/pkg/logger"
)

type ServiceAPI interface {
	GetCountries(ctx context.Context) ([]Country, error)
}

type Handler struct {
	*transport.BaseHandler
	Service ServiceAPI
}

func NewHandler(service ServiceAPI) *Handler {
	lg := logger.LoggerWrapper()
	if lg == nil {
		lg = slog.Default()
	}
	return &Handler{
		BaseHandler: transport.NewBaseHandler(lg),
		Service:     service,
	}
}

// ListCountries handles GET /countries.
func (h *Handler) ListCountries(w http.ResponseWriter, r *http.Request) {
	countries, err := h.Service.GetCountries(r.Context())
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, countries)
}
