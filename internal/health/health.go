package health

import (
	"github.com/filedepot/filedepot_server/internal/router"
	"github.com/goccy/go-json"
	"github.com/valyala/fasthttp"
)

type HealthEndpoints struct {
	version string
}

var _ router.Module = (*HealthEndpoints)(nil)

func NewEndpoints(version string) *HealthEndpoints {
	return &HealthEndpoints{
		version: version,
	}
}

type HealthResponse struct {
	Status  string `json:"status"`
	Version string `json:"version"`
}

func (h *HealthEndpoints) Name() string {
	return "health"
}

func (h *HealthEndpoints) Prefix() string {
	return ""
}

func (h *HealthEndpoints) Routes() []router.Route {
	return []router.Route{
		{Method: fasthttp.MethodGet, Path: "/health", Handler: h.Health},
	}
}

func (h *HealthEndpoints) Health(ctx *fasthttp.RequestCtx) error {
	response := HealthResponse{
		Status:  "ok",
		Version: h.version,
	}

	responseJSON, err := json.Marshal(response)
	if err != nil {
		return err
	}

	ctx.SetContentType("application/json")
	ctx.SetStatusCode(fasthttp.StatusOK)
	ctx.SetBody(responseJSON)
	return nil
}
