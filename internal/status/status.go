package status

import (
	"sort"

	"github.com/filedepot/filedepot_server/internal/router"
	"github.com/filedepot/filedepot_server/internal/storage"
	"github.com/goccy/go-json"
	"github.com/valyala/fasthttp"
)

// StatusEndpoints reports what the upload endpoints currently accept.
type StatusEndpoints struct {
	version string
	prefix  string
	service *storage.Service
}

var _ router.Module = (*StatusEndpoints)(nil)

func NewEndpoints(version, prefix string, service *storage.Service) *StatusEndpoints {
	return &StatusEndpoints{
		version: version,
		prefix:  prefix,
		service: service,
	}
}

type StatusResponse struct {
	Health  string        `json:"health"`
	Version string        `json:"version"`
	Media   []MediaStatus `json:"media"`
}

type MediaStatus struct {
	MediaType  string   `json:"mediaType"`
	MaxSize    int64    `json:"maxSize"`
	MaxFiles   int      `json:"maxFiles"`
	Extensions []string `json:"extensions,omitempty"`
}

func (se *StatusEndpoints) Name() string {
	return "status"
}

func (se *StatusEndpoints) Prefix() string {
	return se.prefix
}

func (se *StatusEndpoints) Routes() []router.Route {
	return []router.Route{
		{Method: fasthttp.MethodGet, Path: "/status", Handler: se.Status},
	}
}

func (se *StatusEndpoints) Status(ctx *fasthttp.RequestCtx) error {
	response := StatusResponse{
		Health:  "OK",
		Version: se.version,
	}
	for _, strategy := range se.service.Strategies() {
		media := MediaStatus{
			MediaType: string(strategy.MediaType),
			MaxSize:   strategy.MaxSize,
			MaxFiles:  strategy.MaxFiles,
		}
		for ext := range strategy.AllowedExtensions {
			media.Extensions = append(media.Extensions, ext)
		}
		sort.Strings(media.Extensions)
		response.Media = append(response.Media, media)
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
