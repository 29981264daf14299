package health

import (
	"testing"

	"github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/valyala/fasthttp"
)

func TestHealth_ShouldReportVersion(t *testing.T) {
	// given
	endpoints := NewEndpoints("1.2.3")
	var ctx fasthttp.RequestCtx

	// when
	err := endpoints.Health(&ctx)

	// then
	require.NoError(t, err)
	assert.Equal(t, fasthttp.StatusOK, ctx.Response.StatusCode())
	var body HealthResponse
	require.NoError(t, json.Unmarshal(ctx.Response.Body(), &body))
	assert.Equal(t, HealthResponse{Status: "ok", Version: "1.2.3"}, body)
}

func TestRoutes_ShouldExposeHealthCheck(t *testing.T) {
	// when
	routes := NewEndpoints("1.2.3").Routes()

	// then
	require.Len(t, routes, 1)
	assert.Equal(t, fasthttp.MethodGet, routes[0].Method)
	assert.Equal(t, "/health", routes[0].Path)
}
