package router

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/valyala/fasthttp"
)

type testModule struct {
	name   string
	prefix string
	routes []Route
}

func (m *testModule) Name() string    { return m.name }
func (m *testModule) Prefix() string  { return m.prefix }
func (m *testModule) Routes() []Route { return m.routes }

type teapotModule struct {
	testModule
	allowed []string
}

func (m *teapotModule) MethodNotAllowed(ctx *fasthttp.RequestCtx, allowed []string) {
	m.allowed = allowed
	ctx.SetStatusCode(fasthttp.StatusTeapot)
}

func respond(body string) HandlerFunc {
	return func(ctx *fasthttp.RequestCtx) error {
		ctx.SetBodyString(body)
		return nil
	}
}

func newRequest(method, uri string) *fasthttp.RequestCtx {
	ctx := &fasthttp.RequestCtx{}
	ctx.Request.Header.SetMethod(method)
	ctx.Request.SetRequestURI(uri)
	return ctx
}

func filesModule() *testModule {
	return &testModule{
		name:   "files",
		prefix: "/api/files",
		routes: []Route{
			{Method: fasthttp.MethodPost, Path: "/video", Handler: respond("video")},
			{Method: fasthttp.MethodPost, Path: "/image", Handler: respond("image")},
		},
	}
}

func healthModule() *testModule {
	return &testModule{
		name: "health",
		routes: []Route{
			{Method: fasthttp.MethodGet, Path: "/health", Handler: respond("ok")},
		},
	}
}

func TestCompose_ShouldMountModulesInDeclaredOrder(t *testing.T) {
	// when
	r, err := Compose([]Module{healthModule(), filesModule()})

	// then
	require.NoError(t, err)
	assert.Equal(t, []string{"health", "files"}, r.Modules())
}

func TestHandle_ShouldDispatchToPrefixedRoute(t *testing.T) {
	// given
	r, err := Compose([]Module{filesModule(), healthModule()})
	require.NoError(t, err)
	ctx := newRequest(fasthttp.MethodPost, "/api/files/image?belongsTo=user42")

	// when
	r.Handle(ctx)

	// then
	assert.Equal(t, fasthttp.StatusOK, ctx.Response.StatusCode())
	assert.Equal(t, "image", string(ctx.Response.Body()))
}

func TestHandle_ShouldTolerateTrailingSlash(t *testing.T) {
	// given
	r, err := Compose([]Module{filesModule()})
	require.NoError(t, err)
	ctx := newRequest(fasthttp.MethodPost, "/api/files/video/")

	// when
	r.Handle(ctx)

	// then
	assert.Equal(t, "video", string(ctx.Response.Body()))
}

func TestHandle_ShouldServeHeadWithGetHandler(t *testing.T) {
	// given
	r, err := Compose([]Module{healthModule()})
	require.NoError(t, err)
	ctx := newRequest(fasthttp.MethodHead, "/health")

	// when
	r.Handle(ctx)

	// then
	assert.Equal(t, fasthttp.StatusOK, ctx.Response.StatusCode())
}

func TestHandle_ShouldRespondMethodNotAllowedWithAllowHeader(t *testing.T) {
	// given
	r, err := Compose([]Module{filesModule()})
	require.NoError(t, err)
	ctx := newRequest(fasthttp.MethodGet, "/api/files/image")

	// when
	r.Handle(ctx)

	// then
	assert.Equal(t, fasthttp.StatusMethodNotAllowed, ctx.Response.StatusCode())
	assert.Equal(t, "POST", string(ctx.Response.Header.Peek(fasthttp.HeaderAllow)))
}

func TestHandle_ShouldAnswerOptionsWithAllowedMethods(t *testing.T) {
	// given
	r, err := Compose([]Module{healthModule()})
	require.NoError(t, err)
	ctx := newRequest(fasthttp.MethodOptions, "/health")

	// when
	r.Handle(ctx)

	// then
	assert.Equal(t, fasthttp.StatusOK, ctx.Response.StatusCode())
	assert.Equal(t, "GET, HEAD", string(ctx.Response.Header.Peek(fasthttp.HeaderAllow)))
}

func TestHandle_ShouldRespondNotImplementedForUnknownMethod(t *testing.T) {
	// given
	r, err := Compose([]Module{filesModule()})
	require.NoError(t, err)
	ctx := newRequest("PROPFIND", "/api/files/video")

	// when
	r.Handle(ctx)

	// then
	assert.Equal(t, fasthttp.StatusNotImplemented, ctx.Response.StatusCode())
}

func TestHandle_ShouldUseModuleMethodNotAllowedResponder(t *testing.T) {
	// given
	module := &teapotModule{testModule: *filesModule()}
	r, err := Compose([]Module{module})
	require.NoError(t, err)
	ctx := newRequest(fasthttp.MethodDelete, "/api/files/video")

	// when
	r.Handle(ctx)

	// then
	assert.Equal(t, fasthttp.StatusTeapot, ctx.Response.StatusCode())
	assert.Equal(t, []string{"POST"}, module.allowed)
}

func TestHandle_ShouldRespondNotFoundForUnknownPath(t *testing.T) {
	// given
	r, err := Compose([]Module{filesModule()})
	require.NoError(t, err)
	ctx := newRequest(fasthttp.MethodGet, "/nope")

	// when
	r.Handle(ctx)

	// then
	assert.Equal(t, fasthttp.StatusNotFound, ctx.Response.StatusCode())
}

func TestHandle_ShouldUseNotFoundFallback(t *testing.T) {
	// given
	r, err := Compose([]Module{filesModule()}, WithNotFound(func(ctx *fasthttp.RequestCtx) {
		ctx.SetBodyString("static")
	}))
	require.NoError(t, err)
	ctx := newRequest(fasthttp.MethodGet, "/uploads/a.png")

	// when
	r.Handle(ctx)

	// then
	assert.Equal(t, "static", string(ctx.Response.Body()))
}

func TestHandle_ShouldPassHandlerErrorsToErrorHandler(t *testing.T) {
	// given
	boom := errors.New("boom")
	var got error
	module := &testModule{
		name: "failing",
		routes: []Route{
			{Method: fasthttp.MethodPost, Path: "/fail", Handler: func(ctx *fasthttp.RequestCtx) error { return boom }},
		},
	}
	r, err := Compose([]Module{module}, WithErrorHandler(func(ctx *fasthttp.RequestCtx, err error) {
		got = err
		ctx.SetBodyString("intercepted")
	}))
	require.NoError(t, err)
	ctx := newRequest(fasthttp.MethodPost, "/fail")

	// when
	r.Handle(ctx)

	// then
	assert.ErrorIs(t, got, boom)
	assert.Equal(t, "intercepted", string(ctx.Response.Body()))
}

func TestCompose_ShouldFailOnBrokenModule(t *testing.T) {
	tests := []struct {
		name   string
		module Module
	}{
		{
			name:   "no routes",
			module: &testModule{name: "empty"},
		},
		{
			name: "unknown method",
			module: &testModule{name: "bad", routes: []Route{
				{Method: "FETCH", Path: "/x", Handler: respond("x")},
			}},
		},
		{
			name: "nil handler",
			module: &testModule{name: "bad", routes: []Route{
				{Method: fasthttp.MethodGet, Path: "/x"},
			}},
		},
		{
			name: "relative path",
			module: &testModule{name: "bad", routes: []Route{
				{Method: fasthttp.MethodGet, Path: "x", Handler: respond("x")},
			}},
		},
		{
			name:   "nil module",
			module: nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			// when
			r, err := Compose([]Module{healthModule(), tt.module})

			// then
			assert.Error(t, err)
			assert.Nil(t, r)
		})
	}
}

func TestCompose_ShouldRejectOverlappingModules(t *testing.T) {
	// given
	other := &testModule{
		name:   "other",
		prefix: "/api",
		routes: []Route{
			{Method: fasthttp.MethodGet, Path: "/files/video", Handler: respond("other")},
		},
	}

	// when
	_, err := Compose([]Module{filesModule(), other})

	// then
	require.Error(t, err)
	assert.Contains(t, err.Error(), `already claimed by module "files"`)
}

func TestCompose_ShouldRejectDuplicateRouteWithinModule(t *testing.T) {
	// given
	module := &testModule{
		name: "dup",
		routes: []Route{
			{Method: fasthttp.MethodGet, Path: "/a", Handler: respond("1")},
			{Method: "get", Path: "/a/", Handler: respond("2")},
		},
	}

	// when
	_, err := Compose([]Module{module})

	// then
	require.Error(t, err)
	assert.Contains(t, err.Error(), "duplicate route GET /a")
}

func TestHandle_ShouldKeepEarlierHeadersOnRoutingErrors(t *testing.T) {
	tests := []struct {
		name   string
		method string
		uri    string
		status int
		allow  string
	}{
		{"not found", fasthttp.MethodGet, "/nope", fasthttp.StatusNotFound, ""},
		{"method not allowed", fasthttp.MethodGet, "/api/files/video", fasthttp.StatusMethodNotAllowed, "POST"},
		{"not implemented", "PROPFIND", "/api/files/video", fasthttp.StatusNotImplemented, ""},
	}

	r, err := Compose([]Module{filesModule()})
	require.NoError(t, err)

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			// given
			ctx := newRequest(tt.method, tt.uri)
			ctx.Response.Header.Set("X-Request-Id", "req-1")

			// when
			r.Handle(ctx)

			// then
			assert.Equal(t, tt.status, ctx.Response.StatusCode())
			assert.Equal(t, "req-1", string(ctx.Response.Header.Peek("X-Request-Id")))
			assert.Equal(t, tt.allow, string(ctx.Response.Header.Peek(fasthttp.HeaderAllow)))
			assert.Equal(t, fasthttp.StatusMessage(tt.status), string(ctx.Response.Body()))
		})
	}
}

func TestCompose_ShouldRejectSameNamedModulesSharingPath(t *testing.T) {
	// given
	first := &testModule{
		name:   "files",
		routes: []Route{{Method: fasthttp.MethodGet, Path: "/shared", Handler: respond("first")}},
	}
	second := &testModule{
		name:   "files",
		routes: []Route{{Method: fasthttp.MethodPost, Path: "/shared", Handler: respond("second")}},
	}

	// when
	_, err := Compose([]Module{first, second})

	// then
	require.Error(t, err)
	assert.Contains(t, err.Error(), "path /shared already claimed")
}
