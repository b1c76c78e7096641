package endpoint

import (
	"bytes"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/drblury/weavekit/jsonutil"
	"github.com/drblury/weavekit/openapi"
	"github.com/drblury/weavekit/responder"
)

type ItemPath struct {
	ID int `json:"id"`
}

type ItemQuery struct {
	Verbose bool `json:"verbose,omitempty"`
}

type ItemOut struct {
	ID      int    `json:"id"`
	Name    string `json:"name"`
	Verbose bool   `json:"verbose,omitempty"`
}

type NewItem struct {
	Name string `json:"name"`
}

var errNotFound = errors.New("item not found")

func getItem(c *Call) (any, error) {
	path, _ := Arg[ItemPath](c)
	query, _ := Arg[ItemQuery](c)
	if path.ID == 404 {
		return nil, errNotFound
	}
	return ItemOut{ID: path.ID, Name: "lamp", Verbose: query.Verbose}, nil
}

func createItem(c *Call) (any, error) {
	item, _ := Arg[*NewItem](c)
	return &ItemOut{ID: 1, Name: item.Name}, nil
}

type ItemView struct {
	calls int
}

func (v *ItemView) Get(c *Call) (any, error) {
	v.calls++
	path, _ := Arg[ItemPath](c)
	return ItemOut{ID: path.ID, Name: "view", Verbose: v.calls > 1}, nil
}

func (v *ItemView) Delete(c *Call) (any, error) {
	c.Writer.WriteHeader(http.StatusNoContent)
	return nil, nil
}

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestRegistry() *Registry {
	logger := quietLogger()
	return NewRegistry(
		WithLogger(logger),
		WithResponder(responder.NewResponder(
			responder.WithLogger(logger),
			responder.WithErrorClassifier(func(err error) (int, bool) {
				if errors.Is(err, errNotFound) {
					return http.StatusNotFound, true
				}
				return 0, false
			}),
		)),
	)
}

func itemSpec() ParameterSpec {
	return ParameterSpec{
		Method: http.MethodGet,
		URL:    "/items/{id}",
		Parameters: []openapi.Parameter{
			{Model: ItemPath{}, Location: openapi.LocationPath},
			{Model: ItemQuery{}},
		},
		Response: openapi.Response{Model: ItemOut{}, Description: "The item"},
		Tags:     []string{"items"},
		Doc:      "Fetch one item\n    Looks the item up by id.\n    Missing items are 404.\n",
	}
}

func serve(t *testing.T, reg *Registry, req *http.Request) *httptest.ResponseRecorder {
	t.Helper()
	mux := http.NewServeMux()
	require.NoError(t, reg.Mount(mux))
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)
	return rec
}

func TestParameterEndToEnd(t *testing.T) {
	reg := newTestRegistry()
	_, err := reg.Parameter(itemSpec(), getItem)
	require.NoError(t, err)

	rec := serve(t, reg, httptest.NewRequest(http.MethodGet, "/items/42?verbose=true", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
	var got ItemOut
	require.NoError(t, jsonutil.Unmarshal(rec.Body.Bytes(), &got))
	assert.Equal(t, ItemOut{ID: 42, Name: "lamp", Verbose: true}, got)
}

func TestParameterDocumentsOperation(t *testing.T) {
	reg := newTestRegistry()
	_, err := reg.Parameter(itemSpec(), getItem)
	require.NoError(t, err)

	op := reg.Builder().Document().Paths.Value("/items/{id}").Get
	require.NotNil(t, op)
	assert.Equal(t, "Fetch one item", op.Summary)
	assert.Equal(t, "Looks the item up by id.\nMissing items are 404.\n", op.Description)
	assert.Equal(t, []string{"items"}, op.Tags)
	require.Len(t, op.Parameters, 2)
	assert.Equal(t, "id", op.Parameters[0].Value.Name)
	assert.Equal(t, "verbose", op.Parameters[1].Value.Name)
	assert.Equal(t, "#/components/schemas/ItemOut", op.Responses.Status(http.StatusOK).Value.Content["application/json"].Schema.Ref)

	routes := reg.Routes()
	require.Len(t, routes, 1)
	assert.Equal(t, Route{
		URL:    "/items/{id}",
		Method: http.MethodGet,
		Module: "github.com/drblury/weavekit/endpoint",
		View:   "getItem",
	}, routes[0])
}

func TestParameterRejectsInvalidInput(t *testing.T) {
	reg := newTestRegistry()
	_, err := reg.Parameter(itemSpec(), getItem)
	require.NoError(t, err)

	rec := serve(t, reg, httptest.NewRequest(http.MethodGet, "/items/abc", nil))

	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "application/problem+json", rec.Header().Get("Content-Type"))
	var problem responder.ProblemDetails
	require.NoError(t, jsonutil.Unmarshal(rec.Body.Bytes(), &problem))
	require.Len(t, problem.InvalidParams, 1)
	assert.Equal(t, "id", problem.InvalidParams[0].Name)
	assert.Equal(t, "path", problem.InvalidParams[0].In)
}

func TestHandlerErrorsAreClassified(t *testing.T) {
	reg := newTestRegistry()
	_, err := reg.Parameter(itemSpec(), getItem)
	require.NoError(t, err)

	rec := serve(t, reg, httptest.NewRequest(http.MethodGet, "/items/404", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestBodyUsesDeclaredStatus(t *testing.T) {
	reg := newTestRegistry()
	_, err := reg.Body(BodySpec{
		Method:   http.MethodPost,
		URL:      "/items",
		Body:     openapi.Body{Model: &NewItem{}, Description: "Item to create"},
		Response: openapi.Response{Model: ItemOut{}, StatusCode: http.StatusCreated},
		Tags:     []string{"items"},
		Doc:      "Create an item",
	}, createItem)
	require.NoError(t, err)

	rec := serve(t, reg, httptest.NewRequest(http.MethodPost, "/items", strings.NewReader(`{"name":"desk"}`)))
	require.Equal(t, http.StatusCreated, rec.Code)
	assert.JSONEq(t, `{"id":1,"name":"desk"}`, rec.Body.String())

	rec = serve(t, reg, httptest.NewRequest(http.MethodPost, "/items", strings.NewReader(`{}`)))
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	op := reg.Builder().Document().Paths.Value("/items").Post
	require.NotNil(t, op.RequestBody)
	assert.Equal(t, "Item to create", op.RequestBody.Value.Description)
	assert.Contains(t, reg.Builder().Document().Components.Schemas, "NewItem")
}

func TestRenderRules(t *testing.T) {
	tests := map[string]struct {
		response openapi.Response
		result   any
		status   int
		body     string
	}{
		"declared model uses declared status": {
			response: openapi.Response{Model: ItemOut{}, StatusCode: http.StatusAccepted},
			result:   &ItemOut{ID: 2, Name: "chair"},
			status:   http.StatusAccepted,
			body:     `{"id":2,"name":"chair"}`,
		},
		"other values fall back to 200": {
			response: openapi.Response{Model: ItemOut{}, StatusCode: http.StatusAccepted},
			result:   map[string]string{"status": "queued"},
			status:   http.StatusOK,
			body:     `{"status":"queued"}`,
		},
		"non json accept falls back to 200": {
			response: openapi.Response{Model: ItemOut{}, StatusCode: http.StatusAccepted, Accept: "application/vnd.item+json"},
			result:   ItemOut{ID: 3, Name: "desk"},
			status:   http.StatusOK,
			body:     `{"id":3,"name":"desk"}`,
		},
		"handlers are served as is": {
			response: openapi.Response{Model: ItemOut{}},
			result: http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
				w.WriteHeader(http.StatusTeapot)
				_, _ = w.Write([]byte(`{"raw":true}`))
			}),
			status: http.StatusTeapot,
			body:   `{"raw":true}`,
		},
	}

	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			reg := newTestRegistry()
			h, err := reg.Parameter(ParameterSpec{
				Method:   http.MethodGet,
				URL:      "/render",
				Response: tc.response,
			}, func(*Call) (any, error) { return tc.result, nil })
			require.NoError(t, err)

			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/render", nil))
			assert.Equal(t, tc.status, rec.Code)
			assert.JSONEq(t, tc.body, rec.Body.String())
		})
	}
}

func TestNilResultLeavesResponseToHandler(t *testing.T) {
	reg := newTestRegistry()
	h, err := reg.Parameter(ParameterSpec{
		Method:   http.MethodPost,
		URL:      "/ping",
		Response: openapi.Response{Model: ItemOut{}},
	}, func(c *Call) (any, error) {
		c.Writer.WriteHeader(http.StatusNoContent)
		return nil, nil
	})
	require.NoError(t, err)

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/ping", nil))
	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Zero(t, rec.Body.Len())
}

func TestMissingRequestPanics(t *testing.T) {
	reg := newTestRegistry()
	h, err := reg.Parameter(itemSpec(), getItem)
	require.NoError(t, err)

	assert.PanicsWithValue(t, ErrMissingRequest, func() {
		h.ServeHTTP(httptest.NewRecorder(), nil)
	})
}

func TestRegistrationErrors(t *testing.T) {
	reg := newTestRegistry()

	_, err := reg.Parameter(ParameterSpec{Method: http.MethodGet, URL: "items", Response: openapi.Response{Model: ItemOut{}}}, getItem)
	assert.ErrorIs(t, err, ErrInvalidURL)

	_, err = reg.Parameter(ParameterSpec{Method: "BREW", URL: "/coffee", Response: openapi.Response{Model: ItemOut{}}}, getItem)
	assert.ErrorIs(t, err, openapi.ErrUnsupportedMethod)

	_, err = reg.Parameter(ParameterSpec{Method: http.MethodGet, URL: "/x", Response: openapi.Response{Model: ItemOut{}}}, nil)
	assert.ErrorIs(t, err, ErrNilHandler)

	_, err = reg.Parameter(ParameterSpec{
		Method:     http.MethodGet,
		URL:        "/x",
		Parameters: []openapi.Parameter{{Model: ItemPath{}, Location: "cookie"}},
		Response:   openapi.Response{Model: ItemOut{}},
	}, getItem)
	assert.ErrorIs(t, err, openapi.ErrInvalidLocation)

	require.NoError(t, reg.Builder().Freeze())
	_, err = reg.Parameter(itemSpec(), getItem)
	assert.ErrorIs(t, err, openapi.ErrFrozen)

	assert.Empty(t, reg.Routes())
}

func TestSameMethodsMergeOnOnePath(t *testing.T) {
	reg := newTestRegistry()
	_, err := reg.Parameter(itemSpec(), getItem)
	require.NoError(t, err)
	_, err = ParameterMethod(reg, ParameterSpec{
		Method:     http.MethodDelete,
		URL:        "/items/{id}",
		Parameters: []openapi.Parameter{{Model: ItemPath{}, Location: openapi.LocationPath}},
		Response:   openapi.Response{Model: ItemOut{}},
	}, (*ItemView).Delete)
	require.NoError(t, err)

	item := reg.Builder().Document().Paths.Value("/items/{id}")
	assert.NotNil(t, item.Get)
	assert.NotNil(t, item.Delete)
	assert.Equal(t, 1, reg.Builder().Document().Paths.Len())
}

func TestDuplicateRoutes(t *testing.T) {
	reg := newTestRegistry()
	_, err := reg.Parameter(itemSpec(), getItem)
	require.NoError(t, err)
	_, err = reg.Parameter(itemSpec(), func(*Call) (any, error) { return nil, nil })
	require.NoError(t, err)

	_, err = reg.Materialize()
	assert.ErrorIs(t, err, ErrDuplicateRoute)
}

func TestMaterializeUnresolvedRoute(t *testing.T) {
	reg := newTestRegistry()
	_, err := reg.Parameter(itemSpec(), getItem)
	require.NoError(t, err)

	_, err = reg.Materialize(WithResolver(emptyResolver{}))
	assert.ErrorIs(t, err, ErrUnresolvedRoute)
}

type emptyResolver struct{}

func (emptyResolver) Resolve(Route) (http.Handler, bool) { return nil, false }

func TestRegistryLogsRegistrations(t *testing.T) {
	var logs bytes.Buffer
	reg := NewRegistry(WithLogger(slog.New(slog.NewTextHandler(&logs, &slog.HandlerOptions{Level: slog.LevelDebug}))))
	_, err := reg.Parameter(itemSpec(), getItem)
	require.NoError(t, err)

	assert.Contains(t, logs.String(), "endpoint registered")
	assert.Contains(t, logs.String(), "view=getItem")
}
