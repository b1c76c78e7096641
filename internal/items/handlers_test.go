package items

import (
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/drblury/weavekit/endpoint"
	"github.com/drblury/weavekit/jsonutil"
	"github.com/drblury/weavekit/responder"
)

func newServer(t *testing.T) (*endpoint.Registry, http.Handler) {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	reg := endpoint.NewRegistry(
		endpoint.WithLogger(logger),
		endpoint.WithResponder(responder.NewResponder(responder.WithLogger(logger))),
	)
	require.NoError(t, Register(reg))

	mux := http.NewServeMux()
	require.NoError(t, reg.Mount(mux))
	return reg, NewStore().Middleware(mux)
}

func do(t *testing.T, h http.Handler, method, target, body string) *httptest.ResponseRecorder {
	t.Helper()
	var r io.Reader
	if body != "" {
		r = strings.NewReader(body)
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(method, target, r))
	return rec
}

func decodeBody[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, jsonutil.Unmarshal(rec.Body.Bytes(), &v))
	return v
}

func TestItemsLifecycle(t *testing.T) {
	_, h := newServer(t)

	rec := do(t, h, http.MethodPost, "/items", `{"name":"lamp","tags":["light"],"owner":{"name":"ada"}}`)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	created := decodeBody[Item](t, rec)
	assert.Equal(t, 1, created.ID)
	assert.Equal(t, "ada", created.Owner.Name)

	rec = do(t, h, http.MethodGet, "/items/1", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "lamp", decodeBody[Item](t, rec).Name)

	for _, target := range []string{"/catalog/1", "/shop/items/1"} {
		rec = do(t, h, http.MethodGet, target, "")
		require.Equal(t, http.StatusOK, rec.Code, target)
		assert.Equal(t, 1, decodeBody[Item](t, rec).ID)
	}

	rec = do(t, h, http.MethodDelete, "/catalog/1", "")
	require.Equal(t, http.StatusNoContent, rec.Code)
	assert.Empty(t, rec.Body.String())

	rec = do(t, h, http.MethodGet, "/items/1", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "application/problem+json", rec.Header().Get("Content-Type"))

	rec = do(t, h, http.MethodPut, "/shop/items/1", "")
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
	assert.Equal(t, "DELETE, GET", rec.Header().Get("Allow"))
}

func TestListItemsBindsQueryAndHeader(t *testing.T) {
	_, h := newServer(t)
	for _, body := range []string{
		`{"name":"lamp","tags":["light"],"owner":{"name":"ada"}}`,
		`{"name":"desk","owner":{"name":"bob"}}`,
	} {
		require.Equal(t, http.StatusCreated, do(t, h, http.MethodPost, "/items", body).Code)
	}

	req := httptest.NewRequest(http.MethodGet, "/items?tag=light&limit=5", nil)
	req.Header.Set("X-Request-Id", "req-1")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "req-1", rec.Header().Get("X-Request-Id"))
	list := decodeBody[ItemList](t, rec)
	assert.Equal(t, 1, list.Total)
	require.Len(t, list.Items, 1)
	assert.Equal(t, "lamp", list.Items[0].Name)
}

func TestItemsRejectInvalidInput(t *testing.T) {
	_, h := newServer(t)

	cases := []struct {
		name, method, target, body string
		field                      string
	}{
		{name: "limit above max", method: http.MethodGet, target: "/items?limit=500", field: "limit"},
		{name: "unknown sort", method: http.MethodGet, target: "/items?sort=price", field: "sort"},
		{name: "non numeric id", method: http.MethodGet, target: "/items/lamp", field: "id"},
		{name: "missing owner name", method: http.MethodPost, target: "/items", body: `{"name":"lamp","owner":{}}`, field: "owner.name"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			rec := do(t, h, tc.method, tc.target, tc.body)
			require.Equal(t, http.StatusBadRequest, rec.Code, rec.Body.String())

			problem := decodeBody[responder.ProblemDetails](t, rec)
			require.NotEmpty(t, problem.InvalidParams)
			assert.Equal(t, tc.field, problem.InvalidParams[0].Name)
		})
	}
}

func TestRegisterDocumentsTagsAndRoutes(t *testing.T) {
	reg, _ := newServer(t)

	doc := reg.Builder().Document()
	require.Len(t, doc.Tags, 2)
	assert.Equal(t, "Item catalogue operations", doc.Tags.Get(TagItems).Description)
	assert.Equal(t, "Catalog view served on several URLs", doc.Tags.Get(TagCatalog).Description)

	list := doc.Paths.Value("/items").Get
	require.NotNil(t, list)
	assert.Equal(t, "List items", list.Summary)
	names := make([]string, 0, len(list.Parameters))
	for _, p := range list.Parameters {
		names = append(names, p.Value.In+":"+p.Value.Name)
	}
	assert.ElementsMatch(t, []string{"query:limit", "query:offset", "query:tag", "query:sort", "header:x-request-id"}, names)

	views := 0
	for _, route := range reg.Routes() {
		if route.ClassBased {
			views++
			assert.Equal(t, "CatalogView", route.View)
		}
	}
	assert.Equal(t, 3, views)
	assert.Contains(t, doc.Components.Schemas, "Owner")
}
