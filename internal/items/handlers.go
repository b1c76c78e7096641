package items

import (
	"errors"
	"net/http"

	"github.com/drblury/weavekit/endpoint"
	"github.com/drblury/weavekit/openapi"
)

// Tag names used by the demo operations.
const (
	TagItems   = "items"
	TagCatalog = "catalog"
)

var errNoStore = errors.New("items: store missing from request context")

// Register declares the items operations on reg and describes their tags.
func Register(reg *endpoint.Registry) error {
	itemPath := []openapi.Parameter{{Model: ItemPath{}, Location: openapi.LocationPath}}

	if _, err := reg.Parameter(endpoint.ParameterSpec{
		Method: http.MethodGet,
		URL:    "/items",
		Parameters: []openapi.Parameter{
			{Model: ItemQuery{}},
			{Model: RequestMeta{}, Location: openapi.LocationHeader},
		},
		Response: openapi.Response{Model: ItemList{}, Description: "One page of items"},
		Tags:     []string{TagItems},
		Doc:      "List items\n    Filters by tag and pages with limit and offset.\n",
	}, listItems); err != nil {
		return err
	}

	if _, err := reg.Body(endpoint.BodySpec{
		Method:   http.MethodPost,
		URL:      "/items",
		Body:     openapi.Body{Model: &NewItem{}, Description: "The item to create"},
		Response: openapi.Response{Model: Item{}, StatusCode: http.StatusCreated, Description: "The created item"},
		Tags:     []string{TagItems},
		Doc:      "Create an item",
	}, createItem); err != nil {
		return err
	}

	if _, err := reg.Parameter(endpoint.ParameterSpec{
		Method:     http.MethodGet,
		URL:        "/items/{id}",
		Parameters: itemPath,
		Response:   openapi.Response{Model: Item{}, Description: "The item"},
		Tags:       []string{TagItems},
		Doc:        "Fetch one item",
	}, getItem); err != nil {
		return err
	}

	for _, url := range []string{"/catalog/{id}", "/shop/items/{id}"} {
		if _, err := endpoint.ParameterMethod(reg, endpoint.ParameterSpec{
			Method:     http.MethodGet,
			URL:        url,
			Parameters: itemPath,
			Response:   openapi.Response{Model: Item{}, Description: "The catalog entry"},
			Tags:       []string{TagCatalog},
			Doc:        "Fetch a catalog entry",
		}, (*CatalogView).Get); err != nil {
			return err
		}
	}
	if _, err := endpoint.ParameterMethod(reg, endpoint.ParameterSpec{
		Method:     http.MethodDelete,
		URL:        "/catalog/{id}",
		Parameters: itemPath,
		Response:   openapi.Response{Model: Item{}, StatusCode: http.StatusNoContent, Description: "Removed"},
		Tags:       []string{TagCatalog},
		Doc:        "Remove a catalog entry",
	}, (*CatalogView).Delete); err != nil {
		return err
	}

	b := reg.Builder()
	if err := b.UpdateTagDescription(TagItems, "Item catalogue operations"); err != nil {
		return err
	}
	return b.UpdateTagDescription(TagCatalog, "Catalog view served on several URLs")
}

func listItems(c *endpoint.Call) (any, error) {
	store, ok := storeFrom(c.Context())
	if !ok {
		return nil, errNoStore
	}
	query, _ := endpoint.Arg[ItemQuery](c)
	if meta, ok := endpoint.Arg[RequestMeta](c); ok && meta.RequestID != "" {
		c.Writer.Header().Set("X-Request-Id", meta.RequestID)
	}
	return store.List(query), nil
}

func createItem(c *endpoint.Call) (any, error) {
	store, ok := storeFrom(c.Context())
	if !ok {
		return nil, errNoStore
	}
	n, _ := endpoint.Arg[*NewItem](c)
	return store.Create(*n), nil
}

func getItem(c *endpoint.Call) (any, error) {
	store, ok := storeFrom(c.Context())
	if !ok {
		return nil, errNoStore
	}
	path, _ := endpoint.Arg[ItemPath](c)
	return store.Get(path.ID)
}

// CatalogView serves the catalog entries. A fresh view handles each request.
type CatalogView struct{}

// Get returns the entry with the path id.
func (v *CatalogView) Get(c *endpoint.Call) (any, error) {
	store, ok := storeFrom(c.Context())
	if !ok {
		return nil, errNoStore
	}
	path, _ := endpoint.Arg[ItemPath](c)
	return store.Get(path.ID)
}

// Delete removes the entry and answers 204.
func (v *CatalogView) Delete(c *endpoint.Call) (any, error) {
	store, ok := storeFrom(c.Context())
	if !ok {
		return nil, errNoStore
	}
	path, _ := endpoint.Arg[ItemPath](c)
	if err := store.Delete(path.ID); err != nil {
		return nil, err
	}
	c.Writer.WriteHeader(http.StatusNoContent)
	return nil, nil
}
