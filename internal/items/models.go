// Package items is the demo API served by weavekit serve. It exercises
// query, path, header and body bindings plus a class-based view mounted on
// two URLs.
package items

import (
	"fmt"
	"net/http"
	"time"

	"github.com/getkin/kin-openapi/openapi3"

	"github.com/drblury/weavekit/openapi"
)

// ItemPath is the path input of the single-item routes.
type ItemPath struct {
	ID int `json:"id"`
}

// ItemQuery filters and pages the item list.
type ItemQuery struct {
	Limit  int    `json:"limit,omitempty"`
	Offset int    `json:"offset,omitempty"`
	Tag    string `json:"tag,omitempty"`
	Sort   string `json:"sort,omitempty"`
}

// DescribeSchema bounds limit and offset and enumerates the sort keys.
func (ItemQuery) DescribeSchema() openapi.ModelSchema {
	limit := openapi3.NewIntegerSchema().WithMin(1).WithMax(MaxLimit)
	limit.Description = "Page size."
	offset := openapi3.NewIntegerSchema().WithMin(0)
	sort := openapi3.NewStringSchema().WithEnum(SortID, SortName, SortCreated)
	sort.Description = "Sort key, defaults to id."

	return openapi.ModelSchema{Schema: openapi3.NewObjectSchema().
		WithProperty("limit", limit).
		WithProperty("offset", offset).
		WithProperty("tag", openapi3.NewStringSchema()).
		WithProperty("sort", sort)}
}

// Sort keys accepted by ItemQuery.
const (
	SortID      = "id"
	SortName    = "name"
	SortCreated = "created"
)

// MaxLimit caps ItemQuery.Limit; it is also the default page size.
const MaxLimit = 100

// RequestMeta carries the optional correlation header echoed by listItems.
type RequestMeta struct {
	RequestID string `json:"x-request-id,omitempty"`
}

// Owner is the person responsible for an item.
type Owner struct {
	Name  string `json:"name"`
	Email string `json:"email,omitempty"`
}

// NewItem is the body accepted by createItem.
type NewItem struct {
	Name  string   `json:"name"`
	Tags  []string `json:"tags,omitempty"`
	Owner Owner    `json:"owner"`
}

// Item is a stored item.
type Item struct {
	ID        int       `json:"id"`
	Name      string    `json:"name"`
	Tags      []string  `json:"tags,omitempty"`
	Owner     Owner     `json:"owner"`
	CreatedAt time.Time `json:"createdAt"`
}

// ItemList is one page of items.
type ItemList struct {
	Items []Item `json:"items"`
	Total int    `json:"total"`
}

// NotFoundError reports an unknown item id.
type NotFoundError struct {
	ID int
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("item %d not found", e.ID)
}

// HTTPStatus maps the error to 404.
func (e *NotFoundError) HTTPStatus() int {
	return http.StatusNotFound
}
