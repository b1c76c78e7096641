package openapi

import (
	"slices"

	"github.com/getkin/kin-openapi/openapi3"
	"github.com/samber/lo"
)

// UpdateTagDescription sets the description of an already registered tag.
// Unknown names are ignored.
func (b *Builder) UpdateTagDescription(name, description string) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.frozen {
		return ErrFrozen
	}
	if tag := b.doc.Tags.Get(name); tag != nil {
		tag.Description = description
	}
	return nil
}

// Tags returns the registered tag names in registration order.
func (b *Builder) Tags() []string {
	b.mu.RLock()
	defer b.mu.RUnlock()

	return lo.Map(b.doc.Tags, func(tag *openapi3.Tag, _ int) string {
		return tag.Name
	})
}

// addTags appends unseen tag names to the document and returns the names
// for the operation. Callers hold b.mu.
func (b *Builder) addTags(tags []string) []string {
	for _, name := range tags {
		if b.doc.Tags.Get(name) == nil {
			b.doc.Tags = append(b.doc.Tags, &openapi3.Tag{Name: name})
		}
	}
	return slices.Clone(tags)
}
