package endpoint

import (
	"net/http"
	"reflect"

	"github.com/drblury/weavekit/binding"
	"github.com/drblury/weavekit/openapi"
	"github.com/drblury/weavekit/responder"
)

type boundHandler struct {
	responder  *responder.Responder
	binders    []*binding.Binder
	response   openapi.Response
	outputType reflect.Type
	handle     HandlerFunc
}

func newBoundHandler(r *Registry, binders []*binding.Binder, resp openapi.Response, h HandlerFunc) *boundHandler {
	return &boundHandler{
		responder:  r.responder,
		binders:    binders,
		response:   resp,
		outputType: structType(reflect.TypeOf(resp.Model)),
		handle:     h,
	}
}

// ServeHTTP binds the declared inputs, calls the handler and renders its
// result. Binding stops at the first invalid input.
func (h *boundHandler) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	if req == nil {
		panic(ErrMissingRequest)
	}

	call := &Call{Writer: w, Request: req, Args: make([]any, 0, len(h.binders))}
	for _, b := range h.binders {
		arg, err := b.Request(req)
		if err != nil {
			h.responder.HandleErrors(w, req, err, "failed to bind "+b.Location())
			return
		}
		call.Args = append(call.Args, arg)
	}

	result, err := h.handle(call)
	if err != nil {
		h.responder.HandleErrors(w, req, err)
		return
	}
	h.render(w, req, result)
}

// render writes the handler result. Values of the declared output type are
// written with the declared status when the accept type is plain JSON; any
// other value is written as JSON with 200.
func (h *boundHandler) render(w http.ResponseWriter, req *http.Request, result any) {
	switch v := result.(type) {
	case nil:
		return
	case http.Handler:
		v.ServeHTTP(w, req)
		return
	}

	if h.isDeclaredOutput(result) {
		h.responder.RespondWithJSON(w, h.response.Status(), result)
		return
	}
	h.responder.RespondWithJSON(w, http.StatusOK, result)
}

func (h *boundHandler) isDeclaredOutput(result any) bool {
	if h.outputType == nil || h.response.MediaType() != openapi.JSONMediaType {
		return false
	}
	return structType(reflect.TypeOf(result)) == h.outputType
}

func structType(t reflect.Type) reflect.Type {
	for t != nil && t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	if t == nil || t.Kind() != reflect.Struct {
		return nil
	}
	return t
}
