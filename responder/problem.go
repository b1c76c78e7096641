package responder

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"
)

// ProblemDetails aligns HTTP error responses with RFC 9457 problem documents.
type ProblemDetails struct {
	Type          string         `json:"type,omitempty"`
	Title         string         `json:"title"`
	Status        int            `json:"status"`
	Detail        string         `json:"detail,omitempty"`
	Instance      string         `json:"instance,omitempty"`
	TraceID       string         `json:"traceId,omitempty"`
	Timestamp     string         `json:"timestamp,omitempty"`
	InvalidParams []InvalidParam `json:"invalidParams,omitempty"`
}

// InvalidParam names one rejected input field.
type InvalidParam struct {
	Name   string `json:"name"`
	In     string `json:"in,omitempty"`
	Reason string `json:"reason"`
}

func (r *Responder) statusMetaFor(status int) statusMeta {
	meta, ok := r.statusMetadata[status]
	if !ok {
		meta = statusMeta{}
	}
	return normalizeStatusMeta(status, meta)
}

func (r *Responder) buildProblemDetails(req *http.Request, status int, err error, meta statusMeta) ProblemDetails {
	problem := ProblemDetails{
		Type:      meta.typeURI,
		Title:     meta.title,
		Status:    status,
		Detail:    err.Error(),
		Instance:  requestInstance(req),
		TraceID:   r.traceID(),
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	}

	var provider InvalidParamsProvider
	if errors.As(err, &provider) {
		problem.InvalidParams = provider.InvalidParams()
	}
	return problem
}

func (r *Responder) logProblem(req *http.Request, meta statusMeta, problem ProblemDetails, err error, msgs []string) {
	logger := r.logger().With("error", err.Error(), "traceId", problem.TraceID, "status", problem.Status)
	if len(msgs) > 0 {
		logger = logger.With("logMessages", msgs)
	}
	if len(problem.InvalidParams) > 0 {
		logger = logger.With("invalidParams", len(problem.InvalidParams))
	}
	logger.Log(requestContext(req), meta.logLevel, meta.logMsg)
}

func normalizeStatusMeta(status int, meta statusMeta) statusMeta {
	if meta.logLevel == 0 && status >= http.StatusInternalServerError {
		meta.logLevel = slog.LevelError
	}
	if meta.logLevel == 0 {
		meta.logLevel = slog.LevelWarn
	}
	if meta.title == "" {
		meta.title = http.StatusText(status)
	}
	if meta.logMsg == "" {
		meta.logMsg = meta.title
	}
	if meta.typeURI == "" {
		meta.typeURI = fmt.Sprintf("%s/%d", statusDocBaseURL, status)
	}
	return meta
}
