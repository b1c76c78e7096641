package info

import (
	"testing"

	"github.com/drblury/weavekit/jsonutil"
	"github.com/drblury/weavekit/responder"
)

func decodeStatusPayload(t *testing.T, body []byte) statusPayload {
	t.Helper()

	var payload statusPayload
	if err := jsonutil.Unmarshal(body, &payload); err != nil {
		t.Fatalf("failed to decode status payload: %v (body: %s)", err, string(body))
	}
	return payload
}

func decodeProblemDetails(t *testing.T, body []byte) responder.ProblemDetails {
	t.Helper()

	var problem responder.ProblemDetails
	if err := jsonutil.Unmarshal(body, &problem); err != nil {
		t.Fatalf("failed to decode problem details: %v (body: %s)", err, string(body))
	}
	return problem
}
