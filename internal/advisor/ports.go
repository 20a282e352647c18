// Package advisor prepares AI-generated recommendations from a user's
// transaction history: it reduces transactions to a digest, calls an
// external text generator, and persists the parsed batch.
package advisor

import (
	"context"
	"errors"
)

var (
	// ErrMalformedResponse marks generator output that did not parse into a
	// valid recommendation array. Callers treat it as "no recommendations
	// produced", never as a crash.
	ErrMalformedResponse = errors.New("malformed generator response")
)

// TextGenerator is the outbound port for the external language model. The
// call is best-effort and non-deterministic; there is no retry.
type TextGenerator interface {
	Generate(ctx context.Context, prompt string, temperature float32, maxTokens int32) (string, error)
}
