package enrich

import (
	"errors"

	"github.com/rotisserie/eris"

	"github.com/sells-group/leadops-cli/pkg/azureopenai"
)

// Failure classes for pipeline stages. Stage fallback policy hangs off these:
// the batch generator voids the whole batch, the rank scorer surfaces the
// error for the caller to decide, and the matcher reports an explicit
// no-assignment.
var (
	// ErrMalformedResponse means repair could not produce parseable JSON, or
	// a required key was missing from a parsed response.
	ErrMalformedResponse = eris.New("malformed generative response")

	// ErrMissingPrecondition means required collaborator data (roster,
	// listing, prior assignment) is absent. Always surfaced to the operator;
	// no stage proceeds with synthesized defaults.
	ErrMissingPrecondition = eris.New("missing precondition")
)

// IsServiceUnavailable reports whether err stems from a failed call to the
// generative service (non-200 or transport failure).
func IsServiceUnavailable(err error) bool {
	return azureopenai.IsServiceUnavailable(err)
}

// IsMalformedResponse reports whether err is a response that survived the
// service call but could not be parsed or validated.
func IsMalformedResponse(err error) bool {
	return errors.Is(err, ErrMalformedResponse)
}

// IsMissingPrecondition reports whether err is missing collaborator data.
func IsMissingPrecondition(err error) bool {
	return errors.Is(err, ErrMissingPrecondition)
}
