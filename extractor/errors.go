package extractor

import "fmt"

// ExtractionError reports that a collaborator call itself failed, as
// opposed to a per-page soft failure recorded in Result.Failed. The
// original cause is preserved and reachable via errors.Unwrap.
type ExtractionError struct {
	URL string
	Err error
}

func (e *ExtractionError) Error() string {
	return fmt.Sprintf("extraction failed for %s: %v", e.URL, e.Err)
}

func (e *ExtractionError) Unwrap() error {
	return e.Err
}
