package classification

import "errors"

var (
	// ErrNotFitted is returned when the extractor is used before Fit.
	ErrNotFitted = errors.New("feature extractor is not fitted")
	// ErrNotTrained is returned when the classifier is used before Train.
	ErrNotTrained = errors.New("classifier is not trained")
	// ErrInvalidCorpus is returned for an empty corpus, empty labels or fewer than two classes.
	ErrInvalidCorpus = errors.New("invalid training corpus")
	// ErrInvalidInput is returned for blank input text.
	ErrInvalidInput = errors.New("invalid input text")
	// ErrDimensionMismatch is returned when vectors and labels disagree in count or dimension.
	ErrDimensionMismatch = errors.New("dimension mismatch")
)
