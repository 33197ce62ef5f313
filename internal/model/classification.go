package model

// Classification is the tagged result of a text-classification request:
// either a successful label with a confidence score, or an unavailable
// marker with the reason the backend could not serve the request.
//
// Design decision: We use a single struct with an Unavailable flag rather
// than two types behind an interface. Constructors are the only intended way
// to build one, which guarantees the value is never partially populated:
// a success carries no reason, an unavailable result carries no label.
type Classification struct {
	// Label is the predicted class. Empty when Unavailable is true.
	Label string `json:"label,omitempty"`

	// Score is the backend's confidence in Label, in [0, 1].
	Score float64 `json:"score,omitempty"`

	// Unavailable is true when the capability is absent or the backend
	// failed. Backend failures are degraded results, never errors that
	// propagate past the gateway boundary.
	Unavailable bool `json:"unavailable,omitempty"`

	// Reason explains why the result is unavailable. Empty on success.
	Reason string `json:"reason,omitempty"`
}

// NewClassification returns a successful classification result.
func NewClassification(label string, score float64) Classification {
	return Classification{Label: label, Score: score}
}

// ClassificationUnavailable returns an unavailable result with the given reason.
func ClassificationUnavailable(reason string) Classification {
	return Classification{Unavailable: true, Reason: reason}
}
