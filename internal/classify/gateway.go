package classify

import (
	"context"
	"log/slog"

	"golang.org/x/text/unicode/norm"

	"github.com/nao1215/hostguard/internal/model"
)

// ReasonNotPresent is the unavailable reason used when the classification
// capability was absent at probe time.
const ReasonNotPresent = "capability not present"

// Backend is the black-box classification engine.
// Implementations return a label with a confidence score, or an error that
// the gateway converts into a degraded result.
type Backend interface {
	Classify(ctx context.Context, text string) (label string, score float64, err error)
}

// Gateway guards access to the classification backend.
type Gateway struct {
	backend   Backend
	available bool
	maxInput  int
	logger    *slog.Logger
}

// New creates a Gateway. The available flag comes from the capability probe;
// when false, Classify never touches the backend. maxInput caps the payload
// length in bytes (0 means unlimited).
func New(backend Backend, available bool, maxInput int, logger *slog.Logger) *Gateway {
	if logger == nil {
		logger = slog.Default()
	}
	return &Gateway{
		backend:   backend,
		available: available,
		maxInput:  maxInput,
		logger:    logger.With("component", "classify"),
	}
}

// Available reports whether the capability was present at construction.
func (g *Gateway) Available() bool {
	return g.available
}

// Classify forwards text to the backend if the capability is present.
// The input is NFC-normalized and truncated to the configured cap before
// transmission, so the backend sees canonical text regardless of the
// presentation layer that produced it.
//
// Every failure mode yields an unavailable result: the gateway's contract
// is that classification problems are degraded modes, never errors the
// caller has to propagate.
func (g *Gateway) Classify(ctx context.Context, text string) model.Classification {
	if !g.available || g.backend == nil {
		return model.ClassificationUnavailable(ReasonNotPresent)
	}

	text = norm.NFC.String(text)
	if g.maxInput > 0 && len(text) > g.maxInput {
		text = text[:g.maxInput]
	}

	label, score, err := g.backend.Classify(ctx, text)
	if err != nil {
		g.logger.Error("classification failed", "error", err)
		return model.ClassificationUnavailable(err.Error())
	}
	return model.NewClassification(label, score)
}
