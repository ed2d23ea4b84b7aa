// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package langfilter decides which alternate titles of a series are kept.

A title is kept when its detected language belongs to the accepted languages
of the series and the detection is confident. Detections are expensive, so
every result is stored in a persistent title cache shared by all reconciliations.

Architecture:

  - Detector: the external language-detection service.
  - Cache: title to detection, insert-if-absent, backed by Redis or PostgreSQL.
  - Filter: cache first, then detector; concurrent detections of one title
    collapse into a single call.
*/
package langfilter

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"golang.org/x/sync/singleflight"
	"golang.org/x/text/language"

	"github.com/taibuivan/shelfsync/internal/platform/apperr"
)

// Threshold is the confidence a detection must strictly exceed to count.
const Threshold = 0.8

// Unknown is the language reported when detection is impossible.
const Unknown = "_"

// Detection is the outcome of one language detection, confidence in [0, 1].
type Detection struct {
	Language   string    `json:"language"`
	Confidence float64   `json:"confidence"`
	DetectedAt time.Time `json:"detected_at"`
}

// Confident reports whether the detection is trusted.
func (detection Detection) Confident() bool {
	return detection.Confidence > Threshold
}

// Detector identifies the language of a short text.
type Detector interface {
	Detect(ctx context.Context, text string) (Detection, error)
}

// Cache stores detections keyed by the exact title. PutIfAbsent keeps the
// first stored value, so racing writers are harmless.
type Cache interface {
	Get(ctx context.Context, title string) (Detection, bool, error)
	PutIfAbsent(ctx context.Context, title string, detection Detection) error
}

// Filter implements alternate-title filtering.
type Filter struct {
	cache    Cache
	detector Detector
	logger   *slog.Logger
	inflight singleflight.Group
}

// New constructs a [Filter].
func New(cache Cache, detector Detector, logger *slog.Logger) *Filter {
	return &Filter{cache: cache, detector: detector, logger: logger}
}

// DetectLanguage returns the language of title and whether the detection is
// confident. A failing detector is not an error: the title is reported as
// [Unknown] and not confident. A failing cache is an internal error.
func (filter *Filter) DetectLanguage(ctx context.Context, title string) (string, bool, error) {
	detection, found, err := filter.cache.Get(ctx, title)
	if err != nil {
		return "", false, apperr.Internal(err)
	}
	if found {
		return detection.Language, detection.Confident(), nil
	}

	// The flight outlives the caller that started it; others may be waiting on it.
	flightCtx := context.WithoutCancel(ctx)
	value, err, _ := filter.inflight.Do(title, func() (any, error) {
		detected, err := filter.detector.Detect(flightCtx, title)
		if err != nil {
			return nil, err
		}
		if detected.DetectedAt.IsZero() {
			detected.DetectedAt = time.Now().UTC()
		}
		if err := filter.cache.PutIfAbsent(flightCtx, title, detected); err != nil {
			return nil, &cacheError{err}
		}
		return detected, nil
	})
	if err != nil {
		var failed *cacheError
		if errors.As(err, &failed) {
			return "", false, apperr.Internal(failed.err)
		}
		filter.logger.Warn("language_detection_failed",
			slog.String("title", title),
			slog.Any("error", err),
		)
		return Unknown, false, nil
	}

	detection = value.(Detection)
	return detection.Language, detection.Confident(), nil
}

// AltTitles keeps the candidates detected confidently in one of the accepted
// languages. Languages are compared by their base subtag, so "zh-CN" accepts a
// title detected as "zh". Candidates are detected and returned verbatim; blank
// and repeated ones are dropped and order is kept.
func (filter *Filter) AltTitles(ctx context.Context, candidates, accepted []string) ([]string, error) {
	bases := map[language.Base]bool{}
	for _, code := range accepted {
		if base, ok := baseOf(code); ok {
			bases[base] = true
		}
	}

	kept := []string{}
	seen := map[string]bool{}
	for _, title := range candidates {
		if strings.TrimSpace(title) == "" || seen[title] {
			continue
		}
		seen[title] = true

		code, confident, err := filter.DetectLanguage(ctx, title)
		if err != nil {
			return nil, err
		}
		if !confident {
			continue
		}
		if base, ok := baseOf(code); ok && bases[base] {
			kept = append(kept, title)
		}
	}

	return kept, nil
}

// cacheError separates cache failures from detector failures inside the flight.
type cacheError struct {
	err error
}

func (e *cacheError) Error() string { return e.err.Error() }

// baseOf parses a BCP 47 code and returns its language subtag.
func baseOf(code string) (language.Base, bool) {
	if code == "" || code == Unknown {
		return language.Base{}, false
	}
	tag, err := language.Parse(code)
	if err != nil {
		return language.Base{}, false
	}
	base, confidence := tag.Base()
	return base, confidence != language.No
}
