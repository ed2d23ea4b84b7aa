// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package langfilter

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	"github.com/taibuivan/shelfsync/internal/platform/upstream"
)

// HTTPDetector calls a LibreTranslate-compatible /detect endpoint.
type HTTPDetector struct {
	client  *upstream.Client
	baseURL string
	apiKey  string
}

// NewHTTPDetector builds a detector for the service at baseURL.
func NewHTTPDetector(client *upstream.Client, baseURL, apiKey string) *HTTPDetector {
	return &HTTPDetector{
		client:  client,
		baseURL: strings.TrimRight(baseURL, "/"),
		apiKey:  apiKey,
	}
}

type detectRequest struct {
	Q      string `json:"q"`
	APIKey string `json:"api_key,omitempty"`
}

type detectCandidate struct {
	Language   string  `json:"language"`
	Confidence float64 `json:"confidence"`
}

/*
Detect returns the best candidate reported by the service.

Description: The service answers with candidates sorted by confidence on a
0-100 scale; the first one wins and its confidence is scaled to [0, 1].
An empty candidate list is reported as [Unknown] with zero confidence.
*/
func (detector *HTTPDetector) Detect(ctx context.Context, text string) (Detection, error) {
	payload, err := json.Marshal(detectRequest{Q: text, APIKey: detector.apiKey})
	if err != nil {
		return Detection{}, err
	}

	var candidates []detectCandidate
	err = detector.client.DoJSON(ctx,
		upstream.Post(detector.baseURL+"/detect", "application/json", payload, nil), &candidates, nil)
	if err != nil {
		return Detection{}, err
	}

	detection := Detection{Language: Unknown, DetectedAt: time.Now().UTC()}
	if len(candidates) > 0 && candidates[0].Language != "" {
		detection.Language = candidates[0].Language
		detection.Confidence = candidates[0].Confidence / 100
	}

	return detection, nil
}
