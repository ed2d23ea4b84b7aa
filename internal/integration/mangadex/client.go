// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package mangadex pulls the reading statuses of a MangaDex account into the library.

Architecture:

  - Client: OAuth password grant against the MangaDex identity provider, then
    GET /manga/status with the bearer token. Every call goes through the
    upstream retry policy (3 attempts, fixed 2s backoff in production).
  - Syncer: maps each followed title to a stored series, importing the unknown
    ones, and writes its library status. One run at a time, guarded by a lock.
  - RatingsSyncer: reads the community statistics and the account's own
    ratings of the followed titles and stores them as one rating batch.
*/
package mangadex

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"sync"

	"github.com/samber/lo"

	"github.com/taibuivan/shelfsync/internal/core/library"
	"github.com/taibuivan/shelfsync/internal/core/rating"
	"github.com/taibuivan/shelfsync/internal/platform/upstream"
)

// Credentials of the personal API client registered on MangaDex.
type Credentials struct {
	Username     string
	Password     string
	ClientID     string
	ClientSecret string
}

// Client reads the follow list of one account.
type Client struct {
	api         *upstream.Client
	apiURL      string
	authURL     string
	credentials Credentials
	logger      *slog.Logger

	mu    sync.Mutex
	token string
}

func New(api *upstream.Client, apiURL, authURL string, credentials Credentials, logger *slog.Logger) *Client {
	return &Client{
		api:         api,
		apiURL:      strings.TrimRight(apiURL, "/"),
		authURL:     authURL,
		credentials: credentials,
		logger:      logger,
	}
}

// # Authentication

/*
Login exchanges the account credentials for an access token.

Returns:
  - error: UpstreamUnavailable when the identity provider refuses or fails
*/
func (client *Client) Login(ctx context.Context) error {
	form := url.Values{
		"grant_type":    {"password"},
		"username":      {client.credentials.Username},
		"password":      {client.credentials.Password},
		"client_id":     {client.credentials.ClientID},
		"client_secret": {client.credentials.ClientSecret},
	}

	var payload struct {
		AccessToken  string `json:"access_token"`
		RefreshToken string `json:"refresh_token"`
	}
	build := upstream.Post(client.authURL, "application/x-www-form-urlencoded", []byte(form.Encode()), nil)
	err := client.api.DoJSON(ctx, build, &payload, func() error {
		if payload.AccessToken == "" {
			return client.api.Malformed("missing access_token")
		}
		return nil
	})
	if err != nil {
		client.logger.Error("mangadex_login_failed", slog.Any("error", err))
		return err
	}

	client.mu.Lock()
	client.token = payload.AccessToken
	client.mu.Unlock()

	client.logger.Info("mangadex_login_succeeded")
	return nil
}

func (client *Client) currentToken() string {
	client.mu.Lock()
	defer client.mu.Unlock()
	return client.token
}

// getJSON sends an authenticated GET. A rejected token triggers one fresh
// login before the request is repeated.
func (client *Client) getJSON(ctx context.Context, path string, target any, check func() error) error {
	for attempt := 0; ; attempt++ {
		token := client.currentToken()
		if token == "" {
			if err := client.Login(ctx); err != nil {
				return err
			}
			token = client.currentToken()
		}

		headers := map[string]string{"Authorization": "Bearer " + token}
		err := client.api.GetJSON(ctx, client.apiURL+path, headers, target, check)
		if attempt > 0 || upstream.StatusCode(err) != http.StatusUnauthorized {
			return err
		}

		client.logger.Warn("mangadex_token_rejected", slog.String("path", path))
		client.mu.Lock()
		client.token = ""
		client.mu.Unlock()
	}
}

// Username returns the name of the logged-in account, confirming the token works.
func (client *Client) Username(ctx context.Context) (string, error) {
	var payload struct {
		Data struct {
			Attributes struct {
				Username string `json:"username"`
			} `json:"attributes"`
		} `json:"data"`
	}
	if err := client.getJSON(ctx, "/user/me", &payload, nil); err != nil {
		return "", err
	}
	return payload.Data.Attributes.Username, nil
}

// # Reading Statuses

/*
Statuses returns the library status of every title the account follows, keyed
by MangaDex id. Titles with a status shelfsync does not know are logged and left out.
*/
func (client *Client) Statuses(ctx context.Context) (map[string]library.Status, error) {
	var payload struct {
		Result   string            `json:"result"`
		Statuses map[string]string `json:"statuses"`
	}
	err := client.getJSON(ctx, "/manga/status", &payload, func() error {
		if payload.Result != "ok" {
			return client.api.Malformed("result " + payload.Result)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	statuses := make(map[string]library.Status, len(payload.Statuses))
	for id, raw := range payload.Statuses {
		status, known := MapStatus(raw)
		if !known {
			client.logger.Debug("mangadex_status_ignored", slog.String("id", id), slog.String("status", raw))
			continue
		}
		statuses[id] = status
	}
	return statuses, nil
}

// MapStatus translates a MangaDex reading status into a library status.
func MapStatus(raw string) (library.Status, bool) {
	switch raw {
	case "reading":
		return library.StatusReading, true
	case "plan_to_read":
		return library.StatusPlanToRead, true
	case "completed":
		return library.StatusCompleted, true
	case "dropped":
		return library.StatusDropped, true
	case "on_hold":
		return library.StatusOnHold, true
	case "re_reading":
		return library.StatusReReading, true
	}
	return "", false
}

// # Ratings

// pageSize is the most ids MangaDex accepts in one manga[] filter.
const pageSize = 100

/*
Statistics returns the bayesian community rating of each title. The vote count
is the sum of the score distribution. Titles nobody rated yet are left out.
*/
func (client *Client) Statistics(ctx context.Context, ids []string) ([]rating.Score, error) {
	scores := make([]rating.Score, 0, len(ids))

	for _, chunk := range lo.Chunk(ids, pageSize) {
		var payload struct {
			Result     string `json:"result"`
			Statistics map[string]struct {
				Rating struct {
					Bayesian     *float64       `json:"bayesian"`
					Distribution map[string]int `json:"distribution"`
				} `json:"rating"`
			} `json:"statistics"`
		}
		err := client.getJSON(ctx, "/statistics/manga?"+mangaFilter(chunk), &payload, func() error {
			if payload.Result != "ok" {
				return client.api.Malformed("result " + payload.Result)
			}
			return nil
		})
		if err != nil {
			return nil, err
		}

		for id, stats := range payload.Statistics {
			if stats.Rating.Bayesian == nil {
				continue
			}
			votes := 0
			for _, count := range stats.Rating.Distribution {
				votes += count
			}
			scores = append(scores, rating.Score{ID: id, Rating: *stats.Rating.Bayesian, Votes: votes})
		}
	}
	return scores, nil
}

// UserRatings returns the account's own rating of each title it rated.
func (client *Client) UserRatings(ctx context.Context, ids []string) ([]rating.UserScore, error) {
	scores := make([]rating.UserScore, 0, len(ids))

	for _, chunk := range lo.Chunk(ids, pageSize) {
		var payload struct {
			Result  string    `json:"result"`
			Ratings ratingMap `json:"ratings"`
		}
		err := client.getJSON(ctx, "/rating?"+mangaFilter(chunk), &payload, func() error {
			if payload.Result != "ok" {
				return client.api.Malformed("result " + payload.Result)
			}
			return nil
		})
		if err != nil {
			return nil, err
		}

		for id, own := range payload.Ratings {
			scores = append(scores, rating.UserScore{ID: id, Rating: own.Rating})
		}
	}
	return scores, nil
}

func mangaFilter(ids []string) string {
	return url.Values{"manga[]": ids}.Encode()
}

// ratingMap is keyed by manga id. MangaDex encodes an empty map as [].
type ratingMap map[string]ownRating

type ownRating struct {
	Rating float64 `json:"rating"`
}

func (ratings *ratingMap) UnmarshalJSON(data []byte) error {
	if bytes.Equal(bytes.TrimSpace(data), []byte("[]")) {
		*ratings = nil
		return nil
	}
	return json.Unmarshal(data, (*map[string]ownRating)(ratings))
}
