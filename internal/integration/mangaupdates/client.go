// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package mangaupdates keeps the reading lists of a MangaUpdates account and the
library in step, in both directions.

Architecture:

  - Client: session login (PUT /account/login), then list search, add and move
    calls with the session token as bearer. A rejected token triggers one fresh
    login. Every call goes through the upstream retry policy.
  - Syncer: compares each listed series with its library entry. The side that
    changed last wins; entries missing on one side are added to it. The list
    metadata also carries the ratings, which are stored as one batch.
*/
package mangaupdates

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/taibuivan/shelfsync/internal/platform/apperr"
	"github.com/taibuivan/shelfsync/internal/platform/upstream"
)

// perPage is the page size of a list search.
const perPage = 100

// Credentials of the MangaUpdates account.
type Credentials struct {
	Username string
	Password string
}

// Item is one series on a reading list.
type Item struct {
	// ID is the base-36 series identifier stored on series.
	ID     string
	ListID int
	Added  time.Time

	// Rating is the bayesian community rating, nil until the series is rated.
	Rating *float64

	// UserRating is the account's own rating.
	UserRating *float64
}

// Client talks to the list endpoints of one account.
type Client struct {
	api         *upstream.Client
	apiURL      string
	credentials Credentials
	logger      *slog.Logger

	mu    sync.Mutex
	token string
}

func New(api *upstream.Client, apiURL string, credentials Credentials, logger *slog.Logger) *Client {
	return &Client{
		api:         api,
		apiURL:      strings.TrimRight(apiURL, "/"),
		credentials: credentials,
		logger:      logger,
	}
}

// # Authentication

/*
Login opens a session for the account.

Returns:
  - error: UpstreamUnavailable when MangaUpdates refuses the credentials or fails
*/
func (client *Client) Login(ctx context.Context) error {
	body, err := json.Marshal(map[string]string{
		"username": client.credentials.Username,
		"password": client.credentials.Password,
	})
	if err != nil {
		return apperr.Internal(err)
	}

	var payload struct {
		Status  string `json:"status"`
		Context struct {
			SessionToken string `json:"session_token"`
		} `json:"context"`
	}
	build := upstream.Send(http.MethodPut, client.apiURL+"/account/login", "application/json", body, nil)
	err = client.api.DoJSON(ctx, build, &payload, func() error {
		if payload.Context.SessionToken == "" {
			return client.api.Malformed("missing session_token")
		}
		return nil
	})
	if err != nil {
		client.logger.Error("mangaupdates_login_failed", slog.Any("error", err))
		return err
	}

	client.mu.Lock()
	client.token = payload.Context.SessionToken
	client.mu.Unlock()

	client.logger.Info("mangaupdates_login_succeeded")
	return nil
}

func (client *Client) currentToken() string {
	client.mu.Lock()
	defer client.mu.Unlock()
	return client.token
}

// postJSON sends an authenticated POST. A rejected token triggers one fresh
// login before the request is repeated.
func (client *Client) postJSON(ctx context.Context, path string, body, target any, check func() error) error {
	encoded, err := json.Marshal(body)
	if err != nil {
		return apperr.Internal(err)
	}

	for attempt := 0; ; attempt++ {
		token := client.currentToken()
		if token == "" {
			if err := client.Login(ctx); err != nil {
				return err
			}
			token = client.currentToken()
		}

		headers := map[string]string{"Authorization": "Bearer " + token}
		err := client.api.DoJSON(ctx, upstream.Post(client.apiURL+path, "application/json", encoded, headers), target, check)
		if attempt > 0 || upstream.StatusCode(err) != http.StatusUnauthorized {
			return err
		}

		client.logger.Warn("mangaupdates_token_rejected", slog.String("path", path))
		client.mu.Lock()
		client.token = ""
		client.mu.Unlock()
	}
}

// # Lists

type listResponse struct {
	TotalHits int `json:"total_hits"`
	Results   []struct {
		Record struct {
			Series struct {
				ID int64 `json:"id"`
			} `json:"series"`
			ListID    int `json:"list_id"`
			TimeAdded struct {
				Timestamp int64 `json:"timestamp"`
			} `json:"time_added"`
		} `json:"record"`
		Metadata struct {
			Series struct {
				BayesianRating *float64 `json:"bayesian_rating"`
			} `json:"series"`
			UserRating *float64 `json:"user_rating"`
		} `json:"metadata"`
	} `json:"results"`
}

// ListSeries returns every series on one list, reading page after page.
func (client *Client) ListSeries(ctx context.Context, listID int) ([]Item, error) {
	var items []Item

	for page := 1; ; page++ {
		var payload listResponse
		err := client.postJSON(ctx, fmt.Sprintf("/lists/%d/search", listID),
			map[string]int{"page": page, "perpage": perPage}, &payload, nil)
		if err != nil {
			return nil, err
		}

		for _, result := range payload.Results {
			items = append(items, Item{
				ID:         strconv.FormatInt(result.Record.Series.ID, 36),
				ListID:     listID,
				Added:      time.Unix(result.Record.TimeAdded.Timestamp, 0).UTC(),
				Rating:     result.Metadata.Series.BayesianRating,
				UserRating: result.Metadata.UserRating,
			})
		}

		if len(payload.Results) < perPage || len(items) >= payload.TotalHits {
			return items, nil
		}
	}
}

// listChange is the body of the add and move calls.
type listChange struct {
	Series struct {
		ID int64 `json:"id"`
	} `json:"series"`
	ListID int `json:"list_id"`
}

// AddSeries puts a series on a list it is not on yet.
func (client *Client) AddSeries(ctx context.Context, id string, listID int) error {
	return client.changeList(ctx, "/lists/series", id, listID)
}

// MoveSeries moves a listed series to another list.
func (client *Client) MoveSeries(ctx context.Context, id string, listID int) error {
	return client.changeList(ctx, "/lists/series/update", id, listID)
}

func (client *Client) changeList(ctx context.Context, path, id string, listID int) error {
	number, err := strconv.ParseInt(id, 36, 64)
	if err != nil {
		return apperr.ValidationError("Invalid MangaUpdates id", apperr.FieldError{
			Field:   "id",
			Message: "Must be a base-36 series identifier",
		})
	}

	change := listChange{ListID: listID}
	change.Series.ID = number

	var payload struct {
		Status string `json:"status"`
		Reason string `json:"reason"`
	}
	return client.postJSON(ctx, path, []listChange{change}, &payload, func() error {
		if payload.Status != "success" {
			return client.api.Malformed("status " + payload.Status + ": " + payload.Reason)
		}
		return nil
	})
}
