package roominfo

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/rocketscienceinc/tictactoe-client/internal/apperror"
	"github.com/rocketscienceinc/tictactoe-client/internal/entity"
)

const maxBodySize = 1 << 20

// envelope is the response wrapper every REST endpoint of the server uses.
type envelope[T any] struct {
	Data   T               `json:"data"`
	Errors json.RawMessage `json:"errors,omitempty"`
}

// Client talks to the read-only REST endpoints the engine needs.
type Client struct {
	logger *slog.Logger

	httpClient *http.Client
	baseURL    string
	token      string
}

func NewClient(logger *slog.Logger, baseURL, token string, timeout time.Duration) *Client {
	return &Client{
		logger: logger.With("component", "roominfo.client"),

		httpClient: &http.Client{Timeout: timeout},
		baseURL:    strings.TrimRight(baseURL, "/"),
		token:      token,
	}
}

// GetRoom fetches the membership snapshot of a room.
func (that *Client) GetRoom(ctx context.Context, roomID uint64) (*entity.RoomInfo, error) {
	var resp envelope[entity.RoomInfo]

	if err := that.get(ctx, "/rooms/"+strconv.FormatUint(roomID, 10)+"/info", &resp); err != nil {
		return nil, fmt.Errorf("failed to get room %d: %w", roomID, err)
	}

	return &resp.Data, nil
}

// CurrentUser returns the user the bearer token belongs to.
func (that *Client) CurrentUser(ctx context.Context) (*entity.User, error) {
	var resp envelope[entity.User]

	if err := that.get(ctx, "/users/current", &resp); err != nil {
		return nil, fmt.Errorf("failed to get current user: %w", err)
	}

	return &resp.Data, nil
}

func (that *Client) get(ctx context.Context, path string, out any) error {
	log := that.logger.With("method", "get", "path", path)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, that.baseURL+path, nil)
	if err != nil {
		return fmt.Errorf("%w: %w", apperror.ErrNetworkFailure, err)
	}

	req.Header.Set("Accept", "application/json")
	if that.token != "" {
		req.Header.Set("Authorization", "Bearer "+that.token)
	}

	res, err := that.httpClient.Do(req)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		return fmt.Errorf("%w: %w", apperror.ErrNetworkFailure, err)
	}
	defer res.Body.Close()

	if err = statusError(res.StatusCode); err != nil {
		log.Debug("unexpected status", "status", res.StatusCode)
		return err
	}

	if err = json.NewDecoder(io.LimitReader(res.Body, maxBodySize)).Decode(out); err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		return fmt.Errorf("%w: %w", apperror.ErrMalformedPayload, err)
	}

	return nil
}

func statusError(status int) error {
	switch {
	case status >= 200 && status < 300:
		return nil
	case status == http.StatusUnauthorized, status == http.StatusForbidden:
		return fmt.Errorf("%w: status %d", apperror.ErrUnauthorized, status)
	case status == http.StatusNotFound:
		return fmt.Errorf("%w: status %d", apperror.ErrNotFound, status)
	default:
		return fmt.Errorf("%w: status %d", apperror.ErrNetworkFailure, status)
	}
}

// IsCancelled reports whether err comes from a cancelled or superseded request.
func IsCancelled(err error) bool {
	return errors.Is(err, context.Canceled)
}
