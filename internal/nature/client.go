// Package nature реализует клиент облачного API Nature Remo.
package nature

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/levinOo/remo-exporter/internal/models"
)

// DefaultBaseURL содержит адрес публичного API.
const DefaultBaseURL = "https://api.nature.global"

const appliancesPath = "/1/appliances"

var ErrEmptyToken = errors.New("api token is empty")

// StatusError возвращается, если API ответил кодом, отличным от 2xx.
type StatusError struct {
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("server returned status %d: %s", e.StatusCode, e.Body)
}

// Client получает список устройств пользователя.
type Client struct {
	http *resty.Client
}

// NewClient создаёт клиент с авторизацией по Bearer-токену.
func NewClient(baseURL, token string, timeout time.Duration) (*Client, error) {
	if token == "" {
		return nil, ErrEmptyToken
	}
	u, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse api url %q: %w", baseURL, err)
	}
	if u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("api url %q must be absolute", baseURL)
	}

	http := resty.New().
		SetBaseURL(u.String()).
		SetAuthToken(token).
		SetHeader("Accept", "application/json").
		SetTimeout(timeout)

	return &Client{http: http}, nil
}

// Appliances запрашивает текущий список устройств.
// Ошибки транспорта и HTTP-статусы не 2xx возвращаются как есть, без повторов.
func (c *Client) Appliances(ctx context.Context) ([]models.Appliance, error) {
	var appliances []models.Appliance

	resp, err := c.http.R().
		SetContext(ctx).
		ForceContentType("application/json").
		SetResult(&appliances).
		Get(appliancesPath)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch appliances: %w", err)
	}

	if resp.IsError() {
		return nil, &StatusError{StatusCode: resp.StatusCode(), Body: resp.String()}
	}

	return appliances, nil
}
