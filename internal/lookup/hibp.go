package lookup

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"
)

const hibpURL = "https://haveibeenpwned.com/api/v3/breachedaccount/"

type hibpBreach struct {
	Name string `json:"Name"`
}

// HIBPClient is the Have I Been Pwned breach provider. It satisfies
// validator.BreachProvider; the analyzer treats any returned error as
// "clean", so a flaky upstream never fails a verification.
type HIBPClient struct {
	APIKey string
	Client *http.Client
}

func NewHIBPClient(apiKey string) *HIBPClient {
	return &HIBPClient{
		APIKey: apiKey,
		Client: &http.Client{Timeout: 8 * time.Second},
	}
}

func (c *HIBPClient) BreachCount(ctx context.Context, email string) (int, error) {
	if c.APIKey == "" {
		return 0, nil
	}

	for attempt := 1; attempt <= 2; attempt++ {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet,
			hibpURL+url.PathEscape(email)+"?truncateResponse=true", nil)
		if err != nil {
			return 0, err
		}
		req.Header.Set("hibp-api-key", c.APIKey)
		req.Header.Set("User-Agent", "Mailproof-Verifier")

		resp, err := c.Client.Do(req)
		if err != nil {
			if attempt == 1 {
				select {
				case <-time.After(500 * time.Millisecond):
					continue
				case <-ctx.Done():
					return 0, ctx.Err()
				}
			}
			return 0, err
		}

		switch resp.StatusCode {
		case http.StatusOK:
			var breaches []hibpBreach
			err := json.NewDecoder(resp.Body).Decode(&breaches)
			resp.Body.Close()
			if err != nil {
				return 0, err
			}
			return len(breaches), nil

		case http.StatusNotFound:
			resp.Body.Close()
			return 0, nil

		case http.StatusTooManyRequests:
			resp.Body.Close()
			if attempt == 1 {
				select {
				case <-time.After(1600 * time.Millisecond):
					continue
				case <-ctx.Done():
					return 0, ctx.Err()
				}
			}
			return 0, fmt.Errorf("hibp rate limited")

		default:
			resp.Body.Close()
			return 0, fmt.Errorf("hibp unexpected status %d", resp.StatusCode)
		}
	}
	return 0, nil
}
