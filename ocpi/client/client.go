package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/sirupsen/logrus"
)

const (
	defaultAttempts = 3
	defaultBackoff  = 10 * time.Second
	requestTimeout  = 5 * time.Second
)

type Client struct {
	client   *http.Client
	url      string
	token    string
	attempts int
	backoff  time.Duration
}

func New(url, token string) *Client {
	return &Client{
		url:      url,
		token:    token,
		client:   &http.Client{},
		attempts: defaultAttempts,
		backoff:  defaultBackoff,
	}
}

// SetRetry sets the number of attempts and the base delay, attempt n waits n*backoff
func (c *Client) SetRetry(attempts int, backoff time.Duration) {
	if attempts > 0 {
		c.attempts = attempts
	}
	c.backoff = backoff
}

// POST sends data in the background and reports the outcome to callback once
func (c *Client) POST(endpoint string, data interface{}, callback func(resp []byte, err error)) {
	body, err := json.Marshal(data)
	if err != nil {
		callback(nil, fmt.Errorf("marshalling body: %w", err))
		return
	}
	go func() {
		var resp []byte
		for attempt := 0; attempt < c.attempts; attempt++ {
			resp, err = c.doRequest(http.MethodPost, endpoint, body)
			if err == nil {
				callback(resp, nil)
				return
			}
			logrus.WithFields(logrus.Fields{"component": "OCPI", "category": "client"}).
				Warnf("%s: %v (attempt %d)", endpoint, err, attempt+1)
			if attempt+1 < c.attempts {
				time.Sleep(time.Duration(attempt+1) * c.backoff)
			}
		}
		callback(nil, err)
	}()
}

func (c *Client) doRequest(method, endpoint string, body []byte) ([]byte, error) {
	ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
	defer cancel()

	url := fmt.Sprintf("%v%v", c.url, endpoint)

	req, err := http.NewRequestWithContext(ctx, method, url, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Token "+c.token)

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("sending request: %w", err)
	}
	defer func(Body io.ReadCloser) {
		_ = Body.Close()
	}(resp.Body)

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		return nil, fmt.Errorf("received unexpected status code: %d", resp.StatusCode)
	}

	body, err = io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading response body: %w", err)
	}
	return body, nil
}
