package ocpi

import (
	"encoding/json"
	"fmt"
)

const statusSuccess = 1000

// Response the OCPI envelope every module answers with
type Response struct {
	StatusCode    int    `json:"status_code"`
	StatusMessage string `json:"status_message,omitempty"`
	Timestamp     string `json:"timestamp"`
}

func ParseResponse(body []byte) (*Response, error) {
	res := &Response{}
	if err := json.Unmarshal(body, res); err != nil {
		return nil, fmt.Errorf("parsing response: %w", err)
	}
	return res, nil
}

func (r *Response) Err() error {
	if r.StatusCode == statusSuccess {
		return nil
	}
	return fmt.Errorf("ocpi status %d: %s", r.StatusCode, r.StatusMessage)
}
