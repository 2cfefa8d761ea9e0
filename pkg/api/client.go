package api

import (
	"bytes"
	"context"
	"encoding/json"
	"io/ioutil"
	"net/http"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
)

// DefaultTimeout bounds each API call when the caller's context does not
const DefaultTimeout = time.Second * 10

// Client talks to the SpeedMatch backend service. All game rules live on the
// server; the client only sends requests and decodes the response envelopes
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// New returns a Client for the API at baseURL
func New(baseURL string) *Client {
	return &Client{
		baseURL: strings.TrimSuffix(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: DefaultTimeout,
		},
	}
}

// NewWithHTTPClient returns a Client using the provided http.Client. Useful
// when the caller needs a custom timeout or transport
func NewWithHTTPClient(baseURL string, httpClient *http.Client) *Client {
	return &Client{
		baseURL:    strings.TrimSuffix(baseURL, "/"),
		httpClient: httpClient,
	}
}

// BaseURL returns the configured API base URL
func (c *Client) BaseURL() string {
	return c.baseURL
}

// envelope is the {success, data, error} wrapper around every response
type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Error   *Error          `json:"error"`
}

// do issues the request and decodes the envelope's data into out. A non-2xx
// response without an envelope becomes HTTP_<status>; a transport failure
// becomes NETWORK_ERROR
func (c *Client) do(ctx context.Context, method, path string, body interface{}, out interface{}) error {
	var reqBody *bytes.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return newNetworkError(err)
		}

		reqBody = bytes.NewReader(b)
	} else {
		reqBody = bytes.NewReader(nil)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reqBody)
	if err != nil {
		return newNetworkError(err)
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	logrus.WithFields(logrus.Fields{
		"method": method,
		"path":   path,
	}).Debug("api request")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return newNetworkError(err)
	}
	defer resp.Body.Close()

	respBody, err := ioutil.ReadAll(resp.Body)
	if err != nil {
		return newNetworkError(err)
	}

	var env envelope
	if err := json.Unmarshal(respBody, &env); err != nil {
		if resp.StatusCode < 200 || resp.StatusCode >= 300 {
			return newHTTPError(resp.StatusCode, http.StatusText(resp.StatusCode))
		}

		return &Error{
			Code:       CodeBadResponse,
			Message:    err.Error(),
			HTTPStatus: resp.StatusCode,
		}
	}

	if !env.Success {
		if env.Error != nil {
			env.Error.HTTPStatus = resp.StatusCode
			return env.Error
		}

		return newHTTPError(resp.StatusCode, http.StatusText(resp.StatusCode))
	}

	if out != nil && len(env.Data) > 0 {
		if err := json.Unmarshal(env.Data, out); err != nil {
			return &Error{
				Code:       CodeBadResponse,
				Message:    err.Error(),
				HTTPStatus: resp.StatusCode,
			}
		}
	}

	return nil
}
