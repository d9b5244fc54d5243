package rpcclient

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/ivankudzin/botlist/internal/transport/http/dto"
)

// Client calls the direct invocation endpoint of a running staffbot.
type Client struct {
	baseURL    string
	token      string
	httpClient *http.Client
}

type RequestError struct {
	Op         string
	StatusCode int
	Retryable  bool
	Err        error
}

func (e *RequestError) Error() string {
	if e == nil {
		return ""
	}
	switch {
	case e.Err != nil && e.StatusCode > 0:
		return fmt.Sprintf("%s: status=%d: %v", e.Op, e.StatusCode, e.Err)
	case e.Err != nil:
		return fmt.Sprintf("%s: %v", e.Op, e.Err)
	case e.StatusCode > 0:
		return fmt.Sprintf("%s: status=%d", e.Op, e.StatusCode)
	default:
		return e.Op
	}
}

func (e *RequestError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// Result is a decoded invocation response together with its HTTP status.
type Result struct {
	StatusCode int
	dto.RPCResponse
}

func NewClient(baseURL string, token string, timeout time.Duration) (*Client, error) {
	trimmedBaseURL := strings.TrimSpace(baseURL)
	trimmedToken := strings.TrimSpace(token)
	if trimmedBaseURL == "" || trimmedToken == "" {
		return nil, &RequestError{
			Op:  "create rpc client",
			Err: errors.New("api url or access token is empty"),
		}
	}

	parsed, err := url.Parse(trimmedBaseURL)
	if err != nil {
		return nil, &RequestError{Op: "parse api url", Err: err}
	}
	if parsed.Scheme == "" || parsed.Host == "" {
		return nil, &RequestError{
			Op:  "validate api url",
			Err: fmt.Errorf("invalid api url: %s", trimmedBaseURL),
		}
	}

	if timeout <= 0 {
		timeout = 8 * time.Second
	}

	return &Client{
		baseURL: strings.TrimRight(trimmedBaseURL, "/"),
		token:   trimmedToken,
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}, nil
}

func IsRetryable(err error) bool {
	var reqErr *RequestError
	if errors.As(err, &reqErr) {
		return reqErr.Retryable
	}
	var netErr net.Error
	return errors.As(err, &netErr)
}

// Invoke runs one action. Refusals reported by the server (validation,
// permission, missing rows) come back as a Result with Done=false, not as an
// error.
func (c *Client) Invoke(ctx context.Context, method string, fields map[string]string) (Result, error) {
	payload, err := json.Marshal(dto.RPCRequest{Method: method, Fields: fields})
	if err != nil {
		return Result{}, &RequestError{Op: "marshal request body", Err: err}
	}

	status, body, err := c.do(ctx, http.MethodPost, "/v1/rpc", payload)
	if err != nil && status == 0 {
		return Result{}, err
	}

	var decoded dto.RPCResponse
	decodeErr := json.Unmarshal(body, &decoded)
	if decodeErr == nil && !decoded.Done && decoded.Reason == "" {
		decodeErr = errors.New("response is not an rpc result")
	}
	if decodeErr != nil {
		if err != nil {
			return Result{}, err
		}
		return Result{}, &RequestError{Op: "decode http response", StatusCode: status, Err: decodeErr}
	}
	return Result{StatusCode: status, RPCResponse: decoded}, nil
}

func (c *Client) Methods(ctx context.Context, partial string) ([]dto.MethodSchema, error) {
	path := "/v1/rpc/methods"
	if q := strings.TrimSpace(partial); q != "" {
		path += "?q=" + url.QueryEscape(q)
	}

	status, body, err := c.do(ctx, http.MethodGet, path, nil)
	if err != nil {
		return nil, err
	}

	var decoded dto.MethodsResponse
	if err := json.Unmarshal(body, &decoded); err != nil {
		return nil, &RequestError{Op: "decode http response", StatusCode: status, Err: err}
	}
	return decoded.Items, nil
}

func (c *Client) do(ctx context.Context, method string, path string, body []byte) (int, []byte, error) {
	if c == nil || c.httpClient == nil {
		return 0, nil, &RequestError{
			Op:  "do request",
			Err: errors.New("rpc client is not initialized"),
		}
	}

	var bodyReader io.Reader
	if len(body) > 0 {
		bodyReader = bytes.NewReader(body)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+ensureLeadingSlash(path), bodyReader)
	if err != nil {
		return 0, nil, &RequestError{Op: "create http request", Err: err}
	}
	req.Header.Set("Authorization", "Bearer "+c.token)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return 0, nil, &RequestError{
			Op:        "execute http request",
			Retryable: isRetryableNetworkError(err),
			Err:       err,
		}
	}
	defer resp.Body.Close()

	responseBytes, readErr := io.ReadAll(io.LimitReader(resp.Body, 2*1024*1024))
	if readErr != nil {
		return resp.StatusCode, nil, &RequestError{
			Op:         "read http response",
			StatusCode: resp.StatusCode,
			Err:        readErr,
		}
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		errMessage := strings.TrimSpace(string(responseBytes))
		if errMessage == "" {
			errMessage = http.StatusText(resp.StatusCode)
		}
		return resp.StatusCode, responseBytes, &RequestError{
			Op:         "unexpected http status",
			StatusCode: resp.StatusCode,
			Retryable:  resp.StatusCode >= 500,
			Err:        errors.New(errMessage),
		}
	}

	return resp.StatusCode, responseBytes, nil
}

func isRetryableNetworkError(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var netErr net.Error
	return errors.As(err, &netErr)
}

func ensureLeadingSlash(path string) string {
	trimmed := strings.TrimSpace(path)
	if trimmed == "" {
		return "/"
	}
	if strings.HasPrefix(trimmed, "/") {
		return trimmed
	}
	return "/" + trimmed
}
