package brain

import (
	"bytes"
	"compress/gzip"
	"compress/zlib"
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

	"github.com/andybalholm/brotli"
	"github.com/utakatalp/matchday-face/internal/league"
	"github.com/utakatalp/matchday-face/internal/requestid"
)

const (
	// DefaultTimeout bounds a whole predict round trip when none is configured.
	DefaultTimeout = 10 * time.Second

	predictPath     = "/predict"
	maxPayloadBytes = 4 << 20
	errSnippetBytes = 512
)

// Client calls the brain's prediction endpoint.
type Client struct {
	baseURL string
	client  *http.Client
	logger  *slog.Logger
}

// NewClient returns a client for the brain at baseURL. A non-positive timeout
// falls back to DefaultTimeout.
func NewClient(baseURL string, timeout time.Duration, logger *slog.Logger) *Client {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  &http.Client{Timeout: timeout},
		logger:  logger,
	}
}

type predictRequest struct {
	MatchID any `json:"match_id"`
}

// coerceMatchID sends canonical decimal ids ("0", "42", no sign, no leading
// zero, fits int64) as JSON numbers. Anything else is forwarded untouched as
// a string so the brain sees exactly what was in the path.
func coerceMatchID(id string) any {
	if id == "" || (len(id) > 1 && id[0] == '0') {
		return id
	}
	for _, c := range id {
		if c < '0' || c > '9' {
			return id
		}
	}
	if n, err := strconv.ParseInt(id, 10, 64); err == nil {
		return n
	}
	return id
}

// readErrRecorder remembers the last error from the raw response body so a
// failed read can be told apart from a failed decompression.
type readErrRecorder struct {
	r   io.Reader
	err error
}

func (e *readErrRecorder) Read(p []byte) (int, error) {
	n, err := e.r.Read(p)
	if err != nil && err != io.EOF {
		e.err = err
	}
	return n, err
}

// Predict asks the brain for a prediction on matchID. The returned payload is
// the brain's body exactly as received. Every failure is an *UpstreamError.
func (c *Client) Predict(ctx context.Context, matchID string) (*league.Prediction, error) {
	fail := func(kind Kind, status int, err error) error {
		return &UpstreamError{Kind: kind, MatchID: matchID, Status: status, Err: err}
	}

	body, err := json.Marshal(predictRequest{MatchID: coerceMatchID(matchID)})
	if err != nil {
		return nil, fail(KindTransport, 0, fmt.Errorf("marshal body: %w", err))
	}

	url := c.baseURL + predictPath
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return nil, fail(KindTransport, 0, fmt.Errorf("new request: %w", err))
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Accept-Encoding", "gzip, deflate, br")
	if id := requestid.From(ctx); id != "" {
		req.Header.Set(requestid.Header, id)
	}

	start := time.Now()
	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fail(KindTransport, 0, err)
	}
	defer resp.Body.Close()

	c.logger.Debug("brain responded",
		"url", url,
		"match_id", matchID,
		"status", resp.StatusCode,
		"encoding", resp.Header.Get("Content-Encoding"),
		"duration", time.Since(start),
	)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, errSnippetBytes))
		return nil, fail(KindStatus, resp.StatusCode, errors.New(strings.TrimSpace(string(snippet))))
	}

	raw := &readErrRecorder{r: resp.Body}
	reader, err := decodeBody(raw, resp.Header.Get("Content-Encoding"))
	if err != nil {
		return nil, fail(KindPayload, 0, err)
	}
	defer reader.Close()

	data, err := io.ReadAll(io.LimitReader(reader, maxPayloadBytes+1))
	if err != nil {
		if raw.err != nil {
			return nil, fail(KindTransport, 0, fmt.Errorf("read body: %w", err))
		}
		return nil, fail(KindPayload, 0, fmt.Errorf("decode body: %w", err))
	}
	if len(data) > maxPayloadBytes {
		return nil, fail(KindPayload, 0, fmt.Errorf("body exceeds %d bytes", maxPayloadBytes))
	}
	if !json.Valid(data) {
		return nil, fail(KindPayload, 0, errors.New("body is not valid JSON"))
	}

	return &league.Prediction{Status: resp.StatusCode, Payload: json.RawMessage(data)}, nil
}

// decodeBody undoes Content-Encoding. Go only decodes gzip transparently when
// it set Accept-Encoding itself, which we override to also accept brotli.
func decodeBody(body io.Reader, encoding string) (io.ReadCloser, error) {
	switch enc := strings.ToLower(encoding); enc {
	case "", "identity":
		return io.NopCloser(body), nil
	case "gzip":
		r, err := gzip.NewReader(body)
		if err != nil {
			return nil, fmt.Errorf("failed to create gzip reader: %w", err)
		}
		return r, nil
	case "deflate":
		r, err := zlib.NewReader(body)
		if err != nil {
			return nil, fmt.Errorf("failed to create deflate reader: %w", err)
		}
		return r, nil
	case "br":
		return io.NopCloser(brotli.NewReader(body)), nil
	default:
		return nil, fmt.Errorf("unsupported content encoding %q", enc)
	}
}
