package brain

import (
	"bytes"
	"compress/gzip"
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/andybalholm/brotli"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/utakatalp/matchday-face/internal/requestid"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func requireUpstream(t *testing.T, err error, kind Kind) *UpstreamError {
	t.Helper()
	var upErr *UpstreamError
	require.True(t, errors.As(err, &upErr), "expected *UpstreamError, got %T: %v", err, err)
	assert.Equal(t, kind, upErr.Kind)
	return upErr
}

func TestPredictReturnsBodyVerbatim(t *testing.T) {
	var gotBody map[string]any
	var gotRequestID string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/predict", r.URL.Path)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		gotRequestID = r.Header.Get(requestid.Header)
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&gotBody))

		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"win_prob":0.6}`))
	}))
	defer srv.Close()

	c := NewClient(srv.URL+"/", time.Second, testLogger())
	ctx := requestid.With(context.Background(), "req-1")

	pred, err := c.Predict(ctx, "1")
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, pred.Status)
	assert.Equal(t, `{"win_prob":0.6}`, string(pred.Payload))

	// numeric ids travel as JSON numbers
	assert.Equal(t, map[string]any{"match_id": float64(1)}, gotBody)
	assert.Equal(t, "req-1", gotRequestID)
}

func TestPredictForwardsNonNumericIDAsString(t *testing.T) {
	var raw []byte
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		raw, _ = io.ReadAll(r.Body)
		w.Write([]byte(`{}`))
	}))
	defer srv.Close()

	_, err := NewClient(srv.URL, time.Second, testLogger()).Predict(context.Background(), "abc")
	require.NoError(t, err)
	assert.JSONEq(t, `{"match_id":"abc"}`, string(raw))
}

func TestPredictMirrorsSuccessStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusAccepted)
		w.Write([]byte(`{"queued":true}`))
	}))
	defer srv.Close()

	pred, err := NewClient(srv.URL, time.Second, testLogger()).Predict(context.Background(), "7")
	require.NoError(t, err)
	assert.Equal(t, http.StatusAccepted, pred.Status)
	assert.Equal(t, `{"queued":true}`, string(pred.Payload))
}

func TestPredictNonSuccessStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "model not loaded", http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	pred, err := NewClient(srv.URL, time.Second, testLogger()).Predict(context.Background(), "1")
	assert.Nil(t, pred)
	upErr := requireUpstream(t, err, KindStatus)
	assert.Equal(t, http.StatusServiceUnavailable, upErr.Status)
	assert.Equal(t, "1", upErr.MatchID)
	assert.Contains(t, upErr.Error(), "model not loaded")
	assert.False(t, upErr.Timeout())
}

func TestPredictInvalidJSON(t *testing.T) {
	for name, body := range map[string]string{
		"html":  "<html>oops</html>",
		"empty": "",
	} {
		t.Run(name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.Write([]byte(body))
			}))
			defer srv.Close()

			_, err := NewClient(srv.URL, time.Second, testLogger()).Predict(context.Background(), "1")
			requireUpstream(t, err, KindPayload)
		})
	}
}

func TestPredictUnreachable(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := srv.URL
	srv.Close()

	_, err := NewClient(url, time.Second, testLogger()).Predict(context.Background(), "1")
	requireUpstream(t, err, KindTransport)
}

func TestPredictTimeout(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-time.After(2 * time.Second):
		}
	}))
	defer srv.Close()

	_, err := NewClient(srv.URL, 50*time.Millisecond, testLogger()).Predict(context.Background(), "1")
	upErr := requireUpstream(t, err, KindTransport)
	assert.True(t, upErr.Timeout())
}

func TestPredictDecodesCompressedBodies(t *testing.T) {
	payload := `{"home":0.41,"draw":0.27,"away":0.32}`

	cases := map[string]func(w io.Writer) io.WriteCloser{
		"gzip": func(w io.Writer) io.WriteCloser { return gzip.NewWriter(w) },
		"br":   func(w io.Writer) io.WriteCloser { return brotli.NewWriter(w) },
	}
	for enc, newWriter := range cases {
		t.Run(enc, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				assert.Contains(t, r.Header.Get("Accept-Encoding"), enc)
				w.Header().Set("Content-Encoding", enc)
				zw := newWriter(w)
				zw.Write([]byte(payload))
				zw.Close()
			}))
			defer srv.Close()

			pred, err := NewClient(srv.URL, time.Second, testLogger()).Predict(context.Background(), "3")
			require.NoError(t, err)
			assert.Equal(t, payload, string(pred.Payload))
		})
	}
}

func TestPredictCorruptCompressedBody(t *testing.T) {
	var buf bytes.Buffer
	zw := gzip.NewWriter(&buf)
	zw.Write([]byte(`{"win_prob":0.6}`))
	require.NoError(t, zw.Close())
	corrupt := buf.Bytes()
	// the gzip trailer is CRC32 then size; break the CRC
	corrupt[len(corrupt)-8] ^= 0xff

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Encoding", "gzip")
		w.Write(corrupt)
	}))
	defer srv.Close()

	_, err := NewClient(srv.URL, time.Second, testLogger()).Predict(context.Background(), "1")
	upErr := requireUpstream(t, err, KindPayload)
	assert.ErrorIs(t, upErr, gzip.ErrChecksum)
}

func TestCoerceMatchID(t *testing.T) {
	cases := []struct {
		in   string
		want any
	}{
		{"0", int64(0)},
		{"1", int64(1)},
		{"42", int64(42)},
		{"007", "007"},
		{"+5", "+5"},
		{"-3", "-3"},
		{"1e3", "1e3"},
		{"12abc", "12abc"},
		{"", ""},
		{"99999999999999999999", "99999999999999999999"},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, coerceMatchID(tc.in), "id %q", tc.in)
	}
}

func TestPredictUnsupportedEncoding(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Encoding", "zstd")
		w.Write([]byte(`{}`))
	}))
	defer srv.Close()

	_, err := NewClient(srv.URL, time.Second, testLogger()).Predict(context.Background(), "1")
	requireUpstream(t, err, KindPayload)
}

func TestPredictIsIdempotent(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"win_prob":0.6}`))
	}))
	defer srv.Close()

	c := NewClient(srv.URL, time.Second, testLogger())
	first, err := c.Predict(context.Background(), "1")
	require.NoError(t, err)
	for i := 0; i < 3; i++ {
		again, err := c.Predict(context.Background(), "1")
		require.NoError(t, err)
		assert.Equal(t, first, again)
	}
}

func TestKindString(t *testing.T) {
	assert.Equal(t, "transport", KindTransport.String())
	assert.Equal(t, "status", KindStatus.String())
	assert.Equal(t, "payload", KindPayload.String())
	assert.Equal(t, "unknown", Kind(42).String())
}
