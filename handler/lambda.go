package handler

import (
	"context"
	"encoding/base64"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"

	"github.com/aws/aws-lambda-go/events"
)

// HandleFunctionURL serves a Lambda Function URL invocation in
// RESPONSE_STREAM mode. The status and headers are returned as soon as the
// handler commits them; the body streams through a pipe while the handler
// keeps writing.
func (h *Handler) HandleFunctionURL(ctx context.Context, req events.LambdaFunctionURLRequest) (*events.LambdaFunctionURLStreamingResponse, error) {
	httpReq, err := toHTTPRequest(ctx, req)
	if err != nil {
		return nil, err
	}

	pr, pw := io.Pipe()
	w := newPipeWriter(pw)
	go func() {
		defer func() {
			w.commit(http.StatusOK)
			_ = pw.Close()
		}()
		h.ServeHTTP(w, httpReq)
	}()

	select {
	case <-w.committed:
	case <-ctx.Done():
		_ = pr.CloseWithError(ctx.Err())
		return nil, ctx.Err()
	}

	return &events.LambdaFunctionURLStreamingResponse{
		StatusCode: w.status,
		Headers:    flattenHeaders(w.snapshot),
		Cookies:    w.snapshot.Values("Set-Cookie"),
		Body:       pr,
	}, nil
}

func toHTTPRequest(ctx context.Context, req events.LambdaFunctionURLRequest) (*http.Request, error) {
	body := req.Body
	if req.IsBase64Encoded {
		decoded, err := base64.StdEncoding.DecodeString(body)
		if err != nil {
			return nil, fmt.Errorf("handler: decode lambda body: %w", err)
		}
		body = string(decoded)
	}

	path := req.RawPath
	if path == "" {
		path = "/"
	}
	u := &url.URL{Path: path, RawQuery: req.RawQueryString}
	method := req.RequestContext.HTTP.Method
	if method == "" {
		method = http.MethodGet
	}

	httpReq, err := http.NewRequestWithContext(ctx, method, u.String(), strings.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("handler: build request: %w", err)
	}
	for k, v := range req.Headers {
		httpReq.Header.Set(k, v)
	}
	for _, c := range req.Cookies {
		httpReq.Header.Add("Cookie", c)
	}
	httpReq.RemoteAddr = req.RequestContext.HTTP.SourceIP
	httpReq.Host = req.RequestContext.DomainName
	return httpReq, nil
}

func flattenHeaders(h http.Header) map[string]string {
	out := make(map[string]string, len(h))
	for k, vs := range h {
		if k == "Set-Cookie" || len(vs) == 0 {
			continue
		}
		out[k] = strings.Join(vs, ",")
	}
	return out
}

// pipeWriter is an http.ResponseWriter whose body is an io.Pipe. Headers
// are frozen on the first WriteHeader or Write.
type pipeWriter struct {
	header    http.Header
	snapshot  http.Header
	body      *io.PipeWriter
	status    int
	committed chan struct{}
	once      sync.Once
}

func newPipeWriter(body *io.PipeWriter) *pipeWriter {
	return &pipeWriter{header: http.Header{}, body: body, committed: make(chan struct{})}
}

func (w *pipeWriter) Header() http.Header { return w.header }

func (w *pipeWriter) WriteHeader(status int) {
	w.commit(status)
}

func (w *pipeWriter) commit(status int) {
	w.once.Do(func() {
		w.status = status
		w.snapshot = w.header.Clone()
		close(w.committed)
	})
}

func (w *pipeWriter) Write(p []byte) (int, error) {
	w.commit(http.StatusOK)
	return w.body.Write(p)
}

// Flush is a no-op: pipe writes reach the reader before Write returns.
func (w *pipeWriter) Flush() {}
