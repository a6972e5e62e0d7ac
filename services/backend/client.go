package backendapi

import (
	"context"
	"encoding/json"
	"net/http"
	"net/url"
	"reflect"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/sendgrid/rest"

	"github.com/trezcool/mrejesho/core"
)

const defaultTimeout = 15 * time.Second

var (
	requestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "mrejesho_backend_requests_total",
		Help: "Requests sent to the feedback backend, by endpoint and status code.",
	}, []string{"endpoint", "code"})

	requestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "mrejesho_backend_request_duration_seconds",
		Help:    "Latency of the feedback backend requests, by endpoint.",
		Buckets: prometheus.DefBuckets,
	}, []string{"endpoint"})

	// checks the shape of decoded responses
	shape = validator.New()
)

// Client is a typed client of the feedback backend REST API.
type Client struct {
	baseURL string
	rc      *rest.Client
}

func NewClient(conf core.BackendConfig) *Client {
	timeout := conf.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return &Client{
		baseURL: strings.TrimRight(conf.BaseURL, "/"),
		rc:      &rest.Client{HTTPClient: &http.Client{Timeout: timeout}},
	}
}

// call describes one backend request.
// endpoint is the route template, used to label metrics and errors.
type call struct {
	endpoint    string
	method      rest.Method
	path        string
	token       string
	query       map[string]string
	body        interface{}
	raw         []byte
	contentType string
}

func get(endpoint, path string) call {
	return call{endpoint: endpoint, method: rest.Get, path: path}
}

func post(endpoint, path string, body interface{}) call {
	return call{endpoint: endpoint, method: rest.Post, path: path, body: body}
}

func upload(endpoint, path string, body []byte, contentType string) call {
	return call{endpoint: endpoint, method: rest.Post, path: path, raw: body, contentType: contentType}
}

func put(endpoint, path string, body interface{}) call {
	return call{endpoint: endpoint, method: rest.Put, path: path, body: body}
}

func del(endpoint, path string) call {
	return call{endpoint: endpoint, method: rest.Delete, path: path}
}

func (c call) auth(token string) call {
	c.token = token
	return c
}

func (c call) params(kv ...string) call {
	c.query = make(map[string]string, len(kv)/2)
	for i := 0; i+1 < len(kv); i += 2 {
		c.query[kv[i]] = kv[i+1]
	}
	return c
}

// pathf joins escaped path segments.
func pathf(segments ...interface{}) string {
	parts := make([]string, 0, len(segments))
	for _, s := range segments {
		switch v := s.(type) {
		case int:
			parts = append(parts, strconv.Itoa(v))
		case string:
			parts = append(parts, url.PathEscape(v))
		}
	}
	return strings.Join(parts, "/")
}

// do sends c and decodes the response body into out (if not nil), checking its shape.
func (cl *Client) do(ctx context.Context, c call, out interface{}) error {
	req := rest.Request{
		Method:      c.method,
		BaseURL:     cl.baseURL + "/" + strings.TrimLeft(c.path, "/"),
		Headers:     map[string]string{"Accept": "application/json"},
		QueryParams: c.query,
	}
	if c.token != "" {
		req.Headers["Authorization"] = "Bearer " + c.token
	}
	switch {
	case c.raw != nil:
		req.Body = c.raw
		req.Headers["Content-Type"] = c.contentType
	case c.body != nil:
		body, err := json.Marshal(c.body)
		if err != nil {
			return errors.Wrapf(err, "encoding %s request", c.endpoint)
		}
		req.Body = body
		req.Headers["Content-Type"] = "application/json"
	}

	start := time.Now()
	res, err := cl.rc.SendWithContext(ctx, req)
	requestDuration.WithLabelValues(c.endpoint).Observe(time.Since(start).Seconds())
	if err != nil {
		requestsTotal.WithLabelValues(c.endpoint, "error").Inc()
		return errors.Wrapf(err, "calling %s", c.endpoint)
	}
	requestsTotal.WithLabelValues(c.endpoint, strconv.Itoa(res.StatusCode)).Inc()

	if res.StatusCode >= http.StatusBadRequest {
		return statusError(c.endpoint, res.StatusCode, []byte(res.Body))
	}
	if out == nil {
		return nil
	}
	return decode(c.endpoint, []byte(res.Body), out)
}

func decode(endpoint string, body []byte, out interface{}) error {
	if err := json.Unmarshal(body, out); err != nil {
		return &SchemaError{Endpoint: endpoint, Err: err}
	}
	if err := checkShape(out); err != nil {
		return &SchemaError{Endpoint: endpoint, Err: err}
	}
	return nil
}

// checkShape validates the struct tags of v, or of each element when v is a slice.
func checkShape(v interface{}) error {
	rv := reflect.Indirect(reflect.ValueOf(v))
	switch rv.Kind() {
	case reflect.Struct:
		return shape.Struct(rv.Interface())
	case reflect.Slice:
		for i := 0; i < rv.Len(); i++ {
			if err := checkShape(rv.Index(i).Interface()); err != nil {
				return itemErr(i, err)
			}
		}
	}
	return nil
}

// errorMessage extracts the message of an error response, which may be JSON or plain text.
func errorMessage(body []byte) string {
	var payload struct {
		Message string `json:"message"`
		Error   string `json:"error"`
		Title   string `json:"title"`
	}
	if err := json.Unmarshal(body, &payload); err == nil {
		for _, msg := range []string{payload.Message, payload.Error, payload.Title} {
			if msg = strings.TrimSpace(msg); msg != "" {
				return msg
			}
		}
		return ""
	}
	msg := strings.TrimSpace(string(body))
	if len(msg) > 200 || strings.HasPrefix(msg, "<") {
		return ""
	}
	return msg
}
