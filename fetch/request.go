// Package fetch tracks the lifecycle of a JSON request as observable state.
//
// A Request moves idle → loading → success or error on every Execute. The
// outcome is published through individual state signals so views can bind to
// just the fields they render. Failures never surface as returned errors; they
// are reported through IsError, ErrorMessage and Err.
package fetch

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"sync/atomic"

	json "github.com/goccy/go-json"
	"github.com/oklog/ulid/v2"
	"github.com/rs/zerolog"

	"github.com/odvcencio/furrykit/state"
)

// Result is a point-in-time copy of a Request's fields.
type Result[T any] struct {
	RequestID    string
	Data         *T
	Status       int
	IsLoading    bool
	IsSuccess    bool
	IsError      bool
	ErrorMessage string
	Err          error
}

// Request tracks one outstanding request at a time.
//
// Calling Execute while a previous call is still in flight restarts the
// tracked state; the earlier call's outcome is discarded when it settles.
// Listeners run on the goroutine that calls Execute and must not call Execute
// synchronously; route them through a state.Scheduler instead.
type Request[T any] struct {
	client  Doer
	logger  zerolog.Logger
	baseURL string

	seq atomic.Uint64
	mu  sync.Mutex

	requestID    *state.Signal[string]
	data         *state.Signal[*T]
	status       *state.Signal[int]
	isLoading    *state.Signal[bool]
	isSuccess    *state.Signal[bool]
	isError      *state.Signal[bool]
	errorMessage *state.Signal[string]
	err          *state.Signal[error]
	revision     *state.Signal[uint64]
}

// New creates an idle Request. The default transport is http.DefaultClient.
func New[T any](opts ...Option) *Request[T] {
	cfg := config{
		client: http.DefaultClient,
		logger: zerolog.Nop(),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(&cfg)
		}
	}
	return &Request[T]{
		client:       cfg.client,
		logger:       cfg.logger.With().Str("component", "fetch").Logger(),
		baseURL:      cfg.baseURL,
		requestID:    state.NewComparableSignal(""),
		data:         state.NewSignal[*T](nil),
		status:       state.NewComparableSignal(0),
		isLoading:    state.NewComparableSignal(false),
		isSuccess:    state.NewComparableSignal(false),
		isError:      state.NewComparableSignal(false),
		errorMessage: state.NewComparableSignal(""),
		err:          state.NewSignal[error](nil),
		revision:     state.NewComparableSignal[uint64](0),
	}
}

// Data is the last decoded body, nil when absent.
func (r *Request[T]) Data() state.Readable[*T] { return r.data }

// Status is the last status code received, 0 until a response arrives.
func (r *Request[T]) Status() state.Readable[int] { return r.status }

// IsLoading is true while an Execute call is in flight.
func (r *Request[T]) IsLoading() state.Readable[bool] { return r.isLoading }

// IsSuccess is true after a call decoded its body.
func (r *Request[T]) IsSuccess() state.Readable[bool] { return r.isSuccess }

// IsError is true after a call failed.
func (r *Request[T]) IsError() state.Readable[bool] { return r.isError }

// ErrorMessage is empty unless IsError is true.
func (r *Request[T]) ErrorMessage() state.Readable[string] { return r.errorMessage }

// Err holds the failure: *TransportError, *HTTPStatusError or *DecodeError,
// or ErrMissingURL when Execute was called without a URL.
func (r *Request[T]) Err() state.Readable[error] { return r.err }

// RequestID identifies the execution the fields currently describe.
func (r *Request[T]) RequestID() state.Readable[string] { return r.requestID }

// Subscribe notifies fn once per state transition.
func (r *Request[T]) Subscribe(fn func()) func() {
	return r.revision.Subscribe(fn)
}

// SubscribeWithScheduler notifies fn once per state transition using scheduler.
func (r *Request[T]) SubscribeWithScheduler(scheduler state.Scheduler, fn func()) func() {
	return r.revision.SubscribeWithScheduler(scheduler, fn)
}

// Snapshot copies the current fields.
func (r *Request[T]) Snapshot() Result[T] {
	return Result[T]{
		RequestID:    r.requestID.Get(),
		Data:         r.data.Get(),
		Status:       r.status.Get(),
		IsLoading:    r.isLoading.Get(),
		IsSuccess:    r.isSuccess.Get(),
		IsError:      r.isError.Get(),
		ErrorMessage: r.errorMessage.Get(),
		Err:          r.err.Get(),
	}
}

// Execute performs exactly one request and blocks until it settles.
// The returned Result describes this call even if a newer call has since
// taken over the tracked state.
func (r *Request[T]) Execute(ctx context.Context, opts Options) (result Result[T]) {
	if ctx == nil {
		ctx = context.Background()
	}
	id := ulid.Make().String()
	seq := r.begin(id)
	result = Result[T]{RequestID: id, IsLoading: true}

	log := r.logger.With().Str("request_id", id).Logger()
	method := opts.Method
	if method == "" {
		method = http.MethodGet
	}
	log.Debug().Str("method", method).Str("url", opts.URL).Msg("request started")

	defer func() {
		if p := recover(); p != nil {
			result = r.fail(seq, result, &TransportError{Err: fmt.Errorf("transport panic: %v", p)})
		}
		result.IsLoading = false
		r.finish(seq)
		if result.IsError {
			log.Warn().Int("status", result.Status).Str("error", result.ErrorMessage).Msg("request failed")
		} else {
			log.Debug().Int("status", result.Status).Msg("request succeeded")
		}
		if seq != r.seq.Load() {
			log.Debug().Msg("stale completion discarded")
		}
	}()

	if strings.TrimSpace(opts.URL) == "" {
		return r.fail(seq, result, ErrMissingURL)
	}

	req, err := r.newHTTPRequest(ctx, method, opts)
	if err != nil {
		return r.fail(seq, result, &TransportError{Err: err})
	}

	resp, err := r.client.Do(req)
	if err != nil {
		return r.fail(seq, result, &TransportError{Err: err})
	}
	defer resp.Body.Close()

	result.Status = resp.StatusCode
	r.apply(seq, func() { r.status.Set(resp.StatusCode) })

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return r.fail(seq, result, &HTTPStatusError{Status: resp.StatusCode})
	}

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return r.fail(seq, result, &DecodeError{Err: err})
	}
	data := new(T)
	if err := json.Unmarshal(raw, data); err != nil {
		return r.fail(seq, result, &DecodeError{Err: err})
	}

	result.Data = data
	result.IsSuccess = true
	r.apply(seq, func() {
		r.data.Set(data)
		r.isSuccess.Set(true)
	})
	return result
}

// begin resets the fields for a new execution and returns its sequence number.
func (r *Request[T]) begin(id string) uint64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	seq := r.seq.Add(1)
	r.requestID.Set(id)
	r.isLoading.Set(true)
	r.isSuccess.Set(false)
	r.isError.Set(false)
	r.errorMessage.Set("")
	r.err.Set(nil)
	r.data.Set(nil)
	r.status.Set(0)
	r.bumpLocked()
	return seq
}

func (r *Request[T]) fail(seq uint64, result Result[T], err error) Result[T] {
	msg := err.Error()
	if msg == "" {
		msg = unknownErrorMessage
	}
	result.IsError = true
	result.IsSuccess = false
	result.Data = nil
	result.ErrorMessage = msg
	result.Err = err
	r.apply(seq, func() {
		r.isSuccess.Set(false)
		r.data.Set(nil)
		r.isError.Set(true)
		r.errorMessage.Set(msg)
		r.err.Set(err)
	})
	return result
}

func (r *Request[T]) finish(seq uint64) {
	r.apply(seq, func() { r.isLoading.Set(false) })
}

// apply runs fn only while seq is the latest execution.
func (r *Request[T]) apply(seq uint64, fn func()) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if seq != r.seq.Load() {
		return
	}
	fn()
	r.bumpLocked()
}

func (r *Request[T]) bumpLocked() {
	r.revision.Update(func(v uint64) uint64 { return v + 1 })
}

func (r *Request[T]) newHTTPRequest(ctx context.Context, method string, opts Options) (*http.Request, error) {
	target, err := r.resolveURL(opts.URL, opts.Params)
	if err != nil {
		return nil, err
	}

	var body io.Reader
	if opts.Body != nil {
		encoded, err := json.Marshal(opts.Body)
		if err != nil {
			return nil, fmt.Errorf("encode body: %w", err)
		}
		body = bytes.NewReader(encoded)
	}

	req, err := http.NewRequestWithContext(ctx, method, target, body)
	if err != nil {
		return nil, err
	}
	for k, v := range opts.Headers {
		req.Header.Set(k, v)
	}
	if body != nil && req.Header.Get("Content-Type") == "" {
		req.Header.Set("Content-Type", "application/json")
	}
	return req, nil
}

func (r *Request[T]) resolveURL(raw string, params map[string]string) (string, error) {
	u, err := url.Parse(raw)
	if err != nil {
		return "", err
	}
	if r.baseURL != "" && !u.IsAbs() {
		base, err := url.Parse(r.baseURL)
		if err != nil {
			return "", fmt.Errorf("parse base URL: %w", err)
		}
		u = base.ResolveReference(u)
	}
	if len(params) > 0 {
		q := u.Query()
		for k, v := range params {
			q.Set(k, v)
		}
		u.RawQuery = q.Encode()
	}
	return u.String(), nil
}
