package hostx

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"
)

// Recorder is an in-memory Host. Adapters without a streaming response
// (lambdax, grpcx) buffer through it, and tests use it as a response sink.
type Recorder struct {
	mu      sync.Mutex
	ctx     context.Context
	path    string
	code    int
	body    []byte
	written bool
}

// NewRecorder creates a Recorder for a request path
func NewRecorder(ctx context.Context, path string) *Recorder {
	if ctx == nil {
		ctx = context.Background()
	}
	return &Recorder{ctx: ctx, path: path, code: http.StatusOK}
}

func (r *Recorder) Context() context.Context { return r.ctx }
func (r *Recorder) Path() string             { return r.path }

func (r *Recorder) Status(code int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.code = code
}

func (r *Recorder) JSON(body any) error {
	data, err := json.Marshal(body)
	if err != nil {
		return err
	}
	r.Write(data)
	return nil
}

// Write stores raw body bytes, replacing anything written before
func (r *Recorder) Write(data []byte) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.body = append([]byte(nil), data...)
	r.written = true
}

// Code returns the last status set
func (r *Recorder) Code() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.code
}

// Body returns the bytes written
func (r *Recorder) Body() []byte {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]byte(nil), r.body...)
}

// Written reports whether a body was written
func (r *Recorder) Written() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.written
}

// Decode unmarshals the written body into v
func (r *Recorder) Decode(v any) error {
	return json.Unmarshal(r.Body(), v)
}
