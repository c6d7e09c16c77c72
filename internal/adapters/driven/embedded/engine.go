package embedded

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"sync"

	"github.com/custodia-labs/schemasync/internal/core/ports/driven"
	"github.com/custodia-labs/schemasync/internal/logger"
	"github.com/custodia-labs/schemasync/internal/schemacodec"
)

// Ensure Engine implements the interface.
var _ driven.SchemaTransport = (*Engine)(nil)

// ErrClosed is returned by requests made after Close.
var ErrClosed = errors.New("embedded: engine closed")

// Stats counts requests received by the engine.
type Stats struct {
	Reads   int
	Updates int
}

// Option configures an Engine.
type Option func(*Engine)

// WithCollections restricts the engine to the named collections.
// Requests for any other collection receive a 404 response.
func WithCollections(names ...string) Option {
	return func(e *Engine) {
		e.allowed = make(map[string]bool, len(names))
		for _, n := range names {
			e.allowed[n] = true
		}
	}
}

// WithProtectedFields adds field names that can never be deleted.
// The seed's uniqueKey field is always protected.
func WithProtectedFields(names ...string) Option {
	return func(e *Engine) {
		for _, n := range names {
			e.protected[n] = true
		}
	}
}

// Engine is an in-process schema engine. Every collection starts from the
// seed document and evolves independently.
type Engine struct {
	mu          sync.RWMutex
	seed        schemacodec.Document
	collections map[string]*collectionState
	allowed     map[string]bool
	protected   map[string]bool
	stats       Stats
	closed      bool
}

// NewEngine creates an engine seeded from doc.
func NewEngine(seed schemacodec.Document, opts ...Option) *Engine {
	e := &Engine{
		seed:        seed,
		collections: make(map[string]*collectionState),
		protected:   map[string]bool{"_version_": true},
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

var (
	sharedOnce   sync.Once
	sharedEngine *Engine
)

// Shared returns a process-wide engine seeded with DefaultSeed. Tests that
// share it must call Reset before use.
func Shared() *Engine {
	sharedOnce.Do(func() {
		sharedEngine = NewEngine(DefaultSeed())
	})
	return sharedEngine
}

// Reset discards all changes; every collection returns to the seed state.
func (e *Engine) Reset() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.collections = make(map[string]*collectionState)
	e.stats = Stats{}
	e.closed = false
}

// Stats returns the request counters.
func (e *Engine) Stats() Stats {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.stats
}

// Read serves GET /{collection}/schema{path}.
func (e *Engine) Read(ctx context.Context, collection, path string) (*driven.SchemaResponse, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	if e.closed {
		return nil, ErrClosed
	}
	e.stats.Reads++

	st, resp := e.lookup(collection)
	if resp != nil {
		return resp, nil
	}

	logger.Debug("embedded: read %s%s", collection, path)

	path = strings.TrimSuffix(path, "/")
	switch {
	case path == "":
		return okResponse(map[string]any{"schema": st.document()}), nil
	case path == "/name":
		return okResponse(map[string]any{"name": st.name}), nil
	case path == "/version":
		return okResponse(map[string]any{"version": st.version}), nil
	case path == "/uniquekey":
		return okResponse(map[string]any{"uniqueKey": st.uniqueKey}), nil
	case path == "/fields":
		return okResponse(map[string]any{"fields": st.fields}), nil
	case strings.HasPrefix(path, "/fields/"):
		name := strings.TrimPrefix(path, "/fields/")
		if i := st.fieldIndex(name); i >= 0 {
			return okResponse(map[string]any{"field": st.fields[i]}), nil
		}
		return errorResponse(http.StatusNotFound, "No such path "+path, nil), nil
	case path == "/copyfields":
		return okResponse(map[string]any{"copyFields": st.document().CopyFields}), nil
	case path == "/fieldtypes":
		return okResponse(map[string]any{"fieldTypes": st.fieldTypes}), nil
	case path == "/dynamicfields":
		return okResponse(map[string]any{"dynamicFields": st.dynamicFields}), nil
	default:
		return errorResponse(http.StatusNotFound, "No such path "+path, nil), nil
	}
}

// Update serves POST /{collection}/schema. All commands in a payload are
// applied together or not at all.
func (e *Engine) Update(ctx context.Context, collection string, payload []byte) (*driven.SchemaResponse, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	if e.closed {
		return nil, ErrClosed
	}
	e.stats.Updates++

	st, resp := e.lookup(collection)
	if resp != nil {
		return resp, nil
	}

	cmds, err := parseCommands(payload)
	if err != nil {
		return errorResponse(http.StatusBadRequest, err.Error(), nil), nil
	}

	work := st.clone()
	var details []map[string]any
	for _, cmd := range cmds {
		if msgs := work.apply(cmd, e.protected); len(msgs) > 0 {
			details = append(details, map[string]any{
				cmd.name:        cmd.raw,
				"errorMessages": msgs,
			})
		}
	}
	if len(details) > 0 {
		logger.Debug("embedded: rejected update on %s: %d failing command(s)", collection, len(details))
		return errorResponse(http.StatusBadRequest, "error processing commands", details), nil
	}

	e.collections[collection] = work
	logger.Debug("embedded: applied %d command(s) on %s", len(cmds), collection)
	return okResponse(nil), nil
}

// Close makes subsequent requests fail with ErrClosed.
func (e *Engine) Close() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.closed = true
	return nil
}

// lookup returns the collection state, creating it from the seed on first use.
// Caller must hold the write lock.
func (e *Engine) lookup(collection string) (*collectionState, *driven.SchemaResponse) {
	if collection == "" || (e.allowed != nil && !e.allowed[collection]) {
		return nil, errorResponse(http.StatusNotFound, "Can not find: /solr/"+collection+"/schema", nil)
	}
	st, ok := e.collections[collection]
	if !ok {
		st = newCollectionState(e.seed)
		e.collections[collection] = st
	}
	return st, nil
}

func okResponse(body map[string]any) *driven.SchemaResponse {
	if body == nil {
		body = make(map[string]any)
	}
	body["responseHeader"] = map[string]any{"status": 0, "QTime": 0}
	return encodeResponse(http.StatusOK, body)
}

func errorResponse(status int, msg string, details []map[string]any) *driven.SchemaResponse {
	errBody := map[string]any{
		"msg":  msg,
		"code": status,
	}
	if len(details) > 0 {
		errBody["details"] = details
	}
	return encodeResponse(status, map[string]any{
		"responseHeader": map[string]any{"status": status, "QTime": 0},
		"error":          errBody,
	})
}

func encodeResponse(status int, body map[string]any) *driven.SchemaResponse {
	data, err := json.Marshal(body)
	if err != nil {
		data = []byte(`{"error":{"msg":"response encoding failed","code":500}}`)
		status = http.StatusInternalServerError
	}
	return &driven.SchemaResponse{StatusCode: status, Body: data}
}
