package gateway

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/go-faster/errors"
	"golang.org/x/sync/singleflight"
)

// ScriptState tracks the lifecycle of the externally hosted checkout script.
type ScriptState int32

const (
	ScriptNotLoaded ScriptState = iota
	ScriptLoading
	ScriptLoaded
	ScriptFailed
)

func (s ScriptState) String() string {
	switch s {
	case ScriptNotLoaded:
		return "not_loaded"
	case ScriptLoading:
		return "loading"
	case ScriptLoaded:
		return "loaded"
	case ScriptFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// ScriptLoader fetches the gateway checkout script exactly once per process.
// Load is idempotent: concurrent calls are collapsed into a single fetch and
// later calls return the cached result. The loader never re-fetches after a
// terminal Loaded or Failed state, mirroring one-shot script injection.
type ScriptLoader struct {
	url    string
	client *http.Client
	group  singleflight.Group

	mu      sync.Mutex
	state   ScriptState
	loadErr error
}

// NewScriptLoader creates a loader for the script at url.
func NewScriptLoader(url string) *ScriptLoader {
	return &ScriptLoader{
		url: url,
		client: &http.Client{
			Timeout: 15 * time.Second,
		},
	}
}

// State returns the current script lifecycle state.
func (l *ScriptLoader) State() ScriptState {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.state
}

// Load fetches the checkout script if it has not been fetched yet. It returns
// nil once the script is loaded, or the load error recorded for this process.
func (l *ScriptLoader) Load(ctx context.Context) error {
	_, err, _ := l.group.Do("load", func() (interface{}, error) {
		l.mu.Lock()
		switch l.state {
		case ScriptLoaded:
			l.mu.Unlock()
			return nil, nil
		case ScriptFailed:
			err := l.loadErr
			l.mu.Unlock()
			return nil, err
		}
		l.state = ScriptLoading
		l.mu.Unlock()

		err := l.fetch(ctx)

		l.mu.Lock()
		if err != nil {
			l.state = ScriptFailed
			l.loadErr = err
		} else {
			l.state = ScriptLoaded
		}
		l.mu.Unlock()
		return nil, err
	})
	return err
}

func (l *ScriptLoader) fetch(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, l.url, nil)
	if err != nil {
		return errors.Wrap(err, "build script request")
	}

	resp, err := l.client.Do(req)
	if err != nil {
		return errors.Wrap(err, "fetch checkout script")
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return errors.Errorf("fetch checkout script: unexpected status %d", resp.StatusCode)
	}
	return nil
}
