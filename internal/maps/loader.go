// Package maps provides the map presentation adapter: the one-time load
// of the third-party map style and the render model served to clients.
package maps

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"sync"
	"time"
)

// ErrNoAPIKey is returned when no MapTiler API key is configured; the map
// degrades to a placeholder instead of crashing the application.
var ErrNoAPIKey = errors.New("map API key is not configured")

// loadState tracks the style load lifecycle.
type loadState int

const (
	stateUnloaded loadState = iota
	stateLoading
	stateLoaded
	stateFailed
)

// DefaultStyleURL is the MapTiler streets style endpoint; the API key is
// appended at request time.
const DefaultStyleURL = "https://api.maptiler.com/maps/streets-v2/style.json"

// Loader performs the one-time fetch of the map style document. All
// concurrent callers share a single in-flight load and every waiter
// observes the same outcome. A failed load leaves the loader in the
// failed state; the next Load call starts a fresh attempt.
type Loader struct {
	mu    sync.Mutex
	state loadState
	done  chan struct{}
	style []byte
	err   error

	apiKey   string
	styleURL string
	client   *http.Client
}

// NewLoader creates a loader for the given API key. An empty styleURL
// selects the default MapTiler style.
func NewLoader(apiKey, styleURL string, client *http.Client) *Loader {
	if styleURL == "" {
		styleURL = DefaultStyleURL
	}
	if client == nil {
		client = &http.Client{Timeout: 10 * time.Second}
	}
	return &Loader{
		apiKey:   apiKey,
		styleURL: styleURL,
		client:   client,
	}
}

// Load returns the style document, fetching it on first use. Concurrent
// callers during a fetch block until the shared attempt completes and all
// receive its result.
func (l *Loader) Load(ctx context.Context) ([]byte, error) {
	if l.apiKey == "" {
		return nil, ErrNoAPIKey
	}

	l.mu.Lock()
	switch l.state {
	case stateLoaded:
		style := l.style
		l.mu.Unlock()
		return style, nil
	case stateLoading:
		done := l.done
		l.mu.Unlock()
		select {
		case <-done:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
		l.mu.Lock()
		style, err := l.style, l.err
		l.mu.Unlock()
		return style, err
	}

	// Unloaded or failed: this caller owns a fresh attempt.
	l.state = stateLoading
	l.done = make(chan struct{})
	done := l.done
	l.mu.Unlock()

	style, err := l.fetch(ctx)

	l.mu.Lock()
	if err != nil {
		l.state = stateFailed
		l.err = err
		l.style = nil
	} else {
		l.state = stateLoaded
		l.err = nil
		l.style = style
	}
	close(done)
	l.mu.Unlock()

	return style, err
}

// Loaded reports whether the style has been fetched successfully.
func (l *Loader) Loaded() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.state == stateLoaded
}

func (l *Loader) fetch(ctx context.Context) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, l.styleURL+"?key="+l.apiKey, nil)
	if err != nil {
		return nil, fmt.Errorf("build style request: %w", err)
	}
	resp, err := l.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch map style: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("fetch map style: unexpected status %d", resp.StatusCode)
	}
	body, err := io.ReadAll(io.LimitReader(resp.Body, 4<<20))
	if err != nil {
		return nil, fmt.Errorf("read map style: %w", err)
	}
	return body, nil
}
