package platforms

import (
	"fmt"
	"sort"
	"sync"
	"time"

	"recruitsync_backend/internal/config"
)

// Factory builds a fresh client for one platform.
type Factory func() Client

// Registry maps a platform's stored name to its client factory. Adding a
// platform is one Register call.
type Registry struct {
	mu        sync.RWMutex
	factories map[string]Factory
}

func NewRegistry() *Registry {
	return &Registry{factories: make(map[string]Factory)}
}

// DefaultRegistry registers the built-in clients plus every configured feed.
func DefaultRegistry(feeds []config.FeedConfig) *Registry {
	r := NewRegistry()
	r.Register(LinkedInRecruiter, NewLinkedInClient)
	r.Register(Indeed, NewIndeedClient)
	r.Register(Handshake, NewHandshakeClient)
	r.Register(HeadHunter, NewHeadHunterClient)

	for _, feed := range feeds {
		feed := feed
		r.Register(feed.Name, func() Client {
			return NewFeedClient(feed.Name, feed.BaseURL, feed.TokenPrefix,
				time.Duration(feed.TimeoutSeconds)*time.Second)
		})
	}
	return r
}

// Register adds or replaces the factory for name.
func (r *Registry) Register(name string, factory Factory) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.factories[name] = factory
}

// Get returns a client for name or ErrUnsupportedPlatform.
func (r *Registry) Get(name string) (Client, error) {
	r.mu.RLock()
	factory, ok := r.factories[name]
	r.mu.RUnlock()

	if !ok || factory == nil {
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedPlatform, name)
	}
	return factory(), nil
}

func (r *Registry) HasSyncSupport(name string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.factories[name] != nil
}

// Names returns the registered platform names in sorted order.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.factories))
	for name := range r.factories {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
