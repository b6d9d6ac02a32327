package instrument

import (
	"fmt"
	"sort"
	"sync"
)

// Registry holds named client instances so application code can look them up
// by the instance name they were configured with.
type Registry struct {
	mu      sync.RWMutex
	https   map[string]*HTTPClient
	brokers map[string]*BrokerClient
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		https:   make(map[string]*HTTPClient),
		brokers: make(map[string]*BrokerClient),
	}
}

// RegisterHTTP adds an HTTP client under its instance name.
func (r *Registry) RegisterHTTP(c *HTTPClient) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.https[c.Name()]; exists {
		return fmt.Errorf("%w: http %q", ErrDuplicateInstance, c.Name())
	}
	r.https[c.Name()] = c
	return nil
}

// HTTP looks up an HTTP client by instance name.
func (r *Registry) HTTP(name string) (*HTTPClient, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	c, ok := r.https[name]
	if !ok {
		return nil, fmt.Errorf("%w: http %q", ErrUnknownInstance, name)
	}
	return c, nil
}

// RegisterBroker adds a broker client under its instance name.
func (r *Registry) RegisterBroker(c *BrokerClient) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.brokers[c.Name()]; exists {
		return fmt.Errorf("%w: broker %q", ErrDuplicateInstance, c.Name())
	}
	r.brokers[c.Name()] = c
	return nil
}

// Broker looks up a broker client by instance name.
func (r *Registry) Broker(name string) (*BrokerClient, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	c, ok := r.brokers[name]
	if !ok {
		return nil, fmt.Errorf("%w: broker %q", ErrUnknownInstance, name)
	}
	return c, nil
}

// List returns all registered instance names, sorted, HTTP first.
func (r *Registry) List() (httpNames, brokerNames []string) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for name := range r.https {
		httpNames = append(httpNames, name)
	}
	for name := range r.brokers {
		brokerNames = append(brokerNames, name)
	}
	sort.Strings(httpNames)
	sort.Strings(brokerNames)
	return httpNames, brokerNames
}
