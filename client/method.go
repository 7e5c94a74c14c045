package client

import (
	"context"
	"encoding/json"
	"fmt"
	"reflect"
	"sort"
	"sync"

	"github.com/felixgeelhaar/rpc-go/schema"
)

// NoParams is used as the params type of methods that take none. The params
// member is then omitted from the envelope.
type NoParams struct{}

// Method is a typed descriptor for a remote method.
type Method[P, R any] struct {
	Name string
}

// NewMethod returns a descriptor for name.
func NewMethod[P, R any](name string) Method[P, R] {
	return Method[P, R]{Name: name}
}

// Call invokes the method on c and decodes the result.
func (m Method[P, R]) Call(ctx context.Context, c *Client, params P) (R, error) {
	var result R
	err := c.CallInto(ctx, &result, m.Name, paramsValue(params))
	return result, err
}

// Notify sends the method as a notification on c.
func (m Method[P, R]) Notify(ctx context.Context, c *Client, params P) error {
	return c.Notify(ctx, m.Name, paramsValue(params))
}

func paramsValue[P any](params P) any {
	if _, ok := any(params).(NoParams); ok {
		return nil
	}
	return params
}

// Signature describes the params and result of a method. A nil schema
// accepts anything.
type Signature struct {
	Params *schema.Schema
	Result *schema.Schema
}

// Registry maps method names to signatures. A client configured with a
// registry validates params before sending and results after classification.
// Registry is safe for concurrent use.
type Registry struct {
	// Strict rejects methods that are not registered.
	Strict bool

	mu      sync.RWMutex
	methods map[string]Signature
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		methods: make(map[string]Signature),
	}
}

// Add registers or replaces the signature for name.
func (r *Registry) Add(name string, sig Signature) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.methods == nil {
		r.methods = make(map[string]Signature)
	}
	r.methods[name] = sig
}

// Lookup returns the signature registered for name.
func (r *Registry) Lookup(name string) (Signature, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	sig, ok := r.methods[name]
	return sig, ok
}

// Methods returns the registered method names in sorted order.
func (r *Registry) Methods() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.methods))
	for name := range r.methods {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Register derives a signature from P and R, adds it to r and returns the
// typed descriptor.
func Register[P, R any](r *Registry, name string) (Method[P, R], error) {
	sig, err := signatureFor[P, R]()
	if err != nil {
		return Method[P, R]{}, fmt.Errorf("register %q: %w", name, err)
	}
	r.Add(name, sig)
	return NewMethod[P, R](name), nil
}

// MustRegister is like Register but panics on error.
func MustRegister[P, R any](r *Registry, name string) Method[P, R] {
	m, err := Register[P, R](r, name)
	if err != nil {
		panic(err)
	}
	return m
}

func signatureFor[P, R any]() (Signature, error) {
	var sig Signature

	if pt := reflect.TypeFor[P](); pt != reflect.TypeFor[NoParams]() {
		s, err := schema.GenerateFromType(pt)
		if err != nil {
			return Signature{}, fmt.Errorf("params: %w", err)
		}
		sig.Params = s
	}

	s, err := schema.GenerateFromType(reflect.TypeFor[R]())
	if err != nil {
		return Signature{}, fmt.Errorf("result: %w", err)
	}
	sig.Result = s

	return sig, nil
}

func (r *Registry) validateParams(method string, params json.RawMessage) error {
	if r == nil {
		return nil
	}
	sig, ok := r.Lookup(method)
	if !ok {
		if r.Strict {
			return fmt.Errorf("%w: %s", ErrUnknownMethod, method)
		}
		return nil
	}
	if sig.Params == nil || params == nil {
		return nil
	}
	if err := sig.Params.Validate(params); err != nil {
		return fmt.Errorf("%w: %s: %w", ErrInvalidParams, method, err)
	}
	return nil
}

func (r *Registry) validateResult(method string, result json.RawMessage) error {
	if r == nil {
		return nil
	}
	sig, ok := r.Lookup(method)
	if !ok || sig.Result == nil {
		return nil
	}
	if err := sig.Result.Validate(result); err != nil {
		return fmt.Errorf("%w: %s: %w", ErrInvalidResult, method, err)
	}
	return nil
}
