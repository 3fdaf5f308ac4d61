package adapters

import (
	"slices"
	"strings"
	"sync"

	serrors "github.com/diwise/resource-serializer/pkg/serialization/errors"
	"github.com/iancoleman/strcase"
	"github.com/samber/lo"
)

const (
	AttributesAdapter string = "attributes"
	JSONAdapter       string = "json"
	JSONAPIAdapter    string = "json_api"
	NullAdapter       string = "null"
)

type Registry struct {
	mu       sync.RWMutex
	adapters map[string]Adapter
}

func NewRegistry() *Registry {
	return &Registry{adapters: map[string]Adapter{}}
}

// NewDefaultRegistry returns a registry holding the built in adapters
func NewDefaultRegistry() *Registry {
	r := NewRegistry()

	r.adapters[AttributesAdapter] = Attributes{}
	r.adapters[JSONAdapter] = JSON{}
	r.adapters[JSONAPIAdapter] = NewJSONAPI()
	r.adapters[NullAdapter] = Null{}

	return r
}

// Normalize maps adapter names such as "JsonApi", "jsonApi" and "json_api"
// to the same registry key
func Normalize(name string) string {
	return strcase.ToSnake(strings.TrimSpace(name))
}

func (r *Registry) Register(name string, adapter Adapter) error {
	key := Normalize(name)
	if key == "" {
		return serrors.NewConfigurationError("adapters must be registered with a name")
	}

	if adapter == nil {
		return serrors.NewConfigurationError("adapter " + key + " can not be nil")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	r.adapters[key] = adapter

	return nil
}

func (r *Registry) Lookup(name string) (Adapter, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	adapter, ok := r.adapters[Normalize(name)]
	if !ok {
		return nil, serrors.NewUnknownAdapterError(name)
	}

	return adapter, nil
}

func (r *Registry) Delete(name string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	delete(r.adapters, Normalize(name))
}

// Names returns the registered adapter names in sorted order
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := lo.Keys(r.adapters)
	slices.Sort(names)

	return names
}
