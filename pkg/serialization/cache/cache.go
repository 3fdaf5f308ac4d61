// Package cache stores rendered attribute fragments keyed by entity type,
// identity and the fingerprint of the cacheable attribute subset.
package cache

import (
	"context"
	"fmt"
	"maps"
	"slices"
	"strings"

	"github.com/cespare/xxhash/v2"
	"github.com/diwise/resource-serializer/pkg/serialization/resources"
)

// Fragment is the attribute-only rendering of one entity
type Fragment map[string]any

func (f Fragment) Clone() Fragment {
	return maps.Clone(f)
}

// Store is a keyed fragment store. Get and Set are independent operations,
// implementations need to be safe for concurrent use.
type Store interface {
	Get(ctx context.Context, key string) (Fragment, bool, error)
	Set(ctx context.Context, key string, fragment Fragment) error
}

// Versioned objects contribute a version (i.e. an update timestamp) to their
// cache keys so that modified objects miss the cache
type Versioned interface {
	CacheVersion() string
}

// Key derives the fragment cache key of e
func Key(e resources.Entity) (string, error) {
	d := e.Descriptor()

	policy, ok := d.Cache()
	if !ok {
		return "", fmt.Errorf("%s does not declare a cache policy", d.TypeName())
	}

	id, err := e.ID()
	if err != nil {
		return "", fmt.Errorf("failed to read identity of %s: %w", d.TypeName(), err)
	}

	prefix := policy.Key
	if prefix == "" {
		prefix = d.TypeName()
	}

	if v, ok := e.Object().(Versioned); ok {
		id = id + "-" + v.CacheVersion()
	}

	return fmt.Sprintf("%s/%s/%016x", prefix, id, Fingerprint(d.CacheableAttributes())), nil
}

// Fingerprint hashes a set of attribute names independent of their order
func Fingerprint(attributes []string) uint64 {
	sorted := slices.Clone(attributes)
	slices.Sort(sorted)
	return xxhash.Sum64String(strings.Join(sorted, ","))
}
