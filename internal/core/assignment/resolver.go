package assignment

import (
	"fmt"
	"time"

	"github.com/baditaflorin/go_ab_runner/internal/core/domain"
	"github.com/baditaflorin/go_ab_runner/internal/ports"
)

// Stores groups the two storage backends an experiment may select.
type Stores struct {
	Cookie ports.KeyValueStore
	Local  ports.KeyValueStore
}

// Resolver looks up persisted assignments and draws new ones.
type Resolver struct {
	stores Stores
	random ports.RandomSource
	logger ports.Logger
}

// NewResolver creates a resolver over the given backends.
func NewResolver(stores Stores, random ports.RandomSource, logger ports.Logger) (*Resolver, error) {
	if stores.Cookie == nil || stores.Local == nil {
		return nil, fmt.Errorf("both cookie and local stores are required")
	}
	if random == nil {
		return nil, fmt.Errorf("random source is required")
	}
	return &Resolver{stores: stores, random: random, logger: logger}, nil
}

func (r *Resolver) storeFor(mode domain.StorageMode) ports.KeyValueStore {
	if mode == domain.StorageCookie {
		return r.stores.Cookie
	}
	return r.stores.Local
}

// Resolve returns the existing assignment for the experiment or creates one.
// The experiment must declare at least one variant.
func (r *Resolver) Resolve(exp domain.ExperimentDefinition) (domain.Assignment, error) {
	mode := exp.EffectiveStorage()
	store := r.storeFor(mode)
	key := exp.StorageKey()

	stored, found, err := store.Get(key)
	if err != nil {
		return domain.Assignment{}, fmt.Errorf("%w: key %s: %v", domain.ErrStorageRead, key, err)
	}

	if found && stored != "" {
		if v, ok := exp.FindVariant(stored); ok {
			return domain.Assignment{ExperimentID: exp.ID, Variant: v, Storage: mode}, nil
		}
		r.logger.Debug("Stored variant no longer declared, reassigning",
			"experiment", exp.ID,
			"stored_variant", stored,
		)
	}

	variant := exp.Variants[r.random.IntN(len(exp.Variants))]

	var ttl time.Duration
	if mode == domain.StorageCookie {
		ttl = exp.CookieLifetime()
	}
	if err := store.Set(key, variant.Name, ttl); err != nil {
		return domain.Assignment{}, fmt.Errorf("%w: key %s: %v", domain.ErrStorageWrite, key, err)
	}

	r.logger.Debug("Assigned variant",
		"experiment", exp.ID,
		"variant", variant.Name,
		"storage", string(mode),
	)

	return domain.Assignment{ExperimentID: exp.ID, Variant: variant, Storage: mode, Fresh: true}, nil
}
