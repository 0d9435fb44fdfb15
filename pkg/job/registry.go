// SPDX-License-Identifier: Apache-2.0

package job

import (
	"sync"

	"github.com/oragres/migrator/pkg/migerr"
)

// registryKey is the (database, operationKind) dispatch key.
type registryKey struct {
	Database DatabaseTag
	Kind     OperationKind
}

// Registry maps (databaseTag, operationKind) to a Factory. The mapping is
// populated once at startup from a static table (see cmd.NewRegistry)
// rather than through runtime polymorphism across many extractor/creator
// classes.
type Registry struct {
	mu        sync.RWMutex
	factories map[registryKey]Factory
}

// NewRegistry returns an empty Registry.
func NewRegistry() *Registry {
	return &Registry{factories: make(map[registryKey]Factory)}
}

// Register installs the factory for (database, kind). Re-registering the
// same key overwrites the previous factory, matching the "static table
// populated at startup" contract — callers register once at process init.
func (r *Registry) Register(database DatabaseTag, kind OperationKind, factory Factory) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.factories[registryKey{Database: database, Kind: kind}] = factory
}

// CreateJob returns a Job for (database, kind), or an
// UnknownOperationError when no factory is registered.
func (r *Registry) CreateJob(database DatabaseTag, kind OperationKind, arg any) (Job, error) {
	r.mu.RLock()
	factory, ok := r.factories[registryKey{Database: database, Kind: kind}]
	r.mu.RUnlock()

	if !ok {
		return nil, migerr.UnknownOperationError{Database: string(database), Kind: string(kind)}
	}
	return factory(arg)
}
