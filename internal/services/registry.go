// Package services provides the typed service registry modules use to talk
// to each other.
//
// Each module defines a clean interface for its public API, registers its
// implementation during Init, and other modules resolve it through the
// registry instead of importing module packages directly. This keeps module
// boundaries clear and avoids circular dependencies.
package services

import (
	"fmt"
	"sync"
)

type serviceRegistry struct {
	mu       sync.RWMutex
	services map[string]interface{}
}

var globalRegistry = &serviceRegistry{
	services: make(map[string]interface{}),
}

// Register registers a service under the given name. Registering the same
// name twice is an error; tests use Reset between cases.
func Register[T any](name string, service T) error {
	globalRegistry.mu.Lock()
	defer globalRegistry.mu.Unlock()

	if _, exists := globalRegistry.services[name]; exists {
		return fmt.Errorf("service %q already registered", name)
	}
	globalRegistry.services[name] = service
	return nil
}

// Get retrieves a service by name with type safety.
func Get[T any](name string) (T, error) {
	globalRegistry.mu.RLock()
	defer globalRegistry.mu.RUnlock()

	var zero T
	service, exists := globalRegistry.services[name]
	if !exists {
		return zero, fmt.Errorf("service %q not found", name)
	}
	typed, ok := service.(T)
	if !ok {
		return zero, fmt.Errorf("service %q has wrong type", name)
	}
	return typed, nil
}

// MustGet retrieves a service and panics if it is unavailable. For use during
// initialization only.
func MustGet[T any](name string) T {
	service, err := Get[T](name)
	if err != nil {
		panic(fmt.Sprintf("required service not available: %v", err))
	}
	return service
}

// List returns all registered service names.
func List() []string {
	globalRegistry.mu.RLock()
	defer globalRegistry.mu.RUnlock()

	names := make([]string, 0, len(globalRegistry.services))
	for name := range globalRegistry.services {
		names = append(names, name)
	}
	return names
}

// Reset clears the registry. Used by tests.
func Reset() {
	globalRegistry.mu.Lock()
	defer globalRegistry.mu.Unlock()
	globalRegistry.services = make(map[string]interface{})
}
