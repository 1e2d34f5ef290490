// internal/di/container.go
package di

import (
	"sort"
	"sync"
)

// Container is a named-service registry.
type Container struct {
	services map[string]interface{}
	order    []string
	mutex    sync.RWMutex
}

var (
	globalContainer *Container
	once            sync.Once
)

// NewContainer creates an empty container
func NewContainer() *Container {
	return &Container{
		services: make(map[string]interface{}),
	}
}

// GetContainer returns the process-wide container
func GetContainer() *Container {
	once.Do(func() {
		globalContainer = NewContainer()
	})
	return globalContainer
}

// Register stores service under name, replacing any previous one
func (c *Container) Register(name string, service interface{}) {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	if _, exists := c.services[name]; !exists {
		c.order = append(c.order, name)
	}
	c.services[name] = service
}

// Get returns the service registered under name, or nil
func (c *Container) Get(name string) interface{} {
	c.mutex.RLock()
	defer c.mutex.RUnlock()

	return c.services[name]
}

// GetTyped returns the service or defaultVal when it is missing
func (c *Container) GetTyped(name string, defaultVal interface{}) interface{} {
	service := c.Get(name)
	if service == nil {
		return defaultVal
	}
	return service
}

// Has reports whether name is registered
func (c *Container) Has(name string) bool {
	c.mutex.RLock()
	defer c.mutex.RUnlock()

	_, exists := c.services[name]
	return exists
}

// Remove unregisters name
func (c *Container) Remove(name string) {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	delete(c.services, name)
	for i, n := range c.order {
		if n == name {
			c.order = append(c.order[:i], c.order[i+1:]...)
			break
		}
	}
}

// Clear removes every service
func (c *Container) Clear() {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	c.services = make(map[string]interface{})
	c.order = nil
}

// GetNames returns the registered names, sorted
func (c *Container) GetNames() []string {
	c.mutex.RLock()
	defer c.mutex.RUnlock()

	names := make([]string, 0, len(c.services))
	for name := range c.services {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Shutdown stops services in reverse registration order. Services may
// implement Stop() or Shutdown().
func (c *Container) Shutdown() {
	c.mutex.RLock()
	names := append([]string(nil), c.order...)
	services := make([]interface{}, 0, len(names))
	for _, name := range names {
		services = append(services, c.services[name])
	}
	c.mutex.RUnlock()

	for i := len(services) - 1; i >= 0; i-- {
		switch s := services[i].(type) {
		case interface{ Shutdown() }:
			s.Shutdown()
		case interface{ Stop() }:
			s.Stop()
		}
	}
}
