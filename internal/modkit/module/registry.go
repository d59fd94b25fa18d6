package module

import "sync"

var (
	mu  sync.RWMutex
	reg = map[string]any{}
)

// Register stores a port set under a module name
func Register(name string, ports any) {
	mu.Lock()
	reg[name] = ports
	mu.Unlock()
}

// RegisterModule stores m's ports under m's name
func RegisterModule(m Module) { Register(m.Name(), m.Ports()) }

// PortsAs fetches and type asserts the port set registered for name
func PortsAs[T any](name string) (T, bool) {
	mu.RLock()
	v, ok := reg[name]
	mu.RUnlock()
	if !ok {
		var zero T
		return zero, false
	}
	out, ok := v.(T)
	return out, ok
}

// Reset clears the registry for tests
func Reset() {
	mu.Lock()
	reg = map[string]any{}
	mu.Unlock()
}
