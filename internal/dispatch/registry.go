package dispatch

// Registry maps module names to their handlers. It is populated once at
// startup and read-only afterwards, so lookups need no locking.
type Registry struct {
	handlers map[string]Handler
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{handlers: make(map[string]Handler)}
}

// Register binds a module name to a handler. Later registrations for
// the same name replace earlier ones.
func (r *Registry) Register(module string, h Handler) {
	r.handlers[module] = h
}

// Lookup returns the handler for a module, if any.
func (r *Registry) Lookup(module string) (Handler, bool) {
	h, ok := r.handlers[module]
	return h, ok
}
