package mrs

// defaultRegistry is process-wide, mirroring the teacher's package-level
// pkg/jobs registry: a user program's package registers its functions from
// an init() function, and cmd/master, cmd/slave, and cmd/bypass all import
// the program packages for side effect and hand defaultRegistry to mrs.Run
// or internal/slave/app.Run.
var defaultRegistry = NewRegistry()

// RegisterProgram registers a named program against the process-wide
// default registry. Called from a user program package's init().
func RegisterProgram(name string, p Program) error {
	return defaultRegistry.RegisterProgram(name, p)
}

// Registered returns the process-wide default registry.
func Registered() *Registry {
	return defaultRegistry
}
