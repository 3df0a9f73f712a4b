package types

// Service is the contract implemented by every invocable stage action.
// A stage exposes named methods with statically typed input/output structs;
// the stage worker dispatches to them by name.
type Service interface {
	Name() string
	Methods() Signatures
	Method(name string) (Executable, error)
}
