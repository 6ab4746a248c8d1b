package dto

// Validatable is implemented by request types that can validate themselves.
// The handler wrapper calls Validate after binding body, path and query
// parameters, before the handler runs.
type Validatable interface {
	Validate() error
}
