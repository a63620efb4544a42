package infinitive

import "fmt"

// SchemaValidationError is returned when the zone config does not look like what we expect;
// no partially filled State is ever returned alongside it
type SchemaValidationError struct {
	Field  string
	Reason string
}

func (e *SchemaValidationError) Error() string {
	if e.Field == "" {
		return fmt.Sprintf("invalid zone config: %s", e.Reason)
	}
	return fmt.Sprintf("invalid zone config: %s: %s", e.Field, e.Reason)
}

// RemoteReadError is a non-2xx response to the GET
type RemoteReadError struct {
	Status     int
	StatusText string
}

func (e *RemoteReadError) Error() string {
	return fmt.Sprintf("fetchState failed (%d %s)", e.Status, e.StatusText)
}

// RemoteWriteError is a non-2xx response to the PUT
type RemoteWriteError struct {
	Status     int
	StatusText string
}

func (e *RemoteWriteError) Error() string {
	return fmt.Sprintf("setState failed (%d %s)", e.Status, e.StatusText)
}
