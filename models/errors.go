package models

// ValidationError reports a field that failed a schema constraint. Param names
// the offending field so the API can return it in the response body.
type ValidationError struct {
	Param   string
	Message string
}

func (e *ValidationError) Error() string {
	return e.Param + ": " + e.Message
}
