package errors

// ErrorResponse represents the standard error response structure
type ErrorResponse struct {
	Success bool        `json:"success"`
	Error   ErrorDetail `json:"error"`
}

// ErrorDetail contains error information
type ErrorDetail struct {
	// Code is the machine readable code of the sentinel the error was marked with
	Code    string         `json:"code,omitempty"`
	Display string         `json:"message"`
	Details map[string]any `json:"details,omitempty"`
}

// CodeFromErr returns the code of the first known sentinel the error is marked with
func CodeFromErr(err error) string {
	for _, sc := range statusCodes {
		if ie, ok := sc.err.(*InternalError); ok && Is(err, sc.err) {
			return ie.Code
		}
	}
	return ErrCodeSystemError
}
