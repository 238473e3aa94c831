// Package view shapes every JSON body the HTTP handlers return.
package view

type Response[T any] struct {
	Data    T              `json:"data"`
	Message string         `json:"message,omitempty"`
	Error   *ErrorResponse `json:"error,omitempty"`
}

type ErrorResponse struct {
	Message string   `json:"message"`
	Details []string `json:"details,omitempty"`
	Request any      `json:"request,omitempty"`
}

type MessageResponse struct {
	Message string `json:"message"`
}

// CreateResponse wraps data, or err when it is set. req is echoed back on
// errors so clients can see what was rejected.
func CreateResponse[T any](data T, err error, req any, message string) Response[T] {
	resp := Response[T]{
		Data:    data,
		Message: message,
	}
	if err == nil {
		return resp
	}

	resp.Error = &ErrorResponse{Message: err.Error()}
	if s, ok := req.(string); !ok || s != "" {
		resp.Error.Request = req
	}
	return resp
}

// CreateValidationResponse reports every violated rule of a request.
func CreateValidationResponse(details []string, req any, message string) Response[any] {
	return Response[any]{
		Message: message,
		Error: &ErrorResponse{
			Message: message,
			Details: details,
			Request: req,
		},
	}
}
