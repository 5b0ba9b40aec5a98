package utils

// APIResponse is the envelope every endpoint answers with.
type APIResponse struct {
	Success          bool                `json:"success"`
	Message          string              `json:"message,omitempty"`
	Data             interface{}         `json:"data,omitempty"`
	Error            string              `json:"error,omitempty"`
	ValidationErrors map[string][]string `json:"validationErrors,omitempty"`
}

func SuccessResponse(message string, data interface{}) APIResponse {
	return APIResponse{Success: true, Message: message, Data: data}
}

func ErrorResponse(message string) APIResponse {
	return APIResponse{Success: false, Error: message}
}

func ValidationErrorResponse(fields map[string][]string) APIResponse {
	return APIResponse{Success: false, Error: "Validation failed", ValidationErrors: fields}
}
