package errors

import "encoding/json"

// ErrorResponse is the flat JSON form of an error.
// The cause chain is left out so store internals do not leak to callers.
type ErrorResponse struct {
	Code           string                 `json:"code"`
	Message        string                 `json:"message"`
	Classification string                 `json:"classification"`
	Context        map[string]interface{} `json:"context,omitempty"`
}

// ToJSON converts any error to an ErrorResponse. Returns nil if err is nil.
// Plain errors get CodeUnknown and their Error() text as message.
func ToJSON(err error) *ErrorResponse {
	if err == nil {
		return nil
	}

	resp := &ErrorResponse{
		Code:           string(GetCode(err)),
		Message:        err.Error(),
		Classification: string(GetClassification(err)),
	}

	var pe PlatformError
	if As(err, &pe) {
		resp.Message = pe.Message()
		resp.Context = pe.Context()
	}
	return resp
}

// MarshalJSON encodes a platformError as an ErrorResponse.
func (e *platformError) MarshalJSON() ([]byte, error) {
	data, err := json.Marshal(&ErrorResponse{
		Code:           string(e.code),
		Message:        e.message,
		Classification: string(e.classification),
		Context:        e.context,
	})
	if err != nil {
		return nil, Wrap(err, CodeInternal, "marshal error response")
	}
	return data, nil
}
