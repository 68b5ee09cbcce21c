package apperrors

import "fmt"

var (
	ErrSilentFailure = New(KindSilentFailure, "silent_failure",
		"Product creation failed - database returned no data. Please check your permissions.", nil)
	ErrBranchMissing   = Validation("branch_missing", "Branch ID is missing. Please refresh and try again.", nil)
	ErrSystemBusy      = New(KindBusy, "system_busy", "System busy, please try again later", nil)
	ErrUnauthenticated = New(KindUnauthenticated, "unauthenticated", "Unable to authenticate request", nil)
	ErrBadRequest      = Validation("bad_request", "Unable to parse request", nil)
)

func ProductNotFound(id string) *Error {
	return NotFound("product_not_found", id, fmt.Sprintf("Product with ID %q not found", id))
}

func VariantNotFound(id string) *Error {
	return NotFound("variant_not_found", id, fmt.Sprintf("Variant with ID %q not found", id))
}

func CategoryNotFound(id string) *Error {
	return NotFound("category_not_found", id, fmt.Sprintf("Category with ID %q not found", id))
}

func ImageNotFound(id string) *Error {
	return NotFound("image_not_found", id, fmt.Sprintf("Image with ID %q not found", id))
}

func FieldInvalid(field, rule string) *Error {
	e := Validation("field_invalid", fmt.Sprintf("%s is invalid: %s", field, rule),
		map[string]interface{}{"Field": field, "Rule": rule})
	e.Field = field
	return e
}

// Notice is a non-fatal message returned next to a successful result.
type Notice struct {
	MessageID string                 `json:"message_id"`
	Message   string                 `json:"message"`
	Data      map[string]interface{} `json:"data,omitempty"`
}

// AsNotice downgrades an error to a notice, keeping its message.
func AsNotice(err error) Notice {
	if appErr, ok := As(err); ok {
		return Notice{MessageID: appErr.MessageID, Message: appErr.Message, Data: appErr.Data}
	}
	return Notice{MessageID: "generic_error", Message: err.Error(), Data: map[string]interface{}{"Reason": err.Error()}}
}
