package errors

// Code classifies an error
type Code string

// Error codes
const (
	CodeOK                 Code = "OK"
	CodeCanceled           Code = "CANCELED"
	CodeInvalidArgument    Code = "INVALID_ARGUMENT"
	CodeNotFound           Code = "NOT_FOUND"
	CodeAlreadyExists      Code = "ALREADY_EXISTS"
	CodeFailedPrecondition Code = "FAILED_PRECONDITION"
	CodeUnimplemented      Code = "UNIMPLEMENTED"
	CodeInternal           Code = "INTERNAL"
)

// String returns the string representation of the code
func (c Code) String() string {
	return string(c)
}

// UserFacing reports whether the message of an error with this code is fit
// to show a player, e.g. a malformed dice formula typed into a sheet.
func (c Code) UserFacing() bool {
	switch c {
	case CodeInvalidArgument, CodeNotFound, CodeAlreadyExists, CodeFailedPrecondition:
		return true
	default:
		return false
	}
}
