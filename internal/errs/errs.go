package errs

import "errors"

// Error kinds shared by the task engine, the credential gate and every
// surface that reports to the user. Wrap them with fmt.Errorf("%w: ...").
var (
	ErrValidation      = errors.New("validation error")
	ErrDuplicate       = errors.New("already exists")
	ErrNotFound        = errors.New("not found")
	ErrStorage         = errors.New("storage error")
	ErrAuth            = errors.New("invalid credentials")
	ErrExternalService = errors.New("external service error")
)

// Title returns a short heading for a user-facing notice about err
func Title(err error) string {
	switch {
	case err == nil:
		return "Success"
	case errors.Is(err, ErrValidation):
		return "Invalid input"
	case errors.Is(err, ErrDuplicate):
		return "Duplicate"
	case errors.Is(err, ErrNotFound):
		return "Not found"
	case errors.Is(err, ErrAuth):
		return "Login failed"
	case errors.Is(err, ErrStorage):
		return "Database error"
	case errors.Is(err, ErrExternalService):
		return "Delivery failed"
	}
	return "Error"
}
