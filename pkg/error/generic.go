package error

// GenericError is implemented by every typed error in the application.
// The recovery middleware and the REST handlers rely on it to translate
// domain failures into HTTP responses without switch-casing concrete types.
type GenericError interface {
	error
	ErrCode() string
	StatusCode() int
}
