package apiclient

import "errors"

// Envelope is the wrapper every API endpoint returns. Status true implies no
// error; a missing Data is valid for commands that return no payload.
type Envelope[T any] struct {
	Status     bool   `json:"status"`
	Message    string `json:"message"`
	Data       *T     `json:"data,omitempty"`
	Error      bool   `json:"error,omitempty"`
	StatusCode int    `json:"statusCode,omitempty"`
}

// HasData reports whether the envelope carried a payload.
func (e *Envelope[T]) HasData() bool {
	return e != nil && e.Data != nil
}

// Result converts the envelope into a tagged result.
func (e *Envelope[T]) Result() Result[T] {
	if e == nil {
		return Err[T](&ApplicationError{Message: "empty envelope"})
	}
	if !e.Status || e.Error {
		return Err[T](&ApplicationError{Message: e.Message, StatusCode: e.StatusCode})
	}
	return Ok(e.Data)
}

// Result is either Ok with optional data or Err with an application failure.
type Result[T any] struct {
	data *T
	err  *ApplicationError
}

func Ok[T any](data *T) Result[T] {
	return Result[T]{data: data}
}

func Err[T any](err *ApplicationError) Result[T] {
	return Result[T]{err: err}
}

func (r Result[T]) IsOk() bool {
	return r.err == nil
}

// Data returns the payload of an Ok result; nil for Err or payload-less commands.
func (r Result[T]) Data() *T {
	return r.data
}

func (r Result[T]) Err() *ApplicationError {
	return r.err
}

// Resolve folds a call's return values into a Result. Application failures
// become Err results; transport failures stay errors since there is no
// response to describe.
func Resolve[T any](env *Envelope[T], err error) (Result[T], error) {
	if err != nil {
		var appErr *ApplicationError
		if errors.As(err, &appErr) {
			return Err[T](appErr), nil
		}
		return Result[T]{}, err
	}
	return env.Result(), nil
}
