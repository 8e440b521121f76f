package media

import "fmt"

// DecodeError reports a source that could not be read or used as media:
// unreadable file, no usable stream, or an override audio file whose
// duration disagrees with the video. Never retried.
type DecodeError struct {
	Path string
	Err  error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("decode %s: %v", e.Path, e.Err)
}

func (e *DecodeError) Unwrap() error {
	return e.Err
}
