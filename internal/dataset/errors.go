package dataset

import (
	"errors"
	"fmt"
)

var (
	ErrConfiguration       = errors.New("invalid dataset configuration")
	ErrGenerationExhausted = errors.New("rectangle generation exhausted")
)

// ConfigError reports dimensions or counts that cannot produce a valid dataset.
// It is detected before any random draw is made.
type ConfigError struct {
	Num    int
	Width  int
	Height int
	Msg    string
}

func (e *ConfigError) Error() string {
	if e == nil {
		return ""
	}
	return fmt.Sprintf("%s: %s (num=%d, width=%d, height=%d)",
		ErrConfiguration.Error(), e.Msg, e.Num, e.Width, e.Height)
}

func (e *ConfigError) Unwrap() error { return ErrConfiguration }

// ExhaustedError reports a sample for which every attempt produced a square.
type ExhaustedError struct {
	Index    int
	Width    int
	Height   int
	Attempts int
}

func (e *ExhaustedError) Error() string {
	if e == nil {
		return ""
	}
	return fmt.Sprintf("%s: sample %d found no non-square rectangle in %d attempts on a %dx%d image",
		ErrGenerationExhausted.Error(), e.Index, e.Attempts, e.Width, e.Height)
}

func (e *ExhaustedError) Unwrap() error { return ErrGenerationExhausted }

func configErrorf(num, width, height int, format string, args ...any) error {
	return &ConfigError{Num: num, Width: width, Height: height, Msg: fmt.Sprintf(format, args...)}
}
