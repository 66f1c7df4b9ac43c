package logging

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/rs/zerolog"
)

// New returns a console logger tagged with the given module name.
func New(module string) zerolog.Logger {
	return NewWithWriter(module, os.Stderr)
}

func NewWithWriter(module string, w io.Writer) zerolog.Logger {
	out := zerolog.ConsoleWriter{
		Out:           w,
		TimeFormat:    "15:04",
		PartsOrder:    []string{"time", "level", "module", "message"},
		FieldsExclude: []string{"module"},
	}

	out.FormatPartValueByName = func(i any, s string) string {
		if s == "module" && i != nil {
			return strings.ToUpper(fmt.Sprintf("%s", i))
		}
		return ""
	}

	out.FormatFieldName = func(i any) string {
		return fmt.Sprintf("\n         \033[30m- \033[36m%s: \033[0m", i)
	}

	out.FormatErrFieldName = func(i any) string {
		return fmt.Sprintf("\n         \033[30m- \033[31m%s: \033[0m", i)
	}

	return zerolog.New(out).
		With().
		Timestamp().
		Str("module", module).
		Logger()
}

// ParseLevel maps a config string onto a zerolog level, defaulting to info.
func ParseLevel(level string) zerolog.Level {
	l, err := zerolog.ParseLevel(strings.ToLower(strings.TrimSpace(level)))
	if err != nil || level == "" {
		return zerolog.InfoLevel
	}
	return l
}
