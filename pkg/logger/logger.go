package logx

import (
	"io"
	"os"

	"github.com/Fomkes/uae-water-delivery1-sub001/internal/core"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

var DefaultLoggerOpts = &LoggerOpts{
	Environment: core.Development,
}

type LoggerOpts struct {
	Environment core.Environment
	// Output overrides the destination. Nil means stdout (production) or a
	// console writer on stderr (everything else).
	Output io.Writer
}

func safe(opts ...LoggerOpts) *LoggerOpts {
	if len(opts) == 0 {
		return DefaultLoggerOpts
	}
	return &opts[0]
}

func Init(opts ...LoggerOpts) {
	o := safe(opts...)
	switch {
	case o.Environment == core.Production:
		out := o.Output
		if out == nil {
			out = os.Stdout
		}
		log.Logger = zerolog.New(out).With().Timestamp().Logger().Level(zerolog.InfoLevel)
	case o.Environment == core.Testing:
		log.Logger = zerolog.Nop()
	default:
		out := o.Output
		if out == nil {
			out = zerolog.NewConsoleWriter()
		}
		log.Logger = zerolog.New(out).With().Timestamp().Caller().Logger().Level(zerolog.DebugLevel)
	}
}

func Debug() *zerolog.Event {
	return log.Debug()
}

func Info() *zerolog.Event {
	return log.Info()
}

func Warn() *zerolog.Event {
	return log.Warn()
}

func Error() *zerolog.Event {
	return log.Error()
}

func Fatal() *zerolog.Event {
	return log.Fatal()
}
