package logger

import (
	constants "cartstore/pkg/config"
	"cartstore/pkg/lib/logger/handler/slogpretty"
	"errors"
	"io"

	"log/slog"
	"os"
)

func SetupLogger(env string) (*slog.Logger, error) {
	return setupLogger(env, os.Stdout)
}

func setupLogger(env string, out io.Writer) (*slog.Logger, error) {
	var log *slog.Logger

	switch env {
	case constants.EnvLocal:
		log = setupPrettySlog(out)
	case constants.EnvDev:
		log = slog.New(
			slog.NewJSONHandler(out, &slog.HandlerOptions{Level: slog.LevelDebug}),
		)
	case constants.EnvProd:
		log = slog.New(
			slog.NewJSONHandler(out, &slog.HandlerOptions{Level: slog.LevelInfo}),
		)
	default:
		return nil, errors.New("failed to init logger: wrong env variable")
	}

	return log, nil
}

func setupPrettySlog(out io.Writer) *slog.Logger {
	opts := slogpretty.PrettyHandlerOptions{
		SlogOpts: &slog.HandlerOptions{
			Level: slog.LevelDebug,
		},
	}

	handler := opts.NewPrettyHandler(out)

	return slog.New(handler)
}
