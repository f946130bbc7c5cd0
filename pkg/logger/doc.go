// Package logger builds *slog.Logger instances with functional options and
// provides attribute helpers with consistent keys for the allocator.
//
// New wraps a text or JSON handler in LogHandlerDecorator, which adds
// attributes pulled from the context on every *Context logging call:
//
//	log := logger.New(
//		logger.WithEnvironment(cfg.Env, "teamname"),
//		logger.WithLevelName(cfg.LogLevel),
//		logger.WithContextValue("command", commandKey{}),
//	)
//	log.InfoContext(ctx, "team name reserved",
//		logger.EventID(eventID),
//		logger.TeamName(name),
//		logger.Token(token),
//	)
//
// Token logs only a short prefix of a reservation token. Error and Errors
// return an empty attribute for nil errors, so they can be passed without a
// nil check.
package logger
