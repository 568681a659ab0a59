// Package logger builds slog loggers with environment-aware defaults and
// context extractors that add request-scoped attributes (request ID, user ID)
// to every record.
//
//	log := logger.New(
//		logger.WithEnvironment(environment.Production, "resumekit"),
//		logger.WithContextExtractors(requestid.LogExtractor),
//	)
//	log.InfoContext(ctx, "subscription upserted", logger.UserID(id), logger.Tier("pro"))
package logger
