package logger

import (
	"map-atlas/core/middleware/rayid"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// New builds the process logger. Level "debug" selects zap's development
// preset; any other level uses the production preset at that level.
func New(cfg *Config) (*zap.Logger, error) {
	zc := zap.NewProductionConfig()
	switch cfg.Level {
	case "debug":
		zc = zap.NewDevelopmentConfig()
	case "":
	default:
		level, err := zap.ParseAtomicLevel(cfg.Level)
		if err != nil {
			return nil, err
		}
		zc.Level = level
	}

	zc.Encoding = "json"
	if cfg.Format == "console" {
		zc.Encoding = "console"
		zc.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
		zc.DisableStacktrace = true
	}
	zc.EncoderConfig.LevelKey = "level"
	zc.EncoderConfig.TimeKey = "time"
	zc.EncoderConfig.MessageKey = "message"

	return zc.Build()
}

// WithRayID tags l with the request id stored by the rayid middleware.
func WithRayID(l *zap.Logger, c *fiber.Ctx) *zap.Logger {
	if id, ok := c.Locals(rayid.LocalKey).(string); ok && id != "" {
		return l.With(zap.String(rayid.LocalKey, id))
	}
	return l
}

// Seq is the field naming the atlas snapshot a log line refers to.
func Seq(seq int64) zap.Field {
	return zap.Int64("seq", seq)
}
