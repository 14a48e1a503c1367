// Package logger builds the zap logger shared by the CLI, the server and the
// features.
//
// Config.Level picks the preset: "debug" is zap's development config, any
// other level the production config. Config.Format is "json" or "console".
//
// Request scoped lines go through WithRayID so they carry the id set by the
// rayid middleware; lines about a published atlas carry Seq.
//
//	l := logger.WithRayID(log, c)
//	l.Info("Atlas reloaded", logger.Seq(snap.Seq))
package logger
