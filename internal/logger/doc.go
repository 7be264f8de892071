// Package logger is a thin zap wrapper shared by every stepladder package.
//
// Loggers travel through contexts: ToContext stores one, the leveled
// helpers (InfoKV, WarnKV, ...) read it back, and WithName/WithKV derive
// scoped loggers along the way. Code that never touches a context still
// logs through the process-wide logger, whose level is adjustable at
// runtime via SetLevel.
package logger
