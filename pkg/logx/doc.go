// Package logx configures coursewatch's structured logging.
//
// It is a small wrapper (logx.Logger) on top of zerolog that keeps:
//   - Console output readable (short timestamp + short caller)
//   - File output JSON-structured
//   - Optional admin Telegram mirror (min-level + rate limiting)
package logx
