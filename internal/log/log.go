package log

import (
	"io"
	"os"
	"sync"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var (
	mu     sync.RWMutex
	logger = build(zapcore.AddSync(os.Stdout), zapcore.InfoLevel)
	closer io.Closer
)

func build(ws zapcore.WriteSyncer, lvl zapcore.Level) *zap.Logger {
	enc := zap.NewProductionEncoderConfig()
	enc.TimeKey = "ts"
	enc.MessageKey = "action"
	enc.EncodeTime = zapcore.ISO8601TimeEncoder
	enc.CallerKey = zapcore.OmitKey
	enc.StacktraceKey = zapcore.OmitKey
	return zap.New(zapcore.NewCore(zapcore.NewJSONEncoder(enc), ws, lvl))
}

// Init sends log lines to stdout and, when file is set, appends them to file.
// A file that cannot be opened is reported and skipped.
func Init(level, file string) {
	lvl, err := zapcore.ParseLevel(level)
	if err != nil {
		lvl = zapcore.InfoLevel
	}
	sinks := []zapcore.WriteSyncer{zapcore.AddSync(os.Stdout)}
	var f *os.File
	if file != "" {
		var ferr error
		f, ferr = os.OpenFile(file, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
		if ferr == nil {
			sinks = append(sinks, zapcore.AddSync(f))
		} else {
			defer Error(nil, "log.file.open.fail", ferr, map[string]any{"file": file})
		}
	}
	mu.Lock()
	_ = logger.Sync()
	if closer != nil {
		_ = closer.Close()
		closer = nil
	}
	logger = build(zapcore.NewMultiWriteSyncer(sinks...), lvl)
	if f != nil {
		closer = f
	}
	mu.Unlock()
}

// SetOutput redirects every level to w. Tests use it to capture lines.
func SetOutput(w io.Writer) {
	mu.Lock()
	logger = build(zapcore.AddSync(w), zapcore.DebugLevel)
	mu.Unlock()
}

func Sync() {
	mu.RLock()
	defer mu.RUnlock()
	_ = logger.Sync()
}

func write(level zapcore.Level, c *fiber.Ctx, action string, err error, fields map[string]any) {
	mu.RLock()
	l := logger
	mu.RUnlock()
	ce := l.Check(level, action)
	if ce == nil {
		return
	}
	zf := make([]zap.Field, 0, len(fields)+7)
	if c != nil {
		zf = append(zf,
			zap.String("ip", c.IP()),
			zap.String("method", c.Method()),
			zap.String("path", c.Path()),
			zap.Int("status", c.Response().StatusCode()),
		)
		if rid, ok := c.Locals("requestid").(string); ok && rid != "" {
			zf = append(zf, zap.String("req_id", rid))
		}
	}
	if err != nil {
		zf = append(zf, zap.String("err", err.Error()))
	}
	if len(fields) > 0 {
		zf = append(zf, zap.Any("fields", fields))
	}
	ce.Write(zf...)
}

func Debug(c *fiber.Ctx, action string, fields map[string]any) {
	write(zapcore.DebugLevel, c, action, nil, fields)
}
func Info(c *fiber.Ctx, action string, fields map[string]any) {
	write(zapcore.InfoLevel, c, action, nil, fields)
}

// Audit records state changes made through the API.
func Audit(c *fiber.Ctx, action string, fields map[string]any) {
	write(zapcore.InfoLevel, c, action, nil, merge(fields, "audit", true))
}
func Security(c *fiber.Ctx, action string, fields map[string]any) {
	write(zapcore.WarnLevel, c, action, nil, fields)
}
func Warn(c *fiber.Ctx, action string, err error, fields map[string]any) {
	write(zapcore.WarnLevel, c, action, err, fields)
}
func Error(c *fiber.Ctx, action string, err error, fields map[string]any) {
	write(zapcore.ErrorLevel, c, action, err, fields)
}

func merge(fields map[string]any, k string, v any) map[string]any {
	out := make(map[string]any, len(fields)+1)
	for fk, fv := range fields {
		out[fk] = fv
	}
	out[k] = v
	return out
}
