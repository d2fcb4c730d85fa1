package postgres

import (
	"bytes"
	"context"
	"log/slog"
	"testing"
	"time"

	"quill/config"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func newBufferedGormLogger(debug bool) (logger.Interface, *bytes.Buffer) {
	buf := &bytes.Buffer{}
	base := slog.New(slog.NewTextHandler(buf, &slog.HandlerOptions{Level: slog.LevelDebug}))
	cfg := &config.Config{}
	cfg.Env.Debug = debug

	return newGormSlogLogger(base, cfg), buf
}

func sqlFn() (string, int64) {
	return "SELECT 1", 1
}

func TestGormSlogLogger_Trace(t *testing.T) {
	ctx := context.Background()

	t.Run("fast query is silent outside debug", func(t *testing.T) {
		l, buf := newBufferedGormLogger(false)
		l.Trace(ctx, time.Now(), sqlFn, nil)
		assert.Empty(t, buf.String())
	})

	t.Run("debug logs every query", func(t *testing.T) {
		l, buf := newBufferedGormLogger(true)
		l.Trace(ctx, time.Now(), sqlFn, nil)
		assert.Contains(t, buf.String(), "gorm query")
		assert.Contains(t, buf.String(), "SELECT 1")
	})

	t.Run("failures are logged", func(t *testing.T) {
		l, buf := newBufferedGormLogger(false)
		l.Trace(ctx, time.Now(), sqlFn, errors.New("syntax error"))
		assert.Contains(t, buf.String(), "gorm query failed")
		assert.Contains(t, buf.String(), "syntax error")
	})

	t.Run("record not found is not a failure", func(t *testing.T) {
		l, buf := newBufferedGormLogger(false)
		l.Trace(ctx, time.Now(), sqlFn, gorm.ErrRecordNotFound)
		assert.Empty(t, buf.String())
	})

	t.Run("slow queries warn", func(t *testing.T) {
		l, buf := newBufferedGormLogger(false)
		l.Trace(ctx, time.Now().Add(-time.Second), sqlFn, nil)
		assert.Contains(t, buf.String(), "gorm slow query")
	})

	t.Run("silent mode", func(t *testing.T) {
		l, buf := newBufferedGormLogger(true)
		l.LogMode(logger.Silent).Trace(ctx, time.Now(), sqlFn, errors.New("ignored"))
		assert.Empty(t, buf.String())
	})
}
