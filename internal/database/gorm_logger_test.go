package database

import (
	"bytes"
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stwalsh4118/rentroll/internal/logger"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

func TestGormLogger_Trace(t *testing.T) {
	sql := func() (string, int64) { return "SELECT 1", 1 }

	t.Run("errors are logged", func(t *testing.T) {
		var buf bytes.Buffer
		l := NewGormLogger(logger.NewWithWriter("production", &buf))

		l.Trace(context.Background(), time.Now(), sql, errors.New("syntax error"))

		assert.Contains(t, buf.String(), "query failed")
		assert.Contains(t, buf.String(), "SELECT 1")
	})

	t.Run("record not found is ignored", func(t *testing.T) {
		var buf bytes.Buffer
		l := NewGormLogger(logger.NewWithWriter("production", &buf))

		l.Trace(context.Background(), time.Now(), sql, gorm.ErrRecordNotFound)

		assert.Empty(t, buf.String())
	})

	t.Run("slow queries warn", func(t *testing.T) {
		var buf bytes.Buffer
		l := NewGormLogger(logger.NewWithWriter("production", &buf))

		l.Trace(context.Background(), time.Now().Add(-time.Second), sql, nil)

		assert.Contains(t, buf.String(), "slow query")
	})

	t.Run("silent mode logs nothing", func(t *testing.T) {
		var buf bytes.Buffer
		l := NewGormLogger(logger.NewWithWriter("production", &buf)).LogMode(gormlogger.Silent)

		l.Trace(context.Background(), time.Now().Add(-time.Second), sql, errors.New("boom"))

		assert.Empty(t, buf.String())
	})
}
