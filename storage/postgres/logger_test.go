package postgres

import (
	"bytes"
	"context"
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"agreement-radar/types"
)

func statement() (string, int64) { return "SELECT * FROM agreements", 3 }

func TestGormLogger_Trace(t *testing.T) {
	var buf bytes.Buffer
	l := newGormLogger(zerolog.New(&buf), gormlogger.Warn)
	ctx := context.Background()

	l.Trace(ctx, time.Now(), statement, errors.New("relation does not exist"))
	assert.Contains(t, buf.String(), `"level":"error"`)
	assert.Contains(t, buf.String(), `"component":"gorm"`)
	assert.Contains(t, buf.String(), `"sql":"SELECT * FROM agreements"`)

	buf.Reset()
	l.Trace(ctx, time.Now(), statement, gorm.ErrRecordNotFound)
	assert.Empty(t, buf.String())

	buf.Reset()
	l.Trace(ctx, time.Now().Add(-time.Second), statement, nil)
	assert.Contains(t, buf.String(), `"message":"slow query"`)

	buf.Reset()
	l.Trace(ctx, time.Now(), statement, nil)
	assert.Empty(t, buf.String())

	buf.Reset()
	l.LogMode(gormlogger.Info).Trace(ctx, time.Now(), statement, nil)
	assert.Contains(t, buf.String(), `"rows":3`)

	buf.Reset()
	l.LogMode(gormlogger.Silent).Trace(ctx, time.Now(), statement, errors.New("boom"))
	assert.Empty(t, buf.String())
}

func TestGormLogger_Messages(t *testing.T) {
	var buf bytes.Buffer
	l := newGormLogger(zerolog.New(&buf), gormlogger.Warn)
	ctx := context.Background()

	l.Info(ctx, "hidden %d", 1)
	assert.Empty(t, buf.String())

	l.Warn(ctx, "pool at %d%%", 90)
	assert.Contains(t, buf.String(), `"message":"pool at 90%"`)

	l.Error(ctx, "lost connection")
	assert.Contains(t, buf.String(), `"level":"error"`)
}

func TestGormLogger_WiredIntoGorm(t *testing.T) {
	var buf bytes.Buffer
	db, err := gorm.Open(sqlite.Open("file:logger_test?mode=memory&cache=shared"), &gorm.Config{
		Logger: newGormLogger(zerolog.New(&buf), gormlogger.Error),
	})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	defer sqlDB.Close()

	var a types.Agreement
	err = db.Table("missing_table").First(&a).Error
	require.Error(t, err)
	assert.Contains(t, buf.String(), `"message":"query failed"`)
	assert.Contains(t, buf.String(), "missing_table")
}
