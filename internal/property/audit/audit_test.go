package audit

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open("file:"+t.Name()+"?mode=memory&cache=shared"), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&Entry{}))
	return db
}

func TestRecord_WritesEntry(t *testing.T) {
	db := newTestDB(t)
	recorder := NewRecorder(db)

	recorder.Record(context.Background(), Actor{ID: 5, Username: "pm"},
		"PropertyService.Create", map[string]string{"name": "Acme Tower"})

	var entries []Entry
	require.NoError(t, db.Find(&entries).Error)
	require.Len(t, entries, 1)
	assert.Equal(t, "PropertyService.Create", entries[0].MethodName)
	assert.Equal(t, uint(5), entries[0].UserID)
	assert.Equal(t, "pm", entries[0].UserName)
	assert.Contains(t, entries[0].Params, "Acme Tower")
	assert.False(t, entries[0].Timestamp.IsZero())
}

func TestRecord_SwallowsWriteFailure(t *testing.T) {
	db := newTestDB(t)
	require.NoError(t, db.Migrator().DropTable(&Entry{}))
	recorder := NewRecorder(db)

	// Must not panic or surface an error to the caller.
	recorder.Record(context.Background(), Actor{ID: 5, Username: "pm"}, "PropertyService.Delete", 42)
}
