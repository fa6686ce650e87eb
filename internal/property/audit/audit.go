// Package audit records who called which mutating operation. Recording is
// best-effort: a failed audit write is logged and swallowed so it can never
// fail the business operation it describes.
package audit

import (
	"context"
	"encoding/json"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/proveritus/estatecloud/pkg/logger"
)

// Entry is a persisted audit record.
type Entry struct {
	ID         uint      `json:"id" gorm:"primarykey"`
	MethodName string    `json:"method_name" gorm:"not null;index"`
	Params     string    `json:"params"`
	UserID     uint      `json:"user_id" gorm:"index"`
	UserName   string    `json:"user_name"`
	Timestamp  time.Time `json:"timestamp" gorm:"index"`
}

func (Entry) TableName() string {
	return "audit_logs"
}

// Actor identifies the authenticated caller of a mutating operation.
type Actor struct {
	ID       uint
	Username string
}

// Recorder writes audit entries.
type Recorder struct {
	db *gorm.DB
}

// NewRecorder creates a Recorder on db.
func NewRecorder(db *gorm.DB) *Recorder {
	return &Recorder{db: db}
}

// Record persists one audit entry for methodName invoked by actor with the
// given arguments. Arguments are JSON-serialized; values that fail to
// serialize are recorded as their placeholder.
func (r *Recorder) Record(ctx context.Context, actor Actor, methodName string, params ...interface{}) {
	serialized, err := json.Marshal(params)
	if err != nil {
		serialized = []byte(`"<unserializable>"`)
	}

	entry := Entry{
		MethodName: methodName,
		Params:     string(serialized),
		UserID:     actor.ID,
		UserName:   actor.Username,
		Timestamp:  time.Now().UTC(),
	}

	if err := r.db.WithContext(ctx).Create(&entry).Error; err != nil {
		logger.FromContext(ctx).Warn("failed to write audit log",
			zap.String("method", methodName),
			zap.Uint("user_id", actor.ID),
			zap.Error(err))
	}
}
