package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/proveritus/estatecloud/internal/property/audit"
	"github.com/proveritus/estatecloud/internal/property/model"
	"github.com/proveritus/estatecloud/pkg/userclient"
)

var testActor = audit.Actor{ID: 1, Username: "tester"}

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open("file:"+t.Name()+"?mode=memory&cache=shared"), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&model.Property{}, &model.Floor{}, &model.Unit{}, &audit.Entry{}))
	return db
}

// fakeDirectory is an in-memory userclient.Directory that counts batch calls
// and can be flipped into a failing state.
type fakeDirectory struct {
	users      map[uint]*userclient.UserRef
	batchCalls int
	failAll    bool
}

func newFakeDirectory(users ...*userclient.UserRef) *fakeDirectory {
	d := &fakeDirectory{users: make(map[uint]*userclient.UserRef)}
	for _, u := range users {
		d.users[u.ID] = u
	}
	return d
}

func (d *fakeDirectory) GetByID(_ context.Context, id uint) (*userclient.UserRef, error) {
	if d.failAll {
		return nil, context.DeadlineExceeded
	}
	user, ok := d.users[id]
	if !ok {
		return nil, userclient.ErrNotFound
	}
	return user, nil
}

func (d *fakeDirectory) GetByUsername(_ context.Context, username string) (*userclient.UserRef, error) {
	if d.failAll {
		return nil, context.DeadlineExceeded
	}
	for _, u := range d.users {
		if u.Username == username {
			return u, nil
		}
	}
	return nil, userclient.ErrNotFound
}

func (d *fakeDirectory) GetByIDs(_ context.Context, ids []uint) (map[uint]*userclient.UserRef, error) {
	d.batchCalls++
	if d.failAll {
		return nil, context.DeadlineExceeded
	}
	result := make(map[uint]*userclient.UserRef)
	for _, id := range ids {
		if user, ok := d.users[id]; ok {
			result[id] = user
		}
	}
	return result, nil
}

func seedProperty(t *testing.T, db *gorm.DB, name string) *model.Property {
	t.Helper()
	property := &model.Property{
		Name:         name,
		PropertyType: model.PropertyTypeCommercial,
		Address:      "1 Test Street",
	}
	require.NoError(t, db.Create(property).Error)
	return property
}

func seedFloor(t *testing.T, db *gorm.DB, propertyID uint, name string) *model.Floor {
	t.Helper()
	floor := &model.Floor{Name: name, PropertyID: propertyID}
	require.NoError(t, db.Create(floor).Error)
	return floor
}
