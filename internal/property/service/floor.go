package service

import (
	"context"
	"strings"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/proveritus/estatecloud/internal/property/audit"
	"github.com/proveritus/estatecloud/internal/property/model"
	"github.com/proveritus/estatecloud/pkg/apperr"
	"github.com/proveritus/estatecloud/pkg/logger"
	"github.com/proveritus/estatecloud/pkg/pagination"
)

// FloorInput carries the writable fields of a floor.
type FloorInput struct {
	Name       string `json:"name"`
	PropertyID uint   `json:"property_id"`
}

// FloorService owns the floor aggregate and the cached occupancy counters.
type FloorService struct {
	db *gorm.DB
}

// NewFloorService creates a FloorService on db.
func NewFloorService(db *gorm.DB) *FloorService {
	return &FloorService{db: db}
}

// Create validates and persists a new floor under an existing property.
func (s *FloorService) Create(ctx context.Context, actor audit.Actor, input FloorInput) (*model.Floor, error) {
	log := logger.FromContext(ctx)
	log.Info("Creating new floor", zap.String("name", input.Name))

	if err := s.validate(ctx, input); err != nil {
		return nil, err
	}
	if err := s.checkDuplicateName(ctx, input.Name, input.PropertyID, 0); err != nil {
		return nil, err
	}

	floor := model.Floor{
		Name:       input.Name,
		PropertyID: input.PropertyID,
	}
	floor.CreatedBy = actor.Username
	floor.UpdatedBy = actor.Username

	if err := s.db.WithContext(ctx).Create(&floor).Error; err != nil {
		return nil, apperr.Internal("failed to create floor", err)
	}

	log.Debug("Floor created successfully", zap.Uint("id", floor.ID))
	return &floor, nil
}

// GetByID returns one floor.
func (s *FloorService) GetByID(ctx context.Context, id uint) (*model.Floor, error) {
	return s.findByID(ctx, id)
}

// ListByProperty returns the floors of a property. An unpaged request
// returns them all.
func (s *FloorService) ListByProperty(ctx context.Context, propertyID uint, p pagination.Pageable) (pagination.Page[model.Floor], error) {
	if err := s.requireProperty(ctx, propertyID); err != nil {
		return pagination.Page[model.Floor]{}, err
	}

	query := s.db.WithContext(ctx).Model(&model.Floor{}).Where("property_id = ?", propertyID)

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return pagination.Page[model.Floor]{}, apperr.Internal("failed to count floors", err)
	}

	var floors []model.Floor
	if err := query.Scopes(p.Scope()).Order("id").Find(&floors).Error; err != nil {
		return pagination.Page[model.Floor]{}, apperr.Internal("failed to list floors", err)
	}

	return pagination.NewPage(floors, p, total), nil
}

// Update validates and applies changes to an existing floor, including moves
// between properties.
func (s *FloorService) Update(ctx context.Context, actor audit.Actor, id uint, input FloorInput) (*model.Floor, error) {
	log := logger.FromContext(ctx)
	log.Info("Updating floor", zap.Uint("id", id))

	floor, err := s.findByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if err := s.validate(ctx, input); err != nil {
		return nil, err
	}
	if floor.Name != input.Name || floor.PropertyID != input.PropertyID {
		if err := s.checkDuplicateName(ctx, input.Name, input.PropertyID, id); err != nil {
			return nil, err
		}
	}

	floor.Name = input.Name
	floor.PropertyID = input.PropertyID
	floor.UpdatedBy = actor.Username

	if err := s.db.WithContext(ctx).Save(floor).Error; err != nil {
		return nil, apperr.Internal("failed to update floor", err)
	}

	log.Debug("Floor updated successfully", zap.Uint("id", id))
	return floor, nil
}

// Delete removes a floor. It refuses while the floor still has units.
func (s *FloorService) Delete(ctx context.Context, actor audit.Actor, id uint) error {
	log := logger.FromContext(ctx)
	log.Info("Deleting floor", zap.Uint("id", id))

	if _, err := s.findByID(ctx, id); err != nil {
		return err
	}

	var unitCount int64
	if err := s.db.WithContext(ctx).Model(&model.Unit{}).
		Where("floor_id = ?", id).Count(&unitCount).Error; err != nil {
		return apperr.Internal("failed to count units", err)
	}
	if unitCount > 0 {
		log.Warn("Refusing to delete floor with units",
			zap.Uint("id", id),
			zap.Int64("units", unitCount))
		return apperr.Conflict("cannot delete floor with existing units; remove units first")
	}

	if err := s.db.WithContext(ctx).Delete(&model.Floor{}, id).Error; err != nil {
		return apperr.Internal("failed to delete floor", err)
	}

	log.Debug("Floor deleted successfully", zap.Uint("id", id))
	return nil
}

// OccupancyStats derives full per-status counts and rates from the floor's
// live units.
func (s *FloorService) OccupancyStats(ctx context.Context, id uint) (*OccupancySummary, error) {
	if _, err := s.findByID(ctx, id); err != nil {
		return nil, err
	}

	var units []model.Unit
	if err := s.db.WithContext(ctx).Where("floor_id = ?", id).Find(&units).Error; err != nil {
		return nil, apperr.Internal("failed to load units", err)
	}

	summary := SummarizeOccupancy(units)
	return &summary, nil
}

// RefreshCounters recomputes the floor's cached unit counters from live
// units and persists them. The operation is idempotent; counters are
// advisory and may be stale between refreshes.
func (s *FloorService) RefreshCounters(ctx context.Context, id uint) (*model.Floor, error) {
	log := logger.FromContext(ctx)
	log.Debug("Refreshing occupancy counters", zap.Uint("floor_id", id))

	floor, err := s.findByID(ctx, id)
	if err != nil {
		return nil, err
	}

	var units []model.Unit
	if err := s.db.WithContext(ctx).Where("floor_id = ?", id).Find(&units).Error; err != nil {
		return nil, apperr.Internal("failed to load units", err)
	}

	summary := SummarizeOccupancy(units)
	floor.NumberOfUnits = summary.TotalUnits
	floor.OccupiedUnits = summary.OccupiedUnits
	floor.VacantUnits = summary.VacantUnits

	if err := s.db.WithContext(ctx).Save(floor).Error; err != nil {
		return nil, apperr.Internal("failed to save floor counters", err)
	}

	return floor, nil
}

// refreshTolerant refreshes counters after a unit mutation. A floor that
// vanished concurrently is a no-op, not a failure.
func (s *FloorService) refreshTolerant(ctx context.Context, id *uint) error {
	if id == nil {
		return nil
	}
	if _, err := s.RefreshCounters(ctx, *id); err != nil {
		if apperr.IsNotFound(err) {
			logger.FromContext(ctx).Debug("Skipping counter refresh for missing floor",
				zap.Uint("floor_id", *id))
			return nil
		}
		return err
	}
	return nil
}

func (s *FloorService) findByID(ctx context.Context, id uint) (*model.Floor, error) {
	var floor model.Floor
	if err := s.db.WithContext(ctx).First(&floor, id).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, apperr.NotFound("floor not found with id: %d", id)
		}
		return nil, apperr.Internal("failed to load floor", err)
	}
	return &floor, nil
}

func (s *FloorService) validate(ctx context.Context, input FloorInput) error {
	if strings.TrimSpace(input.Name) == "" {
		return apperr.Invalid("invalid floor", "floor name cannot be empty")
	}
	return s.requireProperty(ctx, input.PropertyID)
}

func (s *FloorService) requireProperty(ctx context.Context, propertyID uint) error {
	if propertyID == 0 {
		return apperr.Invalid("invalid floor", "property id is required")
	}
	var count int64
	if err := s.db.WithContext(ctx).Model(&model.Property{}).
		Where("id = ?", propertyID).Count(&count).Error; err != nil {
		return apperr.Internal("failed to check property", err)
	}
	if count == 0 {
		return apperr.NotFound("property not found with id: %d", propertyID)
	}
	return nil
}

// checkDuplicateName enforces (name, property) uniqueness with an exact
// match, excluding the record being updated.
func (s *FloorService) checkDuplicateName(ctx context.Context, name string, propertyID, excludeID uint) error {
	var count int64
	query := s.db.WithContext(ctx).Model(&model.Floor{}).
		Where("name = ? AND property_id = ?", name, propertyID)
	if excludeID != 0 {
		query = query.Where("id <> ?", excludeID)
	}
	if err := query.Count(&count).Error; err != nil {
		return apperr.Internal("failed to check floor name", err)
	}
	if count > 0 {
		return apperr.Duplicate("floor with name %s already exists in property with id: %d", name, propertyID)
	}
	return nil
}
