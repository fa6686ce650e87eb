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

// UnitInput carries the writable fields of a unit.
type UnitInput struct {
	Name            string                `json:"name"`
	Size            float64               `json:"size"`
	RentType        model.RentType        `json:"rent_type"`
	RatePerSqm      float64               `json:"rate_per_sqm"`
	MonthlyRent     float64               `json:"monthly_rent"`
	OccupancyStatus model.OccupancyStatus `json:"occupancy_status"`
	Tenant          string                `json:"tenant"`
	PropertyID      uint                  `json:"property_id"`
	FloorID         *uint                 `json:"floor_id,omitempty"`
}

// UnitFilter narrows unit listings. Nil fields are not applied.
type UnitFilter struct {
	PropertyID      *uint
	FloorID         *uint
	OccupancyStatus *model.OccupancyStatus
}

// UnitService owns the unit aggregate.
type UnitService struct {
	db     *gorm.DB
	floors *FloorService
}

// NewUnitService creates a UnitService on db. Floor counter maintenance is
// delegated to floors.
func NewUnitService(db *gorm.DB, floors *FloorService) *UnitService {
	return &UnitService{db: db, floors: floors}
}

// Create validates, derives rent, persists a new unit, then refreshes its
// floor's counters.
func (s *UnitService) Create(ctx context.Context, actor audit.Actor, input UnitInput) (*model.Unit, error) {
	log := logger.FromContext(ctx)
	log.Info("Creating new unit", zap.String("name", input.Name))

	if err := s.validate(ctx, input, 0); err != nil {
		return nil, err
	}

	unit := model.Unit{
		Name:            input.Name,
		Size:            input.Size,
		RentType:        input.RentType,
		RatePerSqm:      input.RatePerSqm,
		MonthlyRent:     input.MonthlyRent,
		OccupancyStatus: input.OccupancyStatus,
		Tenant:          input.Tenant,
		PropertyID:      input.PropertyID,
		FloorID:         input.FloorID,
	}
	deriveUnitFields(&unit)
	unit.CreatedBy = actor.Username
	unit.UpdatedBy = actor.Username

	if err := s.db.WithContext(ctx).Create(&unit).Error; err != nil {
		return nil, apperr.Internal("failed to create unit", err)
	}

	if err := s.floors.refreshTolerant(ctx, unit.FloorID); err != nil {
		return nil, err
	}

	log.Debug("Unit created successfully", zap.Uint("id", unit.ID))
	return &unit, nil
}

// GetByID returns one unit.
func (s *UnitService) GetByID(ctx context.Context, id uint) (*model.Unit, error) {
	return s.findByID(ctx, id)
}

// GetByName returns the unit with the given name inside a property.
func (s *UnitService) GetByName(ctx context.Context, name string, propertyID uint) (*model.Unit, error) {
	var unit model.Unit
	err := s.db.WithContext(ctx).
		Where("name = ? AND property_id = ?", name, propertyID).
		First(&unit).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, apperr.NotFound("unit not found with name: %s in property with id: %d", name, propertyID)
		}
		return nil, apperr.Internal("failed to load unit", err)
	}
	return &unit, nil
}

// List returns a page of units matching the filter.
func (s *UnitService) List(ctx context.Context, filter UnitFilter, p pagination.Pageable) (pagination.Page[model.Unit], error) {
	if filter.PropertyID != nil {
		if err := s.requireProperty(ctx, *filter.PropertyID); err != nil {
			return pagination.Page[model.Unit]{}, err
		}
	}
	if filter.FloorID != nil {
		if err := s.requireFloor(ctx, *filter.FloorID); err != nil {
			return pagination.Page[model.Unit]{}, err
		}
	}

	query := s.db.WithContext(ctx).Model(&model.Unit{})
	if filter.PropertyID != nil {
		query = query.Where("property_id = ?", *filter.PropertyID)
	}
	if filter.FloorID != nil {
		query = query.Where("floor_id = ?", *filter.FloorID)
	}
	if filter.OccupancyStatus != nil {
		query = query.Where("occupancy_status = ?", *filter.OccupancyStatus)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return pagination.Page[model.Unit]{}, apperr.Internal("failed to count units", err)
	}

	var units []model.Unit
	if err := query.Scopes(p.Scope()).Order("id").Find(&units).Error; err != nil {
		return pagination.Page[model.Unit]{}, apperr.Internal("failed to list units", err)
	}

	return pagination.NewPage(units, p, total), nil
}

// Search returns a page of units whose name or tenant contains the query,
// case-insensitively.
func (s *UnitService) Search(ctx context.Context, queryText string, p pagination.Pageable) (pagination.Page[model.Unit], error) {
	pattern := "%" + strings.ToLower(queryText) + "%"
	query := s.db.WithContext(ctx).Model(&model.Unit{}).
		Where("LOWER(name) LIKE ? OR LOWER(tenant) LIKE ?", pattern, pattern)

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return pagination.Page[model.Unit]{}, apperr.Internal("failed to count matching units", err)
	}

	var units []model.Unit
	if err := query.Scopes(p.Scope()).Order("id").Find(&units).Error; err != nil {
		return pagination.Page[model.Unit]{}, apperr.Internal("failed to search units", err)
	}

	return pagination.NewPage(units, p, total), nil
}

// Update validates and applies changes to an existing unit. When the unit
// moves between floors, both the previous and the new floor's counters are
// refreshed.
func (s *UnitService) Update(ctx context.Context, actor audit.Actor, id uint, input UnitInput) (*model.Unit, error) {
	log := logger.FromContext(ctx)
	log.Info("Updating unit", zap.Uint("id", id))

	unit, err := s.findByID(ctx, id)
	if err != nil {
		return nil, err
	}
	previousFloorID := unit.FloorID

	if err := s.validate(ctx, input, id); err != nil {
		return nil, err
	}

	unit.Name = input.Name
	unit.Size = input.Size
	unit.RentType = input.RentType
	unit.RatePerSqm = input.RatePerSqm
	unit.MonthlyRent = input.MonthlyRent
	unit.OccupancyStatus = input.OccupancyStatus
	unit.Tenant = input.Tenant
	unit.PropertyID = input.PropertyID
	unit.FloorID = input.FloorID
	deriveUnitFields(unit)
	unit.UpdatedBy = actor.Username

	if err := s.db.WithContext(ctx).Save(unit).Error; err != nil {
		return nil, apperr.Internal("failed to update unit", err)
	}

	if err := s.refreshAffectedFloors(ctx, previousFloorID, unit.FloorID); err != nil {
		return nil, err
	}

	log.Debug("Unit updated successfully", zap.Uint("id", id))
	return unit, nil
}

// UpdateOccupancy changes a unit's occupancy status. The tenant is kept only
// when the new status is OCCUPIED.
func (s *UnitService) UpdateOccupancy(ctx context.Context, actor audit.Actor, id uint, status model.OccupancyStatus, tenant string) (*model.Unit, error) {
	log := logger.FromContext(ctx)
	log.Info("Updating occupancy status", zap.Uint("id", id), zap.String("status", string(status)))

	if !status.Valid() {
		return nil, apperr.Invalid("invalid unit", "invalid occupancy status")
	}

	unit, err := s.findByID(ctx, id)
	if err != nil {
		return nil, err
	}

	unit.OccupancyStatus = status
	if status == model.OccupancyOccupied {
		unit.Tenant = tenant
	} else {
		unit.Tenant = ""
	}
	unit.UpdatedBy = actor.Username

	if err := s.db.WithContext(ctx).Save(unit).Error; err != nil {
		return nil, apperr.Internal("failed to update occupancy status", err)
	}

	if err := s.floors.refreshTolerant(ctx, unit.FloorID); err != nil {
		return nil, err
	}

	log.Debug("Occupancy status updated successfully", zap.Uint("id", id))
	return unit, nil
}

// Delete removes a unit and refreshes its former floor's counters.
func (s *UnitService) Delete(ctx context.Context, actor audit.Actor, id uint) error {
	log := logger.FromContext(ctx)
	log.Info("Deleting unit", zap.Uint("id", id))

	unit, err := s.findByID(ctx, id)
	if err != nil {
		return err
	}
	floorID := unit.FloorID

	if err := s.db.WithContext(ctx).Delete(&model.Unit{}, id).Error; err != nil {
		return apperr.Internal("failed to delete unit", err)
	}

	if err := s.floors.refreshTolerant(ctx, floorID); err != nil {
		return err
	}

	log.Debug("Unit deleted successfully", zap.Uint("id", id))
	return nil
}

// RentalIncome sums the monthly rent of the property's occupied units.
func (s *UnitService) RentalIncome(ctx context.Context, propertyID uint) (float64, error) {
	if err := s.requireProperty(ctx, propertyID); err != nil {
		return 0, err
	}

	var income float64
	err := s.db.WithContext(ctx).Model(&model.Unit{}).
		Where("property_id = ? AND occupancy_status = ?", propertyID, model.OccupancyOccupied).
		Select("COALESCE(SUM(monthly_rent), 0)").
		Scan(&income).Error
	if err != nil {
		return 0, apperr.Internal("failed to sum rental income", err)
	}
	return income, nil
}

// CountByProperty returns the number of units in a property.
func (s *UnitService) CountByProperty(ctx context.Context, propertyID uint) (int64, error) {
	if err := s.requireProperty(ctx, propertyID); err != nil {
		return 0, err
	}

	var count int64
	if err := s.db.WithContext(ctx).Model(&model.Unit{}).
		Where("property_id = ?", propertyID).Count(&count).Error; err != nil {
		return 0, apperr.Internal("failed to count units", err)
	}
	return count, nil
}

// refreshAffectedFloors refreshes the floors touched by an update. A move
// between floors refreshes both sides so neither goes stale.
func (s *UnitService) refreshAffectedFloors(ctx context.Context, before, after *uint) error {
	if before != nil && (after == nil || *before != *after) {
		if err := s.floors.refreshTolerant(ctx, before); err != nil {
			return err
		}
	}
	return s.floors.refreshTolerant(ctx, after)
}

// deriveUnitFields applies the derivation rules before persisting: PSM units
// get their monthly rent recomputed from rate and size, and the tenant is
// kept only while the unit is occupied.
func deriveUnitFields(unit *model.Unit) {
	if unit.RentType == model.RentTypePSM && unit.RatePerSqm > 0 && unit.Size > 0 {
		unit.MonthlyRent = unit.RatePerSqm * unit.Size
	}
	if unit.OccupancyStatus != model.OccupancyOccupied {
		unit.Tenant = ""
	}
}

func (s *UnitService) findByID(ctx context.Context, id uint) (*model.Unit, error) {
	var unit model.Unit
	if err := s.db.WithContext(ctx).First(&unit, id).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, apperr.NotFound("unit not found with id: %d", id)
		}
		return nil, apperr.Internal("failed to load unit", err)
	}
	return &unit, nil
}

func (s *UnitService) validate(ctx context.Context, input UnitInput, excludeID uint) error {
	var details []string
	if strings.TrimSpace(input.Name) == "" {
		details = append(details, "unit name cannot be empty")
	}
	if input.Size < 0 || (input.RentType == model.RentTypePSM && input.Size == 0) {
		details = append(details, "unit size must be greater than 0")
	}
	if input.MonthlyRent < 0 {
		details = append(details, "monthly rent cannot be negative")
	}
	if input.RatePerSqm < 0 {
		details = append(details, "rate per square meter cannot be negative")
	}
	if input.RentType != "" && !input.RentType.Valid() {
		details = append(details, "invalid rent type")
	}
	if input.OccupancyStatus != "" && !input.OccupancyStatus.Valid() {
		details = append(details, "invalid occupancy status")
	}
	if len(details) > 0 {
		return apperr.Invalid("invalid unit", details...)
	}

	if err := s.requireProperty(ctx, input.PropertyID); err != nil {
		return err
	}
	if input.FloorID != nil {
		if err := s.requireFloor(ctx, *input.FloorID); err != nil {
			return err
		}
	}

	return s.checkDuplicateName(ctx, input.Name, input.PropertyID, excludeID)
}

func (s *UnitService) requireProperty(ctx context.Context, propertyID uint) error {
	if propertyID == 0 {
		return apperr.Invalid("invalid unit", "property id is required")
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

func (s *UnitService) requireFloor(ctx context.Context, floorID uint) error {
	var count int64
	if err := s.db.WithContext(ctx).Model(&model.Floor{}).
		Where("id = ?", floorID).Count(&count).Error; err != nil {
		return apperr.Internal("failed to check floor", err)
	}
	if count == 0 {
		return apperr.NotFound("floor not found with id: %d", floorID)
	}
	return nil
}

// checkDuplicateName enforces (name, property) uniqueness with an exact
// match, excluding the record being updated.
func (s *UnitService) checkDuplicateName(ctx context.Context, name string, propertyID, excludeID uint) error {
	var count int64
	query := s.db.WithContext(ctx).Model(&model.Unit{}).
		Where("name = ? AND property_id = ?", name, propertyID)
	if excludeID != 0 {
		query = query.Where("id <> ?", excludeID)
	}
	if err := query.Count(&count).Error; err != nil {
		return apperr.Internal("failed to check unit name", err)
	}
	if count > 0 {
		return apperr.Duplicate("unit with name %s already exists in property with id: %d", name, propertyID)
	}
	return nil
}
