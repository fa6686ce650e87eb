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
	"github.com/proveritus/estatecloud/pkg/userclient"
)

// PropertyInput carries the writable fields of a property.
type PropertyInput struct {
	Name           string             `json:"name"`
	PropertyType   model.PropertyType `json:"property_type"`
	Address        string             `json:"address"`
	NumberOfFloors int                `json:"number_of_floors"`
	NumberOfUnits  int                `json:"number_of_units"`
	ManagedBy      *uint              `json:"managed_by,omitempty"`
}

// PropertyView is a property with its manager resolved from the user service.
type PropertyView struct {
	model.Property
	ManagedByDetails *userclient.UserRef `json:"managed_by_details,omitempty"`
}

// PropertyService owns the property aggregate.
type PropertyService struct {
	db    *gorm.DB
	users userclient.Directory
}

// NewPropertyService creates a PropertyService on db using users for
// manager enrichment.
func NewPropertyService(db *gorm.DB, users userclient.Directory) *PropertyService {
	return &PropertyService{db: db, users: users}
}

// Create validates and persists a new property.
func (s *PropertyService) Create(ctx context.Context, actor audit.Actor, input PropertyInput) (*PropertyView, error) {
	log := logger.FromContext(ctx)
	log.Info("Creating new property", zap.String("name", input.Name))

	if err := s.validate(input); err != nil {
		return nil, err
	}
	if err := s.checkDuplicateName(input.Name, 0); err != nil {
		return nil, err
	}

	property := model.Property{
		Name:           input.Name,
		PropertyType:   input.PropertyType,
		Address:        input.Address,
		NumberOfFloors: input.NumberOfFloors,
		NumberOfUnits:  input.NumberOfUnits,
		ManagedBy:      input.ManagedBy,
	}
	property.CreatedBy = actor.Username
	property.UpdatedBy = actor.Username

	if err := s.db.WithContext(ctx).Create(&property).Error; err != nil {
		return nil, apperr.Internal("failed to create property", err)
	}

	log.Debug("Property created successfully", zap.Uint("id", property.ID))
	return s.enrichOne(ctx, property)
}

// GetByID returns one property with manager details resolved.
func (s *PropertyService) GetByID(ctx context.Context, id uint) (*PropertyView, error) {
	property, err := s.findByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return s.enrichOne(ctx, *property)
}

// List returns a page of properties, optionally filtered by type, with
// manager details resolved in one batch lookup.
func (s *PropertyService) List(ctx context.Context, propertyType *model.PropertyType, p pagination.Pageable) (pagination.Page[PropertyView], error) {
	query := s.db.WithContext(ctx).Model(&model.Property{})
	if propertyType != nil {
		query = query.Where("property_type = ?", *propertyType)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return pagination.Page[PropertyView]{}, apperr.Internal("failed to count properties", err)
	}

	var properties []model.Property
	if err := query.Scopes(p.Scope()).Order("id").Find(&properties).Error; err != nil {
		return pagination.Page[PropertyView]{}, apperr.Internal("failed to list properties", err)
	}

	views, err := s.enrichPage(ctx, properties)
	if err != nil {
		return pagination.Page[PropertyView]{}, err
	}
	return pagination.NewPage(views, p, total), nil
}

// Search returns a page of properties whose name or address contains the
// query, case-insensitively.
func (s *PropertyService) Search(ctx context.Context, queryText string, p pagination.Pageable) (pagination.Page[PropertyView], error) {
	pattern := "%" + strings.ToLower(queryText) + "%"
	query := s.db.WithContext(ctx).Model(&model.Property{}).
		Where("LOWER(name) LIKE ? OR LOWER(address) LIKE ?", pattern, pattern)

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return pagination.Page[PropertyView]{}, apperr.Internal("failed to count matching properties", err)
	}

	var properties []model.Property
	if err := query.Scopes(p.Scope()).Order("id").Find(&properties).Error; err != nil {
		return pagination.Page[PropertyView]{}, apperr.Internal("failed to search properties", err)
	}

	views, err := s.enrichPage(ctx, properties)
	if err != nil {
		return pagination.Page[PropertyView]{}, err
	}
	return pagination.NewPage(views, p, total), nil
}

// Count returns the total number of properties.
func (s *PropertyService) Count(ctx context.Context) (int64, error) {
	var total int64
	if err := s.db.WithContext(ctx).Model(&model.Property{}).Count(&total).Error; err != nil {
		return 0, apperr.Internal("failed to count properties", err)
	}
	return total, nil
}

// Stats derives occupancy and income statistics for one property from its
// live floors and units.
func (s *PropertyService) Stats(ctx context.Context, id uint) (*PropertyStats, error) {
	if _, err := s.findByID(ctx, id); err != nil {
		return nil, err
	}

	var totalFloors int64
	if err := s.db.WithContext(ctx).Model(&model.Floor{}).
		Where("property_id = ?", id).Count(&totalFloors).Error; err != nil {
		return nil, apperr.Internal("failed to count floors", err)
	}

	var units []model.Unit
	if err := s.db.WithContext(ctx).Where("property_id = ?", id).Find(&units).Error; err != nil {
		return nil, apperr.Internal("failed to load units", err)
	}

	stats := SummarizeProperty(totalFloors, units)
	return &stats, nil
}

// Update validates and applies changes to an existing property.
func (s *PropertyService) Update(ctx context.Context, actor audit.Actor, id uint, input PropertyInput) (*PropertyView, error) {
	log := logger.FromContext(ctx)
	log.Info("Updating property", zap.Uint("id", id))

	property, err := s.findByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if err := s.validate(input); err != nil {
		return nil, err
	}
	if property.Name != input.Name {
		if err := s.checkDuplicateName(input.Name, id); err != nil {
			return nil, err
		}
	}

	property.Name = input.Name
	property.PropertyType = input.PropertyType
	property.Address = input.Address
	property.NumberOfFloors = input.NumberOfFloors
	property.NumberOfUnits = input.NumberOfUnits
	property.ManagedBy = input.ManagedBy
	property.UpdatedBy = actor.Username

	if err := s.db.WithContext(ctx).Save(property).Error; err != nil {
		return nil, apperr.Internal("failed to update property", err)
	}

	log.Debug("Property updated successfully", zap.Uint("id", id))
	return s.enrichOne(ctx, *property)
}

// Delete removes a property. It refuses while the property still owns floors
// or units.
func (s *PropertyService) Delete(ctx context.Context, actor audit.Actor, id uint) error {
	log := logger.FromContext(ctx)
	log.Info("Deleting property", zap.Uint("id", id))

	if _, err := s.findByID(ctx, id); err != nil {
		return err
	}

	var floorCount, unitCount int64
	if err := s.db.WithContext(ctx).Model(&model.Floor{}).
		Where("property_id = ?", id).Count(&floorCount).Error; err != nil {
		return apperr.Internal("failed to count floors", err)
	}
	if err := s.db.WithContext(ctx).Model(&model.Unit{}).
		Where("property_id = ?", id).Count(&unitCount).Error; err != nil {
		return apperr.Internal("failed to count units", err)
	}
	if floorCount > 0 || unitCount > 0 {
		log.Warn("Refusing to delete property with children",
			zap.Uint("id", id),
			zap.Int64("floors", floorCount),
			zap.Int64("units", unitCount))
		return apperr.Conflict("cannot delete property with existing floors or units; remove them first")
	}

	if err := s.db.WithContext(ctx).Delete(&model.Property{}, id).Error; err != nil {
		return apperr.Internal("failed to delete property", err)
	}

	log.Debug("Property deleted successfully", zap.Uint("id", id))
	return nil
}

func (s *PropertyService) findByID(ctx context.Context, id uint) (*model.Property, error) {
	var property model.Property
	if err := s.db.WithContext(ctx).First(&property, id).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, apperr.NotFound("property not found with id: %d", id)
		}
		return nil, apperr.Internal("failed to load property", err)
	}
	return &property, nil
}

func (s *PropertyService) validate(input PropertyInput) error {
	var details []string
	if strings.TrimSpace(input.Name) == "" {
		details = append(details, "property name cannot be empty")
	}
	if strings.TrimSpace(input.Address) == "" {
		details = append(details, "property address cannot be empty")
	}
	if !input.PropertyType.Valid() {
		details = append(details, "invalid property type")
	}
	if len(details) > 0 {
		return apperr.Invalid("invalid property", details...)
	}
	return nil
}

// checkDuplicateName enforces global name uniqueness with an exact match,
// excluding the record being updated.
func (s *PropertyService) checkDuplicateName(name string, excludeID uint) error {
	var count int64
	query := s.db.Model(&model.Property{}).Where("name = ?", name)
	if excludeID != 0 {
		query = query.Where("id <> ?", excludeID)
	}
	if err := query.Count(&count).Error; err != nil {
		return apperr.Internal("failed to check property name", err)
	}
	if count > 0 {
		return apperr.Duplicate("property with name %s already exists", name)
	}
	return nil
}

// enrichOne resolves the property's manager. A manager id unknown to the
// user service leaves the details absent; a failed lookup fails the whole
// read.
func (s *PropertyService) enrichOne(ctx context.Context, property model.Property) (*PropertyView, error) {
	view := PropertyView{Property: property}
	if property.ManagedBy == nil {
		return &view, nil
	}

	user, err := s.users.GetByID(ctx, *property.ManagedBy)
	switch {
	case err == nil:
		view.ManagedByDetails = user
	case err == userclient.ErrNotFound:
		// Dangling manager reference; the property is still served.
	default:
		logger.FromContext(ctx).Error("Unable to fetch user details",
			zap.Uint("user_id", *property.ManagedBy),
			zap.Error(err))
		return nil, apperr.Unavailable("user service is currently unavailable, please try again later", err)
	}
	return &view, nil
}

// enrichPage resolves managers for a whole page with exactly one batch
// lookup over the distinct manager ids. A failed batch fails the page.
func (s *PropertyService) enrichPage(ctx context.Context, properties []model.Property) ([]PropertyView, error) {
	var ids []uint
	seen := make(map[uint]struct{})
	for _, property := range properties {
		if property.ManagedBy == nil {
			continue
		}
		if _, dup := seen[*property.ManagedBy]; dup {
			continue
		}
		seen[*property.ManagedBy] = struct{}{}
		ids = append(ids, *property.ManagedBy)
	}

	views := make([]PropertyView, 0, len(properties))
	if len(ids) == 0 {
		for _, property := range properties {
			views = append(views, PropertyView{Property: property})
		}
		return views, nil
	}

	userMap, err := s.users.GetByIDs(ctx, ids)
	if err != nil {
		logger.FromContext(ctx).Error("Unable to fetch user details for page",
			zap.Uints("user_ids", ids),
			zap.Error(err))
		return nil, apperr.Unavailable("user service is currently unavailable, please try again later", err)
	}

	for _, property := range properties {
		view := PropertyView{Property: property}
		if property.ManagedBy != nil {
			view.ManagedByDetails = userMap[*property.ManagedBy]
		}
		views = append(views, view)
	}
	return views, nil
}
