package services

import (
	"errors"
	"strings"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"food-delivery-backend/apperr"
	"food-delivery-backend/models"
	"food-delivery-backend/validation"
)

// RestaurantInput is the payload for creating or updating a restaurant.
type RestaurantInput struct {
	Name        string  `json:"name" validate:"required,max=100"`
	Description string  `json:"description" validate:"max=500"`
	Address     string  `json:"address" validate:"required,max=200"`
	Phone       string  `json:"phone" validate:"required,phone"`
	Email       string  `json:"email" validate:"omitempty,email"`
	LogoURL     string  `json:"logo_url" validate:"omitempty,url"`
	Rating      float64 `json:"rating" validate:"gte=0,lte=5"`
	IsActive    *bool   `json:"is_active"`
}

// RestaurantFilter narrows and pages the restaurant listing.
type RestaurantFilter struct {
	SearchTerm string   `form:"search"`
	MinRating  *float64 `form:"min_rating"`
	MaxRating  *float64 `form:"max_rating"`
	SortBy     string   `form:"sort_by"`
	SortDesc   bool     `form:"sort_desc"`
	Page       int      `form:"page"`
	PageSize   int      `form:"page_size"`
}

// PagedRestaurants is a page of the restaurant listing.
type PagedRestaurants struct {
	Items      []models.Restaurant `json:"items"`
	TotalCount int64               `json:"total_count"`
	Page       int                 `json:"page"`
	PageSize   int                 `json:"page_size"`
}

// CategoryInput is the payload for creating or updating a category.
type CategoryInput struct {
	Name        string `json:"name" validate:"required,max=100"`
	Description string `json:"description" validate:"max=500"`
}

// MenuItemInput is the payload for creating or updating a menu item.
type MenuItemInput struct {
	Name         string  `json:"name" validate:"required,max=100"`
	Description  string  `json:"description" validate:"max=500"`
	Price        float64 `json:"price" validate:"required,gt=0"`
	ImageURL     string  `json:"image_url" validate:"omitempty,url"`
	IsAvailable  *bool   `json:"is_available"`
	CategoryID   uint    `json:"category_id" validate:"required"`
	RestaurantID uint    `json:"restaurant_id" validate:"required"`
}

// CatalogService owns the restaurant, category and menu item catalog.
type CatalogService struct {
	db  *gorm.DB
	log *zap.Logger
}

func NewCatalogService(db *gorm.DB, log *zap.Logger) *CatalogService {
	return &CatalogService{db: db, log: log}
}

// ListRestaurants returns active restaurants matching the filter, paged.
func (s *CatalogService) ListRestaurants(f RestaurantFilter) (*PagedRestaurants, error) {
	if f.Page < 1 {
		f.Page = 1
	}
	if f.PageSize < 1 || f.PageSize > 100 {
		f.PageSize = 10
	}

	query := s.db.Model(&models.Restaurant{}).Where("is_active = ?", true)

	if term := strings.TrimSpace(f.SearchTerm); term != "" {
		pattern := "%" + strings.ToLower(term) + "%"
		query = query.Where(
			"lower(name) LIKE ? OR lower(description) LIKE ? OR lower(address) LIKE ?",
			pattern, pattern, pattern)
	}
	if f.MinRating != nil {
		query = query.Where("rating >= ?", *f.MinRating)
	}
	if f.MaxRating != nil {
		query = query.Where("rating <= ?", *f.MaxRating)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, apperr.Internal(err)
	}

	column := "name"
	if strings.EqualFold(f.SortBy, "rating") {
		column = "rating"
	}
	direction := "asc"
	if f.SortDesc {
		direction = "desc"
	}

	var restaurants []models.Restaurant
	err := query.
		Order(column + " " + direction).
		Offset((f.Page - 1) * f.PageSize).
		Limit(f.PageSize).
		Find(&restaurants).Error
	if err != nil {
		return nil, apperr.Internal(err)
	}

	return &PagedRestaurants{
		Items:      restaurants,
		TotalCount: total,
		Page:       f.Page,
		PageSize:   f.PageSize,
	}, nil
}

func (s *CatalogService) GetRestaurant(id uint) (*models.Restaurant, error) {
	var restaurant models.Restaurant
	if err := s.db.First(&restaurant, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NotFound("restaurant")
		}
		return nil, apperr.Internal(err)
	}
	return &restaurant, nil
}

func (s *CatalogService) CreateRestaurant(in RestaurantInput) (*models.Restaurant, error) {
	if err := validation.Struct(in); err != nil {
		return nil, err
	}
	restaurant := models.Restaurant{
		Name:        in.Name,
		Description: in.Description,
		Address:     in.Address,
		Phone:       in.Phone,
		Email:       in.Email,
		LogoURL:     in.LogoURL,
		Rating:      in.Rating,
		IsActive:    true,
	}
	if in.IsActive != nil {
		restaurant.IsActive = *in.IsActive
	}
	if err := s.db.Create(&restaurant).Error; err != nil {
		return nil, apperr.Internal(err)
	}
	s.log.Info("restaurant created", zap.Uint("restaurant_id", restaurant.ID))
	return &restaurant, nil
}

func (s *CatalogService) UpdateRestaurant(id uint, in RestaurantInput) (*models.Restaurant, error) {
	if err := validation.Struct(in); err != nil {
		return nil, err
	}
	restaurant, err := s.GetRestaurant(id)
	if err != nil {
		return nil, err
	}
	restaurant.Name = in.Name
	restaurant.Description = in.Description
	restaurant.Address = in.Address
	restaurant.Phone = in.Phone
	restaurant.Email = in.Email
	restaurant.LogoURL = in.LogoURL
	restaurant.Rating = in.Rating
	if in.IsActive != nil {
		restaurant.IsActive = *in.IsActive
	}
	if err := s.db.Save(restaurant).Error; err != nil {
		return nil, apperr.Internal(err)
	}
	return restaurant, nil
}

func (s *CatalogService) DeleteRestaurant(id uint) error {
	restaurant, err := s.GetRestaurant(id)
	if err != nil {
		return err
	}
	if err := s.db.Delete(restaurant).Error; err != nil {
		return apperr.Internal(err)
	}
	s.log.Info("restaurant deleted", zap.Uint("restaurant_id", id))
	return nil
}

func (s *CatalogService) ListCategories() ([]models.Category, error) {
	var categories []models.Category
	if err := s.db.Order("name asc").Find(&categories).Error; err != nil {
		return nil, apperr.Internal(err)
	}
	return categories, nil
}

func (s *CatalogService) GetCategory(id uint) (*models.Category, error) {
	var category models.Category
	if err := s.db.First(&category, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NotFound("category")
		}
		return nil, apperr.Internal(err)
	}
	return &category, nil
}

func (s *CatalogService) CreateCategory(in CategoryInput) (*models.Category, error) {
	if err := validation.Struct(in); err != nil {
		return nil, err
	}
	category := models.Category{Name: in.Name, Description: in.Description}
	if err := s.db.Create(&category).Error; err != nil {
		return nil, apperr.Internal(err)
	}
	return &category, nil
}

func (s *CatalogService) UpdateCategory(id uint, in CategoryInput) (*models.Category, error) {
	if err := validation.Struct(in); err != nil {
		return nil, err
	}
	category, err := s.GetCategory(id)
	if err != nil {
		return nil, err
	}
	category.Name = in.Name
	category.Description = in.Description
	if err := s.db.Save(category).Error; err != nil {
		return nil, apperr.Internal(err)
	}
	return category, nil
}

func (s *CatalogService) DeleteCategory(id uint) error {
	category, err := s.GetCategory(id)
	if err != nil {
		return err
	}
	if err := s.db.Delete(category).Error; err != nil {
		return apperr.Internal(err)
	}
	return nil
}

func (s *CatalogService) GetMenuItem(id uint) (*models.MenuItem, error) {
	var item models.MenuItem
	if err := s.db.Preload("Category").First(&item, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NotFound("menu item")
		}
		return nil, apperr.Internal(err)
	}
	return &item, nil
}

// ListMenuItemsByRestaurant returns a restaurant's available items.
func (s *CatalogService) ListMenuItemsByRestaurant(restaurantID uint) ([]models.MenuItem, error) {
	if _, err := s.GetRestaurant(restaurantID); err != nil {
		return nil, err
	}
	var items []models.MenuItem
	err := s.db.Preload("Category").
		Where("restaurant_id = ? AND is_available = ?", restaurantID, true).
		Order("name asc").
		Find(&items).Error
	if err != nil {
		return nil, apperr.Internal(err)
	}
	return items, nil
}

func (s *CatalogService) ListMenuItemsByCategory(categoryID uint) ([]models.MenuItem, error) {
	var items []models.MenuItem
	err := s.db.
		Where("category_id = ? AND is_available = ?", categoryID, true).
		Order("name asc").
		Find(&items).Error
	if err != nil {
		return nil, apperr.Internal(err)
	}
	return items, nil
}

func (s *CatalogService) CreateMenuItem(in MenuItemInput) (*models.MenuItem, error) {
	if err := validation.Struct(in); err != nil {
		return nil, err
	}
	if _, err := s.GetRestaurant(in.RestaurantID); err != nil {
		return nil, err
	}
	if _, err := s.GetCategory(in.CategoryID); err != nil {
		return nil, err
	}
	item := models.MenuItem{
		Name:         in.Name,
		Description:  in.Description,
		Price:        in.Price,
		ImageURL:     in.ImageURL,
		IsAvailable:  true,
		CategoryID:   in.CategoryID,
		RestaurantID: in.RestaurantID,
	}
	if in.IsAvailable != nil {
		item.IsAvailable = *in.IsAvailable
	}
	if err := s.db.Create(&item).Error; err != nil {
		return nil, apperr.Internal(err)
	}
	s.log.Info("menu item created", zap.Uint("menu_item_id", item.ID), zap.Uint("restaurant_id", item.RestaurantID))
	return &item, nil
}

func (s *CatalogService) UpdateMenuItem(id uint, in MenuItemInput) (*models.MenuItem, error) {
	if err := validation.Struct(in); err != nil {
		return nil, err
	}
	item, err := s.GetMenuItem(id)
	if err != nil {
		return nil, err
	}
	item.Name = in.Name
	item.Description = in.Description
	item.Price = in.Price
	item.ImageURL = in.ImageURL
	item.CategoryID = in.CategoryID
	item.RestaurantID = in.RestaurantID
	if in.IsAvailable != nil {
		item.IsAvailable = *in.IsAvailable
	}
	if err := s.db.Save(item).Error; err != nil {
		return nil, apperr.Internal(err)
	}
	return item, nil
}

func (s *CatalogService) DeleteMenuItem(id uint) error {
	item, err := s.GetMenuItem(id)
	if err != nil {
		return err
	}
	if err := s.db.Delete(item).Error; err != nil {
		return apperr.Internal(err)
	}
	return nil
}
