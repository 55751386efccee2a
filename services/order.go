package services

import (
	"errors"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"food-delivery-backend/apperr"
	"food-delivery-backend/models"
	"food-delivery-backend/validation"
)

// OrderItemInput is one cart line.
type OrderItemInput struct {
	MenuItemID uint `json:"menu_item_id" validate:"required"`
	Quantity   int  `json:"quantity" validate:"required,min=1,max=100"`
}

// CreateOrderInput is the payload for placing an order.
type CreateOrderInput struct {
	RestaurantID    uint             `json:"restaurant_id" validate:"required"`
	DeliveryAddress string           `json:"delivery_address" validate:"required,max=200"`
	ContactPhone    string           `json:"contact_phone" validate:"required,phone"`
	Items           []OrderItemInput `json:"items" validate:"required,min=1,dive"`
}

// OrderService owns order placement, status updates and deletion.
type OrderService struct {
	db  *gorm.DB
	log *zap.Logger
	now func() time.Time
}

func NewOrderService(db *gorm.DB, log *zap.Logger) *OrderService {
	return &OrderService{
		db:  db,
		log: log,
		now: func() time.Time { return time.Now().UTC() },
	}
}

// Create validates the cart against the live catalog and persists the
// order with its items in one transaction. Item prices are snapshotted
// from the menu at call time; the total is the sum of price*quantity.
func (s *OrderService) Create(userID uint, in CreateOrderInput) (*models.Order, error) {
	if err := validation.Struct(in); err != nil {
		return nil, err
	}

	var restaurant models.Restaurant
	if err := s.db.First(&restaurant, in.RestaurantID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NotFound("restaurant")
		}
		return nil, apperr.Internal(err)
	}

	ids := make([]uint, 0, len(in.Items))
	for _, item := range in.Items {
		ids = append(ids, item.MenuItemID)
	}

	var menuItems []models.MenuItem
	if err := s.db.Where("id IN ? AND is_available = ?", ids, true).Find(&menuItems).Error; err != nil {
		return nil, apperr.Internal(err)
	}
	if len(menuItems) != len(ids) {
		return nil, apperr.ValidationField("Items", "some menu items do not exist or are not available")
	}

	byID := make(map[uint]models.MenuItem, len(menuItems))
	for _, mi := range menuItems {
		if mi.RestaurantID != in.RestaurantID {
			return nil, apperr.ValidationField("Items", "all menu items must belong to the selected restaurant")
		}
		byID[mi.ID] = mi
	}

	now := s.now()
	order := models.Order{
		UserID:          userID,
		RestaurantID:    in.RestaurantID,
		DeliveryAddress: in.DeliveryAddress,
		ContactPhone:    in.ContactPhone,
		Status:          models.StatusPending,
		CreatedAt:       now,
	}

	var total float64
	for _, item := range in.Items {
		mi := byID[item.MenuItemID]
		order.OrderItems = append(order.OrderItems, models.OrderItem{
			MenuItemID: mi.ID,
			Quantity:   item.Quantity,
			Price:      mi.Price,
			CreatedAt:  now,
		})
		total += mi.Price * float64(item.Quantity)
	}
	order.TotalAmount = total

	err := s.db.Transaction(func(tx *gorm.DB) error {
		return tx.Create(&order).Error
	})
	if err != nil {
		return nil, apperr.Internal(err)
	}

	s.log.Info("order placed",
		zap.Uint("order_id", order.ID),
		zap.Uint("user_id", userID),
		zap.Uint("restaurant_id", in.RestaurantID),
		zap.Float64("total", total))

	return s.GetByID(order.ID)
}

// GetByID loads an order with its relations.
func (s *OrderService) GetByID(id uint) (*models.Order, error) {
	var order models.Order
	err := s.db.
		Preload("OrderItems.MenuItem").
		Preload("Restaurant").
		Preload("User").
		First(&order, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NotFound("order")
		}
		return nil, apperr.Internal(err)
	}
	return &order, nil
}

// ListByUser returns a user's orders, newest first.
func (s *OrderService) ListByUser(userID uint) ([]models.Order, error) {
	var orders []models.Order
	err := s.db.
		Preload("OrderItems.MenuItem").
		Preload("Restaurant").
		Where("user_id = ?", userID).
		Order("created_at desc").
		Find(&orders).Error
	if err != nil {
		return nil, apperr.Internal(err)
	}
	return orders, nil
}

// ListByRestaurant returns a restaurant's orders, newest first.
func (s *OrderService) ListByRestaurant(restaurantID uint) ([]models.Order, error) {
	var orders []models.Order
	err := s.db.
		Preload("OrderItems.MenuItem").
		Preload("User").
		Where("restaurant_id = ?", restaurantID).
		Order("created_at desc").
		Find(&orders).Error
	if err != nil {
		return nil, apperr.Internal(err)
	}
	return orders, nil
}

// UpdateStatus sets an order's status. Any transition is accepted;
// moving to Delivered stamps DeliveredAt and no other status touches it.
func (s *OrderService) UpdateStatus(id uint, status models.OrderStatus) (*models.Order, error) {
	if !models.ValidOrderStatus(status) {
		return nil, apperr.ValidationField("Status", "unknown order status")
	}

	var order models.Order
	if err := s.db.First(&order, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NotFound("order")
		}
		return nil, apperr.Internal(err)
	}

	order.Status = status
	if status == models.StatusDelivered {
		delivered := s.now()
		order.DeliveredAt = &delivered
	}

	if err := s.db.Save(&order).Error; err != nil {
		return nil, apperr.Internal(err)
	}

	s.log.Info("order status updated", zap.Uint("order_id", id), zap.String("status", string(status)))
	return s.GetByID(id)
}

// Delete removes an order and its items in one transaction. Only orders
// still Pending or already Cancelled may be deleted; items go first to
// satisfy the foreign key.
func (s *OrderService) Delete(id uint) error {
	var order models.Order
	if err := s.db.First(&order, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperr.NotFound("order")
		}
		return apperr.Internal(err)
	}

	if !order.Deletable() {
		return apperr.InvalidState("only pending or cancelled orders can be deleted")
	}

	err := s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("order_id = ?", id).Delete(&models.OrderItem{}).Error; err != nil {
			return err
		}
		return tx.Delete(&models.Order{}, id).Error
	})
	if err != nil {
		return apperr.Internal(err)
	}

	s.log.Info("order deleted", zap.Uint("order_id", id))
	return nil
}
