package models

import "time"

// OrderStatus enumerates the states of an order's lifecycle.
type OrderStatus string

const (
	StatusPending        OrderStatus = "Pending"
	StatusConfirmed      OrderStatus = "Confirmed"
	StatusInPreparation  OrderStatus = "InPreparation"
	StatusOutForDelivery OrderStatus = "OutForDelivery"
	StatusDelivered      OrderStatus = "Delivered"
	StatusCancelled      OrderStatus = "Cancelled"
)

var orderStatuses = map[OrderStatus]bool{
	StatusPending:        true,
	StatusConfirmed:      true,
	StatusInPreparation:  true,
	StatusOutForDelivery: true,
	StatusDelivered:      true,
	StatusCancelled:      true,
}

// ValidOrderStatus reports whether s names a known status.
func ValidOrderStatus(s OrderStatus) bool {
	return orderStatuses[s]
}

type Order struct {
	ID              uint        `json:"id" gorm:"primaryKey"`
	UserID          uint        `json:"user_id" gorm:"not null;index"`
	User            *User       `json:"user,omitempty" gorm:"foreignKey:UserID"`
	RestaurantID    uint        `json:"restaurant_id" gorm:"not null;index"`
	Restaurant      *Restaurant `json:"restaurant,omitempty" gorm:"foreignKey:RestaurantID"`
	Status          OrderStatus `json:"status" gorm:"not null;default:'Pending'"`
	TotalAmount     float64     `json:"total_amount"`
	DeliveryAddress string      `json:"delivery_address" gorm:"not null"`
	ContactPhone    string      `json:"contact_phone"`
	DeliveredAt     *time.Time  `json:"delivered_at,omitempty"`
	OrderItems      []OrderItem `json:"order_items,omitempty" gorm:"foreignKey:OrderID"`
	CreatedAt       time.Time   `json:"created_at"`
	UpdatedAt       time.Time   `json:"updated_at"`
}

// Deletable reports whether the order may be removed. Orders that have
// been confirmed are part of the kitchen's workflow and must be kept.
func (o *Order) Deletable() bool {
	return o.Status == StatusPending || o.Status == StatusCancelled
}

// OrderItem snapshots a menu item at purchase time. Price is copied from
// the menu item when the order is placed so historical totals are stable.
type OrderItem struct {
	ID         uint      `json:"id" gorm:"primaryKey"`
	OrderID    uint      `json:"order_id" gorm:"not null;index"`
	MenuItemID uint      `json:"menu_item_id" gorm:"not null"`
	MenuItem   *MenuItem `json:"menu_item,omitempty" gorm:"foreignKey:MenuItemID"`
	Quantity   int       `json:"quantity" gorm:"not null"`
	Price      float64   `json:"price" gorm:"not null"`
	CreatedAt  time.Time `json:"created_at"`
}
