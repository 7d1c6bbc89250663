package auth

import "flora-kart/internal/model"

// CanViewOrder allows the owner or an admin.
func CanViewOrder(p Principal, order *model.Order) bool {
	return p.IsAdmin() || order.OwnedBy(p.ID)
}

// CanUpdateOrderStatus allows admins any transition and owners only to cancel their own order.
func CanUpdateOrderStatus(p Principal, order *model.Order, next model.OrderStatus) bool {
	if p.IsAdmin() {
		return true
	}
	return next == model.OrderStatusCancelled && order.OwnedBy(p.ID)
}

// CanDeleteOrder allows admins only.
func CanDeleteOrder(p Principal) bool {
	return p.IsAdmin()
}
