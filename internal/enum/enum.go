package enum

// ── Group A: State machines (CHECK constrained in DB) ──

const (
	OrderStatusPending = "pending"
	OrderStatusCooking = "cooking"
	OrderStatusReady   = "ready"
	OrderStatusServed  = "served"
	OrderStatusHabis   = "habis" // sold out, terminal
)

const (
	PaymentStatusPending = "pending"
	PaymentStatusSuccess = "success"
	PaymentStatusPaid    = "paid"
	PaymentStatusFailed  = "failed"
)

const (
	ReservationStatusPending   = "pending"
	ReservationStatusConfirmed = "confirmed"
	ReservationStatusCompleted = "completed"
	ReservationStatusCancelled = "cancelled"
)

// ── Group B: Roles and labels (CHECK constrained in DB) ──

const (
	UserRoleCustomer = "customer"
	UserRoleAdmin    = "admin"
	UserRoleKitchen  = "kitchen"
	UserRoleKasir    = "kasir"
)

const (
	TableStatusAvailable   = "Tersedia"
	TableStatusOccupied    = "Terisi"
	TableStatusReserved    = "Reservasi"
	TableStatusMaintenance = "Maintenance"
)

const (
	PaymentMethodCash    = "cash"
	PaymentMethodCard    = "card"
	PaymentMethodQRIS    = "qris"
	PaymentMethodEWallet = "ewallet"
)

// ── Group C: Activity log vocabulary ──

const (
	ActionCreate = "create"
	ActionUpdate = "update"
	ActionDelete = "delete"
)

const (
	TargetOrder       = "Order"
	TargetMenuItem    = "MenuItem"
	TargetReservation = "Reservation"
	TargetTable       = "Table"
	TargetUser        = "User"
)

// Membership checks used at request boundaries.

func IsOrderStatus(s string) bool {
	switch s {
	case OrderStatusPending, OrderStatusCooking, OrderStatusReady, OrderStatusServed, OrderStatusHabis:
		return true
	}
	return false
}

func IsPaymentStatus(s string) bool {
	switch s {
	case PaymentStatusPending, PaymentStatusSuccess, PaymentStatusPaid, PaymentStatusFailed:
		return true
	}
	return false
}

func IsReservationStatus(s string) bool {
	switch s {
	case ReservationStatusPending, ReservationStatusConfirmed, ReservationStatusCompleted, ReservationStatusCancelled:
		return true
	}
	return false
}

func IsUserRole(s string) bool {
	switch s {
	case UserRoleCustomer, UserRoleAdmin, UserRoleKitchen, UserRoleKasir:
		return true
	}
	return false
}

func IsTableStatus(s string) bool {
	switch s {
	case TableStatusAvailable, TableStatusOccupied, TableStatusReserved, TableStatusMaintenance:
		return true
	}
	return false
}

func IsPaymentMethod(s string) bool {
	switch s {
	case PaymentMethodCash, PaymentMethodCard, PaymentMethodQRIS, PaymentMethodEWallet:
		return true
	}
	return false
}

// IsStaffRole reports whether the role belongs to restaurant staff rather
// than a customer.
func IsStaffRole(s string) bool {
	return s == UserRoleAdmin || s == UserRoleKitchen || s == UserRoleKasir
}
