package lifecycle

// OrderStatus is the fulfilment state of an order.
type OrderStatus string

const (
	OrderPending    OrderStatus = "pending"
	OrderConfirmed  OrderStatus = "confirmed"
	OrderProcessing OrderStatus = "processing"
	OrderShipped    OrderStatus = "shipped"
	OrderDelivered  OrderStatus = "delivered"
	OrderCancelled  OrderStatus = "cancelled"
)

// OrderEvent triggers an order status change.
type OrderEvent string

const (
	OrderConfirm OrderEvent = "confirm"
	OrderProcess OrderEvent = "process"
	OrderShip    OrderEvent = "ship"
	OrderDeliver OrderEvent = "deliver"
	OrderCancel  OrderEvent = "cancel"
	// OrderRefund is raised when the order's payment is refunded. It cancels
	// the order from any state.
	OrderRefund OrderEvent = "refund"
)

// PaymentState is the order-side view of payment (Order.payment_status).
type PaymentState string

const (
	PaymentStatePending  PaymentState = "pending"
	PaymentStatePaid     PaymentState = "paid"
	PaymentStateFailed   PaymentState = "failed"
	PaymentStateRefunded PaymentState = "refunded"
)

var orderTable = table[OrderStatus, OrderEvent]{
	OrderPending: {
		OrderConfirm: OrderConfirmed,
		OrderCancel:  OrderCancelled,
		OrderRefund:  OrderCancelled,
	},
	OrderConfirmed: {
		OrderProcess: OrderProcessing,
		OrderCancel:  OrderCancelled,
		OrderRefund:  OrderCancelled,
	},
	OrderProcessing: {
		OrderShip:   OrderShipped,
		OrderRefund: OrderCancelled,
	},
	OrderShipped: {
		OrderDeliver: OrderDelivered,
		OrderRefund:  OrderCancelled,
	},
	OrderDelivered: {
		OrderRefund: OrderCancelled,
	},
	OrderCancelled: {
		OrderRefund: OrderCancelled,
	},
}

// NextOrder returns the status reached by applying ev to from.
func NextOrder(from OrderStatus, ev OrderEvent) (OrderStatus, error) {
	return orderTable.next("order", from, ev)
}

// CanCancel reports whether an order in status s may be cancelled.
func CanCancel(s OrderStatus) bool {
	_, err := NextOrder(s, OrderCancel)
	return err == nil
}

// EventForTarget maps a requested target status onto the event that reaches
// it. ok is false for targets no event produces (pending).
func EventForTarget(target OrderStatus) (OrderEvent, bool) {
	switch target {
	case OrderConfirmed:
		return OrderConfirm, true
	case OrderProcessing:
		return OrderProcess, true
	case OrderShipped:
		return OrderShip, true
	case OrderDelivered:
		return OrderDeliver, true
	case OrderCancelled:
		return OrderCancel, true
	}
	return "", false
}

// Terminal reports whether no forward event leaves s.
func (s OrderStatus) Terminal() bool {
	return s == OrderDelivered || s == OrderCancelled
}

// Valid reports whether s is a known order status.
func (s OrderStatus) Valid() bool {
	_, ok := orderTable[s]
	return ok
}
