package lifecycle

// PaymentStatus is the state of a payment record.
type PaymentStatus string

const (
	PaymentPending    PaymentStatus = "pending"
	PaymentProcessing PaymentStatus = "processing"
	PaymentCompleted  PaymentStatus = "completed"
	PaymentFailed     PaymentStatus = "failed"
	PaymentCancelled  PaymentStatus = "cancelled"
	PaymentRefunded   PaymentStatus = "refunded"
)

// PaymentEvent triggers a payment status change.
type PaymentEvent string

const (
	PaymentBegin   PaymentEvent = "begin"
	PaymentSucceed PaymentEvent = "succeed"
	PaymentFail    PaymentEvent = "fail"
	// PaymentOrderCancelled follows the order into cancellation. A completed
	// payment is cancelled too; no refund is issued.
	PaymentOrderCancelled PaymentEvent = "order_cancelled"
	PaymentRefund         PaymentEvent = "refund"
)

var paymentTable = table[PaymentStatus, PaymentEvent]{
	PaymentPending: {
		PaymentBegin:          PaymentProcessing,
		PaymentFail:           PaymentFailed,
		PaymentOrderCancelled: PaymentCancelled,
	},
	PaymentProcessing: {
		PaymentSucceed:        PaymentCompleted,
		PaymentFail:           PaymentFailed,
		PaymentOrderCancelled: PaymentCancelled,
	},
	PaymentCompleted: {
		PaymentRefund:         PaymentRefunded,
		PaymentOrderCancelled: PaymentCancelled,
	},
	PaymentFailed: {
		PaymentOrderCancelled: PaymentCancelled,
	},
	PaymentCancelled: {},
	PaymentRefunded:  {},
}

// NextPayment returns the status reached by applying ev to from.
func NextPayment(from PaymentStatus, ev PaymentEvent) (PaymentStatus, error) {
	return paymentTable.next("payment", from, ev)
}

// CanRefund reports whether a payment in status s may be refunded.
func CanRefund(s PaymentStatus) bool {
	_, err := NextPayment(s, PaymentRefund)
	return err == nil
}

// Valid reports whether s is a known payment status.
func (s PaymentStatus) Valid() bool {
	_, ok := paymentTable[s]
	return ok
}
