package domain

// lineRank orders the forward fulfilment path. Lines never move to a lower rank.
var lineRank = map[LineStatus]int{
	LineStatusOrdered:        0,
	LineStatusShipped:        1,
	LineStatusOutForDelivery: 2,
	LineStatusDelivered:      3,
}

// CanAdvance reports whether a line may move from -> to along ORDERED, SHIPPED, OUT_FOR_DELIVERY, DELIVERED.
func CanAdvance(from, to LineStatus) bool {
	fromRank, okFrom := lineRank[from]
	toRank, okTo := lineRank[to]
	return okFrom && okTo && toRank > fromRank
}

// IsCancellable reports whether the line has not reached the customer yet.
func (s LineStatus) IsCancellable() bool {
	switch s {
	case LineStatusOrdered, LineStatusShipped, LineStatusOutForDelivery:
		return true
	}
	return false
}

func (s LineStatus) IsShippedStage() bool {
	return s == LineStatusShipped || s == LineStatusOutForDelivery
}

func (s LineStatus) Valid() bool {
	switch s {
	case LineStatusOrdered, LineStatusShipped, LineStatusOutForDelivery, LineStatusDelivered,
		LineStatusCancelled, LineStatusReturnRequested, LineStatusReturned:
		return true
	}
	return false
}

// DeriveOrderStatus computes the order status from the full multiset of line statuses.
// Rules are evaluated in order and the first match wins.
func DeriveOrderStatus(lines []LineStatus) OrderStatus {
	if len(lines) == 0 {
		return OrderStatusPending
	}

	present := make(map[LineStatus]bool, len(lines))
	for _, s := range lines {
		present[s] = true
	}

	if len(present) == 1 {
		switch lines[0] {
		case LineStatusOrdered:
			return OrderStatusPending
		case LineStatusDelivered:
			return OrderStatusDelivered
		case LineStatusCancelled:
			return OrderStatusCancelled
		case LineStatusReturned:
			return OrderStatusReturned
		}
	}

	if onlyContains(present, LineStatusDelivered, LineStatusCancelled) {
		return OrderStatusPartiallyDelivered
	}

	if present[LineStatusCancelled] && onlyContains(present, LineStatusShipped, LineStatusOutForDelivery, LineStatusCancelled) {
		return OrderStatusPartiallyShipped
	}

	return OrderStatusInProgress
}

func onlyContains(present map[LineStatus]bool, allowed ...LineStatus) bool {
	for s := range present {
		ok := false
		for _, a := range allowed {
			if s == a {
				ok = true
				break
			}
		}
		if !ok {
			return false
		}
	}
	return true
}

// IsTerminal reports whether no further line transitions can change the order.
func (s OrderStatus) IsTerminal() bool {
	return s == OrderStatusDelivered || s == OrderStatusCancelled || s == OrderStatusReturned
}
