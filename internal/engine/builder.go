package engine

import "tradebridge/internal/domain"

// BuildOrder maps a normalized action/quantity/type/price set into a
// ready-to-submit order, validating the type-specific required fields:
//
//	MARKET      action, quantity
//	LIMIT       + price (limit)
//	STOP        + aux_price or price (stop trigger)
//	STOP_LIMIT  + price (limit) and aux_price (stop trigger)
func BuildOrder(side domain.OrderSide, quantity int64, orderType domain.OrderType, price, auxPrice *float64) (domain.ReconciledOrder, error) {
	order := domain.ReconciledOrder{
		Side:     side,
		Quantity: quantity,
		Type:     orderType,
	}

	switch orderType {
	case domain.OrderTypeMarket:

	case domain.OrderTypeLimit:
		if price == nil {
			return domain.ReconciledOrder{}, &MissingFieldError{OrderType: orderType, Field: "price"}
		}
		order.LimitPrice = price

	case domain.OrderTypeStop:
		// Either field may carry the trigger; aux_price wins when both set.
		trigger := auxPrice
		if trigger == nil {
			trigger = price
		}
		if trigger == nil {
			return domain.ReconciledOrder{}, &MissingFieldError{OrderType: orderType, Field: "aux_price or price"}
		}
		order.StopPrice = trigger

	case domain.OrderTypeStopLimit:
		if price == nil {
			return domain.ReconciledOrder{}, &MissingFieldError{OrderType: orderType, Field: "price"}
		}
		if auxPrice == nil {
			return domain.ReconciledOrder{}, &MissingFieldError{OrderType: orderType, Field: "aux_price"}
		}
		order.LimitPrice = price
		order.StopPrice = auxPrice
	}

	return order, nil
}
