package domain

import (
	"errors"
	"time"
)

// Action is the trade-signal kind. Picked as enum-by-string per spec.md §9's
// open question, with Valid() checking the decoded string so an unknown
// action is rejected rather than silently coerced.
type Action string

const (
	ActionOpen   Action = "Open"
	ActionClose  Action = "Close"
	ActionModify Action = "Modify"
)

func (a Action) Valid() bool {
	switch a {
	case ActionOpen, ActionClose, ActionModify:
		return true
	}
	return false
}

// OrderType is the direction/style of an order.
type OrderType string

const (
	OrderBuy       OrderType = "Buy"
	OrderSell      OrderType = "Sell"
	OrderBuyLimit  OrderType = "BuyLimit"
	OrderSellLimit OrderType = "SellLimit"
	OrderBuyStop   OrderType = "BuyStop"
	OrderSellStop  OrderType = "SellStop"
)

func (o OrderType) Valid() bool {
	switch o {
	case OrderBuy, OrderSell, OrderBuyLimit, OrderSellLimit, OrderBuyStop, OrderSellStop:
		return true
	}
	return false
}

// Reversed returns the opposite direction, per spec.md §4.4 step 2: Buy<->Sell,
// BuyLimit<->SellLimit, BuyStop<->SellStop.
func (o OrderType) Reversed() OrderType {
	switch o {
	case OrderBuy:
		return OrderSell
	case OrderSell:
		return OrderBuy
	case OrderBuyLimit:
		return OrderSellLimit
	case OrderSellLimit:
		return OrderBuyLimit
	case OrderBuyStop:
		return OrderSellStop
	case OrderSellStop:
		return OrderBuyStop
	}
	return o
}

// AsLimit translates a market order type into its pending-limit counterpart
// for the LimitOrder sync policy (spec.md §4.9 PositionSnapshot/SyncRequest).
func (o OrderType) AsLimit() OrderType {
	switch o {
	case OrderBuy:
		return OrderBuyLimit
	case OrderSell:
		return OrderSellLimit
	}
	return o
}

// ErrMagicNumberRange names a magic number outside the int64 range (spec.md
// §9's open question, i32 vs i64 in the source). Nothing in the module
// returns it: the wire codec decodes magic_number directly as an int64.
var ErrMagicNumberRange = errors.New("magic number out of int64 range")

// TradeSignal is one Master-originated trade event.
type TradeSignal struct {
	Action        Action
	Ticket        int64
	Symbol        *string
	OrderType     *OrderType
	Lots          *float64
	OpenPrice     *float64
	StopLoss      *float64
	TakeProfit    *float64
	MagicNumber   *int64
	Comment       *string
	Timestamp     time.Time
	SourceAccount Account
	CloseRatio    *float64 // 0 < r <= 1; absent means full close

	// SyncExpiryMinutes carries a LimitOrder sync-mode expiry (spec.md
	// §4.9's PositionSnapshot/SyncRequest policy); nil for ordinary
	// TradeSignal-sourced Opens.
	SyncExpiryMinutes *int
}

// Clone returns a deep-enough copy so transform() never mutates the input
// signal in place (spec.md §4.4: transform returns a new signal).
func (s TradeSignal) Clone() TradeSignal {
	out := s
	if s.Symbol != nil {
		v := *s.Symbol
		out.Symbol = &v
	}
	if s.OrderType != nil {
		v := *s.OrderType
		out.OrderType = &v
	}
	if s.Lots != nil {
		v := *s.Lots
		out.Lots = &v
	}
	if s.OpenPrice != nil {
		v := *s.OpenPrice
		out.OpenPrice = &v
	}
	if s.StopLoss != nil {
		v := *s.StopLoss
		out.StopLoss = &v
	}
	if s.TakeProfit != nil {
		v := *s.TakeProfit
		out.TakeProfit = &v
	}
	if s.MagicNumber != nil {
		v := *s.MagicNumber
		out.MagicNumber = &v
	}
	if s.Comment != nil {
		v := *s.Comment
		out.Comment = &v
	}
	if s.CloseRatio != nil {
		v := *s.CloseRatio
		out.CloseRatio = &v
	}
	if s.SyncExpiryMinutes != nil {
		v := *s.SyncExpiryMinutes
		out.SyncExpiryMinutes = &v
	}
	return out
}
