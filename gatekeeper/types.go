// Package gatekeeper is the sole authority for order and position state.
// It composes an idempotent command registry, a pre-flight execution
// guard, the single-writer state controller, and a reconciliation engine
// that latches the system into safe mode on any drift against the
// exchange's authoritative positions.
package gatekeeper

import (
	"github.com/Shiva-129/OmniTrade-system/clock"
	"github.com/Shiva-129/OmniTrade-system/decimal"
)

type Side string

const (
	SideBuy  Side = "BUY"
	SideSell Side = "SELL"
)

type OrderType string

const (
	OrderTypeLimit  OrderType = "LIMIT"
	OrderTypeMarket OrderType = "MARKET"
)

type TimeInForce string

const (
	TimeInForceGTC TimeInForce = "GTC"
	TimeInForceIOC TimeInForce = "IOC"
	TimeInForceFOK TimeInForce = "FOK"
)

// OrderIntent is an immutable order request from a strategy engine.
type OrderIntent struct {
	ClientOrderID string
	Symbol        string
	Side          Side
	OrderType     OrderType
	Quantity      *decimal.Decimal
	Price         *decimal.Decimal // nil for MARKET
	TimeInForce   TimeInForce
	CreatedAt     clock.EpochUs
}

type ReportStatus string

const (
	ReportNew          ReportStatus = "NEW"
	ReportPartialFill  ReportStatus = "PARTIAL_FILL"
	ReportFilled       ReportStatus = "FILLED"
	ReportCanceled     ReportStatus = "CANCELED"
	ReportRejected     ReportStatus = "REJECTED"
)

// ExecutionReport is an authoritative fill/status update from the
// exchange. FilledQuantity is the quantity filled BY THIS REPORT (a
// delta), not a cumulative total — positions accumulate as the sum of
// signed(FilledQuantity, Side) across all reports for a symbol.
type ExecutionReport struct {
	ClientOrderID    string
	ExchangeOrderID  string
	Symbol           string
	Side             Side
	Status           ReportStatus
	FilledQuantity   *decimal.Decimal
	LastFilledPrice  *decimal.Decimal
	RemainingQty     *decimal.Decimal
	ExchangeTs       clock.EpochUs
}

// SubmitResult is the outcome of Gatekeeper.SubmitIntent.
type SubmitResult string

const (
	SubmitAccepted  SubmitResult = "ACCEPTED"
	SubmitDuplicate SubmitResult = "DUPLICATE"
)
