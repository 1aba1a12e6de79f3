package gatekeeper

import (
	"context"
	"encoding/json"

	log "github.com/sirupsen/logrus"

	"github.com/Shiva-129/OmniTrade-system/decimal"
	"github.com/Shiva-129/OmniTrade-system/store"
)

// StateController is the sole mutator of orders-state and
// positions-state, grounded on state_controller.py's
// process_execution_report: overwrite the order's latest report, and if
// the report settles quantity (PARTIAL_FILL or FILLED) fold
// signed(filled_quantity, side) into the symbol's position using the
// store's atomic decimal increment — never a read-then-write against the
// position.
type StateController struct {
	store store.Store
}

func NewStateController(st store.Store) *StateController {
	return &StateController{store: st}
}

// ProcessExecutionReport is the only entry point for state mutation.
func (c *StateController) ProcessExecutionReport(ctx context.Context, report ExecutionReport) error {
	if err := c.updateOrderState(ctx, report); err != nil {
		return err
	}

	if report.Status == ReportPartialFill || report.Status == ReportFilled {
		if err := c.updatePosition(ctx, report); err != nil {
			return err
		}
	}

	log.WithFields(log.Fields{
		"client_order_id": report.ClientOrderID,
		"status":          report.Status,
		"filled_qty":      decimal.String(report.FilledQuantity),
	}).Info("state_updated")
	return nil
}

type wireReport struct {
	ClientOrderID   string `json:"client_order_id"`
	ExchangeOrderID string `json:"exchange_order_id"`
	Symbol          string `json:"symbol"`
	Side            Side   `json:"side"`
	Status          ReportStatus `json:"status"`
	FilledQuantity  string `json:"filled_quantity"`
	LastFilledPrice string `json:"last_filled_price,omitempty"`
	RemainingQty    string `json:"remaining_quantity"`
	ExchangeTs      int64  `json:"exchange_ts"`
}

func (c *StateController) updateOrderState(ctx context.Context, report ExecutionReport) error {
	w := wireReport{
		ClientOrderID:   report.ClientOrderID,
		ExchangeOrderID: report.ExchangeOrderID,
		Symbol:          report.Symbol,
		Side:            report.Side,
		Status:          report.Status,
		FilledQuantity:  decimal.String(report.FilledQuantity),
		RemainingQty:    decimal.String(report.RemainingQty),
		ExchangeTs:      int64(report.ExchangeTs),
	}
	if report.LastFilledPrice != nil {
		w.LastFilledPrice = decimal.String(report.LastFilledPrice)
	}
	blob, err := json.Marshal(w)
	if err != nil {
		return err
	}
	return c.store.SetString(ctx, store.KeyGKOrder(report.ClientOrderID), string(blob))
}

func (c *StateController) updatePosition(ctx context.Context, report ExecutionReport) error {
	signed := decimal.Signed(report.FilledQuantity, string(report.Side))
	_, err := c.store.IncrDecimal(ctx, store.KeyGKPosition(report.Symbol), signed)
	return err
}

// GetPosition returns the current signed position for symbol.
func (c *StateController) GetPosition(ctx context.Context, symbol string) (*decimal.Decimal, error) {
	return c.store.GetDecimal(ctx, store.KeyGKPosition(symbol))
}
