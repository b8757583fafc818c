package models

import (
	"time"

	"github.com/google/uuid"
)

// TradeAction identifies the kind of fill recorded in the trade log.
type TradeAction string

const (
	TradeActionBuy       TradeAction = "BUY"
	TradeActionSell      TradeAction = "SELL"
	TradeActionAutoClose TradeAction = "AUTO_CLOSE"
)

// TradeRecord is an immutable log entry produced on each simulated or live
// fill. Realized P&L is only meaningful on closing fills (SELL/AUTO_CLOSE);
// on entries it is nil.
type TradeRecord struct {
	ID        uuid.UUID   `json:"id"`
	Symbol    string      `json:"symbol"`
	Action    TradeAction `json:"action"`
	Price     float64     `json:"price"`
	Quantity  int         `json:"quantity"`
	Timestamp time.Time   `json:"timestamp"`
	PnL       *float64    `json:"pnl,omitempty"`
	Reason    string      `json:"reason"`
}

// NewTradeRecord creates an entry-side trade record.
func NewTradeRecord(symbol string, action TradeAction, price float64, qty int, ts time.Time, reason string) TradeRecord {
	return TradeRecord{
		ID:        uuid.New(),
		Symbol:    symbol,
		Action:    action,
		Price:     price,
		Quantity:  qty,
		Timestamp: ts,
		Reason:    reason,
	}
}

// NewClosingTradeRecord creates a closing trade record carrying realized P&L.
func NewClosingTradeRecord(symbol string, action TradeAction, price float64, qty int, ts time.Time, pnl float64, reason string) TradeRecord {
	record := NewTradeRecord(symbol, action, price, qty, ts, reason)
	record.PnL = &pnl
	return record
}

// IsClosing reports whether the record closes a position.
func (t TradeRecord) IsClosing() bool {
	return t.Action == TradeActionSell || t.Action == TradeActionAutoClose
}
