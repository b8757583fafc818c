package backtest

import (
	"github.com/yourusername/trend-trader/internal/models"
	"github.com/yourusername/trend-trader/internal/strategy"
)

// The per-bar state transitions are standalone functions over an explicit
// account value so they can be unit-tested in isolation from the engine loop.
// Each returns the updated account and, when a fill happened, its trade record.

// applyBuy debits the gross cost (quantity * price * (1+costRate)) and opens
// the position. An unaffordable buy is silently skipped: the account is
// returned unchanged and no record is produced, which is a normal
// rejected-signal outcome rather than an error.
func applyBuy(account strategy.Account, decision strategy.Decision, bar models.Bar, costRate float64) (strategy.Account, *models.TradeRecord) {
	cost := float64(decision.Quantity) * bar.Close * (1 + costRate)
	if account.Balance < cost {
		return account, nil
	}
	account.Balance -= cost
	account.Position = decision.Quantity
	account.EntryPrice = bar.Close
	record := models.NewTradeRecord(bar.Symbol, models.TradeActionBuy, bar.Close, decision.Quantity, bar.Timestamp, decision.Reason)
	return account, &record
}

// applySell closes the full position, crediting the net proceeds
// (quantity * price * (1-costRate)) and recording realized P&L against the
// entry price. Transaction cost is deliberately excluded from the recorded
// P&L, matching the proceeds/P&L split of the fill model.
func applySell(account strategy.Account, action models.TradeAction, bar models.Bar, costRate float64, reason string) (strategy.Account, models.TradeRecord) {
	proceeds := float64(account.Position) * bar.Close * (1 - costRate)
	pnl := (bar.Close - account.EntryPrice) * float64(account.Position)
	record := models.NewClosingTradeRecord(bar.Symbol, action, bar.Close, account.Position, bar.Timestamp, pnl, reason)
	account.Balance += proceeds
	account.Position = 0
	account.EntryPrice = 0
	return account, record
}

// markToMarket values the account at the bar close: cash plus position value
// when long, cash alone when flat.
func markToMarket(account strategy.Account, closePrice float64) float64 {
	if account.HasPosition() {
		return account.Balance + float64(account.Position)*closePrice
	}
	return account.Balance
}
