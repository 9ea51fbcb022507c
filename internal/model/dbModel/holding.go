package dbModel

import (
	"time"

	"github.com/shopspring/decimal"
)

type Holding struct {
	HoldingID    string          `db:"holding_id"`
	Ticker       string          `db:"ticker"`
	Qty          int             `db:"qty"`
	AvgCost      decimal.Decimal `db:"avg_cost"`
	PurchaseDate time.Time       `db:"purchase_date"`
	Owner        string          `db:"owner"`
	DtCreate     time.Time       `db:"dt_create"`
}
