package dbConverter

import (
	"github.com/mgupta0995/stockfolio/internal/model"
	"github.com/mgupta0995/stockfolio/internal/model/dbModel"
)

func ConvertHolding(dbHolding dbModel.Holding) model.Holding {
	return model.Holding{
		ID:           dbHolding.HoldingID,
		Ticker:       dbHolding.Ticker,
		Qty:          dbHolding.Qty,
		AvgCost:      dbHolding.AvgCost,
		PurchaseDate: dbHolding.PurchaseDate,
		Owner:        dbHolding.Owner,
		CreatedAt:    dbHolding.DtCreate,
	}
}

func ConvertHoldings(dbHoldings []dbModel.Holding) []model.Holding {
	holdings := make([]model.Holding, 0, len(dbHoldings))
	for _, h := range dbHoldings {
		holdings = append(holdings, ConvertHolding(h))
	}
	return holdings
}
