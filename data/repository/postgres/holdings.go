package postgres

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"

	"github.com/jackc/pgx/v5/pgconn"
	_ "github.com/jackc/pgx/v5/stdlib" // pgx driver
	"github.com/mgupta0995/stockfolio/data/repository"
	"github.com/mgupta0995/stockfolio/internal/converter/dbConverter"
	"github.com/mgupta0995/stockfolio/internal/model"
	"github.com/mgupta0995/stockfolio/internal/model/dbModel"
	"github.com/mgupta0995/stockfolio/utils"
)

func (r *Postgres) ListHoldings(ctx context.Context) (holdings []model.Holding, err error) {
	rqID := utils.GetRequestIDFromCtx(ctx)
	query := `
		SELECT holding_id, ticker, qty, avg_cost, purchase_date, owner, dt_create
		FROM holdings
		ORDER BY dt_create DESC
		`

	slog.Debug("ListHoldings start", slog.String("rqID", rqID), slog.String("query", query))
	defer func() {
		if err != nil {
			slog.Error("ListHoldings failed", slog.String("rqID", rqID), slog.String("err", err.Error()))
		} else {
			slog.Debug("ListHoldings completed", slog.String("rqID", rqID))
		}
	}()

	rows, err := r.db.QueryxContext(ctx, query)
	if err != nil {
		return nil, err
	}

	defer rows.Close()

	dbHoldings := make([]dbModel.Holding, 0)
	for rows.Next() {
		var h dbModel.Holding
		err = rows.StructScan(&h)
		if err != nil {
			return nil, err
		}
		dbHoldings = append(dbHoldings, h)
	}

	return dbConverter.ConvertHoldings(dbHoldings), nil
}

func (r *Postgres) CreateHolding(ctx context.Context, input model.HoldingInput) (holding model.Holding, err error) {
	rqID := utils.GetRequestIDFromCtx(ctx)
	query := `
		INSERT INTO holdings(ticker, qty, avg_cost, purchase_date, owner)
		VALUES($1, $2, $3, $4, $5)
		RETURNING holding_id, ticker, qty, avg_cost, purchase_date, owner, dt_create
		`

	slog.Debug("CreateHolding start", slog.String("rqID", rqID), slog.String("query", query))
	defer func() {
		if err != nil {
			slog.Error("CreateHolding failed", slog.String("rqID", rqID), slog.String("err", err.Error()))
		} else {
			slog.Debug("CreateHolding completed", slog.String("rqID", rqID))
		}
	}()

	dbHolding := dbModel.Holding{}
	err = r.db.
		QueryRowxContext(ctx, query, input.Ticker, input.Qty, input.AvgCost, input.PurchaseDate, input.Owner).
		StructScan(&dbHolding)
	if err != nil {
		return model.Holding{}, err
	}

	return dbConverter.ConvertHolding(dbHolding), nil
}

func (r *Postgres) UpdateHolding(ctx context.Context, holdingID string, upd model.HoldingUpdate) (holding model.Holding, err error) {
	rqID := utils.GetRequestIDFromCtx(ctx)
	query := `
		UPDATE holdings
		SET ticker        = COALESCE($2::text, ticker),
		    qty           = COALESCE($3::integer, qty),
		    avg_cost      = COALESCE($4::numeric, avg_cost),
		    purchase_date = COALESCE($5::date, purchase_date),
		    owner         = COALESCE($6::text, owner)
		WHERE holding_id = $1
		RETURNING holding_id, ticker, qty, avg_cost, purchase_date, owner, dt_create
		`

	slog.Debug("UpdateHolding start", slog.String("rqID", rqID), slog.String("query", query))
	defer func() {
		if err != nil {
			slog.Error("UpdateHolding failed", slog.String("rqID", rqID), slog.String("err", err.Error()))
		} else {
			slog.Debug("UpdateHolding completed", slog.String("rqID", rqID))
		}
	}()

	dbHolding := dbModel.Holding{}
	err = r.db.
		QueryRowxContext(ctx, query, holdingID, upd.Ticker, upd.Qty, upd.AvgCost, upd.PurchaseDate, upd.Owner).
		StructScan(&dbHolding)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) || isInvalidUUID(err) {
			return model.Holding{}, repository.ErrNotFound
		}
		return model.Holding{}, err
	}

	return dbConverter.ConvertHolding(dbHolding), nil
}

func (r *Postgres) DeleteHolding(ctx context.Context, holdingID string) (err error) {
	rqID := utils.GetRequestIDFromCtx(ctx)
	query := `DELETE FROM holdings WHERE holding_id = $1`

	slog.Debug("DeleteHolding start", slog.String("rqID", rqID), slog.String("query", query))
	defer func() {
		if err != nil {
			slog.Error("DeleteHolding failed", slog.String("rqID", rqID), slog.String("err", err.Error()))
		} else {
			slog.Debug("DeleteHolding completed", slog.String("rqID", rqID))
		}
	}()

	res, err := r.db.ExecContext(ctx, query, holdingID)
	if err != nil {
		if isInvalidUUID(err) {
			return repository.ErrNotFound
		}
		return err
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}

	if affected == 0 {
		return repository.ErrNotFound
	}

	return nil
}

// isInvalidUUID reports whether err is the postgres invalid_text_representation
// raised for malformed uuid literals. An opaque id that cannot even be parsed
// is indistinguishable from an unknown one for callers.
func isInvalidUUID(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "22P02"
}
