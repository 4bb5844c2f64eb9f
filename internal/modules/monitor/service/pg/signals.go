package pg

import (
	"context"
	"errors"
	"fmt"

	"signal_monitor/internal/models"
	"signal_monitor/pkg/db"

	"github.com/bytedance/sonic"
	"github.com/jackc/pgx/v5"
)

type Signals struct {
	db db.TxManager
}

// NewSignals instance
func NewSignals(m db.TxManager) *Signals {
	return &Signals{db: m}
}

func (r *Signals) Insert(ctx context.Context, sig *models.Signal) (err error) {
	defer func() {
		if err != nil {
			err = fmt.Errorf("pg.Signals.Insert: %w", err)
		}
	}()

	var matched []byte
	matched, err = sonic.Marshal(sig.MatchedConditions)
	if err != nil {
		return err
	}

	return r.db.RunMaster(ctx, func(ctxTx context.Context, tx pgx.Tx) error {
		_, err := tx.Exec(ctxTx, `
			INSERT INTO signals (id, strategy_id, signal_type, asset, price, matched_conditions, confidence, created_at, processed)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, FALSE)`,
			sig.ID, sig.StrategyID, sig.Type, sig.Asset, sig.Price, matched, sig.Confidence, sig.CreatedAt)
		return err
	})
}

// MarkProcessed — единственный разрешённый переход: false→true.
func (r *Signals) MarkProcessed(ctx context.Context, id string) (err error) {
	defer func() {
		if err != nil {
			err = fmt.Errorf("pg.Signals.MarkProcessed: %w", err)
		}
	}()

	return r.db.RunMaster(ctx, func(ctxTx context.Context, tx pgx.Tx) error {
		_, err := tx.Exec(ctxTx,
			`UPDATE signals SET processed = TRUE WHERE id = $1 AND processed = FALSE`, id)
		return err
	})
}

// LatestTypeByStrategy — тип последнего сигнала стратегии; позиция
// считается открытой когда это entry без последующего exit.
func (r *Signals) LatestTypeByStrategy(ctx context.Context, strategyID string) (t models.SignalType, found bool, err error) {
	defer func() {
		if err != nil {
			err = fmt.Errorf("pg.Signals.LatestTypeByStrategy: %w", err)
		}
	}()

	row := r.db.Conn().QueryRow(ctx, `
		SELECT signal_type FROM signals
		WHERE strategy_id = $1 AND signal_type IN ('entry', 'exit')
		ORDER BY created_at DESC
		LIMIT 1`, strategyID)

	err = row.Scan(&t)
	if errors.Is(err, pgx.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return t, true, nil
}

// DeleteInvalid — внеполосная чистка: сигналы с выходных, вне торговых
// часов и осиротевшие после удаления стратегии.
func (r *Signals) DeleteInvalid(ctx context.Context) (removed int64, err error) {
	defer func() {
		if err != nil {
			err = fmt.Errorf("pg.Signals.DeleteInvalid: %w", err)
		}
	}()

	tag, err := r.db.Conn().Exec(ctx, `
		DELETE FROM signals
		WHERE EXTRACT(DOW FROM created_at AT TIME ZONE 'America/New_York') IN (0, 6)
		   OR (created_at AT TIME ZONE 'America/New_York')::time < '09:30'
		   OR (created_at AT TIME ZONE 'America/New_York')::time >= '16:00'
		   OR strategy_id NOT IN (SELECT id FROM strategies)`)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}
