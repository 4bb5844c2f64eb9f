package pg

import (
	"context"
	"fmt"

	"signal_monitor/internal/models"
	"signal_monitor/pkg/db"

	"github.com/bytedance/sonic"
)

type Strategies struct {
	db db.TxManager
}

// NewStrategies instance
func NewStrategies(m db.TxManager) *Strategies {
	return &Strategies{db: m}
}

// ListActive отдаёт ограниченную пачку активных стратегий; порядок по
// updated_at, чтобы обрезанный прогон дорабатывал хвост на следующем.
func (r *Strategies) ListActive(
	ctx context.Context,
	limit int,
	timeframes []models.Timeframe,
) (out []models.Strategy, err error) {
	defer func() {
		if err != nil {
			err = fmt.Errorf("pg.Strategies.ListActive: %w", err)
		}
	}()

	query := `
		SELECT id, owner_id, symbol, timeframe, entry_rules, exit_rules, created_at, updated_at
		FROM strategies
		WHERE active = TRUE`
	args := []any{}
	if len(timeframes) > 0 {
		tfs := make([]string, 0, len(timeframes))
		for _, tf := range timeframes {
			tfs = append(tfs, string(tf))
		}
		args = append(args, tfs)
		query += fmt.Sprintf(" AND timeframe = ANY($%d)", len(args))
	}
	args = append(args, limit)
	query += fmt.Sprintf(" ORDER BY updated_at ASC LIMIT $%d", len(args))

	rows, err := r.db.Conn().Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var (
			s        models.Strategy
			entryRaw []byte
			exitRaw  []byte
		)
		if err = rows.Scan(&s.ID, &s.OwnerID, &s.Symbol, &s.Timeframe,
			&entryRaw, &exitRaw, &s.CreatedAt, &s.UpdatedAt); err != nil {
			return nil, err
		}
		s.Active = true

		if len(entryRaw) > 0 {
			if err = sonic.Unmarshal(entryRaw, &s.EntryRules); err != nil {
				return nil, fmt.Errorf("decode entry_rules for %s: %w", s.ID, err)
			}
		}
		if len(exitRaw) > 0 {
			if err = sonic.Unmarshal(exitRaw, &s.ExitRules); err != nil {
				return nil, fmt.Errorf("decode exit_rules for %s: %w", s.ID, err)
			}
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

// ActiveSymbols — отдельный список символов для WS-прогрева кэша.
func (r *Strategies) ActiveSymbols(ctx context.Context) (out []string, err error) {
	defer func() {
		if err != nil {
			err = fmt.Errorf("pg.Strategies.ActiveSymbols: %w", err)
		}
	}()

	rows, err := r.db.Conn().Query(ctx,
		`SELECT DISTINCT symbol FROM strategies WHERE active = TRUE AND symbol <> ''`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var s string
		if err = rows.Scan(&s); err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, rows.Err()
}
