package ledger

import (
	"context"
	"errors"
	"fmt"

	sq "github.com/Masterminds/squirrel"
	trmpgx "github.com/avito-tech/go-transaction-manager/drivers/pgxv5/v2"
	"github.com/avito-tech/go-transaction-manager/trm/v2"
	"github.com/avito-tech/go-transaction-manager/trm/v2/manager"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const (
	tableWins       = "wheel_wins"
	colVisitorID    = "visitor_id"
	colPrize        = "prize"
	colFinalAngle   = "final_angle"
	colWonAt        = "won_at"
	tableVisitors   = "wheel_visitors"
	colID           = "id"
	colFirstWonAt   = "first_won_at"
	colLastWonAt    = "last_won_at"
	colWinsRecorded = "wins"
)

const schema = `
CREATE TABLE IF NOT EXISTS wheel_visitors (
	id           TEXT PRIMARY KEY,
	first_won_at TIMESTAMPTZ NOT NULL,
	last_won_at  TIMESTAMPTZ NOT NULL,
	wins         INTEGER NOT NULL DEFAULT 1
);
CREATE TABLE IF NOT EXISTS wheel_wins (
	id          BIGSERIAL PRIMARY KEY,
	visitor_id  TEXT NOT NULL REFERENCES wheel_visitors (id),
	prize       TEXT NOT NULL,
	final_angle DOUBLE PRECISION NOT NULL,
	won_at      TIMESTAMPTZ NOT NULL
);
CREATE INDEX IF NOT EXISTS wheel_wins_visitor_idx ON wheel_wins (visitor_id, won_at DESC);
`

var _ Ledger = (*Postgres)(nil)

// Postgres stores wins in PostgreSQL. A win and its visitor row are written
// in one transaction.
type Postgres struct {
	db        *pgxpool.Pool
	txManager trm.Manager
	getter    *trmpgx.CtxGetter
	sb        sq.StatementBuilderType
}

// Connect opens a pool and pings it.
func Connect(ctx context.Context, dsn string) (*pgxpool.Pool, error) {
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, fmt.Errorf("create db pool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping db: %w", err)
	}
	return pool, nil
}

func NewPostgres(db *pgxpool.Pool) (*Postgres, error) {
	m, err := manager.New(trmpgx.NewDefaultFactory(db))
	if err != nil {
		return nil, fmt.Errorf("create tx manager: %w", err)
	}
	return &Postgres{
		db:        db,
		txManager: m,
		getter:    trmpgx.DefaultCtxGetter,
		sb:        sq.StatementBuilder.PlaceholderFormat(sq.Dollar),
	}, nil
}

// Migrate creates the ledger tables if they do not exist.
func (p *Postgres) Migrate(ctx context.Context) error {
	if _, err := p.db.Exec(ctx, schema); err != nil {
		return fmt.Errorf("migrate ledger: %w", err)
	}
	return nil
}

func (p *Postgres) RecordWin(ctx context.Context, win Win) error {
	return p.txManager.Do(ctx, func(ctx context.Context) error {
		conn := p.getter.DefaultTrOrDB(ctx, p.db)

		sqlStr, args, err := upsertVisitor(p.sb, win).ToSql()
		if err != nil {
			return err
		}
		if _, err := conn.Exec(ctx, sqlStr, args...); err != nil {
			return fmt.Errorf("upsert visitor: %w", err)
		}

		sqlStr, args, err = insertWin(p.sb, win).ToSql()
		if err != nil {
			return err
		}
		if _, err := conn.Exec(ctx, sqlStr, args...); err != nil {
			return fmt.Errorf("insert win: %w", err)
		}
		return nil
	})
}

func (p *Postgres) HasPlayed(ctx context.Context, visitorID string) (bool, error) {
	sqlStr, args, err := selectPlayed(p.sb, visitorID).ToSql()
	if err != nil {
		return false, err
	}

	var one int
	err = p.getter.DefaultTrOrDB(ctx, p.db).QueryRow(ctx, sqlStr, args...).Scan(&one)
	if errors.Is(err, pgx.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

func (p *Postgres) LastWin(ctx context.Context, visitorID string) (Win, error) {
	sqlStr, args, err := selectLastWin(p.sb, visitorID).ToSql()
	if err != nil {
		return Win{}, err
	}

	var win Win
	err = p.getter.DefaultTrOrDB(ctx, p.db).QueryRow(ctx, sqlStr, args...).
		Scan(&win.VisitorID, &win.Prize, &win.FinalAngle, &win.WonAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return Win{}, ErrNotFound
	}
	if err != nil {
		return Win{}, err
	}
	return win, nil
}

func upsertVisitor(sb sq.StatementBuilderType, win Win) sq.InsertBuilder {
	return sb.Insert(tableVisitors).
		Columns(colID, colFirstWonAt, colLastWonAt).
		Values(win.VisitorID, win.WonAt, win.WonAt).
		Suffix("ON CONFLICT (" + colID + ") DO UPDATE SET " +
			colLastWonAt + " = EXCLUDED." + colLastWonAt + ", " +
			colWinsRecorded + " = " + tableVisitors + "." + colWinsRecorded + " + 1")
}

func insertWin(sb sq.StatementBuilderType, win Win) sq.InsertBuilder {
	return sb.Insert(tableWins).
		Columns(colVisitorID, colPrize, colFinalAngle, colWonAt).
		Values(win.VisitorID, win.Prize, win.FinalAngle, win.WonAt)
}

func selectPlayed(sb sq.StatementBuilderType, visitorID string) sq.SelectBuilder {
	return sb.Select("1").
		From(tableVisitors).
		Where(sq.Eq{colID: visitorID}).
		Limit(1)
}

func selectLastWin(sb sq.StatementBuilderType, visitorID string) sq.SelectBuilder {
	return sb.Select(colVisitorID, colPrize, colFinalAngle, colWonAt).
		From(tableWins).
		Where(sq.Eq{colVisitorID: visitorID}).
		OrderBy(colWonAt + " DESC").
		Limit(1)
}
