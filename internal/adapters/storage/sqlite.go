package storage

// sqlite.go — journal de órdenes y cola de mercados sobre SQLite (pure Go).
//
// Estrategia:
//   - `orders`: una fila por orden colocada. Precio/tamaño se guardan como
//     TEXT decimal exacto — nunca REAL, las comparaciones a nivel de centavo
//     no sobreviven a un float.
//   - `market_queue`: los slugs candidatos sobre los que el bot opera.
//   - Prune al arrancar: filas terminales (FILLED/RECREATED/REMOVED) de más
//     de 7 días. El histórico útil vive en los logs, no aquí.

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/alejandrodnm/ladderbot/internal/domain"
	_ "modernc.org/sqlite"
)

const schema = `
CREATE TABLE IF NOT EXISTS orders (
    order_id      TEXT PRIMARY KEY,
    token_id      TEXT NOT NULL,
    market_slug   TEXT NOT NULL,
    side          TEXT NOT NULL,
    price         TEXT NOT NULL,
    size          TEXT NOT NULL,
    entry_number  INTEGER NOT NULL DEFAULT 0,
    favored_cents TEXT NOT NULL DEFAULT '',
    status        TEXT NOT NULL,
    replaced_by   TEXT NOT NULL DEFAULT '',
    placed_at     DATETIME NOT NULL,
    updated_at    DATETIME NOT NULL
);

CREATE TABLE IF NOT EXISTS market_queue (
    slug     TEXT PRIMARY KEY,
    added_at DATETIME NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_orders_status ON orders(status);
CREATE INDEX IF NOT EXISTS idx_orders_market ON orders(market_slug);
`

// retentionTerminal: cuánto conservamos filas en estado terminal.
const retentionTerminal = 7 * 24 * time.Hour

// SQLiteStore implementa ports.OrderJournal y ports.MarketQueue.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLiteStore abre (o crea) la base de datos en la ruta dada, aplica el
// schema y poda filas terminales antiguas.
func NewSQLiteStore(path string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("storage.NewSQLiteStore: open %q: %w", path, err)
	}
	db.SetMaxOpenConns(1) // SQLite es single-writer
	db.SetMaxIdleConns(1)

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("storage.NewSQLiteStore: apply schema: %w", err)
	}

	s := &SQLiteStore{db: db}
	s.pruneOld(context.Background())
	return s, nil
}

// pruneOld borra filas terminales fuera de la ventana de retención.
func (s *SQLiteStore) pruneOld(ctx context.Context) {
	cutoff := time.Now().UTC().Add(-retentionTerminal)
	_, _ = s.db.ExecContext(ctx,
		`DELETE FROM orders WHERE status IN ('FILLED','RECREATED','REMOVED') AND updated_at < ?`,
		cutoff)
}

// SaveOrder inserta una orden recién colocada.
func (s *SQLiteStore) SaveOrder(ctx context.Context, o domain.TrackedOrder) error {
	now := time.Now().UTC()
	favored := ""
	if !o.FavoredCents.IsZero() {
		favored = o.FavoredCents.String()
	}
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO orders (order_id, token_id, market_slug, side, price, size,
		                    entry_number, favored_cents, status, replaced_by, placed_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		o.OrderID, o.TokenID, o.MarketSlug, string(o.Side),
		o.Price.String(), o.Size.String(),
		o.EntryNumber, favored, string(o.Status), o.ReplacedBy,
		o.PlacedAt.UTC(), now,
	)
	if err != nil {
		return fmt.Errorf("storage.SaveOrder %s: %w", o.OrderID, err)
	}
	return nil
}

// UpdateStatus persiste una transición de estado.
func (s *SQLiteStore) UpdateStatus(ctx context.Context, orderID string, status domain.OrderStatus) error {
	_, err := s.db.ExecContext(ctx,
		`UPDATE orders SET status = ?, updated_at = ? WHERE order_id = ?`,
		string(status), time.Now().UTC(), orderID)
	if err != nil {
		return fmt.Errorf("storage.UpdateStatus %s: %w", orderID, err)
	}
	return nil
}

// LinkReplacement cierra la orden vieja como RECREATED apuntando a la nueva.
func (s *SQLiteStore) LinkReplacement(ctx context.Context, oldID, newID string) error {
	_, err := s.db.ExecContext(ctx,
		`UPDATE orders SET status = ?, replaced_by = ?, updated_at = ? WHERE order_id = ?`,
		string(domain.StatusRecreated), newID, time.Now().UTC(), oldID)
	if err != nil {
		return fmt.Errorf("storage.LinkReplacement %s→%s: %w", oldID, newID, err)
	}
	return nil
}

// DeleteOrder elimina la fila (mercado terminado).
func (s *SQLiteStore) DeleteOrder(ctx context.Context, orderID string) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM orders WHERE order_id = ?`, orderID)
	if err != nil {
		return fmt.Errorf("storage.DeleteOrder %s: %w", orderID, err)
	}
	return nil
}

// LoadActive devuelve todas las órdenes journaled en estado no terminal, en
// orden de colocación. Es la base del reconcile-on-startup.
func (s *SQLiteStore) LoadActive(ctx context.Context) ([]domain.TrackedOrder, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT order_id, token_id, market_slug, side, price, size,
		       entry_number, favored_cents, status, replaced_by, placed_at
		FROM orders
		WHERE status IN ('OPEN','DISAPPEARED')
		ORDER BY placed_at ASC, order_id ASC`)
	if err != nil {
		return nil, fmt.Errorf("storage.LoadActive: %w", err)
	}
	defer rows.Close()

	var out []domain.TrackedOrder
	for rows.Next() {
		var o domain.TrackedOrder
		var side, price, size, favored, status string
		if err := rows.Scan(&o.OrderID, &o.TokenID, &o.MarketSlug, &side, &price, &size,
			&o.EntryNumber, &favored, &status, &o.ReplacedBy, &o.PlacedAt); err != nil {
			return nil, fmt.Errorf("storage.LoadActive: scan: %w", err)
		}
		o.Side = domain.OrderSide(side)
		o.Status = domain.OrderStatus(status)
		if o.Price, err = decimal.NewFromString(price); err != nil {
			return nil, fmt.Errorf("storage.LoadActive: price %q: %w", price, err)
		}
		if o.Size, err = decimal.NewFromString(size); err != nil {
			return nil, fmt.Errorf("storage.LoadActive: size %q: %w", size, err)
		}
		if favored != "" {
			if o.FavoredCents, err = decimal.NewFromString(favored); err != nil {
				return nil, fmt.Errorf("storage.LoadActive: favored_cents %q: %w", favored, err)
			}
		}
		out = append(out, o)
	}
	return out, rows.Err()
}

// Markets devuelve los slugs encolados, más antiguos primero.
func (s *SQLiteStore) Markets(ctx context.Context) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT slug FROM market_queue ORDER BY added_at ASC, slug ASC`)
	if err != nil {
		return nil, fmt.Errorf("storage.Markets: %w", err)
	}
	defer rows.Close()

	var slugs []string
	for rows.Next() {
		var slug string
		if err := rows.Scan(&slug); err != nil {
			return nil, fmt.Errorf("storage.Markets: scan: %w", err)
		}
		slugs = append(slugs, slug)
	}
	return slugs, rows.Err()
}

// AddMarket encola un mercado; idempotente.
func (s *SQLiteStore) AddMarket(ctx context.Context, slug string) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO market_queue (slug, added_at) VALUES (?, ?)
		 ON CONFLICT(slug) DO NOTHING`,
		slug, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("storage.AddMarket %q: %w", slug, err)
	}
	return nil
}

// RemoveMarket saca un mercado terminado de la cola.
func (s *SQLiteStore) RemoveMarket(ctx context.Context, slug string) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM market_queue WHERE slug = ?`, slug)
	if err != nil {
		return fmt.Errorf("storage.RemoveMarket %q: %w", slug, err)
	}
	return nil
}

// Close cierra la conexión limpiamente.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}
