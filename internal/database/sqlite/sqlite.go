package sqlite

import (
	"cartstore/internal/models"
	"cartstore/pkg/lib/logger/sl"
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"slices"

	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite"
)

const upsertContentsQuery = `
	INSERT INTO carts (username, contents)
	VALUES (?, ?)
	ON CONFLICT(username) DO UPDATE SET contents = excluded.contents;
`

type Storage struct {
	log *slog.Logger
	db  *sqlx.DB
}

// New opens the SQLite database at dsn, creating the file when it does not
// exist, and brings the schema up to date.
func New(log *slog.Logger, dsn string) (*Storage, error) {
	const op = "database.sqlite.New"
	l := log.With("op", op)

	db, err := sqlx.Connect("sqlite", dsn)
	if err != nil {
		l.Error("Error connect to database", sl.Err(err))
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	if err := migrate(l, db.DB); err != nil {
		l.Error("Error applying migrations", sl.Err(err))
		db.Close()
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	// One connection serializes read-modify-write cycles in this process.
	db.SetMaxOpenConns(1)

	return &Storage{
		log: log,
		db:  db,
	}, nil
}

func NewWithParams(log *slog.Logger, db *sqlx.DB) *Storage {
	return &Storage{
		log: log,
		db:  db,
	}
}

func (s *Storage) Close() error {
	return s.db.Close()
}

// FetchCartContents returns the product ids stored for username, or an empty
// slice when the user has no cart.
func (s *Storage) FetchCartContents(ctx context.Context, username string) ([]int, error) {
	const op = "database.sqlite.FetchCartContents"
	log := s.log.With("op", op, "username", username)

	select {
	case <-ctx.Done():
		log.Error("Context is over", sl.Err(ctx.Err()))
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	contents, err := fetchCartContents(ctx, s.db, username)
	if err != nil {
		log.Error("Failed to fetch cart contents", sl.Err(err))
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return contents, nil
}

func fetchCartContents(ctx context.Context, q sqlx.QueryerContext, username string) ([]int, error) {
	var raw sql.NullString
	err := q.QueryRowxContext(ctx, `
		SELECT contents FROM carts
		WHERE username = ?;
	`, username).Scan(&raw)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return []int{}, nil
		}
		return nil, err
	}

	return models.DecodeContents(raw.String)
}

func (s *Storage) GetCart(ctx context.Context, username string) ([]models.Cart, error) {
	const op = "database.sqlite.GetCart"
	log := s.log.With("op", op, "username", username)

	select {
	case <-ctx.Done():
		log.Error("Context is over", sl.Err(ctx.Err()))
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	carts := make([]models.Cart, 0, 1)
	if err := s.db.SelectContext(ctx, &carts, `
		SELECT id, username, COALESCE(contents, '') AS contents, COALESCE(cost, 0) AS cost
		FROM carts
		WHERE username = ?;
	`, username); err != nil {
		log.Error("Failed to select cart", sl.Err(err))
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return carts, nil
}

// AddToCart appends productId to the user's cart, creating the cart on first
// use. Duplicates are kept.
func (s *Storage) AddToCart(ctx context.Context, username string, productId int) error {
	const op = "database.sqlite.AddToCart"
	log := s.log.With("op", op, "username", username, "product_id", productId)

	select {
	case <-ctx.Done():
		log.Error("Context is over", sl.Err(ctx.Err()))
		return fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		log.Error("Failed to begin transaction", sl.Err(err))
		return fmt.Errorf("%s: %w", op, err)
	}
	defer tx.Rollback()

	contents, err := fetchCartContents(ctx, tx, username)
	if err != nil {
		log.Error("Failed to fetch cart contents", sl.Err(err))
		return fmt.Errorf("%s: %w", op, err)
	}

	contents = append(contents, productId)

	if err := upsertContents(ctx, tx, username, contents); err != nil {
		log.Error("Failed to upsert cart", sl.Err(err))
		return fmt.Errorf("%s: %w", op, err)
	}

	if err := tx.Commit(); err != nil {
		log.Error("Failed to commit transaction", sl.Err(err))
		return fmt.Errorf("%s: %w", op, err)
	}

	return nil
}

// RemoveFromCart drops the first occurrence of productId. Nothing is written
// when the product is not in the cart.
func (s *Storage) RemoveFromCart(ctx context.Context, username string, productId int) error {
	const op = "database.sqlite.RemoveFromCart"
	log := s.log.With("op", op, "username", username, "product_id", productId)

	select {
	case <-ctx.Done():
		log.Error("Context is over", sl.Err(ctx.Err()))
		return fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		log.Error("Failed to begin transaction", sl.Err(err))
		return fmt.Errorf("%s: %w", op, err)
	}
	defer tx.Rollback()

	contents, err := fetchCartContents(ctx, tx, username)
	if err != nil {
		log.Error("Failed to fetch cart contents", sl.Err(err))
		return fmt.Errorf("%s: %w", op, err)
	}

	idx := slices.Index(contents, productId)
	if idx < 0 {
		log.Debug("Product is not in cart")
		return nil
	}
	contents = slices.Delete(contents, idx, idx+1)

	if err := upsertContents(ctx, tx, username, contents); err != nil {
		log.Error("Failed to upsert cart", sl.Err(err))
		return fmt.Errorf("%s: %w", op, err)
	}

	if err := tx.Commit(); err != nil {
		log.Error("Failed to commit transaction", sl.Err(err))
		return fmt.Errorf("%s: %w", op, err)
	}

	return nil
}

func (s *Storage) DeleteCart(ctx context.Context, username string) error {
	const op = "database.sqlite.DeleteCart"
	log := s.log.With("op", op, "username", username)

	select {
	case <-ctx.Done():
		log.Error("Context is over", sl.Err(ctx.Err()))
		return fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	if _, err := s.db.ExecContext(ctx, `
		DELETE FROM carts
		WHERE username = ?;
	`, username); err != nil {
		log.Error("Failed to delete cart", sl.Err(err))
		return fmt.Errorf("%s: %w", op, err)
	}

	return nil
}

// Cost is left to the column default on insert and untouched on update.
func upsertContents(ctx context.Context, tx *sqlx.Tx, username string, contents []int) error {
	raw, err := models.EncodeContents(contents)
	if err != nil {
		return err
	}

	_, err = tx.ExecContext(ctx, upsertContentsQuery, username, raw)
	return err
}
