package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"storefront/internal/biddingerrors"
	model "storefront/internal/models"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const schemaSQL = `
CREATE TABLE IF NOT EXISTS auctionproducts (
	productid      SERIAL PRIMARY KEY,
	product_name   TEXT NOT NULL,
	price          NUMERIC NOT NULL,
	image_url      TEXT,
	product_specs  TEXT,
	bids           TEXT,
	auction_timer  TIMESTAMPTZ,
	auction_ended  INTEGER NOT NULL DEFAULT 0,
	included_items TEXT
);
ALTER TABLE auctionproducts ADD COLUMN IF NOT EXISTS base_price NUMERIC;
ALTER TABLE auctionproducts ADD COLUMN IF NOT EXISTS version BIGINT NOT NULL DEFAULT 1;
ALTER TABLE auctionproducts ADD COLUMN IF NOT EXISTS created_at TIMESTAMPTZ NOT NULL DEFAULT NOW();
CREATE TABLE IF NOT EXISTS notifications (
	id        SERIAL PRIMARY KEY,
	type      TEXT NOT NULL,
	title     TEXT NOT NULL,
	message   TEXT NOT NULL,
	isRead    BOOLEAN NOT NULL DEFAULT false,
	createdAt TIMESTAMPTZ NOT NULL DEFAULT NOW(),
	updatedAt TIMESTAMPTZ NOT NULL DEFAULT NOW()
);`

const listingColumns = `productid::text, product_name, COALESCE(base_price, price)::text, price::text,
	COALESCE(image_url, ''), COALESCE(product_specs::text, ''), COALESCE(bids::text, ''),
	auction_timer, COALESCE(auction_ended, 0) <> 0, COALESCE(included_items, ''), version, created_at`

// PostgresRepo implements AuctionDB over a hosted Postgres-compatible database
type PostgresRepo struct {
	pool *pgxpool.Pool
}

// NewPostgresRepo opens a pgx pool and verifies connectivity
func NewPostgresRepo(ctx context.Context, dsn string, maxConns int) (*PostgresRepo, error) {
	poolConfig, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to parse connection string: %w", err)
	}
	if maxConns > 0 {
		poolConfig.MaxConns = int32(maxConns)
	}

	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to create connection pool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to reach database: %w", err)
	}
	return &PostgresRepo{pool: pool}, nil
}

// EnsureSchema creates the tables and the columns the engine relies on
func (r *PostgresRepo) EnsureSchema(ctx context.Context) error {
	if _, err := r.pool.Exec(ctx, schemaSQL); err != nil {
		return fmt.Errorf("ensure schema: %w", err)
	}
	return nil
}

// Close releases the pool
func (r *PostgresRepo) Close() {
	r.pool.Close()
}

func (r *PostgresRepo) CreateAuctionListing(ctx context.Context, listing model.AuctionListing) (model.AuctionListing, error) {
	specs, err := json.Marshal(nonNilSpecs(listing.Specs))
	if err != nil {
		return model.AuctionListing{}, fmt.Errorf("create listing: encode specs: %w", err)
	}
	bids, err := EncodeBids(nil)
	if err != nil {
		return model.AuctionListing{}, fmt.Errorf("create listing: %w", err)
	}

	row := r.pool.QueryRow(ctx, `
		INSERT INTO auctionproducts
		(product_name, price, base_price, image_url, product_specs, bids, auction_timer, included_items)
		VALUES ($1, $2, $2, NULLIF($3, ''), $4, $5, $6, $7)
		RETURNING `+listingColumns,
		listing.Title, listing.BasePrice, listing.ImageURL, string(specs), string(bids),
		listing.ClosesAt, strings.Join(listing.IncludedItems, "\n"),
	)
	created, err := scanListing(row)
	if err != nil {
		return model.AuctionListing{}, fmt.Errorf("create listing: %v: %w", err, biddingerrors.ErrPersistence)
	}
	return created, nil
}

func (r *PostgresRepo) GetAuctionListing(ctx context.Context, listingID string) (model.AuctionListing, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+listingColumns+` FROM auctionproducts WHERE productid::text = $1`, listingID)
	listing, err := scanListing(row)
	switch {
	case errors.Is(err, pgx.ErrNoRows):
		return model.AuctionListing{}, fmt.Errorf("get listing %s: %w", listingID, biddingerrors.ErrListingNotFound)
	case errors.Is(err, biddingerrors.ErrMalformedBids):
		return listing, fmt.Errorf("get listing %s: %w", listingID, err)
	case err != nil:
		return model.AuctionListing{}, fmt.Errorf("get listing %s: %v: %w", listingID, err, biddingerrors.ErrPersistence)
	}
	return listing, nil
}

func (r *PostgresRepo) ListAuctionListings(ctx context.Context) (ListingBatch, error) {
	return r.queryBatch(ctx, `SELECT `+listingColumns+` FROM auctionproducts ORDER BY created_at, productid`)
}

func (r *PostgresRepo) ListOpenScheduledAuctions(ctx context.Context, cutoff time.Time) (ListingBatch, error) {
	return r.queryBatch(ctx, `
		SELECT `+listingColumns+` FROM auctionproducts
		WHERE COALESCE(auction_ended, 0) = 0
		AND auction_timer IS NOT NULL
		AND auction_timer <= $1
		ORDER BY auction_timer, productid`, cutoff)
}

func (r *PostgresRepo) queryBatch(ctx context.Context, query string, args ...any) (ListingBatch, error) {
	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return ListingBatch{}, fmt.Errorf("list listings: %v: %w", err, biddingerrors.ErrPersistence)
	}
	defer rows.Close()

	var batch ListingBatch
	for rows.Next() {
		listing, err := scanListing(rows)
		if errors.Is(err, biddingerrors.ErrMalformedBids) {
			batch.Malformed = append(batch.Malformed, MalformedListing{ListingID: listing.ListingID, Err: err})
			continue
		}
		if err != nil {
			return ListingBatch{}, fmt.Errorf("list listings: %v: %w", err, biddingerrors.ErrPersistence)
		}
		batch.Listings = append(batch.Listings, listing)
	}
	if err := rows.Err(); err != nil {
		return ListingBatch{}, fmt.Errorf("list listings: %v: %w", err, biddingerrors.ErrPersistence)
	}
	return batch, nil
}

func (r *PostgresRepo) UpdateAuctionListing(ctx context.Context, listingID string, expectedVersion int64, update model.ListingUpdate) (model.AuctionListing, error) {
	args := []any{listingID, expectedVersion}
	sets := []string{"version = version + 1"}
	arg := func(v any) string {
		args = append(args, v)
		return fmt.Sprintf("$%d", len(args))
	}

	if update.SetBids {
		encoded, err := EncodeBids(update.Bids)
		if err != nil {
			return model.AuctionListing{}, fmt.Errorf("update listing %s: %w", listingID, err)
		}
		sets = append(sets, "bids = "+arg(string(encoded)))
	}
	if update.Price != nil {
		sets = append(sets, "price = "+arg(*update.Price))
	}
	if update.Ended != nil {
		ended := 0
		if *update.Ended {
			ended = 1
		}
		sets = append(sets, "auction_ended = "+arg(ended))
	}
	if update.ClearClosesAt {
		sets = append(sets, "auction_timer = NULL")
	} else if update.ClosesAt != nil {
		sets = append(sets, "auction_timer = "+arg(update.ClosesAt.UTC()))
	}

	row := r.pool.QueryRow(ctx,
		`UPDATE auctionproducts SET `+strings.Join(sets, ", ")+
			` WHERE productid::text = $1 AND version = $2 RETURNING `+listingColumns,
		args...,
	)
	updated, err := scanListing(row)
	if err == nil {
		return updated, nil
	}
	if errors.Is(err, biddingerrors.ErrMalformedBids) {
		return updated, fmt.Errorf("update listing %s: %w", listingID, err)
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return model.AuctionListing{}, fmt.Errorf("update listing %s: %v: %w", listingID, err, biddingerrors.ErrPersistence)
	}

	var exists bool
	if err := r.pool.QueryRow(ctx, `SELECT EXISTS(SELECT 1 FROM auctionproducts WHERE productid::text = $1)`, listingID).Scan(&exists); err != nil {
		return model.AuctionListing{}, fmt.Errorf("update listing %s: %v: %w", listingID, err, biddingerrors.ErrPersistence)
	}
	if !exists {
		return model.AuctionListing{}, fmt.Errorf("update listing %s: %w", listingID, biddingerrors.ErrListingNotFound)
	}
	return model.AuctionListing{}, fmt.Errorf("update listing %s at version %d: %w", listingID, expectedVersion, biddingerrors.ErrStaleListing)
}

func (r *PostgresRepo) CreateNotification(ctx context.Context, n model.Notification) error {
	_, err := r.pool.Exec(ctx, `
		INSERT INTO notifications (type, title, message, isRead, createdAt, updatedAt)
		VALUES ($1, $2, $3, false, NOW(), NOW())`,
		string(n.Type), n.Title, n.Message,
	)
	if err != nil {
		return fmt.Errorf("create notification: %v: %w", err, biddingerrors.ErrPersistence)
	}
	return nil
}

// scanListing decodes one row. On malformed bids it returns the listing without
// its bids alongside an ErrMalformedBids error.
func scanListing(row pgx.Row) (model.AuctionListing, error) {
	var (
		listing                              model.AuctionListing
		basePrice, price, specsRaw, bidsRaw string
		included                             string
		closesAt                             *time.Time
	)
	err := row.Scan(
		&listing.ListingID, &listing.Title, &basePrice, &price,
		&listing.ImageURL, &specsRaw, &bidsRaw,
		&closesAt, &listing.Ended, &included, &listing.Version, &listing.CreatedAt,
	)
	if err != nil {
		return model.AuctionListing{}, err
	}

	if listing.BasePrice, err = model.ParseAmount(basePrice); err != nil {
		return model.AuctionListing{}, fmt.Errorf("listing %s base price: %w", listing.ListingID, err)
	}
	if listing.Price, err = model.ParseAmount(price); err != nil {
		return model.AuctionListing{}, fmt.Errorf("listing %s price: %w", listing.ListingID, err)
	}
	if closesAt != nil {
		t := closesAt.UTC()
		listing.ClosesAt = &t
	}
	if included != "" {
		listing.IncludedItems = strings.Split(included, "\n")
	}
	listing.Specs = decodeSpecs(specsRaw)

	bids, err := DecodeBids(bidsRaw)
	if err != nil {
		return listing, fmt.Errorf("listing %s: %w", listing.ListingID, err)
	}
	listing.Bids = bids
	return listing, nil
}

// decodeSpecs accepts the spec shapes the admin UI has written over time:
// [{key,value}], ["line", ...] or {"key": "value"}.
func decodeSpecs(raw string) []model.Spec {
	raw = strings.TrimSpace(raw)
	if raw == "" || raw == "null" {
		return []model.Spec{}
	}

	var pairs []model.Spec
	if err := json.Unmarshal([]byte(raw), &pairs); err == nil {
		return nonNilSpecs(pairs)
	}

	var lines []string
	if err := json.Unmarshal([]byte(raw), &lines); err == nil {
		specs := make([]model.Spec, 0, len(lines))
		for _, line := range lines {
			key, value, found := strings.Cut(line, ":")
			if !found {
				specs = append(specs, model.Spec{Value: strings.TrimSpace(line)})
				continue
			}
			specs = append(specs, model.Spec{Key: strings.TrimSpace(key), Value: strings.TrimSpace(value)})
		}
		return specs
	}

	var obj map[string]string
	if err := json.Unmarshal([]byte(raw), &obj); err == nil {
		keys := make([]string, 0, len(obj))
		for k := range obj {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		specs := make([]model.Spec, 0, len(keys))
		for _, k := range keys {
			specs = append(specs, model.Spec{Key: k, Value: obj[k]})
		}
		return specs
	}
	return []model.Spec{}
}

func nonNilSpecs(specs []model.Spec) []model.Spec {
	if specs == nil {
		return []model.Spec{}
	}
	return specs
}
