package repos

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"

	"github.com/jmoiron/sqlx"

	"cardauction/internal/domain"
)

type AuctionRepo struct{ db *sqlx.DB }

func NewAuctionRepo(db *sqlx.DB) *AuctionRepo { return &AuctionRepo{db: db} }

type auctionRow struct {
	ID                string        `db:"id"`
	ItemID            int           `db:"item_id"`
	CollectorID       sql.NullInt64 `db:"collector_id"`
	Status            string        `db:"status"`
	Lang              string        `db:"lang"`
	MatchedAttributes string        `db:"matched_attributes"`
	TotalValue        int           `db:"total_value"`
	CreatedAt         string        `db:"created_at"`
	UpdatedAt         string        `db:"updated_at"`
}

const auctionCols = `id, item_id, collector_id, status, lang, matched_attributes, total_value, created_at, updated_at`

func (r auctionRow) domain() (domain.Auction, error) {
	a := domain.Auction{
		ID:                r.ID,
		ItemID:            r.ItemID,
		Status:            domain.AuctionStatus(r.Status),
		Language:          domain.Language(r.Lang),
		MatchedAttributes: []string{},
		TotalValue:        r.TotalValue,
		CreatedAt:         fromTS(r.CreatedAt),
		UpdatedAt:         fromTS(r.UpdatedAt),
	}
	if r.CollectorID.Valid {
		id := int(r.CollectorID.Int64)
		a.CollectorID = &id
	}
	if err := json.Unmarshal([]byte(r.MatchedAttributes), &a.MatchedAttributes); err != nil {
		return domain.Auction{}, domain.StorageErr("decode auction "+r.ID, err)
	}
	return a, nil
}

func toRow(a domain.Auction) auctionRow {
	attrs := a.MatchedAttributes
	if attrs == nil {
		attrs = []string{}
	}
	b, _ := json.Marshal(attrs)
	r := auctionRow{
		ID:                a.ID,
		ItemID:            a.ItemID,
		Status:            string(a.Status),
		Lang:              string(a.Language),
		MatchedAttributes: string(b),
		TotalValue:        a.TotalValue,
		CreatedAt:         toTS(a.CreatedAt),
		UpdatedAt:         toTS(a.UpdatedAt),
	}
	if r.Lang == "" {
		r.Lang = string(domain.LangEN)
	}
	if a.CollectorID != nil {
		r.CollectorID = sql.NullInt64{Int64: int64(*a.CollectorID), Valid: true}
	}
	return r
}

func (r *AuctionRepo) List(ctx context.Context) ([]domain.Auction, error) {
	var rows []auctionRow
	if err := r.db.SelectContext(ctx, &rows, `
		SELECT `+auctionCols+`
		FROM auctions
		ORDER BY created_at DESC, id DESC
	`); err != nil {
		return nil, domain.StorageErr("list auctions", err)
	}
	out := make([]domain.Auction, 0, len(rows))
	for _, row := range rows {
		a, err := row.domain()
		if err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, nil
}

func (r *AuctionRepo) Get(ctx context.Context, id string) (domain.Auction, error) {
	var row auctionRow
	err := r.db.GetContext(ctx, &row, `SELECT `+auctionCols+` FROM auctions WHERE id = ?`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Auction{}, domain.ErrNotFound
	}
	if err != nil {
		return domain.Auction{}, domain.StorageErr("get auction", err)
	}
	return row.domain()
}

func (r *AuctionRepo) Insert(ctx context.Context, a domain.Auction) error {
	_, err := r.db.NamedExecContext(ctx, `
		INSERT INTO auctions(`+auctionCols+`)
		VALUES(:id, :item_id, :collector_id, :status, :lang, :matched_attributes, :total_value, :created_at, :updated_at)
	`, toRow(a))
	return domain.StorageErr("insert auction", err)
}

func (r *AuctionRepo) Update(ctx context.Context, a domain.Auction) error {
	res, err := r.db.NamedExecContext(ctx, `
		UPDATE auctions SET
		  item_id = :item_id, collector_id = :collector_id, status = :status, lang = :lang,
		  matched_attributes = :matched_attributes, total_value = :total_value,
		  created_at = :created_at, updated_at = :updated_at
		WHERE id = :id
	`, toRow(a))
	if err != nil {
		return domain.StorageErr("update auction", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *AuctionRepo) Activate(ctx context.Context, a domain.Auction) ([]domain.Auction, error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, domain.StorageErr("activate auction", err)
	}
	defer func() { _ = tx.Rollback() }()

	var rows []auctionRow
	if err := tx.SelectContext(ctx, &rows, `
		SELECT `+auctionCols+` FROM auctions WHERE status = 'active' AND id <> ?
	`, a.ID); err != nil {
		return nil, domain.StorageErr("activate auction", err)
	}
	completed := make([]domain.Auction, 0, len(rows))
	for _, row := range rows {
		done, err := row.domain()
		if err != nil {
			return nil, err
		}
		done.Status = domain.StatusCompleted
		done.UpdatedAt = a.UpdatedAt
		completed = append(completed, done)
	}
	if _, err := tx.ExecContext(ctx, `
		UPDATE auctions SET status = 'completed', updated_at = ?
		WHERE status = 'active' AND id <> ?
	`, toTS(a.UpdatedAt), a.ID); err != nil {
		return nil, domain.StorageErr("activate auction", err)
	}
	if _, err := tx.NamedExecContext(ctx, `
		INSERT INTO auctions(`+auctionCols+`)
		VALUES(:id, :item_id, :collector_id, :status, :lang, :matched_attributes, :total_value, :created_at, :updated_at)
		ON CONFLICT(id) DO UPDATE SET
		  item_id = excluded.item_id, collector_id = excluded.collector_id, status = excluded.status,
		  lang = excluded.lang, matched_attributes = excluded.matched_attributes,
		  total_value = excluded.total_value, created_at = excluded.created_at, updated_at = excluded.updated_at
	`, toRow(a)); err != nil {
		return nil, domain.StorageErr("activate auction", err)
	}
	if err := tx.Commit(); err != nil {
		return nil, domain.StorageErr("activate auction", err)
	}
	return completed, nil
}
