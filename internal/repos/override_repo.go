package repos

import (
	"context"
	"database/sql"
	"errors"

	"github.com/jmoiron/sqlx"

	"cardauction/internal/domain"
)

type OverrideRepo struct{ db *sqlx.DB }

func NewOverrideRepo(db *sqlx.DB) *OverrideRepo { return &OverrideRepo{db: db} }

type overrideRow struct {
	Kind          string `db:"kind"`
	CardID        int    `db:"card_id"`
	TitleEn       string `db:"title_en"`
	TitleZh       string `db:"title_zh"`
	DescriptionEn string `db:"description_en"`
	DescriptionZh string `db:"description_zh"`
	UpdatedAt     string `db:"updated_at"`
}

func (r overrideRow) domain() domain.Override {
	return domain.Override{
		Kind:          domain.Kind(r.Kind),
		ID:            r.CardID,
		TitleEn:       r.TitleEn,
		TitleZh:       r.TitleZh,
		DescriptionEn: r.DescriptionEn,
		DescriptionZh: r.DescriptionZh,
		UpdatedAt:     fromTS(r.UpdatedAt),
	}
}

func (r *OverrideRepo) GetOverride(ctx context.Context, kind domain.Kind, id int) (domain.Override, bool, error) {
	var row overrideRow
	err := r.db.GetContext(ctx, &row, `
		SELECT kind, card_id, title_en, title_zh, description_en, description_zh, updated_at
		FROM customizations
		WHERE kind = ? AND card_id = ?
	`, string(kind), id)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Override{}, false, nil
	}
	if err != nil {
		return domain.Override{}, false, domain.StorageErr("get override", err)
	}
	return row.domain(), true, nil
}

func (r *OverrideRepo) ListOverrides(ctx context.Context, kind domain.Kind) ([]domain.Override, error) {
	var rows []overrideRow
	if err := r.db.SelectContext(ctx, &rows, `
		SELECT kind, card_id, title_en, title_zh, description_en, description_zh, updated_at
		FROM customizations
		WHERE kind = ?
		ORDER BY card_id
	`, string(kind)); err != nil {
		return nil, domain.StorageErr("list overrides", err)
	}
	out := make([]domain.Override, 0, len(rows))
	for _, row := range rows {
		out = append(out, row.domain())
	}
	return out, nil
}

// PutOverride writes the whole override row; merging happens in the service.
func (r *OverrideRepo) PutOverride(ctx context.Context, o domain.Override) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO customizations(kind, card_id, title_en, title_zh, description_en, description_zh, updated_at)
		VALUES(?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(kind, card_id) DO UPDATE SET
		  title_en = excluded.title_en,
		  title_zh = excluded.title_zh,
		  description_en = excluded.description_en,
		  description_zh = excluded.description_zh,
		  updated_at = excluded.updated_at
	`, string(o.Kind), o.ID, o.TitleEn, o.TitleZh, o.DescriptionEn, o.DescriptionZh, toTS(o.UpdatedAt))
	return domain.StorageErr("put override", err)
}
