package repos

import (
	"context"
	"errors"
	"time"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	"gorm.io/gorm/logger"

	"cardauction/internal/domain"
)

// AuctionModel is the postgres row for an auction.
type AuctionModel struct {
	ID                string    `gorm:"primaryKey;size:64"`
	ItemID            int       `gorm:"not null"`
	CollectorID       *int      `gorm:""`
	Status            string    `gorm:"size:16;not null;index"`
	Lang              string    `gorm:"size:8;not null;default:en"`
	MatchedAttributes []string  `gorm:"serializer:json;type:text"`
	TotalValue        int       `gorm:"not null;default:0"`
	CreatedAt         time.Time `gorm:"autoCreateTime:false;index"`
	UpdatedAt         time.Time `gorm:"autoUpdateTime:false"`
}

func (AuctionModel) TableName() string { return "auctions" }

// OverrideModel is the postgres row for a customization override.
type OverrideModel struct {
	Kind          string    `gorm:"primaryKey;size:16"`
	CardID        int       `gorm:"primaryKey"`
	TitleEn       string    `gorm:"not null;default:''"`
	TitleZh       string    `gorm:"not null;default:''"`
	DescriptionEn string    `gorm:"not null;default:''"`
	DescriptionZh string    `gorm:"not null;default:''"`
	UpdatedAt     time.Time `gorm:"autoUpdateTime:false"`
}

func (OverrideModel) TableName() string { return "customizations" }

func AuctionToModel(a domain.Auction) AuctionModel {
	c := a.Clone()
	lang := string(c.Language)
	if lang == "" {
		lang = string(domain.LangEN)
	}
	return AuctionModel{
		ID:                c.ID,
		ItemID:            c.ItemID,
		CollectorID:       c.CollectorID,
		Status:            string(c.Status),
		Lang:              lang,
		MatchedAttributes: c.MatchedAttributes,
		TotalValue:        c.TotalValue,
		CreatedAt:         c.CreatedAt,
		UpdatedAt:         c.UpdatedAt,
	}
}

func (m AuctionModel) Domain() domain.Auction {
	attrs := m.MatchedAttributes
	if attrs == nil {
		attrs = []string{}
	}
	return domain.Auction{
		ID:                m.ID,
		ItemID:            m.ItemID,
		CollectorID:       m.CollectorID,
		Status:            domain.AuctionStatus(m.Status),
		Language:          domain.Language(m.Lang),
		MatchedAttributes: attrs,
		TotalValue:        m.TotalValue,
		CreatedAt:         m.CreatedAt,
		UpdatedAt:         m.UpdatedAt,
	}.Clone()
}

func OverrideToModel(o domain.Override) OverrideModel {
	return OverrideModel{
		Kind:          string(o.Kind),
		CardID:        o.ID,
		TitleEn:       o.TitleEn,
		TitleZh:       o.TitleZh,
		DescriptionEn: o.DescriptionEn,
		DescriptionZh: o.DescriptionZh,
		UpdatedAt:     o.UpdatedAt,
	}
}

func (m OverrideModel) Domain() domain.Override {
	return domain.Override{
		Kind:          domain.Kind(m.Kind),
		ID:            m.CardID,
		TitleEn:       m.TitleEn,
		TitleZh:       m.TitleZh,
		DescriptionEn: m.DescriptionEn,
		DescriptionZh: m.DescriptionZh,
		UpdatedAt:     m.UpdatedAt,
	}
}

// GormStore serves both stores from postgres through gorm.
type GormStore struct {
	db *gorm.DB
}

func NewGormStore(dsn string) (*GormStore, error) {
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	if err != nil {
		return nil, domain.StorageErr("open postgres", err)
	}
	return NewGormStoreFromDB(db)
}

// NewGormStoreFromDB migrates the schema on an existing connection.
func NewGormStoreFromDB(db *gorm.DB) (*GormStore, error) {
	if err := db.AutoMigrate(&AuctionModel{}, &OverrideModel{}); err != nil {
		return nil, domain.StorageErr("migrate", err)
	}
	// at most one active auction
	if err := db.Exec(`CREATE UNIQUE INDEX IF NOT EXISTS idx_auctions_one_active ON auctions (status) WHERE status = 'active'`).Error; err != nil {
		return nil, domain.StorageErr("migrate", err)
	}
	return &GormStore{db: db}, nil
}

func (g *GormStore) Close() error {
	sqlDB, err := g.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

func (g *GormStore) List(ctx context.Context) ([]domain.Auction, error) {
	var rows []AuctionModel
	if err := g.db.WithContext(ctx).Order("created_at DESC, id DESC").Find(&rows).Error; err != nil {
		return nil, domain.StorageErr("list auctions", err)
	}
	out := make([]domain.Auction, 0, len(rows))
	for _, r := range rows {
		out = append(out, r.Domain())
	}
	return out, nil
}

func (g *GormStore) Get(ctx context.Context, id string) (domain.Auction, error) {
	var row AuctionModel
	err := g.db.WithContext(ctx).Where("id = ?", id).First(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return domain.Auction{}, domain.ErrNotFound
	}
	if err != nil {
		return domain.Auction{}, domain.StorageErr("get auction", err)
	}
	return row.Domain(), nil
}

func (g *GormStore) Insert(ctx context.Context, a domain.Auction) error {
	m := AuctionToModel(a)
	return domain.StorageErr("insert auction", g.db.WithContext(ctx).Create(&m).Error)
}

func (g *GormStore) Update(ctx context.Context, a domain.Auction) error {
	m := AuctionToModel(a)
	res := g.db.WithContext(ctx).Model(&AuctionModel{}).Where("id = ?", a.ID).Select("*").Updates(&m)
	if res.Error != nil {
		return domain.StorageErr("update auction", res.Error)
	}
	if res.RowsAffected == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (g *GormStore) Activate(ctx context.Context, a domain.Auction) ([]domain.Auction, error) {
	var completed []domain.Auction
	err := g.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var rows []AuctionModel
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("status = ? AND id <> ?", string(domain.StatusActive), a.ID).
			Find(&rows).Error; err != nil {
			return err
		}
		if err := tx.Model(&AuctionModel{}).
			Where("status = ? AND id <> ?", string(domain.StatusActive), a.ID).
			Updates(map[string]any{"status": string(domain.StatusCompleted), "updated_at": a.UpdatedAt}).Error; err != nil {
			return err
		}
		m := AuctionToModel(a)
		if err := tx.Clauses(clause.OnConflict{UpdateAll: true}).Create(&m).Error; err != nil {
			return err
		}
		for _, r := range rows {
			done := r.Domain()
			done.Status = domain.StatusCompleted
			done.UpdatedAt = a.UpdatedAt
			completed = append(completed, done)
		}
		return nil
	})
	if err != nil {
		return nil, domain.StorageErr("activate auction", err)
	}
	return completed, nil
}

func (g *GormStore) GetOverride(ctx context.Context, kind domain.Kind, id int) (domain.Override, bool, error) {
	var row OverrideModel
	err := g.db.WithContext(ctx).Where("kind = ? AND card_id = ?", string(kind), id).First(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return domain.Override{}, false, nil
	}
	if err != nil {
		return domain.Override{}, false, domain.StorageErr("get override", err)
	}
	return row.Domain(), true, nil
}

func (g *GormStore) ListOverrides(ctx context.Context, kind domain.Kind) ([]domain.Override, error) {
	var rows []OverrideModel
	if err := g.db.WithContext(ctx).Where("kind = ?", string(kind)).Order("card_id").Find(&rows).Error; err != nil {
		return nil, domain.StorageErr("list overrides", err)
	}
	out := make([]domain.Override, 0, len(rows))
	for _, r := range rows {
		out = append(out, r.Domain())
	}
	return out, nil
}

func (g *GormStore) PutOverride(ctx context.Context, o domain.Override) error {
	m := OverrideToModel(o)
	err := g.db.WithContext(ctx).Clauses(clause.OnConflict{UpdateAll: true}).Create(&m).Error
	return domain.StorageErr("put override", err)
}
