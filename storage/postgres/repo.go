package postgres

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"agreement-radar/types"
)

// AgreementRepo 封装对 agreements / key_dates 表的所有操作
type AgreementRepo struct {
	db *gorm.DB
}

func NewAgreementRepo(db *gorm.DB) *AgreementRepo {
	return &AgreementRepo{db: db}
}

// CreateAgreement inserts one agreement; the id and timestamps are filled in
// on the passed record.
func (r *AgreementRepo) CreateAgreement(ctx context.Context, agreement *types.Agreement) error {
	return r.db.WithContext(ctx).Create(agreement).Error
}

// CreateKeyDates inserts all rows in one statement. An empty list is a no-op.
func (r *AgreementRepo) CreateKeyDates(ctx context.Context, keyDates []types.KeyDate) error {
	if len(keyDates) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Create(&keyDates).Error
}

// ListAgreements returns every agreement, newest first.
func (r *AgreementRepo) ListAgreements(ctx context.Context) ([]types.Agreement, error) {
	var agreements []types.Agreement
	err := r.db.WithContext(ctx).
		Order("created_at DESC").
		Find(&agreements).Error
	return agreements, err
}

func (r *AgreementRepo) GetAgreement(ctx context.Context, id uuid.UUID) (*types.Agreement, error) {
	var agreement types.Agreement
	err := r.db.WithContext(ctx).
		Where("id = ?", id).
		First(&agreement).Error
	if err != nil {
		return nil, err
	}
	return &agreement, nil
}

// GetAgreementsByIDs keeps the order of ids; unknown ids are skipped.
func (r *AgreementRepo) GetAgreementsByIDs(ctx context.Context, ids []uuid.UUID) ([]types.Agreement, error) {
	if len(ids) == 0 {
		return []types.Agreement{}, nil
	}
	var rows []types.Agreement
	if err := r.db.WithContext(ctx).Where("id IN ?", ids).Find(&rows).Error; err != nil {
		return nil, err
	}

	byID := make(map[uuid.UUID]types.Agreement, len(rows))
	for _, row := range rows {
		byID[row.ID] = row
	}
	result := make([]types.Agreement, 0, len(rows))
	for _, id := range ids {
		if row, ok := byID[id]; ok {
			result = append(result, row)
		}
	}
	return result, nil
}

func (r *AgreementRepo) ListKeyDates(ctx context.Context, agreementID uuid.UUID) ([]types.KeyDate, error) {
	var keyDates []types.KeyDate
	err := r.db.WithContext(ctx).
		Where("agreement_id = ?", agreementID).
		Order("occurs_on ASC").
		Order("kind ASC").
		Find(&keyDates).Error
	return keyDates, err
}

// ListKeyDatesBetween returns key dates with from <= occurs_on <= to, joined
// with the owning agreement, in calendar order.
func (r *AgreementRepo) ListKeyDatesBetween(ctx context.Context, from, to types.Date) ([]types.UpcomingKeyDate, error) {
	var rows []types.UpcomingKeyDate
	err := r.db.WithContext(ctx).
		Table("key_dates AS kd").
		Select("kd.id, kd.agreement_id, kd.kind, kd.occurs_on, kd.description, kd.created_at, a.vendor, a.title").
		Joins("JOIN agreements a ON a.id = kd.agreement_id").
		Where("kd.occurs_on >= ? AND kd.occurs_on <= ?", from, to).
		Order("kd.occurs_on ASC").
		Order("a.vendor ASC").
		Scan(&rows).Error
	return rows, err
}

// SearchByKeyword 简单的 SQL 模糊搜索 (如果不用 ES 的话可以用这个兜底)
func (r *AgreementRepo) SearchByKeyword(ctx context.Context, keyword string, limit int) ([]types.Agreement, error) {
	if limit <= 0 {
		limit = 20
	}
	var results []types.Agreement
	pattern := "%" + keyword + "%"
	err := r.db.WithContext(ctx).
		Where("LOWER(vendor) LIKE LOWER(?) OR LOWER(title) LIKE LOWER(?) OR LOWER(source_file_name) LIKE LOWER(?)", pattern, pattern, pattern).
		Order("created_at DESC").
		Limit(limit).
		Find(&results).Error
	return results, err
}

// ListAllKeyDates is used by the export; rows come back grouped per
// agreement in calendar order.
func (r *AgreementRepo) ListAllKeyDates(ctx context.Context) ([]types.KeyDate, error) {
	var keyDates []types.KeyDate
	err := r.db.WithContext(ctx).
		Order("agreement_id ASC").
		Order("occurs_on ASC").
		Order("kind ASC").
		Find(&keyDates).Error
	return keyDates, err
}
