package mysql

import (
	"context"

	requestDomain "procurement-approval/internal/domain/request"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type RequestRepository struct{ db *gorm.DB }

func NewRequestRepository(db *gorm.DB) *RequestRepository { return &RequestRepository{db: db} }

// Create inserts the request; documents are saved through the association.
func (r *RequestRepository) Create(ctx context.Context, req *requestDomain.Request) error {
	return r.db.WithContext(ctx).Create(req).Error
}

func (r *RequestRepository) GetByID(ctx context.Context, id uint64) (*requestDomain.Request, error) {
	var out requestDomain.Request
	res := r.db.WithContext(ctx).
		Preload("Documents").
		Where("id = ?", id).
		First(&out)
	return &out, res.Error
}

func (r *RequestRepository) GetByIDForUpdate(ctx context.Context, id uint64) (*requestDomain.Request, error) {
	var out requestDomain.Request
	res := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("id = ?", id).
		First(&out)
	return &out, res.Error
}

func (r *RequestRepository) ListByIDs(ctx context.Context, ids []uint64) ([]requestDomain.Request, error) {
	var out []requestDomain.Request
	if len(ids) == 0 {
		return out, nil
	}
	res := r.db.WithContext(ctx).Where("id IN ?", ids).Order("id ASC").Find(&out)
	return out, res.Error
}

func (r *RequestRepository) Save(ctx context.Context, req *requestDomain.Request) error {
	return r.db.WithContext(ctx).Omit(clause.Associations).Save(req).Error
}

func (r *RequestRepository) ReplaceDocuments(ctx context.Context, requestID uint64, docs []requestDomain.Document) error {
	db := r.db.WithContext(ctx)
	if err := db.Where("request_id = ?", requestID).Delete(&requestDomain.Document{}).Error; err != nil {
		return err
	}
	if len(docs) == 0 {
		return nil
	}
	for i := range docs {
		docs[i].ID = 0
		docs[i].RequestID = requestID
	}
	return db.Create(&docs).Error
}

// SoftDelete marks the request deleted and soft-deletes it with its documents.
func (r *RequestRepository) SoftDelete(ctx context.Context, req *requestDomain.Request, by uint64) error {
	db := r.db.WithContext(ctx)
	if err := db.Model(req).Omit(clause.Associations).Updates(map[string]any{
		"status":     requestDomain.StatusDeleted,
		"deleted_by": by,
	}).Error; err != nil {
		return err
	}
	if err := db.Where("request_id = ?", req.ID).Delete(&requestDomain.Document{}).Error; err != nil {
		return err
	}
	return db.Delete(req).Error
}

// NextSequence must run inside a transaction: the counter row stays locked
// until commit so concurrent submissions get distinct numbers.
func (r *RequestRepository) NextSequence(ctx context.Context, year int) (int, error) {
	db := r.db.WithContext(ctx)
	seed := requestDomain.Counter{Year: year}
	if err := db.Clauses(clause.OnConflict{DoNothing: true}).Create(&seed).Error; err != nil {
		return 0, err
	}
	var cur requestDomain.Counter
	if err := db.Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("year = ?", year).
		First(&cur).Error; err != nil {
		return 0, err
	}
	next := cur.LastValue + 1
	if err := db.Model(&requestDomain.Counter{}).
		Where("year = ?", year).
		Update("last_value", next).Error; err != nil {
		return 0, err
	}
	return next, nil
}
