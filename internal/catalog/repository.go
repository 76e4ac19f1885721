package catalog

import (
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Repository interface {
	Create(item *Item) error
	CreateBatch(items []Item) error
	GetByID(id uuid.UUID) (*Item, error)
	GetByIDs(ids []uuid.UUID) ([]Item, error)
	GetByEventID(eventID uuid.UUID) ([]Item, error)
	UpdateStatus(id uuid.UUID, status ItemStatus) error
}

type repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) Create(item *Item) error {
	return r.db.Create(item).Error
}

func (r *repository) CreateBatch(items []Item) error {
	if len(items) == 0 {
		return nil
	}
	return r.db.CreateInBatches(items, 100).Error
}

func (r *repository) GetByID(id uuid.UUID) (*Item, error) {
	var item Item
	err := r.db.Where("id = ?", id).First(&item).Error
	if err != nil {
		return nil, err
	}
	return &item, nil
}

func (r *repository) GetByIDs(ids []uuid.UUID) ([]Item, error) {
	var items []Item
	if len(ids) == 0 {
		return items, nil
	}
	err := r.db.Where("id IN ?", ids).Find(&items).Error
	return items, err
}

func (r *repository) GetByEventID(eventID uuid.UUID) ([]Item, error) {
	var items []Item
	err := r.db.Where("event_id = ?", eventID).Order("label ASC").Find(&items).Error
	return items, err
}

func (r *repository) UpdateStatus(id uuid.UUID, status ItemStatus) error {
	return r.db.Model(&Item{}).Where("id = ?", id).Update("status", status).Error
}
