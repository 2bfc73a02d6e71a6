package database

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/vlasove/meetroom/internal/booking"
	"github.com/vlasove/meetroom/internal/models"
)

// Реализация booking.Store на GORM.

func (d *Database) ListByRoom(ctx context.Context, roomNumber int) ([]models.Reservation, error) {
	var reservations []models.Reservation
	err := d.db.WithContext(ctx).
		Where("room_number = ?", roomNumber).
		Find(&reservations).Error
	if err != nil {
		return nil, err
	}
	return reservations, nil
}

func (d *Database) ListByOwner(ctx context.Context, ownerID uuid.UUID) ([]models.Reservation, error) {
	var reservations []models.Reservation
	err := d.db.WithContext(ctx).
		Where("owner_id = ?", ownerID).
		Find(&reservations).Error
	if err != nil {
		return nil, err
	}
	return reservations, nil
}

func (d *Database) FindByID(ctx context.Context, id uuid.UUID) (*models.Reservation, error) {
	var r models.Reservation
	if err := d.db.WithContext(ctx).First(&r, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, booking.ErrNotFound
		}
		return nil, err
	}
	return &r, nil
}

func (d *Database) Insert(ctx context.Context, r *models.Reservation) error {
	return d.db.WithContext(ctx).Create(r).Error
}

func (d *Database) Update(ctx context.Context, r *models.Reservation) error {
	return d.db.WithContext(ctx).Save(r).Error
}

func (d *Database) Delete(ctx context.Context, r *models.Reservation) error {
	return d.db.WithContext(ctx).Delete(r).Error
}
