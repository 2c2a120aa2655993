package repository

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
	"github.com/sangkips/clientbook-api/internal/domain/entity"
	"github.com/sangkips/clientbook-api/internal/domain/enum"
	"github.com/sangkips/clientbook-api/internal/domain/identity"
	domainRepo "github.com/sangkips/clientbook-api/internal/domain/repository"
	"gorm.io/gorm"
)

type bookingRepository struct {
	db *gorm.DB
}

// NewBookingRepository creates a new booking repository
func NewBookingRepository(db *gorm.DB) domainRepo.BookingRepository {
	return &bookingRepository{db: db}
}

func (r *bookingRepository) GetByID(ctx context.Context, businessID, id uuid.UUID) (*entity.Booking, error) {
	var booking entity.Booking
	err := r.db.WithContext(ctx).
		Scopes(BusinessScope(businessID)).
		First(&booking, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &booking, nil
}

func (r *bookingRepository) FindForIdentity(ctx context.Context, businessID uuid.UUID, filter identity.Filter, limit int) ([]entity.Booking, error) {
	if filter.IsEmpty() {
		return nil, nil
	}

	var bookings []entity.Booking
	query := r.db.WithContext(ctx).
		Scopes(BusinessScope(businessID), IdentityScope(filter)).
		Where("status <> ?", enum.BookingStatusCancelled).
		Order("date DESC").Order("created_at DESC")
	if limit > 0 {
		query = query.Limit(limit)
	}
	err := query.Find(&bookings).Error
	return bookings, err
}

func (r *bookingRepository) CountCancelledForIdentity(ctx context.Context, businessID uuid.UUID, filter identity.Filter) (int64, error) {
	if filter.IsEmpty() {
		return 0, nil
	}

	var total int64
	err := r.db.WithContext(ctx).Model(&entity.Booking{}).
		Scopes(BusinessScope(businessID), IdentityScope(filter)).
		Where("status = ?", enum.BookingStatusCancelled).
		Count(&total).Error
	return total, err
}

func (r *bookingRepository) AssignCustomer(ctx context.Context, businessID, bookingID, clientID uuid.UUID) error {
	res := r.db.WithContext(ctx).Model(&entity.Booking{}).
		Scopes(BusinessScope(businessID)).
		Where("id = ?", bookingID).
		Update("customer_id", clientID)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return domainRepo.ErrNotFound
	}
	return nil
}

// IdentityScope selects bookings linked to the client or carrying its email
// or phone. The phone test is a regex over the raw column that agrees with
// identity.NormalizePhone.
func IdentityScope(f identity.Filter) func(db *gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		var conds []string
		var args []interface{}
		if f.ClientID != uuid.Nil {
			conds = append(conds, "customer_id = ?")
			args = append(args, f.ClientID)
		}
		if f.EmailKey != "" {
			conds = append(conds, "lower(trim(customer_email)) = ?")
			args = append(args, f.EmailKey)
		}
		if f.PhoneKey != "" {
			conds = append(conds, "customer_phone ~ ?")
			args = append(args, identity.PhonePattern(f.PhoneKey))
		}
		if len(conds) == 0 {
			return db.Where("1 = 0")
		}
		return db.Where("("+strings.Join(conds, " OR ")+")", args...)
	}
}
