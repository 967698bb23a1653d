package repository

import (
	"time"

	"github.com/SmaylovSerikbay/locals-sub000/internal/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormUserRepository is a GORM implementation of UserRepository
type GormUserRepository struct {
	db *gorm.DB
}

// NewUserRepository creates a new UserRepository
func NewUserRepository(db *gorm.DB) UserRepository {
	return &GormUserRepository{db: db}
}

// Upsert creates the user or refreshes profile fields on conflict. The
// reputation score is owned by the review engine and never touched here.
func (r *GormUserRepository) Upsert(user *models.User) error {
	if user.Rating == 0 {
		user.Rating = models.DefaultRating
	}
	user.Active = true

	return r.db.Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "id"}},
		DoUpdates: clause.Assignments(map[string]interface{}{
			"first_name": user.FirstName,
			"last_name":  user.LastName,
			"username":   user.Username,
			"avatar_url": user.AvatarURL,
			"active":     true,
			"updated_at": time.Now(),
		}),
	}).Create(user).Error
}

// FindByID finds a user by ID
func (r *GormUserRepository) FindByID(id uint64) (*models.User, error) {
	var user models.User
	if err := r.db.First(&user, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

// UpdateRating sets the user's reputation score
func (r *GormUserRepository) UpdateRating(id uint64, rating float64) error {
	return r.db.Model(&models.User{}).
		Where("id = ?", id).
		Update("rating", rating).Error
}
