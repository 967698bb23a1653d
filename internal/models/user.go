package models

import "time"

// DefaultRating is the reputation score assigned to a user on first sync.
const DefaultRating = 5.0

// User identity comes from the external auth provider, so the ID is never
// auto-incremented locally.
type User struct {
	ID        uint64    `gorm:"primarykey;autoIncrement:false" json:"id"`
	FirstName string    `gorm:"type:varchar(255)" json:"first_name"`
	LastName  string    `gorm:"type:varchar(255)" json:"last_name"`
	Username  string    `gorm:"type:varchar(255);index" json:"username"`
	AvatarURL string    `gorm:"type:varchar(512)" json:"avatar_url"`
	Rating    float64   `gorm:"not null;default:5" json:"rating"`
	Active    bool      `gorm:"not null;default:true" json:"active"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	// Relations
	Items   []Item   `gorm:"foreignKey:AuthorID" json:"-"`
	Reviews []Review `gorm:"foreignKey:TargetID" json:"-"`
}

// DisplayName joins the name parts, falling back to the username.
func (u User) DisplayName() string {
	switch {
	case u.FirstName != "" && u.LastName != "":
		return u.FirstName + " " + u.LastName
	case u.FirstName != "":
		return u.FirstName
	default:
		return u.Username
	}
}
