package models

import "time"

// UserFavorites is the favorites record of one user.
type UserFavorites struct {
	ID        uint            `gorm:"primaryKey" json:"-"`
	CreatedAt time.Time       `json:"created_at"`
	UpdatedAt time.Time       `json:"updated_at"`
	Email     string          `gorm:"size:255;uniqueIndex;not null" json:"email"`
	Entries   []FavoriteEntry `gorm:"foreignKey:UserFavoritesID" json:"favorites"`
}

// FavoriteEntry names are unique within one UserFavorites.
type FavoriteEntry struct {
	ID              uint      `gorm:"primaryKey" json:"-"`
	UserFavoritesID uint      `gorm:"not null;uniqueIndex:idx_fav_name,priority:1" json:"-"`
	Name            string    `gorm:"size:255;not null;uniqueIndex:idx_fav_name,priority:2" json:"name"`
	Priority        int       `gorm:"not null;default:0" json:"priority"`
	CreatedAt       time.Time `json:"createdAt"`
}

// Names returns entry names in stored order.
func (f *UserFavorites) Names() []string {
	names := make([]string, 0, len(f.Entries))
	for _, e := range f.Entries {
		names = append(names, e.Name)
	}
	return names
}

func (UserFavorites) TableName() string { return "user_favorites" }
