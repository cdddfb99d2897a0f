package user

import "time"

type User struct {
	UserID    string    `gorm:"column:user_id;primaryKey;size:10" json:"user_id"`
	Email     string    `gorm:"uniqueIndex;not null" json:"email"`
	Name      string    `json:"name"`
	Password  string    `json:"-"`
	Provider  string    `gorm:"size:20" json:"provider,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
}
