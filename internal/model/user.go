package model

// User is an account that owns tasks.
type User struct {
	ID             string  `gorm:"primaryKey" json:"id"`
	Email          string  `gorm:"uniqueIndex;not null" json:"email"`
	FullName       *string `json:"full_name"`
	HashedPassword string  `gorm:"not null" json:"-"`
	Tasks          []Task  `gorm:"foreignKey:OwnerID" json:"-"`
}
