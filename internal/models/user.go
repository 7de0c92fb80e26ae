package models

import "time"

const DefaultProfilePicture = "https://static.vecteezy.com/system/resources/thumbnails/020/765/399/small_2x/default-profile-account-unknown-icon-black-silhouette-free-vector.jpg"

type User struct {
	ID             uint      `gorm:"primaryKey" json:"id"`
	FirstName      string    `gorm:"not null" json:"firstName"`
	InitialNames   string    `json:"initialNames,omitempty"`
	LastName       string    `gorm:"not null" json:"lastName"`
	Email          string    `gorm:"uniqueIndex;not null" json:"email"`
	PasswordHash   string    `gorm:"column:password" json:"-"`
	ProfilePicture string    `gorm:"not null" json:"profilePicture"`
	CreatedAt      time.Time `json:"createdAt"`
	UpdatedAt      time.Time `json:"updatedAt"`
}
