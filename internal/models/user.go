package models

// User is a back-office operator. Subscribers authenticate separately with
// matricola and email.
type User struct {
	BaseModel
	Email        string     `gorm:"size:255;uniqueIndex;not null" json:"email"`
	PasswordHash string     `gorm:"size:255;not null" json:"-"`
	Role         UserRole   `gorm:"type:varchar(20);not null" json:"role"`
	Status       UserStatus `gorm:"type:varchar(20);default:'active'" json:"status"`
}

func (u *User) IsActive() bool {
	return u.Status == "" || u.Status == UserStatusActive
}
