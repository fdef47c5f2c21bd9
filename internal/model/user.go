package model

type UserRole string

const (
	RoleUser UserRole = "user"
	Admin    UserRole = "admin"
)

// swagger:model User
type User struct {
	DocumentBase
	Name     string   `gorm:"size:100;not null" json:"name"`
	Email    string   `gorm:"size:100;uniqueIndex;not null" json:"email"`
	Password string   `gorm:"size:100;not null" json:"-"`
	Avatar   string   `gorm:"type:text" json:"avatar"`
	Role     UserRole `gorm:"size:20;default:'user'" json:"role"`
}

func (User) TableName() string {
	return "users"
}

func (u *User) IsAdmin() bool {
	return u.Role == Admin
}
