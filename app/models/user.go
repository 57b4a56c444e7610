package models

import (
	"time"

	"github.com/go-playground/validator/v10"
	"golang.org/x/crypto/bcrypt"
)

const (
	ROLE_USER       = "user"
	ROLE_ADMIN      = "admin"
	STATUS_ACTIVE   = "active"
	STATUS_INACTIVE = "inactive"
	STATUS_DISABLED = "disabled"
)

// User is the login identity created for a corretor when their payment is
// approved. The password stored here is always a bcrypt hash; the plaintext
// exists only for the lifetime of the welcome email.
type User struct {
	ID          uint       `gorm:"primaryKey" json:"id"`
	Name        string     `gorm:"type:varchar(150)" json:"name" validate:"required,min=1,max=150"`
	Email       string     `gorm:"uniqueIndex:ux_users_email;type:varchar(200)" json:"email" validate:"required,email,min=5,max=200"`
	Password    string     `gorm:"type:text" json:"-" validate:"required,min=6"`
	Role        string     `gorm:"type:varchar(50);default:'user'" json:"role" validate:"oneof=user admin"`
	Status      string     `gorm:"type:varchar(50);default:'active'" json:"status" validate:"oneof=active inactive disabled"`
	LastLoginAt *time.Time `gorm:"type:timestamp;default:null" json:"last_login_at"`
	CreatedAt   time.Time  `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt   time.Time  `gorm:"autoUpdateTime" json:"updated_at"`
}

func (u *User) Validate() error {
	v := validator.New()

	return v.Struct(u)
}

// CreateUser builds an active user with a hashed password. Accounts born
// from an approved payment skip the activation flow: the payment itself is
// the proof of ownership.
func CreateUser(name string, email string, password string) (*User, error) {
	pw, err := HashPassword(password)
	if err != nil {
		return nil, err
	}

	u := &User{
		Name:     name,
		Email:    email,
		Password: pw,
		Role:     ROLE_USER,
		Status:   STATUS_ACTIVE,
	}

	err = u.Validate()
	if err != nil {
		return nil, err
	}

	return u, nil
}

func HashPassword(password string) (string, error) {
	bytes, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)

	return string(bytes), err
}

// CheckPasswordHash compares the given password with the stored hash.
func CheckPasswordHash(password, hash string) bool {
	err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password))

	return err == nil
}
