package user

import (
	"time"

	"procurement-be/internal/access"
)

type User struct {
	ID        int64
	Email     string
	Password  string
	Role      access.Role
	CreatedAt time.Time
}

type RegisterParams struct {
	Email    string
	Password string
	Role     access.Role
}
