package user

type UserView struct {
	ID    int64  `json:"id"`
	Email string `json:"email"`
	Type  string `json:"type"`
}

func MapUser(u *User) UserView {
	return UserView{ID: u.ID, Email: u.Email, Type: string(u.Role)}
}
