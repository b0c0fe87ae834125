package entities

type User struct {
	ID    uint
	Login string
	Name  string
	Email string
}

func (u User) Identified() bool {
	return u.Login != "" || u.Name != "" || u.Email != ""
}
