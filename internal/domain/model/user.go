package model

type User struct {
	UserID     string
	Staff      bool
	Admin      bool
	HAdmin     bool
	BugHunters bool
}
