package model

type Team struct {
	ID   string
	Name string
}
