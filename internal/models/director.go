package models

type Director struct {
	ID        int64  `json:"id"`
	Name      string `json:"name"`
	BirthYear int    `json:"birthYear"`
}

// DirectorInput carries the writable director fields.
type DirectorInput struct {
	Name      string
	BirthYear int
}
