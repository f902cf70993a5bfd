package models

// Movie is a catalog row. DirectorName is only filled by the joined read queries.
type Movie struct {
	ID           int64   `json:"id"`
	Title        string  `json:"title"`
	DirectorID   *int64  `json:"director_id"`             // null once the director is deleted
	DirectorName *string `json:"director_name,omitempty"` // LEFT JOIN projection
	Year         int     `json:"year"`
}

// MovieInput carries the writable movie fields.
type MovieInput struct {
	Title      string
	DirectorID int64
	Year       int
}
