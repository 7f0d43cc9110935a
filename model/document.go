package model

import "time"

// Document is an uploaded PDF owned by a user. The PDF bytes live in object
// storage under ObjectKey; only metadata is kept in the database.
type Document struct {
	ID         int64     `json:"id"`
	UserID     int64     `json:"userId"`
	Title      string    `json:"title"`
	FileName   string    `json:"fileName"`
	ObjectKey  string    `json:"-"`
	SizeBytes  int64     `json:"sizeBytes"`
	PageCount  int       `json:"pageCount,omitempty"`
	LastPage   int       `json:"lastPage"` // resume position, 1-based
	UploadedAt time.Time `json:"uploadedAt"`
}
