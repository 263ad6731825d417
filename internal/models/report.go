package models

import "time"

type Report struct {
	ID          string    `bson:"_id" json:"id"`
	Title       string    `bson:"title" json:"title"`
	Description string    `bson:"description" json:"description"`
	FilePath    string    `bson:"file_path" json:"file_path"`
	CreatedAt   time.Time `bson:"created_at" json:"created_at"`
}
