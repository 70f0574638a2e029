package models

import "time"

// Post represents a user post
type Post struct {
	ID          uint      `json:"id" gorm:"primaryKey"`
	AuthorID    uint      `json:"author_id" gorm:"index"`
	Description *string   `json:"description"`
	ImageURL    string    `json:"image_url"`
	CreatedAt   time.Time `json:"created_at"`
}

// CreatePostRequest defines the request body for creating a new post
type CreatePostRequest struct {
	Description *string `json:"description" validate:"omitempty,max=2000"`
	ImageURL    string  `json:"image_url" validate:"required,url"`
}
