package model

import "time"

type ProductImage struct {
	ID           string    `db:"id" json:"id"`
	ProductID    string    `db:"product_id" json:"product_id"`
	URL          string    `db:"url" json:"url"`
	ThumbnailURL *string   `db:"thumbnail_url" json:"thumbnail_url"`
	FileName     string    `db:"file_name" json:"file_name"`
	IsPrimary    bool      `db:"is_primary" json:"is_primary"`
	CreatedAt    time.Time `db:"created_at" json:"created_at"`
}
