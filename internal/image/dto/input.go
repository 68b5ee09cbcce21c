package dto

type AddImageInput struct {
	MerchantID   string `json:"-"`
	ProductID    string `json:"-"`
	URL          string `json:"url" validate:"required,url"`
	ThumbnailURL string `json:"thumbnail_url" validate:"omitempty,url"`
	FileName     string `json:"file_name" validate:"max=255"`
	IsPrimary    bool   `json:"is_primary"`
}
