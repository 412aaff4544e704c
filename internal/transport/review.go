package transport

import "time"

type CreateReviewRequest struct {
	ProductID uint   `json:"product_id" validate:"required"`
	Rating    int    `json:"rating"     validate:"required,min=1,max=5"`
	Comment   string `json:"comment"    validate:"max=2000"`
}

type UpdateReviewRequest struct {
	Rating  *int    `json:"rating"  validate:"omitempty,min=1,max=5"`
	Comment *string `json:"comment" validate:"omitempty,max=2000"`
}

type ReviewView struct {
	ID        uint      `json:"id"`
	ProductID uint      `json:"product_id"`
	Rating    int       `json:"rating"`
	Comment   string    `json:"comment"`
	Author    string    `json:"author"`
	CreatedAt time.Time `json:"created_at"`
}

type ProductReviews struct {
	Reviews       []ReviewView `json:"reviews"`
	AverageRating float64      `json:"average_rating"`
	Count         int64        `json:"count"`
}

type WishlistRequest struct {
	ProductID uint `json:"product_id" validate:"required"`
}
