package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/Skotchmaster/storefront/internal/models"
	"github.com/Skotchmaster/storefront/internal/repo"
	"github.com/Skotchmaster/storefront/internal/transport"
	"github.com/Skotchmaster/storefront/internal/util"
)

type ReviewService struct {
	Repo *repo.GormRepo
}

func reviewView(r models.Review) transport.ReviewView {
	author := "anonymous"
	if r.User != nil {
		author = util.MaskEmail(r.User.Email)
	}
	return transport.ReviewView{
		ID:        r.ID,
		ProductID: r.ProductID,
		Rating:    r.Rating,
		Comment:   r.Comment,
		Author:    author,
		CreatedAt: r.CreatedAt,
	}
}

func validRating(r int) error {
	if r < 1 || r > 5 {
		return fmt.Errorf("%w: rating must be between 1 and 5", ErrValidation)
	}
	return nil
}

func (s *ReviewService) ForProduct(ctx context.Context, productID uint) (transport.ProductReviews, error) {
	rs, stats, err := s.Repo.ListReviewsForProduct(ctx, productID)
	if err != nil {
		return transport.ProductReviews{}, fromRepo(err, "product")
	}
	out := transport.ProductReviews{
		Reviews:       make([]transport.ReviewView, len(rs)),
		AverageRating: stats.Average,
		Count:         stats.Count,
	}
	for i, r := range rs {
		out.Reviews[i] = reviewView(r)
	}
	return out, nil
}

func (s *ReviewService) Create(ctx context.Context, userID uint, req transport.CreateReviewRequest) (transport.ReviewView, error) {
	if err := validRating(req.Rating); err != nil {
		return transport.ReviewView{}, err
	}
	uid := userID
	r := models.Review{ProductID: req.ProductID, UserID: &uid, Rating: req.Rating, Comment: strings.TrimSpace(req.Comment)}
	if err := s.Repo.CreateReview(ctx, &r); err != nil {
		return transport.ReviewView{}, fromRepo(err, "product")
	}
	u, err := s.Repo.GetUserByID(ctx, userID)
	if err == nil {
		r.User = u
	}
	return reviewView(r), nil
}

// Update is reserved to the author.
func (s *ReviewService) Update(ctx context.Context, userID, id uint, req transport.UpdateReviewRequest) (transport.ReviewView, error) {
	r, err := s.Repo.GetReview(ctx, id)
	if err != nil {
		return transport.ReviewView{}, fromRepo(err, "review")
	}
	if r.UserID == nil || *r.UserID != userID {
		return transport.ReviewView{}, fmt.Errorf("%w: not your review", ErrForbidden)
	}
	if req.Rating != nil {
		if err := validRating(*req.Rating); err != nil {
			return transport.ReviewView{}, err
		}
	}
	r, err = s.Repo.UpdateReview(ctx, id, req.Rating, req.Comment)
	if err != nil {
		return transport.ReviewView{}, fromRepo(err, "review")
	}
	if u, err := s.Repo.GetUserByID(ctx, userID); err == nil {
		r.User = u
	}
	return reviewView(*r), nil
}

// Delete is allowed to the author and to admins.
func (s *ReviewService) Delete(ctx context.Context, userID uint, admin bool, id uint) error {
	r, err := s.Repo.GetReview(ctx, id)
	if err != nil {
		return fromRepo(err, "review")
	}
	if !admin && (r.UserID == nil || *r.UserID != userID) {
		return fmt.Errorf("%w: not your review", ErrForbidden)
	}
	return fromRepo(s.Repo.DeleteReview(ctx, id), "review")
}
