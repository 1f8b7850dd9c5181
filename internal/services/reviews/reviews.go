package reviews

import (
	"context"
	"errors"
	"log/slog"

	"yamdb/proj/internal/domain/filters"
	"yamdb/proj/internal/domain/models"
	"yamdb/proj/internal/lib/validator"
	"yamdb/proj/internal/storage"
)

type ReviewStorage interface {
	Get(ctx context.Context, titleID, id int64) (*models.Review, error)
	List(ctx context.Context, titleID int64, f filters.Filters) ([]models.Review, int, error)
	Exists(ctx context.Context, titleID, authorID int64) (bool, error)
	Insert(ctx context.Context, review *models.Review) (*models.Review, error)
	Update(ctx context.Context, review *models.Review) (*models.Review, error)
	Delete(ctx context.Context, titleID, id int64) error
}

type CommentStorage interface {
	Get(ctx context.Context, titleID, reviewID, id int64) (*models.Comment, error)
	List(ctx context.Context, reviewID int64, f filters.Filters) ([]models.Comment, int, error)
	Insert(ctx context.Context, comment *models.Comment) (*models.Comment, error)
	Update(ctx context.Context, comment *models.Comment) (*models.Comment, error)
	Delete(ctx context.Context, reviewID, id int64) error
}

type TitleChecker interface {
	Exists(ctx context.Context, id int64) (bool, error)
}

// ReviewService handles reviews and the comments posted under them.
type ReviewService struct {
	log      *slog.Logger
	reviews  ReviewStorage
	comments CommentStorage
	titles   TitleChecker
}

func New(log *slog.Logger, reviews ReviewStorage, comments CommentStorage, titles TitleChecker) *ReviewService {
	return &ReviewService{
		log:      log,
		reviews:  reviews,
		comments: comments,
		titles:   titles,
	}
}

func (s *ReviewService) ensureTitle(ctx context.Context, titleID int64) error {
	exists, err := s.titles.Exists(ctx, titleID)
	if err != nil {
		return err
	}
	if !exists {
		return ErrTitleNotFound
	}
	return nil
}

func (s *ReviewService) ListReviews(ctx context.Context, titleID int64, f filters.Filters) ([]models.Review, int, error) {
	const op = "reviews.ReviewService.ListReviews"
	log := s.log.With("op", op, "titleID", titleID)
	if err := s.ensureTitle(ctx, titleID); err != nil {
		log.Info("title check failed", "errMsg", err.Error())
		return nil, 0, err
	}
	reviews, total, err := s.reviews.List(ctx, titleID, f)
	if err != nil {
		log.Error(err.Error())
		return nil, 0, err
	}
	return reviews, total, nil
}

func (s *ReviewService) GetReview(ctx context.Context, titleID, id int64) (*models.Review, error) {
	const op = "reviews.ReviewService.GetReview"
	log := s.log.With("op", op, "titleID", titleID, "id", id)
	review, err := s.reviews.Get(ctx, titleID, id)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			log.Info("review not found")
			return nil, ErrReviewNotFound
		}
		log.Error(err.Error())
		return nil, err
	}
	return review, nil
}

// CreateReview stores a review by authorID. A second review of the same title by the same
// author is rejected, including when two requests race past the existence check.
func (s *ReviewService) CreateReview(ctx context.Context, titleID, authorID int64, text string, score int16) (*models.Review, error) {
	const op = "reviews.ReviewService.CreateReview"
	log := s.log.With("op", op, "titleID", titleID, "authorID", authorID)
	if err := s.ensureTitle(ctx, titleID); err != nil {
		log.Info("title check failed", "errMsg", err.Error())
		return nil, err
	}
	exists, err := s.reviews.Exists(ctx, titleID, authorID)
	if err != nil {
		log.Error(err.Error())
		return nil, err
	}
	if exists {
		log.Info("review already exists")
		return nil, validator.NewFieldError("non_field_errors", msgAlreadyReviewed)
	}
	review, err := s.reviews.Insert(ctx, &models.Review{
		TitleID:  titleID,
		AuthorID: authorID,
		Text:     text,
		Score:    score,
	})
	if err != nil {
		switch {
		case errors.Is(err, storage.ErrConflict):
			log.Info("review already exists")
			return nil, validator.NewFieldError("non_field_errors", msgAlreadyReviewed)
		case errors.Is(err, storage.ErrNotFound):
			return nil, ErrTitleNotFound
		}
		log.Error("Error inserting review: " + err.Error())
		return nil, err
	}
	return review, nil
}

// UpdateReview applies a partial update to a review loaded with GetReview.
func (s *ReviewService) UpdateReview(ctx context.Context, review *models.Review, text *string, score *int16) (*models.Review, error) {
	const op = "reviews.ReviewService.UpdateReview"
	log := s.log.With("op", op, "id", review.ID)
	if text != nil {
		review.Text = *text
	}
	if score != nil {
		review.Score = *score
	}
	updated, err := s.reviews.Update(ctx, review)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			log.Info("review not found")
			return nil, ErrReviewNotFound
		}
		log.Error("Error updating review: " + err.Error())
		return nil, err
	}
	return updated, nil
}

func (s *ReviewService) DeleteReview(ctx context.Context, titleID, id int64) error {
	const op = "reviews.ReviewService.DeleteReview"
	log := s.log.With("op", op, "titleID", titleID, "id", id)
	if err := s.reviews.Delete(ctx, titleID, id); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			log.Info("review not found")
			return ErrReviewNotFound
		}
		log.Error(err.Error())
		return err
	}
	return nil
}

func (s *ReviewService) ListComments(ctx context.Context, titleID, reviewID int64, f filters.Filters) ([]models.Comment, int, error) {
	const op = "reviews.ReviewService.ListComments"
	log := s.log.With("op", op, "titleID", titleID, "reviewID", reviewID)
	if _, err := s.GetReview(ctx, titleID, reviewID); err != nil {
		return nil, 0, err
	}
	comments, total, err := s.comments.List(ctx, reviewID, f)
	if err != nil {
		log.Error(err.Error())
		return nil, 0, err
	}
	return comments, total, nil
}

func (s *ReviewService) GetComment(ctx context.Context, titleID, reviewID, id int64) (*models.Comment, error) {
	const op = "reviews.ReviewService.GetComment"
	log := s.log.With("op", op, "titleID", titleID, "reviewID", reviewID, "id", id)
	comment, err := s.comments.Get(ctx, titleID, reviewID, id)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			log.Info("comment not found")
			return nil, ErrCommentNotFound
		}
		log.Error(err.Error())
		return nil, err
	}
	return comment, nil
}

func (s *ReviewService) CreateComment(ctx context.Context, titleID, reviewID, authorID int64, text string) (*models.Comment, error) {
	const op = "reviews.ReviewService.CreateComment"
	log := s.log.With("op", op, "titleID", titleID, "reviewID", reviewID, "authorID", authorID)
	if _, err := s.GetReview(ctx, titleID, reviewID); err != nil {
		return nil, err
	}
	comment, err := s.comments.Insert(ctx, &models.Comment{
		ReviewID: reviewID,
		AuthorID: authorID,
		Text:     text,
	})
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, ErrReviewNotFound
		}
		log.Error("Error inserting comment: " + err.Error())
		return nil, err
	}
	return comment, nil
}

func (s *ReviewService) UpdateComment(ctx context.Context, comment *models.Comment, text *string) (*models.Comment, error) {
	const op = "reviews.ReviewService.UpdateComment"
	log := s.log.With("op", op, "id", comment.ID)
	if text != nil {
		comment.Text = *text
	}
	updated, err := s.comments.Update(ctx, comment)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			log.Info("comment not found")
			return nil, ErrCommentNotFound
		}
		log.Error("Error updating comment: " + err.Error())
		return nil, err
	}
	return updated, nil
}

func (s *ReviewService) DeleteComment(ctx context.Context, reviewID, id int64) error {
	const op = "reviews.ReviewService.DeleteComment"
	log := s.log.With("op", op, "reviewID", reviewID, "id", id)
	if err := s.comments.Delete(ctx, reviewID, id); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			log.Info("comment not found")
			return ErrCommentNotFound
		}
		log.Error(err.Error())
		return err
	}
	return nil
}
