package handler

import (
	"context"
	"errors"
	"net/http"

	"bookreviews/internal/app/books/entity"
	"bookreviews/internal/app/books/service"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
)

type ReviewServiceInterface interface {
	CreateReview(ctx context.Context, bookID string, userID string, req *entity.CreateReviewRequest) (*entity.Review, error)
	GetReviewsByBook(ctx context.Context, bookID string) ([]entity.Review, error)
	UpdateReview(ctx context.Context, reviewID string, userID string, req *entity.UpdateReviewRequest) (*entity.Review, error)
	DeleteReview(ctx context.Context, reviewID string, userID string) error
}

type ReviewHandler struct {
	reviewService ReviewServiceInterface
	validator     *validator.Validate
}

func NewReviewHandler(reviewService ReviewServiceInterface) *ReviewHandler {
	return &ReviewHandler{
		reviewService: reviewService,
		validator:     validator.New(),
	}
}

func (h *ReviewHandler) GetReviewsByBook(c *gin.Context) {
	bookID := c.Param("id")

	reviews, err := h.reviewService.GetReviewsByBook(c.Request.Context(), bookID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, entity.NewErrorResponse("Failed to get reviews"))
		return
	}

	c.JSON(http.StatusOK, entity.NewListResponse(reviews, len(reviews)))
}

func (h *ReviewHandler) CreateReview(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, entity.NewErrorResponse("Unauthorized"))
		return
	}

	bookID := c.Param("id")

	var req entity.CreateReviewRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, entity.NewErrorResponse("Invalid request body"))
		return
	}

	if err := h.validator.Struct(req); err != nil {
		c.JSON(http.StatusBadRequest, entity.NewErrorResponse(formatValidationError(err)))
		return
	}

	review, err := h.reviewService.CreateReview(c.Request.Context(), bookID, userID, &req)
	if err != nil {
		if errors.Is(err, service.ErrBookNotFound) {
			c.JSON(http.StatusNotFound, entity.NewErrorResponse("Book not found"))
			return
		}
		if errors.Is(err, service.ErrDuplicateReview) {
			c.JSON(http.StatusConflict, entity.NewErrorResponse("User already reviewed this book"))
			return
		}
		c.JSON(http.StatusInternalServerError, entity.NewErrorResponse("Failed to create review"))
		return
	}

	c.JSON(http.StatusCreated, entity.NewDataResponse(review))
}

func (h *ReviewHandler) UpdateReview(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, entity.NewErrorResponse("Unauthorized"))
		return
	}

	reviewID := c.Param("id")

	var req entity.UpdateReviewRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, entity.NewErrorResponse("Invalid request body"))
		return
	}

	if err := h.validator.Struct(req); err != nil {
		c.JSON(http.StatusBadRequest, entity.NewErrorResponse(formatValidationError(err)))
		return
	}

	review, err := h.reviewService.UpdateReview(c.Request.Context(), reviewID, userID, &req)
	if err != nil {
		if errors.Is(err, service.ErrReviewNotFound) {
			c.JSON(http.StatusNotFound, entity.NewErrorResponse("Review not found"))
			return
		}
		if errors.Is(err, service.ErrNotReviewAuthor) {
			c.JSON(http.StatusUnauthorized, entity.NewErrorResponse("Not authorized to update review"))
			return
		}
		c.JSON(http.StatusInternalServerError, entity.NewErrorResponse("Failed to update review"))
		return
	}

	c.JSON(http.StatusOK, entity.NewDataResponse(review))
}

func (h *ReviewHandler) DeleteReview(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, entity.NewErrorResponse("Unauthorized"))
		return
	}

	reviewID := c.Param("id")

	if err := h.reviewService.DeleteReview(c.Request.Context(), reviewID, userID); err != nil {
		if errors.Is(err, service.ErrReviewNotFound) {
			c.JSON(http.StatusNotFound, entity.NewErrorResponse("Review not found"))
			return
		}
		if errors.Is(err, service.ErrNotReviewAuthor) {
			c.JSON(http.StatusUnauthorized, entity.NewErrorResponse("Not authorized to delete review"))
			return
		}
		c.JSON(http.StatusInternalServerError, entity.NewErrorResponse("Failed to delete review"))
		return
	}

	c.JSON(http.StatusOK, entity.NewDataResponse(gin.H{}))
}
