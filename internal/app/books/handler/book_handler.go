package handler

import (
	"context"
	"errors"
	"net/http"
	"strconv"

	"bookreviews/internal/app/books/entity"
	"bookreviews/internal/app/books/service"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
)

type BookServiceInterface interface {
	CreateBook(ctx context.Context, userID string, req *entity.CreateBookRequest) (*entity.Book, error)
	GetBook(ctx context.Context, id string) (*entity.Book, error)
	GetAllBooks(ctx context.Context, opts entity.ListBooksOptions) ([]entity.Book, error)
	SearchBooks(ctx context.Context, term string) ([]entity.Book, error)
}

type BookHandler struct {
	bookService BookServiceInterface
	validator   *validator.Validate
}

func NewBookHandler(bookService BookServiceInterface) *BookHandler {
	return &BookHandler{
		bookService: bookService,
		validator:   validator.New(),
	}
}

func (h *BookHandler) GetBooks(c *gin.Context) {
	opts := parseListOptions(c)

	books, err := h.bookService.GetAllBooks(c.Request.Context(), opts)
	if err != nil {
		c.JSON(http.StatusInternalServerError, entity.NewErrorResponse("Failed to get books"))
		return
	}

	c.JSON(http.StatusOK, entity.NewListResponse(books, len(books)))
}

func (h *BookHandler) SearchBooks(c *gin.Context) {
	term := c.Query("q")

	books, err := h.bookService.SearchBooks(c.Request.Context(), term)
	if err != nil {
		if errors.Is(err, service.ErrEmptySearchTerm) {
			c.JSON(http.StatusBadRequest, entity.NewErrorResponse("Please provide a search term"))
			return
		}
		c.JSON(http.StatusInternalServerError, entity.NewErrorResponse("Failed to search books"))
		return
	}

	c.JSON(http.StatusOK, entity.NewListResponse(books, len(books)))
}

func (h *BookHandler) GetBook(c *gin.Context) {
	book, err := h.bookService.GetBook(c.Request.Context(), c.Param("id"))
	if err != nil {
		if errors.Is(err, service.ErrBookNotFound) {
			c.JSON(http.StatusNotFound, entity.NewErrorResponse("Book not found"))
			return
		}
		c.JSON(http.StatusInternalServerError, entity.NewErrorResponse("Failed to get book"))
		return
	}

	c.JSON(http.StatusOK, entity.NewDataResponse(book))
}

func (h *BookHandler) CreateBook(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, entity.NewErrorResponse("Unauthorized"))
		return
	}

	var req entity.CreateBookRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, entity.NewErrorResponse("Invalid request body"))
		return
	}

	if err := h.validator.Struct(req); err != nil {
		c.JSON(http.StatusBadRequest, entity.NewErrorResponse(formatValidationError(err)))
		return
	}

	book, err := h.bookService.CreateBook(c.Request.Context(), userID, &req)
	if err != nil {
		c.JSON(http.StatusInternalServerError, entity.NewErrorResponse("Failed to create book"))
		return
	}

	c.JSON(http.StatusCreated, entity.NewDataResponse(book))
}

// parseListOptions разбирает query-параметры списка книг
// Некорректные числовые значения игнорируются в пользу значений по умолчанию
func parseListOptions(c *gin.Context) entity.ListBooksOptions {
	opts := entity.ListBooksOptions{
		Genre:  c.Query("genre"),
		Author: c.Query("author"),
		Sort:   c.Query("sort"),
	}

	if page, err := strconv.Atoi(c.Query("page")); err == nil && page > 0 {
		opts.Page = page
	}
	if limit, err := strconv.Atoi(c.Query("limit")); err == nil && limit > 0 {
		opts.Limit = limit
	}

	return opts
}

func formatValidationError(err error) string {
	if validationErrors, ok := err.(validator.ValidationErrors); ok {
		for _, fieldError := range validationErrors {
			return fieldError.Field() + " is " + fieldError.Tag()
		}
	}
	return "Validation failed"
}
