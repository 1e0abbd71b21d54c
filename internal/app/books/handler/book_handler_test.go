package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"bookreviews/internal/app/books/entity"
	"bookreviews/internal/app/books/service"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type MockBookService struct {
	mock.Mock
}

func (m *MockBookService) CreateBook(ctx context.Context, userID string, req *entity.CreateBookRequest) (*entity.Book, error) {
	args := m.Called(ctx, userID, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.Book), args.Error(1)
}

func (m *MockBookService) GetBook(ctx context.Context, id string) (*entity.Book, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.Book), args.Error(1)
}

func (m *MockBookService) GetAllBooks(ctx context.Context, opts entity.ListBooksOptions) ([]entity.Book, error) {
	args := m.Called(ctx, opts)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]entity.Book), args.Error(1)
}

func (m *MockBookService) SearchBooks(ctx context.Context, term string) ([]entity.Book, error) {
	args := m.Called(ctx, term)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]entity.Book), args.Error(1)
}

func setupTestRouter() *gin.Engine {
	gin.SetMode(gin.TestMode)
	return gin.New()
}

// setUserID имитирует Auth middleware для защищенных маршрутов
func setUserID(userID string) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set("user_id", userID)
		c.Next()
	}
}

func TestGetBooksHandler_Success(t *testing.T) {
	router := setupTestRouter()

	books := []entity.Book{
		{ID: primitive.NewObjectID(), Title: "The Hobbit", AverageRating: 4.5},
		{ID: primitive.NewObjectID(), Title: "Dune", AverageRating: 4.0},
	}

	mockService := new(MockBookService)
	mockService.On("GetAllBooks", mock.Anything, entity.ListBooksOptions{}).Return(books, nil)

	h := NewBookHandler(mockService)
	router.GET("/books", h.GetBooks)

	req, _ := http.NewRequest(http.MethodGet, "/books", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)

	var response entity.SuccessResponse
	json.Unmarshal(w.Body.Bytes(), &response)
	assert.True(t, response.Success)
	assert.Equal(t, 2, *response.Count)
}

func TestGetBooksHandler_ParsesQueryParams(t *testing.T) {
	router := setupTestRouter()

	expected := entity.ListBooksOptions{Genre: "Fantasy", Sort: "-average_rating", Page: 2, Limit: 5}

	mockService := new(MockBookService)
	mockService.On("GetAllBooks", mock.Anything, expected).Return([]entity.Book{}, nil)

	h := NewBookHandler(mockService)
	router.GET("/books", h.GetBooks)

	req, _ := http.NewRequest(http.MethodGet, "/books?genre=Fantasy&sort=-average_rating&page=2&limit=5", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	mockService.AssertExpectations(t)
}

func TestSearchBooksHandler_MissingTerm(t *testing.T) {
	router := setupTestRouter()

	mockService := new(MockBookService)
	mockService.On("SearchBooks", mock.Anything, "").Return(nil, service.ErrEmptySearchTerm)

	h := NewBookHandler(mockService)
	router.GET("/books/search", h.SearchBooks)

	req, _ := http.NewRequest(http.MethodGet, "/books/search", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)

	var response entity.ErrorResponse
	json.Unmarshal(w.Body.Bytes(), &response)
	assert.False(t, response.Success)
	assert.NotEmpty(t, response.Error)
}

func TestSearchBooksHandler_Success(t *testing.T) {
	router := setupTestRouter()

	books := []entity.Book{{ID: primitive.NewObjectID(), Author: "J.R.R. Tolkien"}}

	mockService := new(MockBookService)
	mockService.On("SearchBooks", mock.Anything, "tolkien").Return(books, nil)

	h := NewBookHandler(mockService)
	router.GET("/books/search", h.SearchBooks)

	req, _ := http.NewRequest(http.MethodGet, "/books/search?q=tolkien", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)

	var response entity.SuccessResponse
	json.Unmarshal(w.Body.Bytes(), &response)
	assert.Equal(t, 1, *response.Count)
}

func TestGetBookHandler_NotFound(t *testing.T) {
	router := setupTestRouter()
	bookID := primitive.NewObjectID().Hex()

	mockService := new(MockBookService)
	mockService.On("GetBook", mock.Anything, bookID).Return(nil, service.ErrBookNotFound)

	h := NewBookHandler(mockService)
	router.GET("/books/:id", h.GetBook)

	req, _ := http.NewRequest(http.MethodGet, "/books/"+bookID, nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestCreateBookHandler_Success(t *testing.T) {
	router := setupTestRouter()
	userID := "user-123"

	book := &entity.Book{ID: primitive.NewObjectID(), Title: "The Hobbit", Author: "J.R.R. Tolkien", Genre: "Fantasy", UserID: userID}

	mockService := new(MockBookService)
	mockService.On("CreateBook", mock.Anything, userID, mock.AnythingOfType("*entity.CreateBookRequest")).Return(book, nil)

	h := NewBookHandler(mockService)
	router.POST("/books", setUserID(userID), h.CreateBook)

	body, _ := json.Marshal(entity.CreateBookRequest{Title: "The Hobbit", Author: "J.R.R. Tolkien", Genre: "Fantasy"})
	req, _ := http.NewRequest(http.MethodPost, "/books", bytes.NewBuffer(body))
	req.Header.Set("Content-Type", "application/json")

	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusCreated, w.Code)
}

func TestCreateBookHandler_Unauthorized(t *testing.T) {
	router := setupTestRouter()

	mockService := new(MockBookService)
	h := NewBookHandler(mockService)
	router.POST("/books", h.CreateBook)

	body, _ := json.Marshal(entity.CreateBookRequest{Title: "The Hobbit", Author: "J.R.R. Tolkien", Genre: "Fantasy"})
	req, _ := http.NewRequest(http.MethodPost, "/books", bytes.NewBuffer(body))
	req.Header.Set("Content-Type", "application/json")

	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	mockService.AssertNotCalled(t, "CreateBook", mock.Anything, mock.Anything, mock.Anything)
}

func TestCreateBookHandler_ValidationError(t *testing.T) {
	router := setupTestRouter()

	mockService := new(MockBookService)
	h := NewBookHandler(mockService)
	router.POST("/books", setUserID("user-123"), h.CreateBook)

	// Нет обязательного title
	body, _ := json.Marshal(entity.CreateBookRequest{Author: "J.R.R. Tolkien", Genre: "Fantasy"})
	req, _ := http.NewRequest(http.MethodPost, "/books", bytes.NewBuffer(body))
	req.Header.Set("Content-Type", "application/json")

	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	mockService.AssertNotCalled(t, "CreateBook", mock.Anything, mock.Anything, mock.Anything)
}
