package entity

// CreateBookRequest - запрос на добавление книги
type CreateBookRequest struct {
	Title       string `json:"title" validate:"required,max=100"`
	Author      string `json:"author" validate:"required,max=50"`
	Genre       string `json:"genre" validate:"required,max=30"`
	Description string `json:"description" validate:"omitempty,max=500"`
}

// CreateReviewRequest - запрос на создание отзыва
type CreateReviewRequest struct {
	Rating  int    `json:"rating" validate:"required,min=1,max=5"`
	Comment string `json:"comment" validate:"omitempty,max=500"`
}

// UpdateReviewRequest - запрос на обновление отзыва
// Менять можно только оценку и комментарий, book_id и user_id неизменяемы.
// nil означает "поле не трогать", непустой указатель на пустой комментарий
// стирает комментарий
type UpdateReviewRequest struct {
	Rating  *int    `json:"rating" validate:"omitnil,min=1,max=5"`
	Comment *string `json:"comment" validate:"omitnil,max=500"`
}

// ListBooksOptions - параметры выборки списка книг
type ListBooksOptions struct {
	Genre  string // Фильтр по жанру (точное совпадение)
	Author string // Фильтр по автору (точное совпадение)
	Sort   string // Поле сортировки, префикс "-" для убывания
	Page   int
	Limit  int
}

// IsDefault сообщает, что выборка без фильтров и пагинации - такую можно кешировать
func (o ListBooksOptions) IsDefault() bool {
	return o.Genre == "" && o.Author == "" && o.Sort == "" && o.Page <= 1 && o.Limit == 0
}

// SuccessResponse - стандартный конверт успешного ответа
type SuccessResponse struct {
	Success bool        `json:"success"`
	Count   *int        `json:"count,omitempty"`
	Data    interface{} `json:"data"`
}

// ErrorResponse - стандартный конверт ошибки
type ErrorResponse struct {
	Success bool   `json:"success"`
	Error   string `json:"error"`
}

func NewDataResponse(data interface{}) SuccessResponse {
	return SuccessResponse{Success: true, Data: data}
}

func NewListResponse(data interface{}, count int) SuccessResponse {
	return SuccessResponse{Success: true, Count: &count, Data: data}
}

func NewErrorResponse(msg string) ErrorResponse {
	return ErrorResponse{Success: false, Error: msg}
}
