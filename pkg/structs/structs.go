package structs

import (
	"time"

	models "github.com/ERRORIK404/Session_Calculator/pkg/db_models"
)

// Запрос на вычисление. Операнды могут прийти числом или строкой.
type CalculateRequest struct {
	Operand1 interface{} `json:"operand1"`
	Operand2 interface{} `json:"operand2"`
	Operator string      `json:"operator"`
	Note     string      `json:"note"`
}

// Тот же запрос из application/x-www-form-urlencoded
type CalculateForm struct {
	Operand1 string `schema:"operand1"`
	Operand2 string `schema:"operand2"`
	Operator string `schema:"operator"`
	Note     string `schema:"note"`
}

func (f CalculateForm) Request() CalculateRequest {
	return CalculateRequest{Operand1: f.Operand1, Operand2: f.Operand2, Operator: f.Operator, Note: f.Note}
}

type CalculateResponse struct {
	Saved  bool    `json:"saved"`
	Result float64 `json:"result"`
}

type AuthRequest struct {
	Username string `json:"username" schema:"username"`
	Password string `json:"password" schema:"password"`
}

type AuthResponse struct {
	Message         string `json:"message"`
	Username        string `json:"username"`
	IsAuthenticated bool   `json:"is_authenticated"`
}

type RegisterResponse struct {
	Message  string `json:"message"`
	Username string `json:"username"`
}

type MeResponse struct {
	IsAuthenticated bool   `json:"is_authenticated"`
	Username        string `json:"username,omitempty"`
}

type MessageResponse struct {
	Message string `json:"message"`
}

type DetailResponse struct {
	Detail string `json:"detail"`
}

type ErrorResponse struct {
	Error  string              `json:"error"`
	Errors map[string][]string `json:"errors,omitempty"`
}

// Запись истории в ответе API
type HistoryItem struct {
	ID        int64     `json:"id"`
	Operand1  float64   `json:"operand1"`
	Operand2  float64   `json:"operand2"`
	Operator  string    `json:"operator"`
	Result    float64   `json:"result"`
	Note      string    `json:"note"`
	CreatedAt time.Time `json:"created_at"`
}

func NewHistoryItem(r models.CalculationRecord) HistoryItem {
	return HistoryItem{
		ID:        r.ID,
		Operand1:  r.Operand1,
		Operand2:  r.Operand2,
		Operator:  string(r.Operator),
		Result:    r.Result,
		Note:      r.Note,
		CreatedAt: r.CreatedAt.UTC(),
	}
}

func NewHistory(records []models.CalculationRecord) []HistoryItem {
	items := make([]HistoryItem, 0, len(records))
	for _, r := range records {
		items = append(items, NewHistoryItem(r))
	}
	return items
}
