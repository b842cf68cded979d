package dto

import "github.com/hongminglow/fincontrol-be/internal/models"

// AccountBlockedMessage is the message of a 403 refused because the account
// is blocked.
const AccountBlockedMessage = "account blocked"

type RegisterRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type LoginResponse struct {
	Token   string         `json:"token"`
	Profile models.Profile `json:"profile"`
}

type StatusRequest struct {
	Status string `json:"status"`
}

type AdviceRequest struct {
	Expenses []models.Expense `json:"expenses"`
}

type AdviceResponse struct {
	Advice string `json:"advice"`
}
