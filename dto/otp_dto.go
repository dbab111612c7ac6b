package dto

type SendOTPDTO struct {
	Email string `json:"email"`
}

type VerifyOTPDTO struct {
	SessionID string `json:"sessionId"`
	Code      string `json:"code"`
}
