package response_models

type AccountLoginResponse struct {
	Token string `json:"token"`
}

type AccountResponse struct {
	ID          string `json:"id"`
	DisplayName string `json:"display_name"`
	Email       string `json:"email"`
	Role        string `json:"role"`
}
