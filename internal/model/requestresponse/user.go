package requestresponse

import "upload-form-server/internal/model"

// RegisterRequest : тело запроса регистрации
type RegisterRequest struct {
	Email    string `json:"email" example:"user@example.com"`
	Name     string `json:"name" example:"Иван Иванов"`
	Password string `json:"password" example:"P@ssw0rd123"`
}

// UserResponse : информация о пользователе
type UserResponse struct {
	UUID  string `json:"uuid" example:"b6a1e1c4-4b1d-4f1e-8b29-1234567890ab"`
	Email string `json:"email" example:"user@example.com"`
	Name  string `json:"name" example:"Иван Иванов"`
}

// UserResponseFromModel : конвертирует model.User в UserResponse
func UserResponseFromModel(user *model.User) UserResponse {
	return UserResponse{
		UUID:  user.UUID,
		Email: user.Email,
		Name:  user.Name,
	}
}

// UpdateUserRequest : тело запроса обновления профиля
type UpdateUserRequest struct {
	Email string `json:"email" example:"user@example.com"`
	Name  string `json:"name" example:"Иван Иванов"`
}

// UpdatePasswordRequest : тело запроса смены пароля
type UpdatePasswordRequest struct {
	NewPassword string `json:"new_password" example:"NewP@ssw0rd"`
}
