package dto

type RegisterRequest struct {
	FirstName  string `json:"first_name" binding:"required,min=1,max=100"`
	SecondName string `json:"second_name" binding:"required,min=1,max=100"`
	Email      string `json:"email" binding:"required,email"`
	Password   string `json:"password" binding:"required,min=8,max=64"`
}

type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}
