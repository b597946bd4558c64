package dto

// Field validation happens in the managers so the API keeps the exact
// error messages the frontend matches on; binding here only shapes the JSON.

type RegisterDTO struct {
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Email     string `json:"email"`
	Password  string `json:"password"`
}

type LoginDTO struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type ResendVerificationDTO struct {
	Email string `json:"email"`
}

type AdminLoginDTO struct {
	AdminPassword string `json:"adminPassword"`
}
