package dto

type UserResponse struct {
	ID          string `json:"id"`
	FriendlyID  string `json:"userId"`
	Email       string `json:"email"`
	FullName    string `json:"fullName"`
	Phone       string `json:"phone,omitempty"`
	NationalID  string `json:"nationalId,omitempty"`
	Education   string `json:"education,omitempty"`
	Description string `json:"description,omitempty"`
	Role        string `json:"role"`
	CreatedAt   string `json:"createdAt"`
}

type UpdateUserRequest struct {
	FullName    string `json:"fullName"`
	Phone       string `json:"phone"`
	Education   string `json:"education"`
	Description string `json:"description"`
}

type EnglishTestRequest struct {
	TestData map[string]interface{} `json:"testData" validate:"required"`
}

type EnglishTestResponse struct {
	UserID    string                 `json:"userId"`
	TestData  map[string]interface{} `json:"testData"`
	UpdatedAt string                 `json:"updatedAt"`
}
