package dto

// SubmitApplicationRequest is the direct submission path for signed-in
// users who already paid.
type SubmitApplicationRequest struct {
	ModuleID int                    `json:"moduleId" validate:"required"`
	FormData map[string]interface{} `json:"formData"`
	CVURL    string                 `json:"cvUrl"`
}

type ApplicationResponse struct {
	ID            string                 `json:"id"`
	ApplicationID string                 `json:"applicationId"`
	UserID        string                 `json:"userId"`
	ModuleID      int                    `json:"moduleId"`
	ModuleTitle   string                 `json:"moduleTitle,omitempty"`
	FormData      map[string]interface{} `json:"formData,omitempty"`
	CVURL         string                 `json:"cvUrl,omitempty"`
	Status        string                 `json:"status"`
	ReviewNotes   string                 `json:"reviewNotes,omitempty"`
	CreatedAt     string                 `json:"createdAt"`
}

type ApplicationListResponse struct {
	Applications []ApplicationResponse `json:"applications"`
	Total        int64                 `json:"total"`
	Page         int                   `json:"page"`
	PageSize     int                   `json:"pageSize"`
}

type ApplicationListQuery struct {
	Status   string `form:"status"`
	ModuleID int    `form:"moduleId"`
	Page     int    `form:"page"`
	PageSize int    `form:"pageSize"`
}

// ReviewApplicationRequest is the admin status-change payload. Review only
// moves an application out of UNDER_REVIEW, so only the two verdicts are
// accepted.
type ReviewApplicationRequest struct {
	Status string `json:"status" validate:"required,oneof=APPROVED REJECTED"`
	Notes  string `json:"notes"`
}

// CreateModuleRequest adds a catalog entry. Admin only.
type CreateModuleRequest struct {
	Title       string                 `json:"title" validate:"required"`
	Description string                 `json:"description"`
	Category    string                 `json:"category"`
	Fields      map[string]interface{} `json:"fields"`
}

type ModuleResponse struct {
	ID          int                    `json:"id"`
	Title       string                 `json:"title"`
	Description string                 `json:"description,omitempty"`
	Category    string                 `json:"category,omitempty"`
	Fields      map[string]interface{} `json:"fields,omitempty"`
}
