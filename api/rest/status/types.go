package status

// StatusRequest names the applicant whose status is requested
type StatusRequest struct {
	Email string `json:"email" binding:"required"`
}
