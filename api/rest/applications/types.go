package applications

// SubmitResponse confirms the application reached the form
type SubmitResponse struct {
	Success bool   `json:"success"`
	Team    string `json:"team"`
}
