package models

// FormRequest is the body of PUT /api/form and POST /api/submit.
// Absent fields leave the staged value unchanged.
type FormRequest struct {
	Name     *string `json:"name,omitempty"`
	Category *string `json:"category,omitempty"`
	Dish     *string `json:"dish,omitempty"`
	Quantity *int    `json:"quantity,omitempty"`
}

// LoginRequest is the body of POST /api/admin/login
type LoginRequest struct {
	Password string `json:"password"`
}

// DeleteConfirmation is the body of POST /api/admin/entries/{index}/delete.
// The entry is only deleted when Confirm is true.
type DeleteConfirmation struct {
	Confirm bool `json:"confirm"`
}
