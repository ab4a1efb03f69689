package models

// Entry is one dish a participant has signed up to bring.
// Schema matches the backend's /entries payload. Entries have no ID; the
// backend addresses them by their position in the /entries response.
type Entry struct {
	Name     string `json:"name"`
	Category string `json:"category"`
	Dish     string `json:"dish"`
	Quantity int    `json:"quantity"`
}

// DeleteRequest is the body of POST /admin/delete
type DeleteRequest struct {
	Password string `json:"password"`
	Index    int    `json:"index"`
}

// EditRequest is the body of POST /admin/edit
type EditRequest struct {
	Password string `json:"password"`
	Index    int    `json:"index"`
	Name     string `json:"name"`
	Category string `json:"category"`
	Dish     string `json:"dish"`
	Quantity int    `json:"quantity"`
}

// NewEditRequest builds the edit payload for the entry at index.
func NewEditRequest(password string, index int, e Entry) EditRequest {
	return EditRequest{
		Password: password,
		Index:    index,
		Name:     e.Name,
		Category: e.Category,
		Dish:     e.Dish,
		Quantity: e.Quantity,
	}
}
