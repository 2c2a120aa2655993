package request

// CreateClientRequest represents a manual client entry
type CreateClientRequest struct {
	Name  string   `json:"name" binding:"max=255"`
	Email string   `json:"email" binding:"max=255"`
	Phone string   `json:"phone" binding:"max=50"`
	Tags  []string `json:"tags"`
}

// UpdateClientRequest represents a partial client update. Omitted fields are
// left unchanged; an empty string clears email or phone.
type UpdateClientRequest struct {
	Name  *string   `json:"name" binding:"omitempty,max=255"`
	Email *string   `json:"email" binding:"omitempty,max=255"`
	Phone *string   `json:"phone" binding:"omitempty,max=50"`
	Tags  *[]string `json:"tags"`
}

// TagRequest adds a tag to a client
type TagRequest struct {
	Tag string `json:"tag" binding:"required,max=100"`
}

// NoteRequest adds a note to a client
type NoteRequest struct {
	Text string `json:"text" binding:"required"`
}

// ListClientsQuery holds the listing query string
type ListClientsQuery struct {
	Search  string `form:"search"`
	Tag     string `form:"tag"`
	Segment string `form:"segment"`
	Sort    string `form:"sort"`
	Order   string `form:"order"`
	Page    int    `form:"page"`
	PerPage int    `form:"per_page"`
}
