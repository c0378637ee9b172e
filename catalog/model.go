package catalog

// Product is a product as returned by the GraphQL API.
type Product struct {
	ID          string   `json:"id"`
	Name        string   `json:"name"`
	Description string   `json:"description"`
	Reviews     []Review `json:"reviews"`
}

// Review is a user review of a product. Star is accepted but never displayed.
type Review struct {
	ID          string `json:"id"`
	CommentBody string `json:"commentBody"`
	Star        int    `json:"star,omitempty"`
}
