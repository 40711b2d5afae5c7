package category

// CategoryResponse is one active contact category. Accessible reports whether
// the signed-in user may see contacts filed under it.
type CategoryResponse struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Accessible  bool   `json:"accessible"`
}

type CategoriesResponse struct {
	Categories []CategoryResponse `json:"categories"`
	// Restricted is false when the user sees every category.
	Restricted bool `json:"restricted"`
}
