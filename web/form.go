package web

// ReviewForm is the state of the review form under a product.
type ReviewForm struct {
	ProductID  string
	Comment    string
	Submitting bool

	// Token identifies one rendering of the form. Resubmissions of the same
	// rendering carry the same token.
	Token string
}

// CanSubmit reports whether the submit control is enabled.
func (f ReviewForm) CanSubmit() bool {
	return !f.Submitting && f.Comment != ""
}
