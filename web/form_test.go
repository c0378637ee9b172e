package web_test

import (
	"testing"

	"github.com/n9te9/go-graphql-product-web/web"
)

func TestReviewForm_CanSubmit(t *testing.T) {
	tests := []struct {
		name string
		form web.ReviewForm
		want bool
	}{
		{name: "empty comment", form: web.ReviewForm{ProductID: "1"}, want: false},
		{name: "typed comment", form: web.ReviewForm{ProductID: "1", Comment: "nice"}, want: true},
		{name: "submitting", form: web.ReviewForm{ProductID: "1", Comment: "nice", Submitting: true}, want: false},
		{name: "empty and submitting", form: web.ReviewForm{ProductID: "1", Submitting: true}, want: false},
		{name: "whitespace is a comment", form: web.ReviewForm{ProductID: "1", Comment: " "}, want: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.form.CanSubmit(); got != tt.want {
				t.Errorf("CanSubmit() = %v, want %v", got, tt.want)
			}
		})
	}
}
