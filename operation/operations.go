package operation

import (
	_ "embed"
	"sync"
)

var (
	//go:embed documents/products.graphql
	productsQuerySource string

	//go:embed documents/product_review_fragment.graphql
	productReviewFragmentSource string

	//go:embed documents/product_detail.graphql
	productDetailQuerySource string

	//go:embed documents/add_review.graphql
	addReviewMutationSource string
)

// ProductReviewFragment selects the reviews shown under a product.
var ProductReviewFragment = productReviewFragmentSource

// Documents are parsed on first use, not at package init.
var (
	ProductsQuery = sync.OnceValue(func() *Document {
		return MustParse("ProductsQuery", productsQuerySource)
	})
	ProductDetailQuery = sync.OnceValue(func() *Document {
		return MustParse("ProductDetailQuery", productDetailQuerySource, ProductReviewFragment)
	})
	AddReviewMutation = sync.OnceValue(func() *Document {
		return MustParse("AddReviewMutation", addReviewMutationSource)
	})
)

// All returns every document the client sends.
func All() []*Document {
	return []*Document{ProductsQuery(), ProductDetailQuery(), AddReviewMutation()}
}
