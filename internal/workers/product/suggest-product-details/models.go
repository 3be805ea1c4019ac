// internal/workers/product/suggest-product-details/models.go
package suggestproductdetails

type Input struct {
	CommandID   string `json:"commandId,omitempty"`
	ProductName string `json:"productName"`
}

type Output struct {
	Description string `json:"description"`
	ImageURL    string `json:"imageUrl"`
}
