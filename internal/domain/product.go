package domain

// Product is a single line item in the cart. The JSON shape is the persisted format.
type Product struct {
	ID       string  `json:"id"`
	Title    string  `json:"title"`
	ImageURL string  `json:"image_url"`
	Price    float64 `json:"price"`
	Quantity int     `json:"quantity"`
}

// ProductInput is what a screen hands to the cart: a product without a quantity.
type ProductInput struct {
	ID       string  `json:"id"`
	Title    string  `json:"title"`
	ImageURL string  `json:"image_url"`
	Price    float64 `json:"price"`
}

func (in ProductInput) WithQuantity(quantity int) Product {
	return Product{
		ID:       in.ID,
		Title:    in.Title,
		ImageURL: in.ImageURL,
		Price:    in.Price,
		Quantity: quantity,
	}
}

func (p Product) Subtotal() float64 {
	return p.Price * float64(p.Quantity)
}

type Totals struct {
	Items  int     `json:"items"`
	Amount float64 `json:"amount"`
}
