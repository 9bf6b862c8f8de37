package domain

// LocalCartKey is the client-local storage key of the guest cart.
const LocalCartKey = "mediDarkCart"

// CartLine is one product in a cart. Quantity is always at least 1.
type CartLine struct {
	ProductID int64    `json:"productId"`
	Quantity  int      `json:"quantity"`
	Product   *Product `json:"product,omitempty"`
}

// Price returns the unit price from the product snapshot, or 0 without one.
func (l CartLine) Price() float64 {
	if l.Product == nil {
		return 0
	}
	return l.Product.Price
}

// Name returns the product name from the snapshot, if any.
func (l CartLine) Name() string {
	if l.Product == nil {
		return ""
	}
	return l.Product.Name
}

// LineTotal is price times quantity.
func (l CartLine) LineTotal() float64 {
	return l.Price() * float64(l.Quantity)
}

// Cart is an ordered set of lines, at most one per product.
type Cart struct {
	Items []CartLine `json:"items"`
}

// Find returns the index of the line for productID, or -1.
func (c *Cart) Find(productID int64) int {
	for i := range c.Items {
		if c.Items[i].ProductID == productID {
			return i
		}
	}
	return -1
}

// QuantityOf returns the quantity held for productID (0 when absent).
func (c *Cart) QuantityOf(productID int64) int {
	if i := c.Find(productID); i >= 0 {
		return c.Items[i].Quantity
	}
	return 0
}

// ItemCount returns the total number of units in the cart.
func (c *Cart) ItemCount() int {
	var n int
	for _, l := range c.Items {
		n += l.Quantity
	}
	return n
}

// Subtotal sums price times quantity over all lines.
func (c *Cart) Subtotal() float64 {
	var total float64
	for _, l := range c.Items {
		total += l.LineTotal()
	}
	return total
}

// IsEmpty reports whether the cart has no lines.
func (c *Cart) IsEmpty() bool {
	return len(c.Items) == 0
}

// Clone returns a deep copy so snapshots handed to observers cannot be mutated.
func (c *Cart) Clone() *Cart {
	if c == nil {
		return &Cart{Items: []CartLine{}}
	}
	out := &Cart{Items: make([]CartLine, len(c.Items))}
	for i, l := range c.Items {
		if l.Product != nil {
			p := *l.Product
			l.Product = &p
		}
		out.Items[i] = l
	}
	return out
}

// Increment adds one unit of p, appending a new line when absent.
func (c *Cart) Increment(p *Product) {
	if i := c.Find(p.ID); i >= 0 {
		c.Items[i].Quantity++
		snap := *p
		c.Items[i].Product = &snap
		return
	}
	snap := *p
	c.Items = append(c.Items, CartLine{ProductID: p.ID, Quantity: 1, Product: &snap})
}

// Adjust changes the quantity of productID by delta. A line that reaches 0
// is removed. Adjusting an absent product is a no-op.
func (c *Cart) Adjust(productID int64, delta int) {
	i := c.Find(productID)
	if i < 0 {
		return
	}
	q := c.Items[i].Quantity + delta
	if q <= 0 {
		c.Remove(productID)
		return
	}
	c.Items[i].Quantity = q
}

// Remove deletes the line for productID if present.
func (c *Cart) Remove(productID int64) {
	if i := c.Find(productID); i >= 0 {
		c.Items = append(c.Items[:i], c.Items[i+1:]...)
	}
}

// Normalize drops lines with non-positive quantity and folds duplicates,
// keeping the first position of each product.
func (c *Cart) Normalize() {
	seen := make(map[int64]int, len(c.Items))
	out := c.Items[:0]
	for _, l := range c.Items {
		if l.Quantity <= 0 {
			continue
		}
		if j, ok := seen[l.ProductID]; ok {
			out[j].Quantity += l.Quantity
			continue
		}
		seen[l.ProductID] = len(out)
		out = append(out, l)
	}
	c.Items = out
	if c.Items == nil {
		c.Items = []CartLine{}
	}
}

// NewCart returns an empty cart.
func NewCart() *Cart {
	return &Cart{Items: []CartLine{}}
}
