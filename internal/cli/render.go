package cli

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/slimeyayush/altair-frontend/internal/catalog"
	"github.com/slimeyayush/altair-frontend/internal/checkout"
	"github.com/slimeyayush/altair-frontend/internal/domain"
)

const nameWidth = 30

func money(v float64) string {
	return "₹" + strconv.FormatFloat(v, 'f', 2, 64)
}

func clip(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "…"
}

func stockLabel(p *domain.Product) string {
	if !p.InStock() {
		return "out of stock"
	}
	return fmt.Sprintf("%d in stock", p.StockQuantity)
}

func renderProducts(w io.Writer, products []domain.Product) {
	if len(products) == 0 {
		fmt.Fprintln(w, "No products found.")
		return
	}
	fmt.Fprintf(w, "%-5s %-30s %10s  %s\n", "ID", "NAME", "PRICE", "STOCK")
	for i := range products {
		p := &products[i]
		fmt.Fprintf(w, "%-5d %-30s %10s  %s\n", p.ID, clip(p.Name, nameWidth), money(p.Price), stockLabel(p))
	}
}

func renderGroups(w io.Writer, groups []catalog.Group) {
	if len(groups) == 0 {
		fmt.Fprintln(w, "No products found.")
		return
	}
	for i, g := range groups {
		if i > 0 {
			fmt.Fprintln(w)
		}
		fmt.Fprintf(w, "== %s ==\n", g.Category)
		renderProducts(w, g.Products)
	}
}

func renderProduct(w io.Writer, p *domain.Product, related []domain.Product) {
	fmt.Fprintf(w, "#%d %s\n", p.ID, p.Name)
	if p.Category != "" {
		fmt.Fprintf(w, "Category: %s\n", p.Category)
	}
	if p.Discounted() {
		fmt.Fprintf(w, "Price:    %s (was %s)\n", money(p.Price), money(*p.OldPrice))
	} else {
		fmt.Fprintf(w, "Price:    %s\n", money(p.Price))
	}
	fmt.Fprintf(w, "Stock:    %s\n", stockLabel(p))
	if p.Tag != "" {
		fmt.Fprintf(w, "Tag:      %s\n", p.Tag)
	}
	if p.Description != "" {
		fmt.Fprintf(w, "\n%s\n", p.Description)
	}
	if len(related) > 0 {
		fmt.Fprintln(w, "\nRelated products:")
		for _, r := range related {
			fmt.Fprintf(w, "  %-5d %s\n", r.ID, r.Name)
		}
	}
}

func renderTotals(w io.Writer, t checkout.Totals) {
	fmt.Fprintf(w, "%-10s %10s\n", "Subtotal:", money(t.Subtotal))
	fmt.Fprintf(w, "%-10s %10s\n", "Shipping:", money(t.Shipping))
	fmt.Fprintf(w, "%-10s %10s\n", "Total:", money(t.Total))
}

func renderCart(w io.Writer, c *domain.Cart, t checkout.Totals) {
	if c.IsEmpty() {
		fmt.Fprintln(w, "Your cart is empty.")
		return
	}
	for _, l := range c.Items {
		name := l.Name()
		if name == "" {
			name = fmt.Sprintf("product %d", l.ProductID)
		}
		fmt.Fprintf(w, "%-5d %-30s %3d x %10s = %10s\n",
			l.ProductID, clip(name, nameWidth), l.Quantity, money(l.Price()), money(l.LineTotal()))
	}
	fmt.Fprintln(w)
	renderTotals(w, t)
}

func renderReceipt(w io.Writer, r *checkout.Receipt) {
	fmt.Fprintf(w, "Order #%d placed for %s.\n", r.Order.ID, r.Order.CustomerEmail)
	renderTotals(w, r.Totals)
	fmt.Fprintf(w, "\nConfirm your order on WhatsApp:\n%s\n", r.WhatsAppURL)
}

func renderOrders(w io.Writer, orders []domain.Order) {
	if len(orders) == 0 {
		fmt.Fprintln(w, "No orders yet.")
		return
	}
	for i, o := range orders {
		if i > 0 {
			fmt.Fprintln(w)
		}
		placed := "-"
		if o.CreatedAt != nil {
			placed = o.CreatedAt.Format("2006-01-02 15:04")
		}
		fmt.Fprintf(w, "#%-5d %-10s %10s  %s  %s\n", o.ID, o.Status, money(o.TotalAmount), placed, o.CustomerEmail)
		if o.ShippingAddress != "" {
			fmt.Fprintf(w, "       ship to: %s\n", strings.ReplaceAll(o.ShippingAddress, "\n", ", "))
		}
		for _, it := range o.Items {
			name := it.ProductName
			if name == "" {
				name = fmt.Sprintf("product %d", it.ProductID)
			}
			fmt.Fprintf(w, "       %3d x %s\n", it.Quantity, name)
		}
	}
}

func renderInventory(w io.Writer, products []domain.Product) {
	if len(products) == 0 {
		fmt.Fprintln(w, "No products found.")
		return
	}
	fmt.Fprintf(w, "%-5s %-30s %-20s %10s %6s  %s\n", "ID", "NAME", "CATEGORY", "PRICE", "STOCK", "STATUS")
	for i := range products {
		p := &products[i]
		fmt.Fprintf(w, "%-5d %-30s %-20s %10s %6d  %s\n",
			p.ID, clip(p.Name, nameWidth), clip(p.Category, 20), money(p.Price), p.StockQuantity, p.Visibility())
	}
}

func renderAdmins(w io.Writer, admins []domain.Admin) {
	if len(admins) == 0 {
		fmt.Fprintln(w, "No admins.")
		return
	}
	for _, a := range admins {
		fmt.Fprintf(w, "%-5d %s\n", a.ID, a.Username)
	}
}

func renderSession(w io.Writer, s domain.Session) {
	if !s.IsMember() {
		fmt.Fprintln(w, "Browsing as guest.")
		return
	}
	fmt.Fprintf(w, "Signed in as %s\n", s.Identity.Label())
	if s.Identity.Email != "" {
		fmt.Fprintf(w, "Email: %s\n", s.Identity.Email)
	}
	if s.Identity.PhoneNumber != "" {
		fmt.Fprintf(w, "Phone: %s\n", s.Identity.PhoneNumber)
	}
	fmt.Fprintf(w, "UID:   %s\n", s.Identity.UID)
}
