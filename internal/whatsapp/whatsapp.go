// Package whatsapp builds wa.me click-to-chat links.
package whatsapp

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"github.com/slimeyayush/altair-frontend/internal/domain"
	"github.com/slimeyayush/altair-frontend/pkg/validator"
)

const baseURL = "https://wa.me/"

// Default recipients.
const (
	DefaultOrderNumber   = "918800537507"
	DefaultContactNumber = "919876543210"
)

const rentCPAPText = "Hello! I am interested in renting the Auto CPAP Machine.\n\nPlease share the availability and documentation requirements."

// Link returns the click-to-chat URL for number with text prefilled.
func Link(number, text string) string {
	// wa.me expects %20 for spaces, as encodeURIComponent produces.
	escaped := strings.ReplaceAll(url.QueryEscape(text), "+", "%20")
	return baseURL + number + "?text=" + escaped
}

// Builder holds the recipient numbers.
type Builder struct {
	OrderNumber   string
	ContactNumber string
}

// NewBuilder returns a Builder, falling back to the default numbers.
func NewBuilder(orderNumber, contactNumber string) Builder {
	if orderNumber == "" {
		orderNumber = DefaultOrderNumber
	}
	if contactNumber == "" {
		contactNumber = DefaultContactNumber
	}
	return Builder{OrderNumber: orderNumber, ContactNumber: contactNumber}
}

// OrderMessage summarises a placed order for the shop's order line.
func OrderMessage(orderID int64, email string, lines []domain.CartLine, total float64) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Hello! I have placed an order.\n\n*Order ID:* #%d\n*Email:* %s\n\n", orderID, email)
	for _, l := range lines {
		fmt.Fprintf(&b, "- %dx %s (₹%s)\n", l.Quantity, l.Name(), Amount(l.Price()))
	}
	fmt.Fprintf(&b, "\n*Total:* ₹%s", Amount(total))
	return b.String()
}

// Amount formats a rupee amount without trailing zeros.
func Amount(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// Order returns the order confirmation link.
func (b Builder) Order(orderID int64, email string, lines []domain.CartLine, total float64) string {
	return Link(b.OrderNumber, OrderMessage(orderID, email, lines, total))
}

// RentCPAP returns the CPAP rental inquiry link.
func (b Builder) RentCPAP() string {
	return Link(b.OrderNumber, rentCPAPText)
}

// ContactForm is the contact page input.
type ContactForm struct {
	Name    string `json:"name" validate:"required"`
	Message string `json:"message" validate:"required"`
}

// Contact validates the form and returns the support link.
func (b Builder) Contact(form ContactForm) (string, error) {
	form.Name = strings.TrimSpace(form.Name)
	form.Message = strings.TrimSpace(form.Message)
	if err := validator.Validate(form); err != nil {
		return "", err
	}
	text := fmt.Sprintf("Hello Altair Support,\n\nMy name is %s.\n\n%s", form.Name, form.Message)
	return Link(b.ContactNumber, text), nil
}
