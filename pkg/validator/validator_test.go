package validator

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type contactForm struct {
	Name    string `json:"name" validate:"required"`
	Email   string `json:"customerEmail" validate:"required,email"`
	Phone   string `json:"phone" validate:"omitempty,e164"`
	Stock   int    `json:"stockQuantity" validate:"gte=0,lte=10000"`
	Price   float64
	Website string `json:"-" validate:"omitempty,url"`
}

func validForm() contactForm {
	return contactForm{Name: "Asha", Email: "asha@example.com", Stock: 3}
}

func fieldsOf(t *testing.T, err error) map[string]string {
	t.Helper()
	require.Error(t, err)
	var valErr *ValidationError
	require.ErrorAs(t, err, &valErr)
	return valErr.Fields()
}

func TestValidate_Success(t *testing.T) {
	assert.NoError(t, Validate(validForm()))
}

func TestValidate_ReportsJSONFieldNames(t *testing.T) {
	f := validForm()
	f.Email = ""

	fields := fieldsOf(t, Validate(f))
	assert.Equal(t, "is required", fields["customerEmail"])
}

func TestValidate_InvalidEmail(t *testing.T) {
	f := validForm()
	f.Email = "not-an-email"

	fields := fieldsOf(t, Validate(f))
	assert.Equal(t, "must be a valid email address", fields["customerEmail"])
}

func TestValidate_PhoneFormat(t *testing.T) {
	f := validForm()
	f.Phone = "98765"

	fields := fieldsOf(t, Validate(f))
	assert.Contains(t, fields["phone"], "international format")

	f.Phone = "+919876543210"
	assert.NoError(t, Validate(f))
}

func TestValidate_OutOfRange(t *testing.T) {
	f := validForm()
	f.Stock = -1

	fields := fieldsOf(t, Validate(f))
	assert.Equal(t, "must be greater than or equal to 0", fields["stockQuantity"])
}

func TestValidate_UnnamedFieldsUseGoName(t *testing.T) {
	f := validForm()
	f.Website = "::not a url"

	fields := fieldsOf(t, Validate(f))
	assert.Contains(t, fields, "Website")
}

func TestValidationError_ErrorString(t *testing.T) {
	err := Validate(contactForm{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "field 'name' is required")
	assert.Contains(t, err.Error(), "field 'customerEmail' is required")
}

func TestDecodeAndValidate(t *testing.T) {
	body := `{"name":"Asha","customerEmail":"asha@example.com","stockQuantity":1}`
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(body))

	var dst contactForm
	require.NoError(t, DecodeAndValidate(req, &dst))
	assert.Equal(t, "Asha", dst.Name)
}

func TestDecodeAndValidate_BadJSON(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader("{"))

	var dst contactForm
	err := DecodeAndValidate(req, &dst)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "decode request body")
}

func TestValidationError_SortedByField(t *testing.T) {
	err := Validate(contactForm{Stock: 20000})
	require.Error(t, err)
	assert.Equal(t,
		"field 'customerEmail' is required; field 'name' is required; field 'stockQuantity' must be less than or equal to 10000",
		err.Error())
}
