package intake

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func f64(v float64) *float64 { return &v }

func validRaw() RawOrder {
	return RawOrder{
		Name:          "Jane Doe",
		Email:         "Jane@Example.com",
		Phone:         "(555) 123-4567",
		Address:       "123 Main Street, Springfield",
		ToteCount:     5,
		DeclaredTotal: f64(70.00),
	}
}

func TestValidate_HappyPath(t *testing.T) {
	order, err := Validate(validRaw())
	require.NoError(t, err)

	assert.Equal(t, "Jane Doe", order.Name)
	assert.Equal(t, "jane@example.com", order.Email, "email is lowercased")
	assert.Equal(t, 5, order.ToteCount)
	assert.Equal(t, int64(70), order.SetupCost)
	assert.Equal(t, int64(50), order.MonthlyCost)
}

func TestValidate_FirstFailureWins(t *testing.T) {
	// Everything is wrong at once; the missing name must be reported first.
	raw := RawOrder{Email: "bad", Phone: "x", Address: "short", ToteCount: 99}
	_, err := Validate(raw)

	var ve *ValidationError
	require.ErrorAs(t, err, &ve)
	assert.Equal(t, KindMissingField, ve.Kind)
	assert.Equal(t, "name", ve.Field)
}

func TestValidate_MissingFieldOrder(t *testing.T) {
	cases := []struct {
		mutate func(*RawOrder)
		field  string
	}{
		{func(r *RawOrder) { r.Name = "  " }, "name"},
		{func(r *RawOrder) { r.Email = "" }, "email"},
		{func(r *RawOrder) { r.Phone = "" }, "phone"},
		{func(r *RawOrder) { r.Address = "" }, "address"},
		{func(r *RawOrder) { r.Name = "J" }, "name"}, // single char counts as missing
	}
	for _, tc := range cases {
		raw := validRaw()
		tc.mutate(&raw)
		_, err := Validate(raw)
		var ve *ValidationError
		require.ErrorAs(t, err, &ve)
		assert.Equal(t, KindMissingField, ve.Kind)
		assert.Equal(t, tc.field, ve.Field)
	}
}

func TestValidate_Email(t *testing.T) {
	for _, email := range []string{"plain", "no@tld", "two@@at.com", "spaces in@x.com"} {
		raw := validRaw()
		raw.Email = email
		_, err := Validate(raw)
		var ve *ValidationError
		require.ErrorAs(t, err, &ve, "email=%q", email)
		assert.Equal(t, KindInvalidEmail, ve.Kind)
	}
}

func TestValidate_Phone(t *testing.T) {
	bad := []string{
		"555-1234",        // fewer than 10 digits
		"abc-123-456-789", // letters
		"5551234567x",     // trailing junk
	}
	for _, phone := range bad {
		raw := validRaw()
		raw.Phone = phone
		_, err := Validate(raw)
		var ve *ValidationError
		require.ErrorAs(t, err, &ve, "phone=%q", phone)
		assert.Equal(t, KindInvalidPhone, ve.Kind)
	}

	good := []string{"5551234567", "+1 555 123 4567", "(555) 123.4567"}
	for _, phone := range good {
		raw := validRaw()
		raw.Phone = phone
		_, err := Validate(raw)
		assert.NoError(t, err, "phone=%q", phone)
	}
}

func TestValidate_AddressTooShort(t *testing.T) {
	raw := validRaw()
	raw.Address = "123 Main"
	_, err := Validate(raw)
	var ve *ValidationError
	require.ErrorAs(t, err, &ve)
	assert.Equal(t, KindAddressTooShort, ve.Kind)
}

func TestValidate_ToteCount(t *testing.T) {
	for _, n := range []int{0, 1, 11} {
		raw := validRaw()
		raw.ToteCount = n
		raw.DeclaredTotal = nil
		_, err := Validate(raw)
		var ve *ValidationError
		require.ErrorAs(t, err, &ve, "totes=%d", n)
		assert.Equal(t, KindInvalidToteCount, ve.Kind)
	}
}

func TestValidate_DeclaredTotal(t *testing.T) {
	raw := validRaw()
	raw.DeclaredTotal = f64(65.00)
	_, err := Validate(raw)
	var ve *ValidationError
	require.ErrorAs(t, err, &ve)
	assert.Equal(t, KindCostMismatch, ve.Kind)
	assert.True(t, ve.Tamper)

	// Within a cent of the recomputed cost is fine.
	raw = validRaw()
	raw.DeclaredTotal = f64(70.009)
	_, err = Validate(raw)
	assert.NoError(t, err)

	// Absent total skips the cross-check entirely.
	raw = validRaw()
	raw.DeclaredTotal = nil
	_, err = Validate(raw)
	assert.NoError(t, err)
}

func TestValidate_SanitizesFields(t *testing.T) {
	raw := validRaw()
	raw.Name = "Jane <b>Doe</b>"
	raw.Address = `123 Main Street & "Oak" Ave`
	order, err := Validate(raw)
	require.NoError(t, err)

	assert.Equal(t, "Jane Doe", order.Name)
	assert.Equal(t, "123 Main Street &amp; &quot;Oak&quot; Ave", order.Address)
}

func TestValidationError_Messages(t *testing.T) {
	assert.Equal(t, "email is required", (&ValidationError{Kind: KindMissingField, Field: "email"}).Error())
	assert.Equal(t, "invalid order amount", (&ValidationError{Kind: KindCostMismatch}).Error())
}
