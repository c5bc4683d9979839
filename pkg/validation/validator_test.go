package validation

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/zatekoja/vacationrentals/pkg/errors"
)

type listing struct {
	Title     string          `json:"title" validate:"required,max=10"`
	Email     string          `json:"email" validate:"omitempty,email"`
	Price     decimal.Decimal `json:"basePrice" validate:"gt=0"`
	MaxGuests int             `json:"maxGuests" validate:"min=1"`
}

func TestStruct(t *testing.T) {
	v := New()

	t.Run("valid", func(t *testing.T) {
		err := v.Struct(listing{Title: "Loft", Price: decimal.NewFromInt(120), MaxGuests: 2})
		assert.NoError(t, err)
	})

	t.Run("reports json names", func(t *testing.T) {
		err := v.Struct(listing{Price: decimal.NewFromInt(10), MaxGuests: 1})
		require.Error(t, err)
		assert.True(t, apperrors.IsType(err, apperrors.ErrorTypeValidation))
		assert.Contains(t, err.Error(), "title is required")
	})

	t.Run("decimal must be positive", func(t *testing.T) {
		err := v.Struct(listing{Title: "Loft", Price: decimal.Zero, MaxGuests: 1})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "basePrice must be greater than 0")
	})

	t.Run("collects every failure", func(t *testing.T) {
		err := v.Struct(listing{Title: "far too long a title", Email: "nope", Price: decimal.NewFromInt(1)})
		require.Error(t, err)
		appErr, ok := apperrors.As(err)
		require.True(t, ok)
		assert.Contains(t, appErr.Message, "title must be at most 10 characters long")
		assert.Contains(t, appErr.Message, "email must be a valid email address")
		assert.Contains(t, appErr.Message, "maxGuests must be at least 1")
	})
}

func TestSanitize(t *testing.T) {
	v := New()

	assert.Equal(t, "Sea view", v.Sanitize(`<script>alert(1)</script><b>Sea view</b>`))
	assert.Equal(t, "Tom & Jerry", v.Sanitize("  Tom & Jerry "))
	assert.Equal(t, "", v.Sanitize(""))
	assert.Equal(t, "It's \"cosy\"", v.Sanitize(`It's "cosy"`))
	assert.Equal(t, "Hi", v.Sanitize("&lt;script&gt;alert(1)&lt;/script&gt;Hi"))
	assert.Equal(t, "x", v.Sanitize("&amp;lt;b&amp;gt;x"))
	assert.Equal(t, "3 &lt; 4", v.Sanitize("3 < 4"))
	assert.Equal(t, []string{"wifi", "pool"}, v.SanitizeAll([]string{"wifi", "<i></i>", "pool"}))
}
