package validation

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/tair/repair-manager/pkg/apperror"
)

type intake struct {
	CustomerName  string `json:"customer_name" validate:"required,max=100"`
	CustomerEmail string `json:"customer_email" validate:"omitempty,email"`
}

func TestStructReportsJSONFieldName(t *testing.T) {
	err := Struct(intake{})

	var ve *apperror.ValidationError
	assert.ErrorAs(t, err, &ve)
	assert.Equal(t, apperror.KindInvalidInput, ve.Kind)
	assert.Equal(t, "customer_name", ve.Field)
	assert.Equal(t, "is required", ve.Message)
}

func TestStructEmail(t *testing.T) {
	err := Struct(intake{CustomerName: "Ada", CustomerEmail: "nope"})
	assert.Equal(t, apperror.KindInvalidInput, apperror.ValidationKind(err))

	assert.NoError(t, Struct(intake{CustomerName: "Ada", CustomerEmail: "ada@example.com"}))
}
