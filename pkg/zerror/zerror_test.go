package zerror_test

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tuanvumaihuynh/crm/pkg/zerror"
)

func TestZError(t *testing.T) {
	notFound := zerror.NewNotFound("CUSTOMER_NOT_FOUND", "customer not found")

	t.Run("Should match predefined error after wrapping", func(t *testing.T) {
		parent := errors.New("no rows")
		err := fmt.Errorf("get customer: %w", notFound.WrapParent(parent))

		assert.ErrorIs(t, err, notFound)
		assert.ErrorIs(t, err, parent)

		var zErr zerror.ZError
		require.ErrorAs(t, err, &zErr)
		assert.Equal(t, zerror.StatusNotFound, zErr.Status())
		assert.Equal(t, "CUSTOMER_NOT_FOUND", zErr.Code())
	})

	t.Run("Should match after message override", func(t *testing.T) {
		err := notFound.WithMsg("Invalid customer ID.")

		assert.ErrorIs(t, err, notFound)
		assert.Equal(t, "Invalid customer ID.", err.Msg())
	})

	t.Run("Should not match different code", func(t *testing.T) {
		other := zerror.NewNotFound("ORDER_NOT_FOUND", "order not found")
		assert.NotErrorIs(t, notFound, other)
	})

	t.Run("Should format error with parent", func(t *testing.T) {
		err := notFound.WrapParent(errors.New("boom"))
		assert.Equal(t, "Code=CUSTOMER_NOT_FOUND, Msg=customer not found, Parent=(boom)", err.Error())
	})

	t.Run("Should format message", func(t *testing.T) {
		err := notFound.WithMsgf("customer %d not found", 7)

		assert.Equal(t, "customer 7 not found", err.Msg())
		assert.ErrorIs(t, err, notFound)
	})
}

func TestStatusString(t *testing.T) {
	assert.Equal(t, "CONFLICT", zerror.StatusConflict.String())
	assert.Equal(t, "UNKNOWN", zerror.Status(200).String())
}
