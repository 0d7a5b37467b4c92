package model_test

import (
	"testing"

	"github.com/sujoy-karmokar/shoptal-sub000/internal/domain/model"

	"github.com/stretchr/testify/assert"
)

func TestOrderStatusValid(t *testing.T) {
	for _, s := range []model.OrderStatus{
		model.OrderStatusPending,
		model.OrderStatusProcessing,
		model.OrderStatusShipped,
		model.OrderStatusDelivered,
		model.OrderStatusCanceled,
	} {
		assert.True(t, s.Valid(), string(s))
	}

	assert.False(t, model.OrderStatus("UNKNOWN").Valid())
	assert.False(t, model.OrderStatus("").Valid())
}
