package idempotency

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGenerateKeyIsStable(t *testing.T) {
	g := NewGenerator()

	params := map[string]interface{}{
		"subscription_id": "subs_01",
		"period_start":    "2025-01-15",
	}

	first := g.GenerateKey(ScopeSubscriptionRenewal, params)
	second := g.GenerateKey(ScopeSubscriptionRenewal, params)
	assert.Equal(t, first, second)
	assert.True(t, strings.HasPrefix(first, string(ScopeSubscriptionRenewal)+"-"))
	assert.True(t, g.ValidateKey(ScopeSubscriptionRenewal, params, first))
}

func TestGenerateKeyOrderIndependent(t *testing.T) {
	g := NewGenerator()

	a := g.GenerateKey(ScopePayment, map[string]interface{}{
		"invoice_id": "inv_01",
		"amount":     "270",
	})
	b := g.GenerateKey(ScopePayment, map[string]interface{}{
		"amount":     "270",
		"invoice_id": "inv_01",
	})
	assert.Equal(t, a, b)
}

func TestGenerateKeyDiffersByScopeAndParams(t *testing.T) {
	g := NewGenerator()

	params := map[string]interface{}{"subscription_id": "subs_01"}

	confirm := g.GenerateKey(ScopeSubscriptionConfirm, params)
	renewal := g.GenerateKey(ScopeSubscriptionRenewal, params)
	assert.NotEqual(t, confirm, renewal)

	other := g.GenerateKey(ScopeSubscriptionConfirm, map[string]interface{}{"subscription_id": "subs_02"})
	assert.NotEqual(t, confirm, other)
	assert.False(t, g.ValidateKey(ScopeSubscriptionConfirm, params, other))
}
