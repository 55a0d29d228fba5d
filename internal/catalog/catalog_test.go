package catalog

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPlans(t *testing.T) {
	got := Plans()
	require.Len(t, got, 3)
	assert.Equal(t, "Weight Loss Plan", got[0].Name)
	assert.Equal(t, 1000, got[0].Price)
	assert.Equal(t, 1500, got[1].Price)
	assert.True(t, got[1].Popular)
	assert.Len(t, got[1].AdditionalFeatures, 8)
	assert.Nil(t, got[2].AdditionalFeatures)
}

func TestPlansReturnsCopies(t *testing.T) {
	first := Plans()
	first[0].Name = "mutated"
	first[0].Features[0] = "mutated"

	again := Plans()
	assert.Equal(t, "Weight Loss Plan", again[0].Name)
	assert.Equal(t, "1 Month Diet Plan", again[0].Features[0])
	assert.Equal(t, "1 Month Diet Plan", again[2].Features[0])
}

func TestFindPlan(t *testing.T) {
	for _, p := range Plans() {
		found, ok := FindPlan(p.Name)
		require.True(t, ok, p.Name)
		assert.Equal(t, p.Price, found.Price)
	}

	_, ok := FindPlan("weight loss plan")
	assert.False(t, ok, "lookup is exact")
	_, ok = FindPlan("")
	assert.False(t, ok)
}

func TestStaticContent(t *testing.T) {
	assert.Equal(t, 6, TestimonialCount())
	assert.Len(t, Testimonials(), TestimonialCount())
	assert.Len(t, Stats(), 5)
	assert.Len(t, Services(), 9)
	assert.Len(t, NextSteps(), 3)
	assert.Len(t, FailureReasons(), 4)

	contact := Support()
	assert.Equal(t, "support@poojaluthra.com", contact.Email)
	assert.Equal(t, "https://wa.me/919876543210", contact.WhatsAppURL)
}
