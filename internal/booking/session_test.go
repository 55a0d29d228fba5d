package booking

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wolfman30/nutrition-consult/internal/catalog"
	"github.com/wolfman30/nutrition-consult/internal/payments"
)

func newTestSession() *Session {
	return NewSession("sess", time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC))
}

func fillForm(s *Session) {
	s.Form.Name = "Asha"
	s.Form.Email = "asha@example.com"
	s.Form.WhatsApp = "+91 90000 00000"
	s.Form.Issue = "Thyroid"
}

func TestSession_SelectPlanOpensModal(t *testing.T) {
	for _, plan := range catalog.Plans() {
		t.Run(plan.Name, func(t *testing.T) {
			s := newTestSession()
			require.NoError(t, s.SelectPlan(plan.Name))
			assert.True(t, s.ModalOpen)
			assert.Equal(t, plan.Name, s.Form.Plan)
		})
	}
}

func TestSession_SelectPlanKeepsContactFields(t *testing.T) {
	s := newTestSession()
	fillForm(s)
	require.NoError(t, s.SelectPlan("Weight Loss Plan"))
	s.CloseModal()
	require.NoError(t, s.SelectPlan("Menopause Management Plan"))

	assert.Equal(t, "Asha", s.Form.Name)
	assert.Equal(t, "Menopause Management Plan", s.Form.Plan)
}

func TestSession_SelectUnknownPlan(t *testing.T) {
	s := newTestSession()
	require.ErrorIs(t, s.SelectPlan("Platinum"), ErrUnknownPlan)
	assert.False(t, s.ModalOpen)
}

func TestSession_CloseModalKeepsForm(t *testing.T) {
	s := newTestSession()
	fillForm(s)
	require.NoError(t, s.SelectPlan("Lifestyle Disease Reversal Plan"))
	s.CloseModal()
	assert.False(t, s.ModalOpen)
	assert.Equal(t, "Lifestyle Disease Reversal Plan", s.Form.Plan)
	assert.Equal(t, "Thyroid", s.Form.Issue)
}

func TestSession_Submit(t *testing.T) {
	s := newTestSession()
	require.NoError(t, s.SelectPlan("Weight Loss Plan"))

	_, err := s.Submit()
	require.ErrorIs(t, err, ErrIncompleteForm)
	assert.True(t, s.ModalOpen, "modal stays open while incomplete")

	fillForm(s)
	data, err := s.Submit()
	require.NoError(t, err)
	assert.False(t, s.ModalOpen)

	plan, _ := catalog.FindPlan("Weight Loss Plan")
	assert.Equal(t, payments.PaymentData{
		Name:     "Asha",
		Email:    "asha@example.com",
		WhatsApp: "+91 90000 00000",
		Issue:    "Thyroid",
		Plan:     "Weight Loss Plan",
		Amount:   plan.Price,
	}, data)
}

func TestSession_SubmitWithoutPlan(t *testing.T) {
	s := newTestSession()
	fillForm(s)
	s.ModalOpen = true

	_, err := s.Submit()
	require.ErrorIs(t, err, ErrUnknownPlan)
	assert.Equal(t, "Please select a valid plan", err.Error())
	assert.Equal(t, PageHome, s.Page)
	assert.True(t, s.ModalOpen)
}

func TestSession_ResolveSuccess(t *testing.T) {
	s := newTestSession()
	s.PendingOrderID = "order_1"
	require.NoError(t, s.Resolve(Succeeded("pay_1", "order_1")))

	assert.Equal(t, PageSuccess, s.Page)
	require.NotNil(t, s.Outcome)
	assert.Equal(t, "pay_1", s.Outcome.PaymentID)
	assert.Equal(t, "order_1", s.Outcome.OrderID)
	assert.Empty(t, s.PendingOrderID)

	require.ErrorIs(t, s.Resolve(Failed("late")), ErrInvalidTransition)
}

func TestSession_RetryPreservesForm(t *testing.T) {
	s := newTestSession()
	fillForm(s)
	require.NoError(t, s.SelectPlan("Menopause Management Plan"))
	_, err := s.Submit()
	require.NoError(t, err)
	require.NoError(t, s.Resolve(Failed("Payment cancelled by user")))
	before := s.Form

	require.NoError(t, s.Retry())
	assert.Equal(t, PageHome, s.Page)
	assert.True(t, s.ModalOpen)
	assert.Nil(t, s.Outcome)
	assert.Equal(t, before, s.Form)
}

func TestSession_RetryOnlyFromFailure(t *testing.T) {
	s := newTestSession()
	require.ErrorIs(t, s.Retry(), ErrInvalidTransition)

	require.NoError(t, s.Resolve(Succeeded("pay", "order")))
	require.ErrorIs(t, s.Retry(), ErrInvalidTransition)
}

func TestSession_BackToHomeClearsForm(t *testing.T) {
	for _, outcome := range []Outcome{Succeeded("pay", "order"), Failed("Payment verification failed")} {
		s := newTestSession()
		fillForm(s)
		require.NoError(t, s.SelectPlan("Weight Loss Plan"))
		require.NoError(t, s.Resolve(outcome))

		require.NoError(t, s.BackToHome())
		assert.Equal(t, PageHome, s.Page)
		assert.True(t, s.Form.IsEmpty())
		assert.Nil(t, s.Outcome)
		assert.False(t, s.ModalOpen)
	}

	require.ErrorIs(t, newTestSession().BackToHome(), ErrInvalidTransition)
}

func TestOutcomeFromResult(t *testing.T) {
	ok := OutcomeFromResult(payments.Result{Response: &payments.Response{PaymentID: "pay_9", OrderID: "order_9"}})
	assert.Equal(t, Succeeded("pay_9", "order_9"), ok)

	cancelled := OutcomeFromResult(payments.Result{Err: payments.ErrCancelled})
	assert.Equal(t, "Payment cancelled by user", cancelled.Error)

	unknown := OutcomeFromResult(payments.Result{Err: errors.New("boom")})
	assert.Equal(t, "Payment initialization failed", unknown.Error)
}

func TestPage_Text(t *testing.T) {
	for _, p := range []Page{PageHome, PageSuccess, PageFailure} {
		text, err := p.MarshalText()
		require.NoError(t, err)
		var back Page
		require.NoError(t, back.UnmarshalText(text))
		assert.Equal(t, p, back)
	}
	var p Page
	assert.Error(t, p.UnmarshalText([]byte("checkout")))
}
