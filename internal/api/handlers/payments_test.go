package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shahbazasghar1038/injury-back-end/internal/external"
	"github.com/shahbazasghar1038/injury-back-end/internal/types"
)

type fakePaymentFlow struct {
	createFn  func(ctx context.Context, userID string, amountCents int64) (*external.PaymentIntent, error)
	confirmFn func(ctx context.Context, intentID, userID string) (types.Allowance, error)

	capturedAmount   int64
	capturedIntentID string
}

func (f *fakePaymentFlow) CreateIntent(ctx context.Context, userID string, amountCents int64) (*external.PaymentIntent, error) {
	f.capturedAmount = amountCents
	if f.createFn != nil {
		return f.createFn(ctx, userID, amountCents)
	}
	return &external.PaymentIntent{
		ID:           "pi_123",
		ClientSecret: "pi_123_secret_abc",
		Status:       "requires_payment_method",
		AmountCents:  amountCents,
		Currency:     "usd",
	}, nil
}

func (f *fakePaymentFlow) ConfirmPayment(ctx context.Context, intentID, userID string) (types.Allowance, error) {
	f.capturedIntentID = intentID
	if f.confirmFn != nil {
		return f.confirmFn(ctx, intentID, userID)
	}
	return types.Allowance{Count: 3, Limit: 4}, nil
}

func newPaymentRouter(flow *fakePaymentFlow) chi.Router {
	h := NewPaymentHandler(flow, 9900, testValidator(), testLogger())
	return newRouter(h.RegisterRoutes)
}

func TestPaymentIntent_ExplicitAmount(t *testing.T) {
	flow := &fakePaymentFlow{}
	router := newPaymentRouter(flow)

	body := map[string]any{"user_id": "user_att1", "amount_cents": 15000}
	w := doRequest(t, router, http.MethodPost, "/payments/intent", body, &testAttorney)

	require.Equal(t, http.StatusOK, w.Code)
	assert.EqualValues(t, 15000, flow.capturedAmount)

	var resp CreateIntentResponse
	require.NoError(t, json.Unmarshal(decodeEnvelope(t, w), &resp))
	assert.Equal(t, "pi_123", resp.IntentID)
	assert.Equal(t, "pi_123_secret_abc", resp.ClientSecret)
	assert.EqualValues(t, 15000, resp.AmountCents)
}

func TestPaymentIntent_DefaultsToSlotPrice(t *testing.T) {
	flow := &fakePaymentFlow{}
	router := newPaymentRouter(flow)

	body := map[string]any{"user_id": "user_att1"}
	w := doRequest(t, router, http.MethodPost, "/payments/intent", body, &testAttorney)

	require.Equal(t, http.StatusOK, w.Code)
	assert.EqualValues(t, 9900, flow.capturedAmount)
}

func TestPaymentIntent_NegativeAmount(t *testing.T) {
	router := newPaymentRouter(&fakePaymentFlow{})

	body := map[string]any{"user_id": "user_att1", "amount_cents": -500}
	w := doRequest(t, router, http.MethodPost, "/payments/intent", body, &testAttorney)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestPaymentIntent_UpstreamDeclined(t *testing.T) {
	flow := &fakePaymentFlow{
		createFn: func(ctx context.Context, userID string, amountCents int64) (*external.PaymentIntent, error) {
			return nil, types.NewAppError(types.ErrCodePaymentDeclined, "card declined", nil)
		},
	}
	router := newPaymentRouter(flow)

	body := map[string]any{"user_id": "user_att1"}
	w := doRequest(t, router, http.MethodPost, "/payments/intent", body, &testAttorney)

	require.Equal(t, http.StatusPaymentRequired, w.Code)
	assert.Equal(t, string(types.ErrCodePaymentDeclined), decodeError(t, w).Code)
}

func TestPaymentConfirm_Success(t *testing.T) {
	flow := &fakePaymentFlow{}
	router := newPaymentRouter(flow)

	body := map[string]string{"payment_intent_id": "pi_123", "user_id": "user_att1"}
	w := doRequest(t, router, http.MethodPost, "/payments/confirm", body, &testAttorney)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "pi_123", flow.capturedIntentID)

	var allowance types.Allowance
	require.NoError(t, json.Unmarshal(decodeEnvelope(t, w), &allowance))
	assert.Equal(t, 3, allowance.Count)
	assert.Equal(t, 4, allowance.Limit)
}

func TestPaymentConfirm_Replay(t *testing.T) {
	flow := &fakePaymentFlow{
		confirmFn: func(ctx context.Context, intentID, userID string) (types.Allowance, error) {
			return types.Allowance{}, types.NewAppError(
				types.ErrCodeConflictPaymentProcessed,
				"payment has already been processed",
				nil,
			)
		},
	}
	router := newPaymentRouter(flow)

	body := map[string]string{"payment_intent_id": "pi_123", "user_id": "user_att1"}
	w := doRequest(t, router, http.MethodPost, "/payments/confirm", body, &testAttorney)

	require.Equal(t, http.StatusConflict, w.Code)
	assert.Equal(t, string(types.ErrCodeConflictPaymentProcessed), decodeError(t, w).Code)
}

func TestPaymentConfirm_NotComplete(t *testing.T) {
	flow := &fakePaymentFlow{
		confirmFn: func(ctx context.Context, intentID, userID string) (types.Allowance, error) {
			return types.Allowance{}, types.NewAppErrorWithDetails(
				types.ErrCodePaymentNotComplete,
				"payment has not completed",
				nil,
				map[string]any{"status": "requires_payment_method"},
			)
		},
	}
	router := newPaymentRouter(flow)

	body := map[string]string{"payment_intent_id": "pi_123", "user_id": "user_att1"}
	w := doRequest(t, router, http.MethodPost, "/payments/confirm", body, &testAttorney)

	require.Equal(t, http.StatusBadRequest, w.Code)
	detail := decodeError(t, w)
	assert.Equal(t, string(types.ErrCodePaymentNotComplete), detail.Code)
	assert.Equal(t, "requires_payment_method", detail.Details["status"])
}

func TestPaymentConfirm_MissingIntentID(t *testing.T) {
	router := newPaymentRouter(&fakePaymentFlow{})

	body := map[string]string{"user_id": "user_att1"}
	w := doRequest(t, router, http.MethodPost, "/payments/confirm", body, &testAttorney)

	require.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, string(types.ErrCodeValidationMissingField), decodeError(t, w).Code)
}
