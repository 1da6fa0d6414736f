package external

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/shahbazasghar1038/injury-back-end/internal/types"
)

// brevoAPIBase is the default Brevo API base URL.
// Overridable in tests via BrevoClientConfig.BaseURL.
const brevoAPIBase = "https://api.brevo.com"

// EmailMessage is a single transactional email to deliver.
type EmailMessage struct {
	To          string
	ToName      string
	Subject     string
	HTMLContent string
}

// EmailSender delivers transactional email. Satisfied by BrevoClient.
type EmailSender interface {
	// Send delivers the message and returns the provider message ID.
	Send(ctx context.Context, msg EmailMessage) (string, error)
}

// BrevoClientConfig holds the configuration for creating a BrevoClient.
type BrevoClientConfig struct {
	APIKey      string
	SenderName  string
	SenderEmail string
	BaseURL     string // Override for testing; defaults to brevoAPIBase
	Logger      *slog.Logger
}

// BrevoClient sends transactional email through the Brevo v3 SMTP API via
// BaseClient, so deliveries get the shared retry and circuit breaker
// behavior. OTP and invitation mails flow through here.
type BrevoClient struct {
	base        *BaseClient
	apiKey      string
	senderName  string
	senderEmail string
	baseURL     string
	logger      *slog.Logger
}

// NewBrevoClient creates a new BrevoClient. The httpClient timeout should be
// around 10 seconds; mail submission is quick.
func NewBrevoClient(httpClient *http.Client, cfg BrevoClientConfig) *BrevoClient {
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = brevoAPIBase
	}

	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	base := NewBaseClient(
		httpClient,
		"brevo",
		RetryPolicy{
			MaxRetries: 2,
			MinWait:    500 * time.Millisecond,
			MaxWait:    5 * time.Second,
		},
		"InjuryCaseAPI/1.0",
		WithSleepFunc(time.Sleep),
	)

	return &BrevoClient{
		base:        base,
		apiKey:      cfg.APIKey,
		senderName:  cfg.SenderName,
		senderEmail: cfg.SenderEmail,
		baseURL:     strings.TrimSuffix(baseURL, "/"),
		logger:      logger,
	}
}

// NewBrevoClientWithBase creates a BrevoClient with a pre-configured
// BaseClient. Useful for tests that want to disable retries.
func NewBrevoClientWithBase(base *BaseClient, cfg BrevoClientConfig) *BrevoClient {
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = brevoAPIBase
	}

	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	return &BrevoClient{
		base:        base,
		apiKey:      cfg.APIKey,
		senderName:  cfg.SenderName,
		senderEmail: cfg.SenderEmail,
		baseURL:     strings.TrimSuffix(baseURL, "/"),
		logger:      logger,
	}
}

// Send transmits an email using Brevo's v3 transactional email endpoint and
// returns the provider message ID. Callers that treat email as best effort
// (OTP resend, invitation notifications) log the error and move on; Send
// itself never swallows failures.
func (b *BrevoClient) Send(ctx context.Context, msg EmailMessage) (string, error) {
	payload := brevoEmailPayload{
		Sender: brevoAddress{
			Name:  b.senderName,
			Email: b.senderEmail,
		},
		To: []brevoAddress{
			{Email: msg.To, Name: msg.ToName},
		},
		Subject:     msg.Subject,
		HTMLContent: msg.HTMLContent,
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return "", types.NewAppError(
			types.ErrCodeInternalUnexpected,
			"failed to marshal Brevo email payload",
			err,
		)
	}

	reqURL := b.baseURL + "/v3/smtp/email"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, reqURL, bytes.NewReader(body))
	if err != nil {
		return "", types.NewAppError(
			types.ErrCodeInternalUnexpected,
			"failed to create Brevo email request",
			err,
		)
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	req.Header.Set("api-key", b.apiKey)

	resp, err := b.base.Do(req)
	if err != nil {
		return "", b.wrapBrevoError("Send", err)
	}
	defer resp.Body.Close()

	// Brevo returns 201 Created on success.
	if resp.StatusCode == http.StatusCreated || resp.StatusCode == http.StatusOK {
		var result brevoSendResult
		if decErr := json.NewDecoder(resp.Body).Decode(&result); decErr != nil {
			// Delivery was accepted; a missing message ID is not worth failing over.
			b.logger.WarnContext(ctx, "brevo send accepted but response was undecodable", "error", decErr)
			return "", nil
		}
		return result.MessageID, nil
	}

	return "", b.handleErrorResponse(resp, "Send")
}

// ---------------------------------------------------------------------------
// Payload Types
// ---------------------------------------------------------------------------

type brevoEmailPayload struct {
	Sender      brevoAddress   `json:"sender"`
	To          []brevoAddress `json:"to"`
	Subject     string         `json:"subject"`
	HTMLContent string         `json:"htmlContent"`
}

type brevoAddress struct {
	Email string `json:"email"`
	Name  string `json:"name,omitempty"`
}

type brevoSendResult struct {
	MessageID string `json:"messageId"`
}

// ---------------------------------------------------------------------------
// Error Handling
// ---------------------------------------------------------------------------

type brevoErrorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// handleErrorResponse reads a Brevo error response and maps it to a types.AppError.
func (b *BrevoClient) handleErrorResponse(resp *http.Response, operation string) error {
	body, readErr := io.ReadAll(resp.Body)
	if readErr != nil {
		return types.NewAppError(
			types.ErrCodeUpstreamEmail,
			fmt.Sprintf("%s: Brevo returned status %d and response body was unreadable", operation, resp.StatusCode),
			readErr,
		)
	}

	var brevoErr brevoErrorResponse
	errMsg := ""
	if jsonErr := json.Unmarshal(body, &brevoErr); jsonErr == nil && brevoErr.Message != "" {
		errMsg = brevoErr.Message
	} else {
		errMsg = string(body)
	}

	switch {
	case resp.StatusCode == http.StatusTooManyRequests:
		return types.NewAppError(
			types.ErrCodeUpstreamRateLimited,
			fmt.Sprintf("%s: Brevo rate limit exceeded", operation),
			nil,
		)
	case resp.StatusCode >= 500:
		return types.NewAppError(
			types.ErrCodeUpstreamUnavailable,
			fmt.Sprintf("%s: Brevo server error: %s", operation, errMsg),
			nil,
		)
	default:
		return types.NewAppError(
			types.ErrCodeUpstreamEmail,
			fmt.Sprintf("%s: Brevo error (%d): %s", operation, resp.StatusCode, errMsg),
			nil,
		)
	}
}

// wrapBrevoError wraps a BaseClient transport error with context.
func (b *BrevoClient) wrapBrevoError(operation string, err error) error {
	if _, ok := err.(*types.AppError); ok {
		return err
	}
	return types.NewAppError(
		types.ErrCodeUpstreamEmail,
		fmt.Sprintf("%s: Brevo request failed: %v", operation, err),
		err,
	)
}

var _ EmailSender = (*BrevoClient)(nil)
