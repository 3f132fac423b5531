package dispatcher

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"
)

const twilioBaseURL = "https://api.twilio.com"

// TwilioSender sends SMS through the Twilio Messages API.
type TwilioSender struct {
	accountSID string
	authToken  string
	from       string
	baseURL    string
	client     *http.Client
}

func NewTwilioSender(accountSID, authToken, from string) *TwilioSender {
	return &TwilioSender{
		accountSID: accountSID,
		authToken:  authToken,
		from:       from,
		baseURL:    twilioBaseURL,
		client:     &http.Client{},
	}
}

// WithBaseURL overrides the API endpoint.
func (s *TwilioSender) WithBaseURL(base string) *TwilioSender {
	s.baseURL = strings.TrimSuffix(base, "/")
	return s
}

type twilioResponse struct {
	SID     string `json:"sid"`
	Status  string `json:"status"`
	Message string `json:"message"`
}

// Send posts a form-encoded message create request with basic auth.
func (s *TwilioSender) Send(ctx context.Context, req SMSRequest) SMSResult {
	start := time.Now()

	timeout := req.Timeout
	if timeout == 0 {
		timeout = 10 * time.Second
	}
	ctxTimeout, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	form := url.Values{}
	form.Set("To", req.To)
	form.Set("From", s.from)
	form.Set("Body", req.Body)

	endpoint := fmt.Sprintf("%s/2010-04-01/Accounts/%s/Messages.json", s.baseURL, s.accountSID)
	httpReq, err := http.NewRequestWithContext(ctxTimeout, http.MethodPost, endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return SMSResult{Error: fmt.Errorf("create request: %w", err), Duration: time.Since(start)}
	}
	httpReq.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	httpReq.SetBasicAuth(s.accountSID, s.authToken)

	resp, err := s.client.Do(httpReq)
	if err != nil {
		return SMSResult{Error: fmt.Errorf("send: %w", err), Duration: time.Since(start)}
	}
	defer resp.Body.Close()

	result := SMSResult{StatusCode: resp.StatusCode, Duration: time.Since(start)}

	var body twilioResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err == nil {
		result.MessageSID = body.SID
		result.APIMessage = body.Message
	}
	return result
}
