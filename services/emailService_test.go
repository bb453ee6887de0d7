package services

import (
	"errors"
	"testing"

	"github.com/resend/resend-go/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Siilah/models"
)

type fakeEmailSender struct {
	sent []*resend.SendEmailRequest
	err  error
}

func (f *fakeEmailSender) Send(params *resend.SendEmailRequest) (*resend.SendEmailResponse, error) {
	f.sent = append(f.sent, params)
	if f.err != nil {
		return nil, f.err
	}
	return &resend.SendEmailResponse{Id: "email-1"}, nil
}

func TestInitEmailService_WithoutKey(t *testing.T) {
	assert.Nil(t, InitEmailService("", "Siilah <hello@siilah.app>"))
	assert.Nil(t, GetEmailService())
}

func TestSendCircleDigestEmail(t *testing.T) {
	sender := &fakeEmailSender{}
	service := &EmailService{emails: sender, from: "Siilah <hello@siilah.app>"}

	summary := models.CircleSummary{
		Highlights:  models.SummaryHighlights{Prayers_Shared: 4, Responses: 9, Praying_Now: 2},
		Themes:      []models.SummaryTheme{{Theme: "Family & Work", Count: 3, Sentiment: "hopeful"}},
		Key_Moment:  "Sarah's <answered> prayer",
		Celebration: "4 weeks of consistency!",
		Next_Prompt: "Share one answered prayer.",
	}

	err := service.SendCircleDigestEmail("grace@example.com", "Grace", "Waiting Season Triad", summary)
	require.NoError(t, err)
	require.Len(t, sender.sent, 1)

	email := sender.sent[0]
	assert.Equal(t, []string{"grace@example.com"}, email.To)
	assert.Equal(t, `Your week in "Waiting Season Triad"`, email.Subject)
	assert.Contains(t, email.Html, "Family &amp; Work")
	assert.Contains(t, email.Html, "Sarah&#39;s &lt;answered&gt; prayer")
	assert.Contains(t, email.Text, "4 prayers shared, 9 responses, 2 prayed over.")
	assert.Contains(t, email.Text, "- Family & Work (3, hopeful)")
}

func TestSendCircleDigestEmail_Errors(t *testing.T) {
	var missing *EmailService
	assert.Error(t, missing.SendCircleDigestEmail("a@example.com", "A", "C", models.CircleSummary{}))

	service := &EmailService{emails: &fakeEmailSender{err: errors.New("rate limited")}}
	err := service.SendCircleDigestEmail("a@example.com", "A", "C", models.CircleSummary{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "rate limited")
}
