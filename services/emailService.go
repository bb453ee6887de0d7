package services

import (
	"fmt"
	"html"
	"strings"

	"github.com/resend/resend-go/v2"

	"github.com/Siilah/initializers"
	"github.com/Siilah/models"
)

type emailSender interface {
	Send(params *resend.SendEmailRequest) (*resend.SendEmailResponse, error)
}

type EmailService struct {
	emails emailSender
	from   string
}

var _ DigestMailer = (*EmailService)(nil)

var emailService *EmailService

// InitEmailService initializes the email service with Resend. It returns nil
// when no API key is configured.
func InitEmailService(apiKey, from string) *EmailService {
	if apiKey == "" {
		initializers.Log.Warn("RESEND_API_KEY not set, circle digest emails disabled")
		emailService = nil
		return nil
	}

	client := resend.NewClient(apiKey)
	emailService = &EmailService{
		emails: client.Emails,
		from:   from,
	}

	initializers.Log.Info("email service initialized with Resend")
	return emailService
}

// GetEmailService returns the singleton email service instance
func GetEmailService() *EmailService {
	return emailService
}

// SendCircleDigestEmail sends the weekly summary of a circle to one member.
func (s *EmailService) SendCircleDigestEmail(toEmail, name, circleName string, summary models.CircleSummary) error {
	if s == nil || s.emails == nil {
		return fmt.Errorf("email service not initialized")
	}

	var themeItems, themeLines []string
	for _, theme := range summary.Themes {
		themeItems = append(themeItems, fmt.Sprintf("<li>%s <span class=\"muted\">(%d, %s)</span></li>",
			html.EscapeString(theme.Theme), theme.Count, html.EscapeString(theme.Sentiment)))
		themeLines = append(themeLines, fmt.Sprintf("- %s (%d, %s)", theme.Theme, theme.Count, theme.Sentiment))
	}

	htmlBody := fmt.Sprintf(`
<!DOCTYPE html>
<html>
<head>
    <style>
        body {
            font-family: -apple-system, BlinkMacSystemFont, 'Segoe UI', Roboto, 'Helvetica Neue', Arial, sans-serif;
            line-height: 1.6;
            color: #3d4a52;
            max-width: 600px;
            margin: 0 auto;
            padding: 20px;
            background-color: #f7f3ec;
        }
        .header {
            text-align: center;
            padding: 20px 0;
            border-bottom: 2px solid #8da38a;
        }
        .header h1 {
            color: #8da38a;
            margin: 0;
        }
        .stats {
            display: flex;
            justify-content: space-around;
            text-align: center;
            margin: 24px 0;
        }
        .stat strong {
            display: block;
            font-size: 28px;
            color: #8da38a;
        }
        .moment {
            background-color: #ffffff;
            border-left: 4px solid #8da38a;
            border-radius: 8px;
            padding: 16px;
            margin: 20px 0;
        }
        .muted {
            color: #9aa5ab;
        }
        .footer {
            text-align: center;
            padding: 20px 0;
            border-top: 1px solid #ddd;
            font-size: 12px;
            color: #666;
        }
    </style>
</head>
<body>
    <div class="header">
        <h1>siilah</h1>
    </div>

    <div class="content">
        <h2>This week in %s</h2>

        <p>Hi %s,</p>

        <p>%s</p>

        <div class="stats">
            <div class="stat"><strong>%d</strong>prayers shared</div>
            <div class="stat"><strong>%d</strong>responses</div>
            <div class="stat"><strong>%d</strong>prayed over</div>
        </div>

        <div class="moment">
            <p><strong>Key moment</strong></p>
            <p>%s</p>
        </div>

        <p><strong>Themes</strong></p>
        <ul>%s</ul>

        <p><strong>For next week:</strong> %s</p>

        <p>Grace and peace,<br>Siilah</p>
    </div>

    <div class="footer">
        <p>You receive this because circle activity emails are on in your settings.</p>
    </div>
</body>
</html>
`, html.EscapeString(circleName), html.EscapeString(name), html.EscapeString(summary.Celebration),
		summary.Highlights.Prayers_Shared, summary.Highlights.Responses, summary.Highlights.Praying_Now,
		html.EscapeString(summary.Key_Moment), strings.Join(themeItems, ""), html.EscapeString(summary.Next_Prompt))

	textBody := fmt.Sprintf(`
This week in %s

Hi %s,

%s

%d prayers shared, %d responses, %d prayed over.

Key moment: %s

Themes:
%s

For next week: %s

Grace and peace,
Siilah
`, circleName, name, summary.Celebration,
		summary.Highlights.Prayers_Shared, summary.Highlights.Responses, summary.Highlights.Praying_Now,
		summary.Key_Moment, strings.Join(themeLines, "\n"), summary.Next_Prompt)

	params := &resend.SendEmailRequest{
		From:    s.from,
		To:      []string{toEmail},
		Subject: fmt.Sprintf("Your week in \"%s\"", circleName),
		Html:    htmlBody,
		Text:    textBody,
	}

	sent, err := s.emails.Send(params)
	if err != nil {
		return fmt.Errorf("failed to send email: %w", err)
	}

	initializers.Log.Infow("sent circle digest email", "circle", circleName, "emailId", sent.Id)
	return nil
}
