package service

import (
	"context"
	"fmt"
	"html"
	"log"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/sesv2"
	"github.com/aws/aws-sdk-go-v2/service/sesv2/types"
)

// sesAPI is the part of the SES client used here
type sesAPI interface {
	SendEmail(ctx context.Context, params *sesv2.SendEmailInput, optFns ...func(*sesv2.Options)) (*sesv2.SendEmailOutput, error)
}

// EmailService sends share codes and welcome messages via Amazon SES
type EmailService struct {
	client     sesAPI
	fromEmail  string
	fromName   string
	appBaseURL string
	enabled    bool
}

// NewEmailService creates an email service. It is disabled, not an error,
// when no sender address is configured.
func NewEmailService(ctx context.Context, awsRegion, fromEmail, fromName, appBaseURL string) (*EmailService, error) {
	if fromEmail == "" {
		log.Println("Email service disabled: SES_FROM_EMAIL not configured")
		return &EmailService{enabled: false}, nil
	}

	cfg, err := config.LoadDefaultConfig(ctx, config.WithRegion(awsRegion))
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	log.Printf("Email service enabled: from=%s, region=%s", fromEmail, awsRegion)
	return newEmailServiceWithClient(sesv2.NewFromConfig(cfg), fromEmail, fromName, appBaseURL), nil
}

func newEmailServiceWithClient(client sesAPI, fromEmail, fromName, appBaseURL string) *EmailService {
	return &EmailService{
		client:     client,
		fromEmail:  fromEmail,
		fromName:   fromName,
		appBaseURL: strings.TrimRight(appBaseURL, "/"),
		enabled:    true,
	}
}

// IsEnabled returns whether the email service is enabled
func (s *EmailService) IsEnabled() bool {
	return s != nil && s.enabled
}

// SendShareCodeEmail sends a list's share code and practice link
func (s *EmailService) SendShareCodeEmail(ctx context.Context, toEmail, listTitle, shareCode string) error {
	if !s.IsEnabled() {
		log.Printf("Skipping email send (service disabled): share code to %s", toEmail)
		return nil
	}

	link := fmt.Sprintf("%s/liste/%s", s.appBaseURL, shareCode)
	subject := fmt.Sprintf("Liste de mots : %s", listTitle)

	htmlBody := fmt.Sprintf(`<!DOCTYPE html>
<html>
<head><meta charset="UTF-8"></head>
<body style="font-family: Arial, sans-serif; line-height: 1.6; color: #333;">
	<h2>%s</h2>
	<p>Une liste de mots a été partagée avec vous.</p>
	<p>Code de la liste : <strong style="font-size: 20px; letter-spacing: 3px;">%s</strong></p>
	<p><a href="%s">Commencer l'entraînement</a></p>
	<p style="font-size: 12px; color: #666;">Ce message est envoyé automatiquement par DicteeClash.</p>
</body>
</html>
`, html.EscapeString(listTitle), shareCode, link)

	textBody := fmt.Sprintf(`%s

Une liste de mots a été partagée avec vous.

Code de la liste : %s
Pour s'entraîner : %s

---
Ce message est envoyé automatiquement par DicteeClash.
`, listTitle, shareCode, link)

	return s.sendEmail(ctx, toEmail, subject, htmlBody, textBody)
}

// SendWelcomeEmail greets a newly registered teacher
func (s *EmailService) SendWelcomeEmail(ctx context.Context, toEmail, toName string) error {
	if !s.IsEnabled() {
		log.Printf("Skipping email send (service disabled): welcome to %s", toEmail)
		return nil
	}

	subject := "Bienvenue sur DicteeClash"
	htmlBody := fmt.Sprintf(`<!DOCTYPE html>
<html>
<head><meta charset="UTF-8"></head>
<body style="font-family: Arial, sans-serif; line-height: 1.6; color: #333;">
	<p>Bonjour %s,</p>
	<p>Votre compte enseignant est prêt. Importez une liste de mots depuis un document
	ou saisissez-la, puis partagez son code avec vos élèves.</p>
	<p><a href="%s">Ouvrir DicteeClash</a></p>
</body>
</html>
`, html.EscapeString(toName), s.appBaseURL)

	textBody := fmt.Sprintf(`Bonjour %s,

Votre compte enseignant est prêt. Importez une liste de mots depuis un document
ou saisissez-la, puis partagez son code avec vos élèves.

%s
`, toName, s.appBaseURL)

	return s.sendEmail(ctx, toEmail, subject, htmlBody, textBody)
}

func (s *EmailService) sendEmail(ctx context.Context, toEmail, subject, htmlBody, textBody string) error {
	fromAddress := s.fromEmail
	if s.fromName != "" {
		fromAddress = fmt.Sprintf("%s <%s>", s.fromName, s.fromEmail)
	}

	input := &sesv2.SendEmailInput{
		FromEmailAddress: aws.String(fromAddress),
		Destination: &types.Destination{
			ToAddresses: []string{toEmail},
		},
		Content: &types.EmailContent{
			Simple: &types.Message{
				Subject: &types.Content{
					Data:    aws.String(subject),
					Charset: aws.String("UTF-8"),
				},
				Body: &types.Body{
					Html: &types.Content{
						Data:    aws.String(htmlBody),
						Charset: aws.String("UTF-8"),
					},
					Text: &types.Content{
						Data:    aws.String(textBody),
						Charset: aws.String("UTF-8"),
					},
				},
			},
		},
	}

	result, err := s.client.SendEmail(ctx, input)
	if err != nil {
		return fmt.Errorf("failed to send email: %w", err)
	}

	log.Printf("Email sent to %s (message ID: %s)", toEmail, aws.ToString(result.MessageId))
	return nil
}
