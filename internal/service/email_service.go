package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/sesv2"
	"github.com/aws/aws-sdk-go-v2/service/sesv2/types"
	"github.com/sirupsen/logrus"

	"vstepprep/internal/models"
	"vstepprep/internal/scoring"
)

// EmailService sends notification emails via Amazon SES
type EmailService struct {
	client     *sesv2.Client
	log        *logrus.Logger
	fromEmail  string
	fromName   string
	appBaseURL string
	enabled    bool
}

// NewEmailService creates a new email service. With no from address
// configured the service is disabled and sends become no-ops.
func NewEmailService(log *logrus.Logger, awsRegion, fromEmail, fromName, appBaseURL string) (*EmailService, error) {
	if fromEmail == "" {
		log.Info("email service disabled: SES_FROM_EMAIL not configured")
		return &EmailService{log: log, enabled: false}, nil
	}

	cfg, err := config.LoadDefaultConfig(context.TODO(),
		config.WithRegion(awsRegion),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	log.WithFields(logrus.Fields{
		"from":   fromEmail,
		"region": awsRegion,
	}).Info("email service enabled")

	return &EmailService{
		client:     sesv2.NewFromConfig(cfg),
		log:        log,
		fromEmail:  fromEmail,
		fromName:   fromName,
		appBaseURL: appBaseURL,
		enabled:    true,
	}, nil
}

// IsEnabled returns whether the email service is enabled
func (s *EmailService) IsEnabled() bool {
	return s.enabled
}

// SendSessionSummary emails the score summary for a completed session
func (s *EmailService) SendSessionSummary(ctx context.Context, user *models.User, sess *models.PracticeSession, res *scoring.SessionScoreResult, suggestions []string) error {
	if !s.enabled {
		s.log.WithField("to", user.Email).Debug("skipping session summary email, service disabled")
		return nil
	}

	subject := fmt.Sprintf("Kết quả luyện tập %s %s - %d/%d câu đúng",
		sess.Skill, sess.Level, res.CorrectCount, res.TotalQuestions)

	var tips strings.Builder
	for _, tip := range suggestions {
		fmt.Fprintf(&tips, "<li>%s</li>\n", tip)
	}

	resultsLink := fmt.Sprintf("%s/sessions/%s/results", s.appBaseURL, sess.ID)
	htmlBody := fmt.Sprintf(`
<!DOCTYPE html>
<html>
<head><meta charset="UTF-8"></head>
<body>
	<h2>Chào %s,</h2>
	<p>Bạn vừa hoàn thành một phiên luyện tập <strong>%s %s</strong>.</p>
	<ul>
		<li>Số câu đúng: %d/%d (%d%%)</li>
		<li>Điểm band: %d/10</li>
		<li>Điểm tích lũy: %d</li>
	</ul>
	<h3>Gợi ý</h3>
	<ul>
%s	</ul>
	<p><a href="%s">Xem chi tiết kết quả</a></p>
</body>
</html>`,
		user.Name, sess.Skill, sess.Level,
		res.CorrectCount, res.TotalQuestions, res.Percentage,
		res.BandScore, res.PointsEarned,
		tips.String(), resultsLink)

	textBody := fmt.Sprintf(
		"Chào %s,\n\nBạn vừa hoàn thành một phiên luyện tập %s %s.\nSố câu đúng: %d/%d (%d%%)\nĐiểm band: %d/10\n\nXem chi tiết: %s\n",
		user.Name, sess.Skill, sess.Level,
		res.CorrectCount, res.TotalQuestions, res.Percentage,
		res.BandScore, resultsLink)

	return s.send(ctx, user.Email, subject, htmlBody, textBody)
}

func (s *EmailService) send(ctx context.Context, toEmail, subject, htmlBody, textBody string) error {
	from := s.fromEmail
	if s.fromName != "" {
		from = fmt.Sprintf("%s <%s>", s.fromName, s.fromEmail)
	}

	input := &sesv2.SendEmailInput{
		FromEmailAddress: aws.String(from),
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

	if _, err := s.client.SendEmail(ctx, input); err != nil {
		return fmt.Errorf("failed to send email to %s: %w", toEmail, err)
	}

	s.log.WithFields(logrus.Fields{
		"to":      toEmail,
		"subject": subject,
	}).Info("email sent")
	return nil
}
