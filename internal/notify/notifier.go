// Package notify sends budget alerts over email and SMS.
package notify

import (
	"context"
	"fmt"

	sdkaws "github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/ses"
	sestypes "github.com/aws/aws-sdk-go-v2/service/ses/types"
	"github.com/aws/aws-sdk-go-v2/service/sns"

	"cost-optimizer/internal/common/config"
	"cost-optimizer/internal/common/logger"
	"cost-optimizer/internal/models"
)

type SESService interface {
	SendEmail(ctx context.Context, params *ses.SendEmailInput, optFns ...func(*ses.Options)) (*ses.SendEmailOutput, error)
}

type SNSService interface {
	Publish(ctx context.Context, params *sns.PublishInput, optFns ...func(*sns.Options)) (*sns.PublishOutput, error)
}

// BudgetNotifier alerts when monthly spend crosses the configured budget.
type BudgetNotifier struct {
	cfg       config.AlertConfig
	sesClient SESService
	snsClient SNSService
	logger    logger.Logger
}

func NewBudgetNotifier(ctx context.Context, cfg config.AlertConfig, log logger.Logger) (*BudgetNotifier, error) {
	notifier := &BudgetNotifier{
		cfg:    cfg,
		logger: log.WithFields(map[string]interface{}{"component": "budget-notifier"}),
	}

	if !cfg.Email.Enabled && !cfg.SMS.Enabled {
		return notifier, nil
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(cfg.AWS.Region))
	if err != nil {
		return nil, fmt.Errorf("load AWS config: %w", err)
	}

	if cfg.Email.Enabled {
		notifier.sesClient = ses.NewFromConfig(awsCfg)
	}
	if cfg.SMS.Enabled {
		notifier.snsClient = sns.NewFromConfig(awsCfg)
	}
	return notifier, nil
}

// CheckBudget sends alerts on every enabled channel when the summary's
// monthly cost exceeds the budget. Returns true when an alert fired.
func (n *BudgetNotifier) CheckBudget(ctx context.Context, summary *models.CostSummary) (bool, error) {
	if n.cfg.MonthlyBudgetINR <= 0 || summary.MonthlyCostINR <= n.cfg.MonthlyBudgetINR {
		return false, nil
	}

	subject := "Cloud cost budget exceeded"
	body := fmt.Sprintf(
		"Monthly cloud spend is ₹%.2f, over the ₹%.2f budget. Potential savings: ₹%.2f.",
		summary.MonthlyCostINR, n.cfg.MonthlyBudgetINR, summary.PotentialSavingsINR)

	var firstErr error

	if n.cfg.Email.Enabled && n.sesClient != nil {
		if err := n.sendEmail(ctx, subject, body); err != nil {
			n.logger.WithError(err).Error("budget email failed", nil)
			firstErr = err
		}
	}

	if n.cfg.SMS.Enabled && n.snsClient != nil {
		if err := n.sendSMS(ctx, body); err != nil {
			n.logger.WithError(err).Error("budget SMS failed", nil)
			if firstErr == nil {
				firstErr = err
			}
		}
	}

	return true, firstErr
}

func (n *BudgetNotifier) sendEmail(ctx context.Context, subject, body string) error {
	_, err := n.sesClient.SendEmail(ctx, &ses.SendEmailInput{
		Destination: &sestypes.Destination{
			ToAddresses: []string{n.cfg.Email.ToEmail},
		},
		Message: &sestypes.Message{
			Subject: &sestypes.Content{Data: sdkaws.String(subject)},
			Body: &sestypes.Body{
				Text: &sestypes.Content{Data: sdkaws.String(body)},
			},
		},
		Source: sdkaws.String(n.cfg.Email.FromEmail),
	})
	return err
}

func (n *BudgetNotifier) sendSMS(ctx context.Context, message string) error {
	_, err := n.snsClient.Publish(ctx, &sns.PublishInput{
		PhoneNumber: sdkaws.String(n.cfg.SMS.PhoneNumber),
		Message:     sdkaws.String(message),
	})
	return err
}
