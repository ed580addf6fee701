package tools

import (
	"context"
	"encoding/json"
	"fmt"

	"frontdesk-workers/internal/common/errors"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sns"
	"github.com/aws/aws-sdk-go-v2/service/sns/types"
)

// CallerInfo is the record built by the collect_caller_info tool.
type CallerInfo struct {
	Name      string `json:"name"`
	Email     string `json:"email"`
	Phone     string `json:"phone"`
	Purpose   string `json:"purpose"`
	Timestamp string `json:"timestamp"`
}

func (c CallerInfo) String() string {
	return fmt.Sprintf("{name: %s, email: %s, phone: %s, purpose: %s, timestamp: %s}",
		c.Name, c.Email, c.Phone, c.Purpose, c.Timestamp)
}

type CallerNotifier interface {
	Notify(ctx context.Context, info CallerInfo) error
}

type SNSService interface {
	Publish(ctx context.Context, params *sns.PublishInput, optFns ...func(*sns.Options)) (*sns.PublishOutput, error)
}

// SNSCallerNotifier publishes collected caller details to a topic for follow-up.
type SNSCallerNotifier struct {
	client   SNSService
	topicARN string
}

func NewSNSCallerNotifier(client SNSService, topicARN string) *SNSCallerNotifier {
	return &SNSCallerNotifier{client: client, topicARN: topicARN}
}

func (n *SNSCallerNotifier) Notify(ctx context.Context, info CallerInfo) error {
	body, err := json.Marshal(info)
	if err != nil {
		return fmt.Errorf("encode caller info: %w", err)
	}

	_, err = n.client.Publish(ctx, &sns.PublishInput{
		TopicArn: aws.String(n.topicARN),
		Subject:  aws.String("Caller information collected"),
		Message:  aws.String(string(body)),
		MessageAttributes: map[string]types.MessageAttributeValue{
			"purpose": {
				DataType:    aws.String("String"),
				StringValue: aws.String(nonEmpty(info.Purpose, "unspecified")),
			},
		},
	})
	if err != nil {
		return errors.NewNotificationSendFailedError("sns", err)
	}
	return nil
}

func nonEmpty(s, fallback string) string {
	if s == "" {
		return fallback
	}
	return s
}
