package sns

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/sns"
	"github.com/aws/aws-sdk-go-v2/service/sns/types"

	"github.com/stress-shield-api/internal/config"
	"github.com/stress-shield-api/internal/domain"
	"github.com/stress-shield-api/internal/realtime"
)

type publishAPI interface {
	Publish(ctx context.Context, params *sns.PublishInput, optFns ...func(*sns.Options)) (*sns.PublishOutput, error)
}

// AlertForwarder publishes stress notifications to an SNS topic so
// downstream subscribers (email, SMS, queues) can act on them.
type AlertForwarder struct {
	client   publishAPI
	topicARN string
}

func NewClient(ctx context.Context, cfg *config.Config) (*sns.Client, error) {
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(cfg.SNSRegion))
	if err != nil {
		return nil, fmt.Errorf("load AWS config for SNS: %w", err)
	}
	var opts []func(*sns.Options)
	if cfg.AWSEndpointURL != "" {
		opts = append(opts, func(o *sns.Options) {
			o.BaseEndpoint = aws.String(cfg.AWSEndpointURL)
		})
	}
	return sns.NewFromConfig(awsCfg, opts...), nil
}

func NewAlertForwarder(client publishAPI, topicARN string) *AlertForwarder {
	return &AlertForwarder{client: client, topicARN: topicARN}
}

func (f *AlertForwarder) Publish(ctx context.Context, userID string, n domain.StressNotification) error {
	frame, err := realtime.EncodeNotification(n)
	if err != nil {
		return err
	}
	_, err = f.client.Publish(ctx, &sns.PublishInput{
		TopicArn: aws.String(f.topicARN),
		Subject:  aws.String(fmt.Sprintf("%s stress alert", n.StressLevel)),
		Message:  aws.String(string(frame)),
		MessageAttributes: map[string]types.MessageAttributeValue{
			"user_id": {
				DataType:    aws.String("String"),
				StringValue: aws.String(userID),
			},
			"stress_level": {
				DataType:    aws.String("String"),
				StringValue: aws.String(string(n.StressLevel)),
			},
		},
	})
	if err != nil {
		return fmt.Errorf("sns publish: %w", err)
	}
	return nil
}
