package queue

import (
	"context"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/sqs"

	"github.com/dmitrijs2005/loginetl/internal/models"
)

// Service limits for a single ReceiveMessage call.
const (
	maxSQSBatch = 10
	maxSQSWait  = 20 * time.Second
)

var (
	loadDefaultAWSConfig = config.LoadDefaultConfig

	newSQSClientFromConfig = func(cfg aws.Config, optFns ...func(*sqs.Options)) sqsAPI {
		return sqs.NewFromConfig(cfg, optFns...)
	}
)

// sqsAPI is the subset of *sqs.Client used here.
type sqsAPI interface {
	ListQueues(ctx context.Context, in *sqs.ListQueuesInput, optFns ...func(*sqs.Options)) (*sqs.ListQueuesOutput, error)
	ReceiveMessage(ctx context.Context, in *sqs.ReceiveMessageInput, optFns ...func(*sqs.Options)) (*sqs.ReceiveMessageOutput, error)
	DeleteMessage(ctx context.Context, in *sqs.DeleteMessageInput, optFns ...func(*sqs.Options)) (*sqs.DeleteMessageOutput, error)
}

// SQSOptions configures the SQS client. Empty credentials fall back to the
// default AWS credential chain; an empty endpoint uses the AWS endpoint for
// Region.
type SQSOptions struct {
	Region          string
	Endpoint        string
	AccessKeyID     string
	SecretAccessKey string
}

type SQSQueue struct {
	client sqsAPI
}

func NewSQSQueue(ctx context.Context, opts SQSOptions) (*SQSQueue, error) {
	loadOpts := []func(*config.LoadOptions) error{config.WithRegion(opts.Region)}
	if opts.AccessKeyID != "" {
		loadOpts = append(loadOpts, config.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(opts.AccessKeyID, opts.SecretAccessKey, "")))
	}

	cfg, err := loadDefaultAWSConfig(ctx, loadOpts...)
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}

	client := newSQSClientFromConfig(cfg, func(o *sqs.Options) {
		if opts.Endpoint != "" {
			o.BaseEndpoint = aws.String(opts.Endpoint)
		}
	})

	return &SQSQueue{client: client}, nil
}

func (q *SQSQueue) ListQueues(ctx context.Context) ([]string, error) {
	var (
		urls  []string
		token *string
	)
	for {
		out, err := q.client.ListQueues(ctx, &sqs.ListQueuesInput{NextToken: token})
		if err != nil {
			return nil, fmt.Errorf("list queues: %w", err)
		}
		urls = append(urls, out.QueueUrls...)
		if out.NextToken == nil || *out.NextToken == "" {
			return urls, nil
		}
		token = out.NextToken
	}
}

// Receive clamps maxMessages and wait to what one ReceiveMessage call
// accepts.
func (q *SQSQueue) Receive(ctx context.Context, queueURL string, maxMessages int, wait time.Duration) ([]models.RawMessage, error) {
	maxMessages = min(max(maxMessages, 1), maxSQSBatch)
	wait = min(max(wait, 0), maxSQSWait)

	out, err := q.client.ReceiveMessage(ctx, &sqs.ReceiveMessageInput{
		QueueUrl:            aws.String(queueURL),
		MaxNumberOfMessages: int32(maxMessages),
		WaitTimeSeconds:     int32(wait / time.Second),
	})
	if err != nil {
		return nil, fmt.Errorf("receive message: %w", err)
	}

	msgs := make([]models.RawMessage, 0, len(out.Messages))
	for _, m := range out.Messages {
		msgs = append(msgs, models.RawMessage{
			ID:       aws.ToString(m.MessageId),
			Body:     aws.ToString(m.Body),
			AckToken: aws.ToString(m.ReceiptHandle),
		})
	}
	return msgs, nil
}

func (q *SQSQueue) Delete(ctx context.Context, queueURL string, ackToken string) error {
	_, err := q.client.DeleteMessage(ctx, &sqs.DeleteMessageInput{
		QueueUrl:      aws.String(queueURL),
		ReceiptHandle: aws.String(ackToken),
	})
	if err != nil {
		return fmt.Errorf("delete message: %w", err)
	}
	return nil
}
