package di

import (
	"context"
	"time"

	"todobackend/application/ports"
	"todobackend/application/services"
	"todobackend/infrastructure/config"
	"todobackend/infrastructure/messaging/eventbridge"
	dynamodbrepo "todobackend/infrastructure/persistence/dynamodb"
	s3storage "todobackend/infrastructure/storage/s3"
	"todobackend/pkg/observability"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	awscloudwatch "github.com/aws/aws-sdk-go-v2/service/cloudwatch"
	awsdynamodb "github.com/aws/aws-sdk-go-v2/service/dynamodb"
	awseventbridge "github.com/aws/aws-sdk-go-v2/service/eventbridge"
	awss3 "github.com/aws/aws-sdk-go-v2/service/s3"
	"go.uber.org/zap"
)

// ProvideLogger creates a new logger instance
func ProvideLogger(cfg *config.Config) (*zap.Logger, error) {
	if cfg.IsProduction() {
		return zap.NewProduction()
	}
	return zap.NewDevelopment()
}

// ProvideAWSConfig creates AWS configuration. With tracing enabled every
// client built from it emits X-Ray subsegments.
func ProvideAWSConfig(ctx context.Context, cfg *config.Config) (aws.Config, error) {
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx,
		awsconfig.WithRegion(cfg.AWSRegion),
	)
	if err != nil {
		return aws.Config{}, err
	}

	if cfg.EnableTracing {
		observability.InstrumentAWSClients(&awsCfg)
	}

	return awsCfg, nil
}

// ProvideDynamoDBClient creates a DynamoDB client
func ProvideDynamoDBClient(awsCfg aws.Config) *awsdynamodb.Client {
	return awsdynamodb.NewFromConfig(awsCfg)
}

// ProvideS3PresignClient creates an S3 presign client
func ProvideS3PresignClient(awsCfg aws.Config) *awss3.PresignClient {
	return awss3.NewPresignClient(awss3.NewFromConfig(awsCfg))
}

// ProvideEventBridgeClient creates an EventBridge client
func ProvideEventBridgeClient(awsCfg aws.Config) *awseventbridge.Client {
	return awseventbridge.NewFromConfig(awsCfg)
}

// ProvideCloudWatchClient creates a CloudWatch client
func ProvideCloudWatchClient(awsCfg aws.Config) *awscloudwatch.Client {
	return awscloudwatch.NewFromConfig(awsCfg)
}

// ProvideTodoRepository creates the todo storage gateway
func ProvideTodoRepository(client *awsdynamodb.Client, cfg *config.Config, logger *zap.Logger) ports.TodoRepository {
	return dynamodbrepo.NewTodoRepository(
		client,
		cfg.TodosTable,
		cfg.NameIndex,
		logger,
	)
}

// ProvideAttachmentStore creates the attachment URL issuer
func ProvideAttachmentStore(presigner *awss3.PresignClient, cfg *config.Config, logger *zap.Logger) ports.AttachmentStore {
	return s3storage.NewAttachmentStore(
		presigner,
		cfg.AttachmentBucket,
		time.Duration(cfg.UploadURLExpiration)*time.Second,
		logger,
	)
}

// ProvideEventPublisher creates the change event publisher, or nil when
// event publication is disabled
func ProvideEventPublisher(client *awseventbridge.Client, cfg *config.Config, logger *zap.Logger) ports.EventPublisher {
	if !cfg.EnableEvents || cfg.EventBusName == "" {
		return nil
	}
	return eventbridge.NewPublisher(client, cfg.EventBusName, logger)
}

// ProvideMetrics creates the metrics recorder, disabled when metrics are off
func ProvideMetrics(client *awscloudwatch.Client, cfg *config.Config, logger *zap.Logger) *observability.Metrics {
	if !cfg.EnableMetrics {
		return observability.NewMetrics(cfg.MetricsNamespace, nil, logger)
	}
	return observability.NewMetrics(cfg.MetricsNamespace, client, logger)
}

// ProvideTodoService creates the todo service
func ProvideTodoService(
	repo ports.TodoRepository,
	attachments ports.AttachmentStore,
	events ports.EventPublisher,
	metrics *observability.Metrics,
	logger *zap.Logger,
) *services.TodoService {
	return services.NewTodoService(repo, attachments, events, metrics, logger)
}
