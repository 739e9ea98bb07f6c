// Package di wires the application together with explicit constructor
// injection. Everything is built once per process and passed down; nothing
// is a package-level singleton, so tests can substitute in-memory fakes.
package di

import (
	"context"

	"todobackend/application/ports"
	"todobackend/application/services"
	"todobackend/infrastructure/config"
	"todobackend/pkg/observability"

	"go.uber.org/zap"
)

// Container holds all application dependencies
type Container struct {
	Config      *config.Config
	Logger      *zap.Logger
	TodoRepo    ports.TodoRepository
	Attachments ports.AttachmentStore
	Events      ports.EventPublisher
	Metrics     *observability.Metrics
	TodoService *services.TodoService
}

// NewContainer creates a fully wired container
func NewContainer(ctx context.Context, cfg *config.Config) (*Container, error) {
	logger, err := ProvideLogger(cfg)
	if err != nil {
		return nil, err
	}

	awsCfg, err := ProvideAWSConfig(ctx, cfg)
	if err != nil {
		return nil, err
	}

	dynamoClient := ProvideDynamoDBClient(awsCfg)
	presignClient := ProvideS3PresignClient(awsCfg)
	eventBridgeClient := ProvideEventBridgeClient(awsCfg)
	cloudWatchClient := ProvideCloudWatchClient(awsCfg)

	repo := ProvideTodoRepository(dynamoClient, cfg, logger)
	attachments := ProvideAttachmentStore(presignClient, cfg, logger)
	events := ProvideEventPublisher(eventBridgeClient, cfg, logger)
	metrics := ProvideMetrics(cloudWatchClient, cfg, logger)

	return &Container{
		Config:      cfg,
		Logger:      logger,
		TodoRepo:    repo,
		Attachments: attachments,
		Events:      events,
		Metrics:     metrics,
		TodoService: ProvideTodoService(repo, attachments, events, metrics, logger),
	}, nil
}
