package observability

import (
	"context"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/cloudwatch"
	"github.com/aws/aws-sdk-go-v2/service/cloudwatch/types"
	"go.uber.org/zap"
)

// Metrics publishes operation metrics to CloudWatch. A nil client disables
// publication, so callers never need to branch on configuration.
type Metrics struct {
	client    *cloudwatch.Client
	namespace string
	logger    *zap.Logger
}

// NewMetrics creates a metrics recorder for the given namespace
func NewMetrics(namespace string, client *cloudwatch.Client, logger *zap.Logger) *Metrics {
	return &Metrics{
		client:    client,
		namespace: namespace,
		logger:    logger,
	}
}

// RecordOperation publishes a count and latency datum for one operation.
// Publication is fire-and-forget: the request is never blocked or failed by
// a metrics error.
func (m *Metrics) RecordOperation(operation string, duration time.Duration, success bool) {
	if m == nil || m.client == nil {
		return
	}

	outcome := "success"
	if !success {
		outcome = "failure"
	}

	dimensions := []types.Dimension{
		{Name: aws.String("Operation"), Value: aws.String(operation)},
		{Name: aws.String("Outcome"), Value: aws.String(outcome)},
	}
	now := time.Now()

	data := []types.MetricDatum{
		{
			MetricName: aws.String("OperationCount"),
			Value:      aws.Float64(1),
			Unit:       types.StandardUnitCount,
			Dimensions: dimensions,
			Timestamp:  aws.Time(now),
		},
		{
			MetricName: aws.String("OperationLatency"),
			Value:      aws.Float64(float64(duration.Milliseconds())),
			Unit:       types.StandardUnitMilliseconds,
			Dimensions: dimensions,
			Timestamp:  aws.Time(now),
		},
	}

	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()

		_, err := m.client.PutMetricData(ctx, &cloudwatch.PutMetricDataInput{
			Namespace:  aws.String(m.namespace),
			MetricData: data,
		})
		if err != nil && m.logger != nil {
			m.logger.Warn("Failed to publish metrics",
				zap.String("operation", operation),
				zap.Error(err),
			)
		}
	}()
}
