package telemetry

import (
	"context"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/cloudwatch"
	"github.com/aws/aws-sdk-go-v2/service/cloudwatch/types"
	"github.com/rs/zerolog/log"
)

const namespace = "AttendanceSystem"

// Publisher emits operational counters. Implementations must be
// best-effort: a failed publish is logged and discarded, never returned.
type Publisher interface {
	QRCodeGenerated(ctx context.Context, classID string)
	AttendanceMarked(ctx context.Context, classID, sessionID string)
	Error(ctx context.Context)
}

// CloudWatch publishes counters to CloudWatch metrics
type CloudWatch struct {
	client *cloudwatch.Client
}

// NewCloudWatch creates a CloudWatch publisher
func NewCloudWatch(client *cloudwatch.Client) *CloudWatch {
	return &CloudWatch{client: client}
}

// QRCodeGenerated counts one session issuance for a class
func (p *CloudWatch) QRCodeGenerated(ctx context.Context, classID string) {
	p.put(ctx, "QRCodesGenerated", []types.Dimension{
		{Name: aws.String("ClassID"), Value: aws.String(classID)},
	})
}

// AttendanceMarked counts one successful submission
func (p *CloudWatch) AttendanceMarked(ctx context.Context, classID, sessionID string) {
	p.put(ctx, "AttendanceMarked", []types.Dimension{
		{Name: aws.String("ClassID"), Value: aws.String(classID)},
		{Name: aws.String("SessionID"), Value: aws.String(sessionID)},
	})
}

// Error counts one unexpected handler failure
func (p *CloudWatch) Error(ctx context.Context) {
	p.put(ctx, "Errors", nil)
}

func (p *CloudWatch) put(ctx context.Context, name string, dims []types.Dimension) {
	_, err := p.client.PutMetricData(ctx, &cloudwatch.PutMetricDataInput{
		Namespace: aws.String(namespace),
		MetricData: []types.MetricDatum{
			{
				MetricName: aws.String(name),
				Value:      aws.Float64(1),
				Unit:       types.StandardUnitCount,
				Timestamp:  aws.Time(time.Now()),
				Dimensions: dims,
			},
		},
	})
	if err != nil {
		log.Warn().Err(err).Str("metric", name).Msg("metric publish failed")
	}
}

// Noop discards all counters, used in tests and the local harness
type Noop struct{}

func (Noop) QRCodeGenerated(ctx context.Context, classID string) {}

func (Noop) AttendanceMarked(ctx context.Context, classID, sessionID string) {}

func (Noop) Error(ctx context.Context) {}
