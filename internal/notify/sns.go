package notify

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sns"
	"github.com/rs/zerolog/log"
)

// Notifier announces successful submissions. Implementations must be
// best-effort: failures are logged and discarded.
type Notifier interface {
	AttendanceMarked(ctx context.Context, studentID, classID, date string)
}

// SNS publishes to an SNS topic. An empty topic ARN disables publishing.
type SNS struct {
	client   *sns.Client
	topicARN string
}

// NewSNS creates an SNS notifier
func NewSNS(client *sns.Client, topicARN string) *SNS {
	return &SNS{
		client:   client,
		topicARN: topicARN,
	}
}

// AttendanceMarked publishes one notification describing the submission
func (n *SNS) AttendanceMarked(ctx context.Context, studentID, classID, date string) {
	if n.topicARN == "" {
		return
	}

	_, err := n.client.Publish(ctx, &sns.PublishInput{
		TopicArn: aws.String(n.topicARN),
		Subject:  aws.String(fmt.Sprintf("Attendance Marked - %s", classID)),
		Message:  aws.String(fmt.Sprintf("Student %s marked present for %s on %s", studentID, classID, date)),
	})
	if err != nil {
		log.Warn().Err(err).
			Str("student_id", studentID).
			Str("class_id", classID).
			Msg("notification publish failed")
	}
}

// Noop discards all notifications
type Noop struct{}

func (Noop) AttendanceMarked(ctx context.Context, studentID, classID, date string) {}
