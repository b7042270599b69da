package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/expression"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/rs/zerolog/log"
)

// Tables holds the DynamoDB table names for the three stores
type Tables struct {
	Sessions   string
	Students   string
	Attendance string
}

// DynamoDBStore is a DynamoDB implementation of Store. The Attendance
// table is keyed (sessionId, studentId) so a conditional put can reject
// duplicate submissions without a preceding query.
type DynamoDBStore struct {
	client *dynamodb.Client
	tables Tables
}

// NewDynamoDBStore creates a new DynamoDB-backed store
func NewDynamoDBStore(client *dynamodb.Client, tables Tables) *DynamoDBStore {
	return &DynamoDBStore{
		client: client,
		tables: tables,
	}
}

// PutSession stores a new session
func (s *DynamoDBStore) PutSession(ctx context.Context, session *Session) error {
	item, err := attributevalue.MarshalMap(session)
	if err != nil {
		return fmt.Errorf("failed to marshal session: %w", err)
	}

	_, err = s.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName: aws.String(s.tables.Sessions),
		Item:      item,
	})
	if err != nil {
		return fmt.Errorf("failed to put session: %w", err)
	}

	log.Debug().
		Str("session_id", session.SessionID).
		Str("class_id", session.ClassID).
		Msg("session stored")

	return nil
}

// GetSession retrieves a session by id
func (s *DynamoDBStore) GetSession(ctx context.Context, sessionID string) (*Session, error) {
	result, err := s.client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName: aws.String(s.tables.Sessions),
		Key: map[string]types.AttributeValue{
			"sessionId": &types.AttributeValueMemberS{Value: sessionID},
		},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to get session: %w", err)
	}

	if result.Item == nil {
		return nil, ErrSessionNotFound
	}

	var session Session
	if err := attributevalue.UnmarshalMap(result.Item, &session); err != nil {
		return nil, fmt.Errorf("failed to unmarshal session: %w", err)
	}

	return &session, nil
}

// GetStudent retrieves a student by id
func (s *DynamoDBStore) GetStudent(ctx context.Context, studentID string) (*Student, error) {
	result, err := s.client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName: aws.String(s.tables.Students),
		Key: map[string]types.AttributeValue{
			"studentId": &types.AttributeValueMemberS{Value: studentID},
		},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to get student: %w", err)
	}

	if result.Item == nil {
		return nil, ErrStudentNotFound
	}

	var student Student
	if err := attributevalue.UnmarshalMap(result.Item, &student); err != nil {
		return nil, fmt.Errorf("failed to unmarshal student: %w", err)
	}

	return &student, nil
}

// PutStudent stores a roster entry, used only by the seeder
func (s *DynamoDBStore) PutStudent(ctx context.Context, student *Student) error {
	item, err := attributevalue.MarshalMap(student)
	if err != nil {
		return fmt.Errorf("failed to marshal student: %w", err)
	}

	_, err = s.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName: aws.String(s.tables.Students),
		Item:      item,
	})
	if err != nil {
		return fmt.Errorf("failed to put student: %w", err)
	}

	return nil
}

// PutAttendance stores a new attendance record. The ConditionExpression
// rejects a second record for the same (sessionId, studentId) pair.
func (s *DynamoDBStore) PutAttendance(ctx context.Context, att *Attendance) error {
	item, err := attributevalue.MarshalMap(att)
	if err != nil {
		return fmt.Errorf("failed to marshal attendance: %w", err)
	}

	_, err = s.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName:           aws.String(s.tables.Attendance),
		Item:                item,
		ConditionExpression: aws.String("attribute_not_exists(sessionId) AND attribute_not_exists(studentId)"),
	})
	if err != nil {
		var condErr *types.ConditionalCheckFailedException
		if errors.As(err, &condErr) {
			return ErrAlreadyMarked
		}
		return fmt.Errorf("failed to put attendance: %w", err)
	}

	log.Debug().
		Str("attendance_id", att.AttendanceID).
		Str("session_id", att.SessionID).
		Str("student_id", att.StudentID).
		Msg("attendance stored")

	return nil
}

// ListBySession retrieves all attendance records for a session
func (s *DynamoDBStore) ListBySession(ctx context.Context, sessionID string) ([]*Attendance, error) {
	keyEx := expression.Key("sessionId").Equal(expression.Value(sessionID))
	expr, err := expression.NewBuilder().WithKeyCondition(keyEx).Build()
	if err != nil {
		return nil, fmt.Errorf("failed to build expression: %w", err)
	}

	result, err := s.client.Query(ctx, &dynamodb.QueryInput{
		TableName:                 aws.String(s.tables.Attendance),
		KeyConditionExpression:    expr.KeyCondition(),
		ExpressionAttributeNames:  expr.Names(),
		ExpressionAttributeValues: expr.Values(),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to query attendance: %w", err)
	}

	records := make([]*Attendance, 0, len(result.Items))
	for _, item := range result.Items {
		var att Attendance
		if err := attributevalue.UnmarshalMap(item, &att); err != nil {
			log.Error().Err(err).Msg("failed to unmarshal attendance record, skipping")
			continue
		}
		records = append(records, &att)
	}

	return records, nil
}
