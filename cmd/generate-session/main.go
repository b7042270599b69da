package main

import (
	"context"

	"github.com/aws/aws-lambda-go/lambda"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/cloudwatch"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/rs/zerolog/log"

	"attendance-backend/internal/attendance"
	"attendance-backend/internal/config"
	"attendance-backend/internal/httpapi"
	"attendance-backend/internal/logger"
	"attendance-backend/internal/notify"
	"attendance-backend/internal/store"
	"attendance-backend/internal/telemetry"
)

func main() {
	log.Logger = logger.Setup(false)

	ctx := context.Background()
	cfg := config.FromEnv()

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx)
	if err != nil {
		log.Fatal().Err(err).Msg("unable to load AWS config")
	}

	db := store.NewDynamoDBStore(dynamodb.NewFromConfig(awsCfg), store.Tables{
		Sessions:   cfg.SessionsTable,
		Students:   cfg.StudentsTable,
		Attendance: cfg.AttendanceTable,
	})
	metrics := telemetry.NewCloudWatch(cloudwatch.NewFromConfig(awsCfg))

	svc := attendance.NewService(db, metrics, notify.Noop{}, cfg.BaseURL)
	api := httpapi.NewAPI(svc, metrics)

	lambda.Start(api.GenerateSession)
}
