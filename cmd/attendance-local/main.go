package main

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/alecthomas/kong"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/rs/cors"
	"github.com/rs/zerolog/log"

	"attendance-backend/internal/attendance"
	"attendance-backend/internal/config"
	"attendance-backend/internal/httpapi"
	"attendance-backend/internal/logger"
	"attendance-backend/internal/notify"
	"attendance-backend/internal/store"
	"attendance-backend/internal/telemetry"
)

var cli struct {
	Debug bool     `help:"Enable debug logging."`
	Serve ServeCmd `cmd:"" help:"Serve the attendance API locally against an in-memory store."`
	Seed  SeedCmd  `cmd:"" help:"Load a student roster JSON file into the Students table."`
}

// ServeCmd runs the three operations on a local HTTP server with a
// seeded roster, so the front end can be developed without AWS.
type ServeCmd struct {
	Listen  string `help:"HTTP listen address." default:"localhost:8080" env:"ATTENDANCE_LISTEN"`
	BaseURL string `help:"Base URL embedded in QR links." default:"http://localhost:8080" env:"ATTENDANCE_BASE_URL"`
	Roster  string `help:"Roster JSON file to seed, demo roster when omitted."`
}

func (c *ServeCmd) Run(ctx context.Context) error {
	db := store.NewMemoryStore()

	students, err := loadRoster(c.Roster)
	if err != nil {
		return err
	}
	for _, student := range students {
		if err := db.PutStudent(ctx, student); err != nil {
			return fmt.Errorf("seed student %s: %w", student.StudentID, err)
		}
	}
	log.Info().Int("students", len(students)).Msg("roster seeded")

	svc := attendance.NewService(db, telemetry.Noop{}, notify.Noop{}, c.BaseURL)
	api := httpapi.NewAPI(svc, telemetry.Noop{})

	server := &http.Server{
		Addr:              c.Listen,
		Handler:           cors.AllowAll().Handler(api.Router()),
		ReadHeaderTimeout: time.Second,
		ReadTimeout:       time.Minute,
		WriteTimeout:      time.Minute,
	}

	log.Info().Str("listen", c.Listen).Msg("serving attendance API")
	return server.ListenAndServe()
}

// SeedCmd writes roster fixtures to DynamoDB, standing in for the
// external roster-management process.
type SeedCmd struct {
	Roster        string `arg:"" help:"Roster JSON file: [{\"studentId\": ..., \"enrolledClasses\": [...]}]." type:"existingfile"`
	StudentsTable string `help:"Students table name." default:"Students" env:"STUDENTS_TABLE"`
}

func (c *SeedCmd) Run(ctx context.Context) error {
	students, err := loadRoster(c.Roster)
	if err != nil {
		return err
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx)
	if err != nil {
		return fmt.Errorf("load AWS config: %w", err)
	}

	cfg := config.FromEnv()
	cfg.StudentsTable = c.StudentsTable

	db := store.NewDynamoDBStore(dynamodb.NewFromConfig(awsCfg), store.Tables{
		Sessions:   cfg.SessionsTable,
		Students:   cfg.StudentsTable,
		Attendance: cfg.AttendanceTable,
	})

	for _, student := range students {
		if err := db.PutStudent(ctx, student); err != nil {
			return fmt.Errorf("seed student %s: %w", student.StudentID, err)
		}
		log.Info().Str("student_id", student.StudentID).Msg("student seeded")
	}

	return nil
}

type rosterEntry struct {
	StudentID       string   `json:"studentId"`
	EnrolledClasses []string `json:"enrolledClasses"`
}

// loadRoster reads roster fixtures, falling back to a small demo roster
// when no file is given
func loadRoster(path string) ([]*store.Student, error) {
	if path == "" {
		return []*store.Student{
			{StudentID: "stu1", EnrolledClasses: []string{"CS101", "CS202"}},
			{StudentID: "stu2", EnrolledClasses: []string{"CS101"}},
			{StudentID: "stu3", EnrolledClasses: []string{"MATH200"}},
		}, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read roster: %w", err)
	}

	var entries []rosterEntry
	if err := json.Unmarshal(data, &entries); err != nil {
		return nil, fmt.Errorf("parse roster: %w", err)
	}

	students := make([]*store.Student, 0, len(entries))
	for _, e := range entries {
		students = append(students, &store.Student{
			StudentID:       e.StudentID,
			EnrolledClasses: e.EnrolledClasses,
		})
	}

	return students, nil
}

func main() {
	ctx := context.Background()
	cmd := kong.Parse(&cli, kong.BindTo(ctx, (*context.Context)(nil)))
	log.Logger = logger.Setup(cli.Debug)
	err := cmd.Run()
	cmd.FatalIfErrorf(err)
}
