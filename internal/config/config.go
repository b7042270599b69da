package config

import "os"

// Config holds the environment-driven settings shared by the Lambda
// binaries. BaseURL may be empty, which yields site-relative QR URLs.
type Config struct {
	SessionsTable   string
	StudentsTable   string
	AttendanceTable string
	BaseURL         string
	TopicARN        string
}

// FromEnv reads configuration from the environment with the table-name
// defaults the deployment uses
func FromEnv() Config {
	return Config{
		SessionsTable:   getenv("SESSIONS_TABLE", "Sessions"),
		StudentsTable:   getenv("STUDENTS_TABLE", "Students"),
		AttendanceTable: getenv("ATTENDANCE_TABLE", "Attendance"),
		BaseURL:         os.Getenv("BASE_URL"),
		TopicARN:        os.Getenv("SNS_TOPIC_ARN"),
	}
}

func getenv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
