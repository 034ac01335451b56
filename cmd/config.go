package cmd

type Config struct {
	HTTPPort         string
	DBHost           string
	DBPort           string
	DBUser           string
	DBPassword       string
	DBName           string
	DBSslMode        string
	NatsURL          string
	StanClusterID    string
	StanClientID     string
	EventSubject     string
	IssuanceAttempts string
	ResyncSchedule   string
}
