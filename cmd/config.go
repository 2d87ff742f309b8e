package cmd

type Config struct {
	HTTPPort   string
	DBHost     string
	DBPort     string
	DBUser     string
	DBPassword string
	DBName     string
	DBSslMode  string

	RedisAddr     string
	RedisPassword string

	KafkaHost            string
	KafkaTransitionTopic string

	GatewayBaseURL     string
	GatewayAPIKey      string
	GatewayCallbackURL string

	IdentityBaseURL string
	IdentityAPIKey  string

	GeocoderBaseURL string

	EmailProviderURL    string
	EmailProviderAPIKey string
	SMSProviderURL      string
	SMSProviderAPIKey   string
	ChatProviderURL     string
	ChatProviderAPIKey  string

	ZoneMinLatitude  float64
	ZoneMaxLatitude  float64
	ZoneMinLongitude float64
	ZoneMaxLongitude float64

	CartIncentiveCode string
}
