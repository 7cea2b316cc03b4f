package types

type Config struct {
	Environment     string `envconfig:"ENVIRONMENT" default:"development"`
	ServerPort      uint   `envconfig:"SERVER_PORT" default:"8080"`
	SiteURL         string `envconfig:"SITE_URL" default:"http://localhost:8080"`
	ReadTimeoutSec  uint   `envconfig:"READ_TIMEOUT_SEC" default:"10"`
	WriteTimeoutSec uint   `envconfig:"WRITE_TIMEOUT_SEC" default:"30"`

	// Optional. When empty the built in service catalog is used.
	DatabaseURL string `envconfig:"DATABASE_URL"`

	// Cookie encryption keys (base64 encoded)
	// openssl rand -base64 32
	// to generate values
	CookieHashKey  string `envconfig:"COOKIE_HASH_KEY"`  // 32 or 64 bytes
	CookieBlockKey string `envconfig:"COOKIE_BLOCK_KEY"` // 16, 24, or 32 bytes

	// Attachment previews
	PreviewBackend string `envconfig:"PREVIEW_BACKEND" default:"memory"` // memory, s3 or redis
	PreviewTTLMin  uint   `envconfig:"PREVIEW_TTL_MIN" default:"60"`
	MaxUploadMB    int64  `envconfig:"MAX_UPLOAD_MB" default:"50"`
	S3BucketName   string `envconfig:"S3_BUCKET_NAME"`
	RedisAddr      string `envconfig:"REDIS_ADDR" default:"localhost:6379"`
	RedisPassword  string `envconfig:"REDIS_PASSWORD"`
	RedisDB        int    `envconfig:"REDIS_DB" default:"0"`

	// Lead delivery
	LeadTransport    string `envconfig:"LEAD_TRANSPORT" default:"log"` // log or ses
	LeadFromEmail    string `envconfig:"LEAD_FROM_EMAIL"`
	LeadToEmail      string `envconfig:"LEAD_TO_EMAIL"`
	SNSTopicARN      string `envconfig:"SNS_TOPIC_ARN"`
	SubmitTimeoutSec uint   `envconfig:"SUBMIT_TIMEOUT_SEC" default:"20"`
}

const (
	PreviewBackendMemory = "memory"
	PreviewBackendS3     = "s3"
	PreviewBackendRedis  = "redis"

	LeadTransportLog = "log"
	LeadTransportSES = "ses"
)
