package config

const (
	EnvMongoURI          = "MONGO_URI"
	EnvMongoDatabaseName = "MONGO_DATABASE_NAME"
	EnvMongoConnTimeout  = "MONGO_CONN_TIMEOUT"

	EnvPort     = "PORT"
	EnvLogLevel = "LOG_LEVEL"

	EnvJWTSecret = "JWT_SECRET"

	EnvKafkaBrokers     = "KAFKA_BROKERS"
	EnvNotifyTopic      = "NOTIFY_TOPIC"
	EnvNotifyTimeout    = "NOTIFY_TIMEOUT"
	EnvCORSOrigins      = "CORS_ALLOWED_ORIGINS"
	EnvRateLimitRPS     = "RATE_LIMIT_RPS"
	EnvRateLimitBurst   = "RATE_LIMIT_BURST"
	EnvRequestTimeout   = "REQUEST_TIMEOUT"
	EnvMaxRequestSize   = "MAX_REQUEST_SIZE"
	EnvSlotLockTTL      = "SLOT_LOCK_TTL"
	EnvDefaultSlotCap   = "DEFAULT_SLOT_CAPACITY"
	EnvOverlapScanLimit = "OVERLAP_SCAN_LIMIT"

	EnvReadTimeout     = "READ_TIMEOUT"
	EnvWriteTimeout    = "WRITE_TIMEOUT"
	EnvIdleTimeout     = "IDLE_TIMEOUT"
	EnvShutdownTimeout = "SHUTDOWN_TIMEOUT"
)
