package config

type DatabaseConfig struct {
	DSN string `yaml:"dsn"`
}

type RedisConfig struct {
	Addr     string `yaml:"addr"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
}

type S3Config struct {
	Bucket   string `yaml:"bucket"`
	Region   string `yaml:"region"`
	Endpoint string `yaml:"endpoint"`
	Local    bool   `yaml:"local"`
}

type JWTConfig struct {
	SecretKey       string `yaml:"secret_key"`
	AccessTokenTTL  string `yaml:"access_token_ttl"`
	RefreshTokenTTL string `yaml:"refresh_token_ttl"`
}

// GoogleConfig : доступ к Sheets/Drive API
// CredentialsFile — путь к json сервисного аккаунта (или OAuth токена),
// FolderName — имя контейнерной папки в Drive для response-таблиц
type GoogleConfig struct {
	CredentialsFile string `yaml:"credentials_file"`
	FolderName      string `yaml:"folder_name"`
	Enabled         bool   `yaml:"enabled"`
}

type WebhookConfig struct {
	URL     string `yaml:"url"`
	Timeout string `yaml:"timeout"`
}

type AdminConfig struct {
	AdminToken string `yaml:"admin_token"`
}

type TTL struct {
	// S3AndRedis : срок жизни presigned URL и кэша форм, в секундах
	S3AndRedis int `yaml:"s3_and_redis"`
}
