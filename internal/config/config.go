package config

import (
	"log"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type Config struct {
	App struct {
		Port string `mapstructure:"port"`
		Env  string `mapstructure:"env"`
	} `mapstructure:"app"`
	DB struct {
		DSN string `mapstructure:"dsn"`
	} `mapstructure:"db"`
	Redis struct {
		Addr     string `mapstructure:"addr"`
		Password string `mapstructure:"password"`
	} `mapstructure:"redis"`
	Kafka struct {
		Brokers []string `mapstructure:"brokers"`
	} `mapstructure:"kafka"`
	Auth struct {
		JWTSecret     string        `mapstructure:"jwt_secret"`
		TokenLifespan time.Duration `mapstructure:"token_lifespan"`
	} `mapstructure:"auth"`
	Storage struct {
		BaseURL     string `mapstructure:"base_url"`
		ServiceKey  string `mapstructure:"service_key"`
		PhotoBucket string `mapstructure:"photo_bucket"`
		VideoBucket string `mapstructure:"video_bucket"`
	} `mapstructure:"storage"`
	Media struct {
		FFmpegPath  string `mapstructure:"ffmpeg_path"`
		FFprobePath string `mapstructure:"ffprobe_path"`
		TempDir     string `mapstructure:"temp_dir"`

		MaxImageEdge    int `mapstructure:"max_image_edge"`
		ThumbSmallWidth int `mapstructure:"thumb_small_width"`
		ThumbLargeWidth int `mapstructure:"thumb_large_width"`
		VideoThumbWidth int `mapstructure:"video_thumb_width"`

		VideoMaxDimension int `mapstructure:"video_max_dimension"`
		VideoBitrateKbps  int `mapstructure:"video_bitrate_kbps"`

		// EditCapSeconds is the interactive trim threshold; HardCapSeconds is
		// the absolute reject limit enforced just before upload. They are
		// deliberately separate knobs (the gap between them is product
		// behavior, not an accident of configuration).
		EditCapSeconds int `mapstructure:"edit_cap_seconds"`
		HardCapSeconds int `mapstructure:"hard_cap_seconds"`

		UploadAttempts   int `mapstructure:"upload_attempts"`
		BackoffBaseMs    int `mapstructure:"backoff_base_ms"`
		BatchConcurrency int `mapstructure:"batch_concurrency"`
	} `mapstructure:"media"`
}

func LoadConfig() (cfg Config, err error) {

	err = godotenv.Load()
	if err != nil {
		log.Println("warning: .env file not found, use default.")
	}

	viper.AddConfigPath(".")
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	if err = viper.ReadInConfig(); err != nil {
		log.Printf("note: config.yaml not found, read .env only. Error: %v", err)
	}

	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	viper.BindEnv("app.port", "APP_PORT")
	viper.BindEnv("app.env", "APP_ENV")
	viper.BindEnv("db.dsn", "DB_DSN")
	viper.BindEnv("redis.addr", "REDIS_ADDR")
	viper.BindEnv("redis.password", "REDIS_PASSWORD")
	viper.BindEnv("kafka.brokers", "KAFKA_BROKERS")
	viper.BindEnv("auth.jwt_secret", "JWT_SECRET")
	viper.BindEnv("auth.token_lifespan", "TOKEN_LIFESPAN")

	viper.BindEnv("storage.base_url", "STORAGE_BASE_URL")
	viper.BindEnv("storage.service_key", "STORAGE_SERVICE_KEY")
	viper.BindEnv("storage.photo_bucket", "STORAGE_PHOTO_BUCKET")
	viper.BindEnv("storage.video_bucket", "STORAGE_VIDEO_BUCKET")

	viper.BindEnv("media.ffmpeg_path", "FFMPEG_PATH")
	viper.BindEnv("media.ffprobe_path", "FFPROBE_PATH")
	viper.BindEnv("media.temp_dir", "MEDIA_TEMP_DIR")

	viper.SetDefault("app.port", "8080")
	viper.SetDefault("app.env", "development")
	viper.SetDefault("storage.photo_bucket", "spot-photos")
	viper.SetDefault("storage.video_bucket", "spot-videos")
	viper.SetDefault("media.ffmpeg_path", "ffmpeg")
	viper.SetDefault("media.ffprobe_path", "ffprobe")
	viper.SetDefault("media.temp_dir", "/tmp/spothop-media")
	viper.SetDefault("media.max_image_edge", 1920)
	viper.SetDefault("media.thumb_small_width", 300)
	viper.SetDefault("media.thumb_large_width", 800)
	viper.SetDefault("media.video_thumb_width", 480)
	viper.SetDefault("media.video_max_dimension", 1280)
	viper.SetDefault("media.video_bitrate_kbps", 2000)
	viper.SetDefault("media.edit_cap_seconds", 10)
	viper.SetDefault("media.hard_cap_seconds", 60)
	viper.SetDefault("media.upload_attempts", 3)
	viper.SetDefault("media.backoff_base_ms", 2000)
	viper.SetDefault("media.batch_concurrency", 1)

	err = viper.Unmarshal(&cfg)
	return
}
