package config

import (
	"log"

	"github.com/ilyakaznacheev/cleanenv"
	"github.com/joho/godotenv"
)

type Config struct {
	MongoURI     string `env:"MONGODB_URI" env-default:"mongodb://127.0.0.1:27017"`
	MongoDBName  string `env:"MONGODB_NAME" env-default:"inkwell"`
	JWTSecret    string `env:"JWT_SECRET"`
	Port         string `env:"PORT" env-default:"5000"`
	ClientOrigin string `env:"CLIENT_ORIGIN" env-default:"http://localhost:3000"`
	UploadsDir   string `env:"UPLOADS_DIR" env-default:"uploads"`
}

// MustLoad reads configuration from the environment, loading a .env file
// first when one is present. Missing required settings are fatal.
func MustLoad() *Config {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	var cfg Config
	if err := cleanenv.ReadEnv(&cfg); err != nil {
		log.Fatalf("failed to read config: %s", err)
	}

	if cfg.JWTSecret == "" {
		log.Fatal("JWT_SECRET must be set")
	}

	return &cfg
}
