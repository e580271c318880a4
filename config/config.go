package config

import (
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

type Config struct {
	LogLevel slog.Level    `json:"LogLevel" yaml:"logLevel"`
	Listen   string        `json:"Listen" yaml:"listen" validate:"required"`
	Storage  StorageConfig `json:"Storage" yaml:"storage" validate:"required"`
	Gallery  GalleryConfig `json:"Gallery" yaml:"gallery" validate:"required"`
	Metrics  MetricsConfig `json:"Metrics" yaml:"metrics"`
}

type StorageConfig struct {
	Type    string         `json:"Type" yaml:"type" validate:"required,oneof=sqlite3 b2 s3"`
	Sqlite3 *Sqlite3Config `json:"Sqlite3" yaml:"sqlite3" validate:"omitempty"`
	B2      *B2Config      `json:"B2" yaml:"b2" validate:"omitempty"`
	S3      *S3Config      `json:"S3" yaml:"s3" validate:"omitempty"`
}

type Sqlite3Config struct {
	DSN string `json:"DSN" yaml:"dsn" validate:"required"`
}

type B2Config struct {
	BucketName     string `json:"BucketName" yaml:"bucketName" validate:"required,min=1"`
	Prefix         string `json:"Prefix" yaml:"prefix"`
	KeyID          string `json:"KeyID" yaml:"keyID"`
	ApplicationKey string `json:"ApplicationKey" yaml:"applicationKey"`
}

type S3Config struct {
	BucketName      string `json:"BucketName" yaml:"bucketName" validate:"required,min=1"`
	Region          string `json:"Region" yaml:"region" validate:"required,min=1"`
	Endpoint        string `json:"Endpoint" yaml:"endpoint" validate:"omitempty,url"`
	UsePathStyle    bool   `json:"UsePathStyle" yaml:"usePathStyle"`
	Prefix          string `json:"Prefix" yaml:"prefix"`
	AccessKeyID     string `json:"AccessKeyID" yaml:"accessKeyID"`
	SecretAccessKey string `json:"SecretAccessKey" yaml:"secretAccessKey"`
}

type GalleryConfig struct {
	CategoryID    int64         `json:"CategoryID" yaml:"categoryID" validate:"required"`
	SiteTitle     string        `json:"SiteTitle" yaml:"siteTitle" validate:"required"`
	SiteURL       string        `json:"SiteURL" yaml:"siteURL" validate:"required,url"`
	Placeholder   string        `json:"Placeholder" yaml:"placeholder"`
	CacheDuration time.Duration `json:"CacheDuration" yaml:"cacheDuration"`
	RefreshCron   string        `json:"RefreshCron" yaml:"refreshCron" validate:"required"`
}

type MetricsConfig struct {
	Enabled bool   `json:"Enabled" yaml:"enabled"`
	Path    string `json:"Path" yaml:"path" validate:"omitempty,startswith=/"`
}

func LoadConfig(path string, config *Config) error {
	fileBytes, err := os.ReadFile(path)
	if err != nil {
		return err
	}

	expandedFileBytes := []byte(os.ExpandEnv(string(fileBytes)))

	if err = yaml.Unmarshal(expandedFileBytes, config); err != nil {
		return err
	}

	return nil
}

func InitConfig(path string) (*Config, error) {
	config := &Config{}
	if err := LoadConfig(path, config); err != nil {
		return nil, err
	}

	validate := validator.New(validator.WithRequiredStructEnabled())
	if err := validate.Struct(config); err != nil {
		return nil, err
	}

	if err := config.Storage.checkBackend(); err != nil {
		return nil, err
	}

	if config.Gallery.CacheDuration == 0 {
		config.Gallery.CacheDuration = 5 * time.Minute
	}
	if config.Metrics.Path == "" {
		config.Metrics.Path = "/metrics"
	}

	return config, nil
}

func (s *StorageConfig) checkBackend() error {
	var present bool
	switch s.Type {
	case "sqlite3":
		present = s.Sqlite3 != nil
	case "b2":
		present = s.B2 != nil
	case "s3":
		present = s.S3 != nil
	}
	if !present {
		return fmt.Errorf("storage type '%s' is selected but its '%s' section is missing", s.Type, s.Type)
	}
	return nil
}
