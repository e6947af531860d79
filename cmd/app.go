package main

import (
	"context"
	"crypto/rand"
	"fmt"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/satriahrh/isyarat/adapters/translate"
	"github.com/satriahrh/isyarat/domain/repositories"
	"github.com/satriahrh/isyarat/internal/config"
	"github.com/satriahrh/isyarat/internal/sign"
	"github.com/satriahrh/isyarat/usecase"
)

// app bundles the services shared by every subcommand
type app struct {
	config      *config.Config
	logger      *zap.Logger
	catalog     *sign.Catalog
	translation *usecase.TranslationService
	conversion  *usecase.ConversionService
}

func newApp(ctx context.Context, opts *rootOptions) (*app, error) {
	cfg, err := config.Load(opts.envFile)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	logger, err := newLogger(cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create logger: %w", err)
	}

	catalog := sign.DefaultCatalog()
	if cfg.CatalogPath != "" {
		catalog, err = sign.LoadCatalogFile(cfg.CatalogPath)
		if err != nil {
			return nil, err
		}
		logger.Info("Loaded gesture catalog",
			zap.String("path", cfg.CatalogPath),
			zap.Int("gestures", catalog.Len()))
	}

	providers, err := newProviders(ctx, cfg, logger)
	if err != nil {
		return nil, err
	}

	translation := usecase.NewTranslationService(providers, logger)
	conversion := usecase.NewConversionService(translation, sign.NewTokenizer(sign.DefaultVocabulary()), logger)

	return &app{
		config:      cfg,
		logger:      logger,
		catalog:     catalog,
		translation: translation,
		conversion:  conversion,
	}, nil
}

func newLogger(cfg *config.Config) (*zap.Logger, error) {
	zapConfig := zap.NewProductionConfig()
	if cfg.IsDevelopment() {
		zapConfig = zap.NewDevelopmentConfig()
	}
	if cfg.LogLevel != "" {
		level, err := zapcore.ParseLevel(cfg.LogLevel)
		if err != nil {
			return nil, fmt.Errorf("LOG_LEVEL: %w", err)
		}
		zapConfig.Level = zap.NewAtomicLevelAt(level)
	}
	return zapConfig.Build()
}

// newProviders builds the translation strategies in configured order
func newProviders(ctx context.Context, cfg *config.Config, logger *zap.Logger) ([]repositories.TranslationProvider, error) {
	providers := make([]repositories.TranslationProvider, 0, len(cfg.Providers))
	for _, name := range cfg.Providers {
		switch name {
		case config.ProviderGoogle:
			providers = append(providers, translate.NewGoogleTranslate(translate.GoogleConfig{
				BaseURL: cfg.GoogleURL,
				Timeout: cfg.ProviderTimeout,
			}, logger))
		case config.ProviderLibre:
			providers = append(providers, translate.NewLibreTranslate(translate.LibreConfig{
				BaseURL: cfg.LibreURL,
				APIKey:  cfg.LibreAPIKey,
				Timeout: cfg.ProviderTimeout,
			}, logger))
		case config.ProviderGemini:
			gemini, err := translate.NewGeminiTranslate(ctx, translate.GeminiConfig{
				APIKey:  cfg.GeminiAPIKey,
				Model:   cfg.GeminiModel,
				Timeout: cfg.ProviderTimeout,
			}, logger)
			if err != nil {
				return nil, err
			}
			providers = append(providers, gemini)
		case config.ProviderMock:
			providers = append(providers, translate.NewMockTranslator(logger))
		default:
			return nil, fmt.Errorf("unknown translation provider %q", name)
		}
	}

	logger.Info("Translation providers configured", zap.Strings("providers", cfg.Providers))
	return providers, nil
}

// jwtSecret returns the configured secret or a random one that only lives
// as long as the process
func jwtSecret(cfg *config.Config, logger *zap.Logger) ([]byte, error) {
	if cfg.JWTSecret != "" {
		return []byte(cfg.JWTSecret), nil
	}

	secret := make([]byte, 32)
	if _, err := rand.Read(secret); err != nil {
		return nil, fmt.Errorf("failed to generate JWT secret: %w", err)
	}
	logger.Warn("JWT_SECRET not set, using a random secret; tokens will not survive a restart")
	return secret, nil
}
