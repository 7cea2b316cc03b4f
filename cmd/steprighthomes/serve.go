package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"steprighthomes/internal/catalog"
	"steprighthomes/internal/db"
	"steprighthomes/internal/intake"
	"steprighthomes/internal/leads"
	"steprighthomes/internal/preview"
	"steprighthomes/internal/server"
	"steprighthomes/internal/store"
	"steprighthomes/pkg/types"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/ses"
	"github.com/aws/aws-sdk-go-v2/service/sns"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
	"github.com/urfave/cli/v2"
)

const (
	sweepInterval   = 5 * time.Minute
	catalogCacheTTL = 5 * time.Minute
)

var serveCommand = &cli.Command{
	Name:   "serve",
	Usage:  "Start the HTTP server",
	Action: serve,
}

func serve(cCtx *cli.Context) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	logger := logrus.New()
	logger.SetFormatter(&logrus.JSONFormatter{})

	config, err := loadConfig(cCtx)
	if err != nil {
		return err
	}

	var awsConfig aws.Config
	if needsAWS(config) {
		awsConfig, err = loadAWSConfig(ctx)
		if err != nil {
			return err
		}
	}

	var pool *pgxpool.Pool
	if config.DatabaseURL != "" {
		pool, err = db.Connect(ctx, config)
		if err != nil {
			return err
		}
		defer pool.Close()
	}

	previews, err := buildPreviewStore(ctx, config, awsConfig, logger)
	if err != nil {
		return err
	}

	sender := buildSender(config, awsConfig, logger)

	var services catalog.Source = catalog.Static{}
	if pool != nil {
		services = catalog.NewPostgres(store.NewServiceRepository(pool), catalogCacheTTL)
	}

	drafts := intake.NewRegistry(intake.Config{
		Store:         previews,
		Sender:        sender,
		SubmitTimeout: time.Duration(config.SubmitTimeoutSec) * time.Second,
		IdleTTL:       time.Duration(config.PreviewTTLMin) * time.Minute,
		Logger:        logger,
	})
	go drafts.Run(ctx, sweepInterval)

	srv, err := server.New(config, logger, services, drafts)
	if err != nil {
		return err
	}

	go func() {
		logger.WithField("port", config.ServerPort).Infof("server starting http://localhost:%d", config.ServerPort)
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.WithError(err).Fatal("server failed")
		}
	}()

	<-ctx.Done()
	logger.Info("shutdown signal received")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	err = srv.Stop(shutdownCtx)
	drafts.Shutdown(shutdownCtx)
	return err
}

func buildPreviewStore(ctx context.Context, config *types.Config, awsConfig aws.Config, logger *logrus.Logger) (intake.PreviewStore, error) {
	ttl := time.Duration(config.PreviewTTLMin) * time.Minute

	switch config.PreviewBackend {
	case types.PreviewBackendS3:
		logger.WithField("bucket", config.S3BucketName).Info("staging previews in s3")
		return preview.NewS3Store(s3.NewFromConfig(awsConfig), config.S3BucketName, ttl), nil

	case types.PreviewBackendRedis:
		client := redis.NewClient(&redis.Options{
			Addr:     config.RedisAddr,
			Password: config.RedisPassword,
			DB:       config.RedisDB,
		})
		if err := client.Ping(ctx).Err(); err != nil {
			return nil, fmt.Errorf("failed to connect to redis: %w", err)
		}
		logger.WithField("addr", config.RedisAddr).Info("staging previews in redis")
		return preview.NewRedisStore(client, ttl), nil
	}

	memory := preview.NewMemoryStore(ttl)
	go memory.Run(ctx, sweepInterval)
	return memory, nil
}

// buildSender picks the transport that must accept a lead for the submit to
// succeed, plus any best effort notifiers.
func buildSender(config *types.Config, awsConfig aws.Config, logger *logrus.Logger) leads.Sender {
	var primary leads.Sender = leads.NewLogSender(logger)
	if config.LeadTransport == types.LeadTransportSES {
		primary = leads.NewSESSender(ses.NewFromConfig(awsConfig), config.LeadFromEmail, config.LeadToEmail)
	}

	fanout := &leads.Fanout{Primary: primary, Logger: logger}
	if config.SNSTopicARN != "" {
		fanout.Notifiers = append(fanout.Notifiers, leads.NewSNSNotifier(sns.NewFromConfig(awsConfig), config.SNSTopicARN))
	}

	return fanout
}
