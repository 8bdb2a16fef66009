package cmd

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/vetlink-solutions/ms-go-clinic-payments/app/service"
	"github.com/vetlink-solutions/ms-go-clinic-payments/config"
)

var (
	workerMode bool
)

var expireCmd = &cobra.Command{
	Use:   "expire",
	Short: "Run expiration-related commands",
}

var expirePendingCmd = &cobra.Command{
	Use:   "pending",
	Short: "Mark long-running pending payments as failed",
	Run: func(_ *cobra.Command, _ []string) {
		runCommand(
			"expire_pending",
			func(cfg *config.Config) time.Duration { return cfg.Jobs.ExpirePendingInterval },
			func(s *service.PaymentService, ctx context.Context) error {
				return s.RunExpirePendingBatch(ctx)
			},
		)
	},
}

func init() {
	rootCmd.AddCommand(expireCmd)
	expireCmd.AddCommand(expirePendingCmd)

	rootCmd.PersistentFlags().BoolVar(&workerMode, "worker", false, "Run continuously using configured interval")
}

func runCommand(
	name string,
	intervalResolver func(cfg *config.Config) time.Duration,
	fn func(s *service.PaymentService, ctx context.Context) error,
) {
	cfg, paymentService, cleanup := mustCreatePaymentService()
	defer cleanup()

	if workerMode {
		runWorker(name, intervalResolver(cfg), paymentService, fn)
		return
	}

	ctx := context.Background()
	runJob(name, func() error { return fn(paymentService, ctx) })
}

func runWorker(
	name string,
	interval time.Duration,
	paymentService *service.PaymentService,
	fn func(s *service.PaymentService, ctx context.Context) error,
) {
	logger := logrus.WithField("job", name)
	logger.WithField("interval", interval.String()).Info("Worker started")

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	runJob(name, func() error { return fn(paymentService, context.Background()) })

	for {
		select {
		case <-ticker.C:
			runJob(name, func() error { return fn(paymentService, context.Background()) })
		case <-quit:
			logger.Info("Worker stopped")
			return
		}
	}
}

func runJob(name string, fn func() error) {
	logger := logrus.WithField("job", name)
	started := time.Now()
	if err := fn(); err != nil {
		logger.WithError(err).WithField("duration", time.Since(started).String()).Error("Job failed")
		return
	}
	logger.WithField("duration", time.Since(started).String()).Info("Job finished")
}
