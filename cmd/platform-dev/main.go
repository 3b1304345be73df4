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

	"github.com/spf13/cobra"

	"sessiongate/internal/backend"
	"sessiongate/internal/domain"
	"sessiongate/internal/logging"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	cfg := backend.DefaultConfig()
	var (
		addr          string
		challengeType string
		logLevel      string
		logFormat     string
	)

	cmd := &cobra.Command{
		Use:          "platform-dev",
		Short:        "In-memory session platform for local development",
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			logger, err := logging.New(cmd.ErrOrStderr(), logLevel, logFormat)
			if err != nil {
				return err
			}
			cfg.Logger = logger
			cfg.ChallengeType = domain.ParseBotDetectionType(challengeType)
			if cfg.ChallengeType == domain.BotDetectionUnspecified {
				return fmt.Errorf("unknown challenge type %q", challengeType)
			}

			srv, err := backend.New(cfg)
			if err != nil {
				return err
			}
			httpSrv := &http.Server{
				Addr:              addr,
				Handler:           srv.Handler(),
				ReadHeaderTimeout: 10 * time.Second,
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			errc := make(chan error, 1)
			go func() { errc <- httpSrv.ListenAndServe() }()
			logger.Info("platform listening",
				"addr", addr,
				"challenge_type", cfg.ChallengeType.String(),
				"forced_retries", cfg.ForcedRetries,
			)

			select {
			case err := <-errc:
				if errors.Is(err, http.ErrServerClosed) {
					return nil
				}
				return err
			case <-ctx.Done():
			}
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			return httpSrv.Shutdown(shutdownCtx)
		},
	}

	f := cmd.Flags()
	f.StringVar(&addr, "addr", "127.0.0.1:8080", "listen address")
	f.StringVar(&challengeType, "challenge-type", cfg.ChallengeType.String(), "TURNSTILE or PROOF_OF_WORK")
	f.BoolVar(&cfg.NeedChallenge, "need-challenge", cfg.NeedChallenge, "require a challenge for new sessions")
	f.IntVar(&cfg.ForcedRetries, "forced-retries", 0, "answer the first N valid solutions with retry=true")
	f.IntVar(&cfg.PoWDifficulty, "difficulty", cfg.PoWDifficulty, "proof-of-work leading zero bits")
	f.DurationVar(&cfg.ChallengeTTL, "challenge-ttl", cfg.ChallengeTTL, "challenge lifetime")
	f.StringVar(&cfg.TurnstileSiteKey, "turnstile-site-key", cfg.TurnstileSiteKey, "site key sent with TURNSTILE challenges")
	f.StringVar(&cfg.TurnstileToken, "turnstile-token", "", "only accept this Turnstile token (default: any)")
	f.Float64Var(&cfg.ChallengeRPS, "challenge-rps", cfg.ChallengeRPS, "challenges per second per device (0 disables)")
	f.IntVar(&cfg.ChallengeBurst, "challenge-burst", cfg.ChallengeBurst, "challenge burst per device")
	f.StringVar(&logLevel, "log-level", "info", "debug, info, warn or error")
	f.StringVar(&logFormat, "log-format", "text", "text or json")
	return cmd
}
