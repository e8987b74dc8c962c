package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	router "github.com/dkeye/VideoClient/internal/adapters/http"
	engine "github.com/dkeye/VideoClient/internal/adapters/signal"
	"github.com/dkeye/VideoClient/internal/app/orch"
	"github.com/dkeye/VideoClient/internal/auth"
	"github.com/dkeye/VideoClient/internal/config"
	"github.com/dkeye/VideoClient/internal/core"
	"github.com/dkeye/VideoClient/internal/domain"
)

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	// Initialize zerolog global logger early so config.Load can use it.
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})
	zerolog.SetGlobalLevel(zerolog.InfoLevel)

	flags := config.Flags()
	if err := flags.Parse(os.Args[1:]); err != nil {
		log.Fatal().Err(err).Msg("bad flags")
	}
	cfg, err := config.Load(flags)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load config")
	}
	if lvl, err := zerolog.ParseLevel(cfg.LogLevel); err == nil {
		zerolog.SetGlobalLevel(lvl)
	}
	if err := cfg.Validate(); err != nil {
		log.Fatal().Err(err).Msg("invalid config")
	}

	info, err := sessionInfo(cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to sign session")
	}

	quality, err := core.ParseVideoQuality(cfg.Render.Quality)
	if err != nil {
		log.Warn().Err(err).Msg("falling back to 360p")
	}

	dialCtx, dialCancel := context.WithTimeout(ctx, cfg.Engine.DialTimeout)
	eng, err := engine.Dial(dialCtx, cfg.Engine.URL, nil, engine.Options{
		SessionID:     info.ID,
		WriteTimeout:  cfg.Engine.WriteTimeout,
		SendBuffer:    cfg.Engine.SendBuffer,
		ToastInterval: 2 * time.Second,
	})
	dialCancel()
	if err != nil {
		log.Fatal().Err(err).Str("url", cfg.Engine.URL).Msg("failed to reach session engine")
	}
	defer eng.Close()

	sess := orch.New(orch.Options{
		Info:                info,
		Surface:             core.Surface(cfg.Render.Surface),
		Quality:             quality,
		InitialGeometry:     domain.Geometry{Width: cfg.Render.Width, Height: cfg.Render.Height},
		CrossOriginIsolated: cfg.CrossOriginIsolated,
		JoinTimeout:         cfg.Engine.JoinTimeout,
	}, eng, eng, func() {
		log.Info().Msg("session closed, exiting")
		cancel()
	})

	var srv *http.Server
	if cfg.StatusAddr != "" {
		srv = &http.Server{
			Addr:              cfg.StatusAddr,
			Handler:           router.SetupRouter(cfg, sess),
			ReadHeaderTimeout: 5 * time.Second,
		}
		go func() {
			log.Info().Str("addr", cfg.StatusAddr).Msg("status API started")
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				log.Error().Err(err).Msg("server error")
			}
		}()
	}

	runCtx, stopRun := context.WithCancel(context.Background())
	defer stopRun()
	runDone := make(chan error, 1)
	go func() { runDone <- sess.Run(runCtx) }()

	var runErr error
	select {
	case runErr = <-runDone:
	case <-ctx.Done():
		runErr = leave(sess, stopRun, runDone)
	}
	if runErr != nil && !errors.Is(runErr, context.Canceled) && !errors.Is(runErr, core.ErrClosed) {
		log.Error().Err(runErr).Msg("session ended")
	}

	log.Info().Msg("Shutting down")
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	if srv != nil {
		if err := srv.Shutdown(shutdownCtx); err != nil {
			log.Error().Err(err).Msg("Server forced to shutdown")
		}
	}
	log.Info().Msg("Client exited gracefully")
}

// leave asks the engine to leave while the session loop still runs, waits for
// the resulting close to be processed, then stops the loop.
func leave(sess *orch.Orchestrator, stopRun context.CancelFunc, runDone <-chan error) error {
	leaveCtx, leaveCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer leaveCancel()

	select {
	case <-sess.Closed():
	default:
		if err := sess.Leave(leaveCtx, false); err != nil {
			if !errors.Is(err, core.ErrNotJoined) {
				log.Warn().Err(err).Msg("leave on shutdown")
			}
		} else {
			select {
			case <-sess.Closed():
			case <-leaveCtx.Done():
				log.Warn().Msg("session close not observed after leave")
			}
		}
	}
	stopRun()
	return <-runDone
}

func sessionInfo(cfg *config.Config) (domain.SessionInfo, error) {
	info := domain.SessionInfo{
		Topic:        cfg.Session.Topic,
		Name:         cfg.Session.Name,
		Password:     cfg.Session.Password,
		Signature:    cfg.Session.Signature,
		GroupSession: cfg.Session.GroupSession,
	}
	if info.Signature != "" {
		return info, nil
	}
	signer, err := auth.NewSigner(cfg.SDK.Key, cfg.SDK.Secret, cfg.SDK.SignatureTTL)
	if err != nil {
		return info, err
	}
	info.Signature, err = signer.Sign(cfg.Session.Topic, cfg.Session.Role)
	return info, err
}
