package application

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/rocketscienceinc/tictactoe-client/internal/apperror"
	"github.com/rocketscienceinc/tictactoe-client/internal/config"
	"github.com/rocketscienceinc/tictactoe-client/internal/console"
	"github.com/rocketscienceinc/tictactoe-client/internal/engine"
	"github.com/rocketscienceinc/tictactoe-client/internal/entity"
	"github.com/rocketscienceinc/tictactoe-client/internal/repository"
	"github.com/rocketscienceinc/tictactoe-client/internal/repository/storage"
	"github.com/rocketscienceinc/tictactoe-client/internal/roominfo"
	"github.com/rocketscienceinc/tictactoe-client/internal/session"
	"github.com/rocketscienceinc/tictactoe-client/internal/transport/websocket"
)

const (
	channelCloseGrace      = 5 * time.Second
	snapshotCleanupTimeout = 2 * time.Second
)

// RunApp - joins the configured room and plays from the terminal until exit or a signal.
func RunApp(logger *slog.Logger, conf *config.Config) error {
	log := logger.With("component", "app")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		select {
		case sig := <-sigs:
			log.Info("Received signal, shutting down", "signal", sig)
			cancel()
		case <-ctx.Done():
		}
	}()

	client := roominfo.NewClient(logger, conf.Server.BaseURL, conf.Auth.Token, conf.Server.RequestTimeout)

	user, err := client.CurrentUser(ctx)
	if err != nil {
		return fmt.Errorf("could not get current user: %w", err)
	}
	log.Info("Signed in", "user_id", user.ID, "name", user.Name)

	sess := session.New(conf.Room.ID, user.ID, entity.DefaultBoardSize)
	fetcher := roominfo.NewFetcher(logger, client)
	defer fetcher.Wait()

	opts := []engine.Option{
		engine.WithPollInterval(conf.PollInterval),
		engine.WithObserver(console.NewRenderer(os.Stdout)),
	}

	var snapshots repository.SnapshotRepository
	if conf.Redis.Enabled() {
		redisClient, err := storage.NewRedisClient(ctx, conf.Redis.GetRedisAddr(), conf.Redis.DB)
		if err != nil {
			return fmt.Errorf("could not connect to redis storage: %w", err)
		}

		defer func() {
			if err := redisClient.Close(); err != nil {
				log.Error("could not close redis storage", "error", err)
			}
		}()

		snapshots = repository.NewSnapshotRepository(logger, redisClient, conf.Redis.SnapshotTTL)
		opts = append(opts, engine.WithObserver(repository.NewSnapshotSync(snapshots)))
	}

	eng := engine.New(logger, sess, fetcher, opts...)
	defer eng.Close()

	term := console.New(logger, eng, os.Stdout)

	group, ctx := errgroup.WithContext(ctx)

	group.Go(func() error {
		defer cancel()
		return term.Run(ctx, os.Stdin)
	})

	group.Go(func() error {
		defer cancel()
		return playRoom(ctx, logger, conf, eng, term.Passwords())
	})

	runErr := group.Wait()

	if snapshots != nil {
		cleanupCtx, cleanupCancel := context.WithTimeout(context.Background(), snapshotCleanupTimeout)
		if err := snapshots.DeleteByID(cleanupCtx, conf.Room.ID, user.ID); err != nil {
			log.Error("could not delete session snapshot", "error", err)
		}
		cleanupCancel()
	}

	if runErr != nil && !errors.Is(runErr, context.Canceled) {
		return runErr
	}

	log.Info("Application stopped")

	return nil
}

// playRoom keeps one channel connected at a time and reconnects when a private room asks
// for a password.
func playRoom(ctx context.Context, logger *slog.Logger, conf *config.Config, eng *engine.Engine, passwords <-chan string) error {
	log := logger.With("component", "app", "method", "playRoom")

	roomURL, err := websocket.RoomURL(conf.Server.BaseURL, conf.Room.ID, conf.Auth.Token)
	if err != nil {
		return err
	}

	password := conf.Room.Password

	for {
		err := connectOnce(ctx, logger, roomURL, conf.Auth.Token, password, eng)

		var closeErr *engine.CloseError
		switch {
		case ctx.Err() != nil:
			return nil

		case errors.Is(err, apperror.ErrPolicyClosed):
			log.Info("Room is private, waiting for a password")
			select {
			case password = <-passwords:
				continue
			case <-ctx.Done():
				return nil
			}

		case errors.As(err, &closeErr):
			if closeErr.Change.Leave {
				log.Warn("Left room", "code", closeErr.Change.Code, "reason", closeErr.Change.Reason, "error", closeErr.Change.Err)
			}
			return nil

		default:
			return err
		}
	}
}

// connectOnce runs the engine against a fresh channel until it closes.
func connectOnce(ctx context.Context, logger *slog.Logger, roomURL, token, password string, eng *engine.Engine) error {
	channel := websocket.New(logger, roomURL, token, eng)

	channelDone := make(chan error, 1)
	go func() {
		if err := channel.Connect(ctx, password); err != nil {
			channelDone <- err
			return
		}
		channelDone <- channel.Run(ctx)
	}()

	err := eng.Run(ctx, channel)

	if closeErr := channel.Close(); closeErr != nil {
		logger.Debug("channel close", "error", closeErr)
	}

	select {
	case channelErr := <-channelDone:
		if channelErr != nil && !errors.Is(channelErr, context.Canceled) {
			logger.Debug("channel stopped", "error", channelErr)
		}
	case <-time.After(channelCloseGrace):
		logger.Warn("channel did not stop in time")
	}

	return err
}
