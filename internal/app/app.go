package app

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	goredis "github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/ivankudzin/botlist/internal/app/apiapp"
	"github.com/ivankudzin/botlist/internal/app/botapp"
	"github.com/ivankudzin/botlist/internal/config"
	s3infra "github.com/ivankudzin/botlist/internal/infra/s3"
	tginfra "github.com/ivankudzin/botlist/internal/infra/telegram"
	"github.com/ivankudzin/botlist/internal/jobs/rolesync"
	pgrepo "github.com/ivankudzin/botlist/internal/repo/postgres"
	redisrepo "github.com/ivankudzin/botlist/internal/repo/redis"
	"github.com/ivankudzin/botlist/internal/rpc"
	"github.com/ivankudzin/botlist/internal/rpcflow"
	"github.com/ivankudzin/botlist/internal/services/access"
	"github.com/ivankudzin/botlist/internal/services/audit"
	authsvc "github.com/ivankudzin/botlist/internal/services/auth"
	"github.com/ivankudzin/botlist/internal/services/dispatch"
	"github.com/ivankudzin/botlist/internal/services/executor"
	"github.com/ivankudzin/botlist/internal/services/ownerbots"
)

const shutdownTimeout = 10 * time.Second

// App runs the Telegram front-end, the HTTP front-end and the background
// workers over one shared dispatch path.
type App struct {
	cfg      config.Config
	logger   *zap.Logger
	postgres *pgxpool.Pool
	redis    *goredis.Client
	telegram *tginfra.Client
	bot      *botapp.Bot
	server   *apiapp.Server
	notifier *audit.Notifier
	roleSync *rolesync.Job
	botRepo  *pgrepo.BotRepo
}

func New(ctx context.Context, cfg config.Config, logger *zap.Logger) (*App, error) {
	if logger == nil {
		return nil, fmt.Errorf("logger is nil")
	}

	pool, err := pgrepo.NewPool(ctx, cfg.Postgres.DSN)
	if err != nil {
		return nil, fmt.Errorf("init postgres: %w", err)
	}

	redisClient, err := redisrepo.NewClient(ctx, cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
	if err != nil {
		pool.Close()
		return nil, fmt.Errorf("init redis: %w", err)
	}

	telegram, err := tginfra.NewClient(cfg.Telegram.Token, cfg.Telegram.PollTimeoutSeconds, logger)
	if err != nil {
		pool.Close()
		_ = redisClient.Close()
		return nil, fmt.Errorf("init telegram: %w", err)
	}

	archive, err := newArchive(cfg.S3, logger)
	if err != nil {
		pool.Close()
		_ = redisClient.Close()
		return nil, err
	}

	var (
		archiver  audit.Archiver
		presigner botapp.Presigner
	)
	if archive != nil {
		archiver = archive
		presigner = archive
	}

	userRepo := pgrepo.NewUserRepo(pool)
	botRepo := pgrepo.NewBotRepo(pool)
	ownerCache := redisrepo.NewOwnerCacheRepo(redisClient, cfg.Redis.OwnerCacheTTL)
	rpcStore := pgrepo.NewRPCStore(pool)

	guard := access.NewService(cfg.Staff.OwnerIDs, userRepo)
	notifier := audit.NewNotifier(telegram, cfg.Telegram.AuditChatID, archiver, cfg.RPC.AuditQueueSize, logger)
	engine := executor.New(ownerCache, notifier, logger)
	dispatcher := dispatch.NewService(
		guard,
		rpc.Default(),
		engine,
		TxStore(rpcStore),
		botapp.NewMainChat(telegram, cfg.Telegram.MainChatID),
		logger,
	)

	bot := botapp.New(botapp.Deps{
		Messenger:     telegram,
		Dispatcher:    dispatcher,
		Roles:         guard,
		Logs:          pgrepo.NewRPCLogRepo(pool),
		Archive:       presigner,
		Flows:         rpcflow.NewRegistry(),
		PromptTimeout: cfg.RPC.PromptTimeout,
		Logger:        logger,
	})
	telegram.SetHandler(bot.HandleUpdate)

	router := apiapp.NewRouter(apiapp.Dependencies{
		Invoker:   dispatcher,
		Guard:     guard,
		OwnerBots: ownerbots.NewService(botRepo, ownerCache, logger),
		JWT:       authsvc.NewJWTManager(cfg.Auth.JWTSecret, cfg.Auth.TokenTTL),
		Logger:    logger,
	})

	var roleSync *rolesync.Job
	switch {
	case cfg.Telegram.BugHuntersChatID == 0:
		logger.Info("BUG_HUNTERS_CHAT_ID is empty, role sync disabled")
	case telegram.DryRun():
		logger.Warn("telegram is in dry mode, role sync disabled")
	default:
		roleSync = rolesync.New(telegram, userRepo, cfg.Telegram.BugHuntersChatID, cfg.RoleSync.Interval, logger)
	}

	return &App{
		cfg:      cfg,
		logger:   logger,
		postgres: pool,
		redis:    redisClient,
		telegram: telegram,
		bot:      bot,
		server:   apiapp.NewServer(cfg.HTTP, router, logger),
		notifier: notifier,
		roleSync: roleSync,
		botRepo:  botRepo,
	}, nil
}

func newArchive(cfg config.S3Config, logger *zap.Logger) (*s3infra.Archive, error) {
	if strings.TrimSpace(cfg.Endpoint) == "" {
		logger.Info("S3_ENDPOINT is empty, audit archive disabled")
		return nil, nil
	}
	archive, err := s3infra.NewArchive(cfg.Endpoint, cfg.AccessKey, cfg.SecretKey, cfg.Bucket, cfg.UseSSL)
	if err != nil {
		return nil, fmt.Errorf("init s3 archive: %w", err)
	}
	return archive, nil
}

// TxStore runs staff actions in Postgres transactions.
func TxStore(store *pgrepo.RPCStore) executor.Store {
	return executor.TxFunc(func(ctx context.Context, fn func(context.Context, executor.Tx) error) error {
		return store.InTx(ctx, func(ctx context.Context, tx *pgrepo.RPCTx) error {
			return fn(ctx, tx)
		})
	})
}

// Run blocks until ctx ends or a component fails. The audit queue is drained
// after both front-ends have stopped.
func (a *App) Run(ctx context.Context) error {
	if released, err := a.botRepo.ResetPlaceholderClaims(ctx); err != nil {
		a.logger.Warn("reset placeholder claims", zap.Error(err))
	} else if released > 0 {
		a.logger.Info("released placeholder claims", zap.Int64("bots", released))
	}

	notifyCtx, stopNotify := context.WithCancel(context.WithoutCancel(ctx))
	notifyDone := make(chan error, 1)
	go func() {
		notifyDone <- a.notifier.Run(notifyCtx)
	}()

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return a.telegram.Start(gctx)
	})
	g.Go(func() error {
		return a.server.Run(gctx, shutdownTimeout)
	})
	if a.roleSync != nil {
		g.Go(func() error {
			return a.roleSync.Loop(gctx)
		})
	}

	a.logger.Info("staff bot started")
	err := g.Wait()
	a.bot.Wait()
	stopNotify()
	if notifyErr := <-notifyDone; err == nil {
		err = notifyErr
	}
	a.logger.Info("staff bot stopped")
	return err
}

func (a *App) Close() {
	if a.redis != nil {
		if err := a.redis.Close(); err != nil {
			a.logger.Warn("close redis", zap.Error(err))
		}
	}
	if a.postgres != nil {
		a.postgres.Close()
	}
}
