package app

import (
	"context"
	"database/sql"
	"time"

	"github.com/gin-gonic/gin"
	_ "github.com/go-sql-driver/mysql"
	"github.com/rabbitmq/amqp091-go"
	"github.com/redis/go-redis/v9"

	"github.com/Monkachunkaa/tote-storage-api/configs"
	"github.com/Monkachunkaa/tote-storage-api/internal/adapter/cache"
	"github.com/Monkachunkaa/tote-storage-api/internal/adapter/email"
	httpadapter "github.com/Monkachunkaa/tote-storage-api/internal/adapter/http"
	"github.com/Monkachunkaa/tote-storage-api/internal/adapter/kafka"
	"github.com/Monkachunkaa/tote-storage-api/internal/adapter/queue"
	"github.com/Monkachunkaa/tote-storage-api/internal/adapter/repo"
	stripeadapter "github.com/Monkachunkaa/tote-storage-api/internal/adapter/stripe"
	"github.com/Monkachunkaa/tote-storage-api/internal/logging"
	"github.com/Monkachunkaa/tote-storage-api/internal/usecase"
)

type App struct {
	Router *gin.Engine
}

// InitWithConfig wires adapters to use cases. Redis, MySQL, RabbitMQ and
// Kafka are all optional: when unconfigured the in-memory limiter and the
// no-op collaborators take their place, so a bare deploy still takes
// orders.
func InitWithConfig(cfg configs.Config) (*App, func(), error) {
	log := logging.Init(cfg.App.Name, "./logs/app.log")

	gateway := stripeadapter.New(cfg.Stripe.SecretKey, cfg.Stripe.Timeout)

	// rate limiter: shared window when redis is configured
	var limiter usecase.RateLimiter
	var rdb *redis.Client
	if cfg.Redis.Addr != "" {
		rdb = redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       0,
		})
		if err := rdb.Ping(context.Background()).Err(); err != nil {
			return nil, nil, err
		}
		limiter = cache.NewRedisRateLimiter(rdb, cfg.RateLimit.MaxRequests, cfg.RateLimit.Window)
	} else {
		log.Warn("redis not configured, rate limiting is per-process best effort")
		limiter = cache.NewMemoryRateLimiter(cfg.RateLimit.MaxRequests, cfg.RateLimit.Window)
	}

	// follow-up store for failed post-payment work
	var followups usecase.FollowUpRepo = usecase.NoopFollowUpRepo{}
	var db *sql.DB
	if cfg.MySQL.DSN != "" {
		var err error
		db, err = sql.Open("mysql", cfg.MySQL.DSN)
		if err != nil {
			return nil, nil, err
		}
		db.SetConnMaxLifetime(cfg.MySQL.ConnMaxLifetime)
		db.SetMaxOpenConns(cfg.MySQL.MaxOpenConns)
		db.SetMaxIdleConns(cfg.MySQL.MaxIdleConns)

		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		err = db.PingContext(ctx)
		cancel()
		if err != nil {
			return nil, nil, err
		}
		followups = repo.NewMySQLFollowUpRepo(db)
	} else {
		log.Warn("mysql not configured, subscription failures will only be logged")
	}

	sender, err := email.NewSESSender(context.Background(), cfg.Email.Region, cfg.Email.FromAddress)
	if err != nil {
		return nil, nil, err
	}
	sendEmail := usecase.NewSendEmail(sender, cfg.Email.OwnerInbox)

	// notification queue: async confirmation emails with their own retry
	var notifier usecase.Notifier = usecase.NoopNotifier{}
	var amqpConn *amqp091.Connection
	if cfg.Rabbit.URL != "" {
		amqpConn, err = amqp091.Dial(cfg.Rabbit.URL)
		if err != nil {
			return nil, nil, err
		}
		ch, err := amqpConn.Channel()
		if err != nil {
			return nil, nil, err
		}
		rn, err := queue.NewRabbitNotifier(ch)
		if err != nil {
			return nil, nil, err
		}
		notifier = rn
		setupNotificationConsumer(ch, sendEmail)
	} else {
		log.Warn("rabbitmq not configured, confirmation emails disabled")
	}

	// analytics: fire-and-forget kafka events
	var analytics usecase.Analytics = usecase.NoopAnalytics{}
	var analyticsPub *kafka.AnalyticsPublisher
	if len(cfg.Kafka.Brokers) > 0 {
		producer, err := kafka.NewAsyncProducer(cfg.Kafka.Brokers)
		if err != nil {
			return nil, nil, err
		}
		analyticsPub = kafka.NewAnalyticsPublisher(producer, cfg.Kafka.TopicEvents)
		analytics = analyticsPub
	}

	// use cases + handlers + router
	intentUC := usecase.NewCreatePaymentIntent(gateway, limiter, analytics)
	subscribeUC := usecase.NewCreateSubscription(gateway, notifier, analytics, followups)
	portalUC := usecase.NewCustomerPortal(gateway, cfg.App.SiteURL)

	ph := httpadapter.NewPaymentHandler(intentUC, subscribeUC)
	poh := httpadapter.NewPortalHandler(portalUC)
	eh := httpadapter.NewEmailHandler(sendEmail)
	router := httpadapter.NewRouter(ph, poh, eh)

	cleanup := func() {
		if db != nil {
			_ = db.Close()
		}
		if rdb != nil {
			_ = rdb.Close()
		}
		if amqpConn != nil {
			_ = amqpConn.Close()
		}
		if analyticsPub != nil {
			_ = analyticsPub.Close()
		}
	}

	return &App{Router: router}, cleanup, nil
}

func setupNotificationConsumer(ch *amqp091.Channel, sendEmail *usecase.SendEmail) {
	h := queue.NewOrderConfirmedHandler(sendEmail)

	router := queue.NewRouter(ch, queue.WithPrefetch(10))
	router.Register(queue.NotificationQueue, queue.JSONHandler[usecase.OrderConfirmationMsg]{
		HandleFunc: h.HandleConfirmed,
	})

	if err := router.Start(); err != nil {
		panic(err)
	}
}
