package application

import (
	"context"
	"fmt"

	"activities/internal/application/common"
	"activities/internal/application/repo"
	"activities/internal/application/service"
	use_cases "activities/internal/application/use-cases"
	"activities/internal/controllers/cron"
	"activities/internal/controllers/handler"
	"activities/internal/controllers/listener"
	"activities/internal/transport/producer"
	"activities/pkg/broker"
	"activities/pkg/config"
	"activities/pkg/db"
	"activities/pkg/metrics"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

type App struct {
	ctx            context.Context
	conf           *config.Config
	logger         *zap.SugaredLogger
	postgres       *db.Postgres
	httpServer     *fiber.App
	kafka          *broker.KafkaBroker
	cronController *cron.Controller
}

func NewApp(
	ctx context.Context,
	conf *config.Config,
	logger *zap.SugaredLogger,
	postgres *db.Postgres,
	httpServer *fiber.App,
	kafkaBroker *broker.KafkaBroker,
	m *metrics.Metrics) *App {
	//Логируем версию приложения
	logger.Infof("Запуск Activities Service версии: %s", common.Version)

	go func() {
		<-ctx.Done()
		logger.Info("закрытие consumer group")
		kafkaBroker.ConsumerGroup.Close()
		logger.Info("закрытие consumer group: done")
	}()

	store := repo.NewRepo(postgres, logger)
	tx := repo.NewTransactions(store, logger)
	kafkaProducer := producer.NewProducer(kafkaBroker, logger, conf.Broker.Kafka.MaxAttempts, m)
	srv := service.NewService(store, tx, kafkaProducer, logger, &conf.Relay)
	uc := use_cases.NewUseCase(srv, logger, conf)
	h := handler.NewActivityHandler(uc, logger)
	auth := handler.NewAuthMiddleware(uc, conf.Auth.JWTSecret, logger)
	r := handler.NewRouter(h, auth, httpServer, conf, logger)

	// Инициализация cron контроллера
	cronController := cron.NewController(ctx, logger)
	if err := cronController.RegisterDeleteOldActivitiesJob(uc, conf.Cron); err != nil {
		logger.Fatalf("не удалось зарегистрировать cron задачу: %v", err)
	}
	cronController.Start()

	go uc.RunRelay(ctx)

	r.RegisterRouter()

	app := &App{
		ctx:            ctx,
		conf:           conf,
		postgres:       postgres,
		httpServer:     httpServer,
		kafka:          kafkaBroker,
		cronController: cronController,
	}

	go app.runConsumer(ctx, logger, uc, kafkaBroker, m)

	return app
}

func (a *App) Run() error {
	return a.httpServer.Listen(fmt.Sprintf(":%s", a.conf.Server.Port))
}

func (a *App) Shutdown() error {
	// Останавливаем cron задачи
	if a.cronController != nil {
		a.cronController.Stop()
	}
	return a.httpServer.Shutdown()
}

func (a *App) runConsumer(ctx context.Context, logger *zap.SugaredLogger, usecase use_cases.UseCaser, kafkaBroker *broker.KafkaBroker, m *metrics.Metrics) {
	logger.Infof("Запуск consumer для топика: %s", kafkaBroker.ConsumerTopic)

	kafkaBrokerConsumer := listener.NewKafkaBrokerConsumer(usecase, logger, m)

	for {
		logger.Infof("Попытка подключения к consumer group...")
		err := kafkaBroker.ConsumerGroup.Consume(ctx, []string{kafkaBroker.ConsumerTopic}, kafkaBrokerConsumer)
		if err != nil {
			logger.Errorf("Ошибка consumer: %v", err)
		}
		if ctx.Err() != nil {
			logger.Info("Consumer остановлен по контексту")
			return
		}
	}

}
