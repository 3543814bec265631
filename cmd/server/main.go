package main

import (
	bookinghandler "courtside/internal/bookings/handler"
	bookingrepository "courtside/internal/bookings/repository"
	bookingservice "courtside/internal/bookings/service"
	bookingvalidator "courtside/internal/bookings/validator"
	eventhandler "courtside/internal/events/handler"
	eventrepository "courtside/internal/events/repository"
	eventservice "courtside/internal/events/service"
	eventvalidator "courtside/internal/events/validator"
	facilityhandler "courtside/internal/facilities/handler"
	facilityrepository "courtside/internal/facilities/repository"
	facilityservice "courtside/internal/facilities/service"
	facilityvalidator "courtside/internal/facilities/validator"
	notifyrepository "courtside/internal/notify/repository"
	notifyservice "courtside/internal/notify/service"
	reporthandler "courtside/internal/reports/handler"
	reportrepository "courtside/internal/reports/repository"
	reportservice "courtside/internal/reports/service"
	"courtside/pkg/app"
	"courtside/pkg/config"
	"courtside/pkg/contracts"
	"courtside/pkg/kafka"

	"github.com/joho/godotenv"
)

const ServiceName = "courtside"

func main() {
	_ = godotenv.Load()

	cfg := config.Load(ServiceName)
	cfg.SetMongo()
	defer cfg.GracefulShutdown()

	cfg.Log.Info("Starting booking engine")

	serverApp := app.NewApplication()
	serverApp.SetApp(cfg, initHandlers(cfg)...)
	serverApp.Run()
}

func initHandlers(cfg *config.Config) []contracts.Handler {
	facilityRepo := facilityrepository.NewMongoFacilityRepository(cfg)
	facilityService := facilityservice.NewFacilityService(
		facilityRepo,
		facilityvalidator.NewFacilityValidator(cfg.Log),
		cfg,
	)

	bookingService := bookingservice.NewBookingService(
		bookingrepository.NewMongoBookingRepository(cfg),
		bookingrepository.NewSlotLockRepository(cfg),
		facilityRepo,
		facilityService,
		bookingvalidator.NewBookingValidator(cfg.Log),
		cfg,
	)

	notifyService := notifyservice.NewNotifyService(
		notifyrepository.NewMongoNotificationRepository(cfg),
		newPublisher(cfg),
		cfg,
	)

	eventService := eventservice.NewEventService(
		eventrepository.NewMongoEventRepository(cfg),
		eventrepository.NewMongoBlockRepository(cfg),
		facilityRepo,
		notifyService,
		eventvalidator.NewEventValidator(cfg.Log),
		cfg,
	)

	reportService := reportservice.NewReportService(
		reportrepository.NewMongoReportRepository(cfg),
		facilityRepo,
		cfg,
	)

	cfg.Log.Info("Services initialized", "database", cfg.MongoDatabaseName)

	return []contracts.Handler{
		facilityhandler.NewFacilityHandler(facilityService, cfg.Log),
		bookinghandler.NewBookingHandler(bookingService, cfg.Log),
		eventhandler.NewEventHandler(eventService, cfg.Log),
		reporthandler.NewReportHandler(reportService, cfg.Log),
	}
}

// newPublisher returns nil when no broker is reachable by configuration;
// the fan-out then records notifications in the store only.
func newPublisher(cfg *config.Config) notifyservice.Publisher {
	producer, err := kafka.NewProducer(cfg.KafkaBrokers, cfg.NotifyTopic)
	if err != nil {
		cfg.Log.Warn("Kafka producer disabled", "error", err)
		return nil
	}
	return producer
}
