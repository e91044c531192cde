package main

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"

	"github.com/Domenick1991/flightdesk/api"
	"github.com/Domenick1991/flightdesk/config"
	"github.com/Domenick1991/flightdesk/internal/access"
	"github.com/Domenick1991/flightdesk/internal/bootstrap"
	"github.com/Domenick1991/flightdesk/internal/cache"
	"github.com/Domenick1991/flightdesk/internal/identity"
	"github.com/Domenick1991/flightdesk/internal/kafka"
	"github.com/Domenick1991/flightdesk/internal/logs"
	"github.com/Domenick1991/flightdesk/internal/repository"
	"github.com/Domenick1991/flightdesk/internal/service/accounts"
	"github.com/Domenick1991/flightdesk/internal/service/airlines"
	"github.com/Domenick1991/flightdesk/internal/service/booking"
	"github.com/Domenick1991/flightdesk/internal/service/countries"
	"github.com/Domenick1991/flightdesk/internal/service/flights"
	"github.com/Domenick1991/flightdesk/migrations"
	"github.com/jackc/pgx/v5/pgxpool"
)

type storage struct {
	identities repository.IdentityRepository
	countries  repository.CountryRepository
	companies  repository.CompanyRepository
	flights    repository.FlightRepository
	tickets    repository.TicketRepository
	ping       bootstrap.Check
	close      func()
}

func main() {
	cfg, err := config.LoadConfig(config.Path())
	if err != nil {
		logs.Logger.Fatalf("load config: %v", err)
	}
	if err := logs.Init(logs.Options{Level: cfg.Logs.Level, Format: cfg.Logs.Format, File: cfg.Logs.File}); err != nil {
		logs.Logger.Fatalf("init logger: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	store, err := openStorage(ctx, cfg.Database)
	if err != nil {
		logs.Logger.Fatalf("open storage: %v", err)
	}
	defer store.close()

	checks := []bootstrap.Check{}
	if store.ping != nil {
		checks = append(checks, store.ping)
	}

	var (
		identityOpts []identity.StoreOption
		flightCache  flights.FlightCache
		bookingOpts  []booking.BookingServiceOption
	)

	if cfg.Redis.Enabled() {
		redisCache := cache.NewRedisCache(cfg.Redis, cfg.Booking.FlightsTTL(), cfg.Booking.IdentityTTL())
		defer redisCache.Close()
		if err := redisCache.Ping(ctx); err != nil {
			logs.Logger.WithError(err).Warn("redis is unreachable, cache calls will fail until it recovers")
		}
		identityOpts = append(identityOpts, identity.WithCache(redisCache))
		flightCache = redisCache
		bookingOpts = append(bookingOpts, booking.WithCache(redisCache))
		checks = append(checks, redisCache.Ping)
	}

	if cfg.Kafka.Enabled() {
		producer := kafka.NewProducer(cfg.Kafka.Brokers)
		defer producer.Close()
		if err := producer.CheckConnection(ctx); err != nil {
			logs.Logger.WithError(err).Warn("kafka is unreachable, ticket events will be retried and dropped")
		}
		bookingOpts = append(bookingOpts, booking.WithProducer(
			producer,
			cfg.Kafka.TicketTopic,
			cfg.Kafka.NotificationsTopic,
			cfg.Booking.PublishRetries,
		))
	}

	identities := identity.NewStore(store.identities, store.companies, identityOpts...)
	gate := access.NewGate(identities)

	router := api.NewRouter(api.Services{
		Flights:   flights.NewFlightService(gate, store.flights, store.companies, flightCache),
		Airlines:  airlines.NewAirlineService(gate, store.companies, identities),
		Countries: countries.NewCountryService(gate, store.countries),
		Bookings:  booking.NewBookingService(gate, store.tickets, identities, bookingOpts...),
		Accounts:  accounts.NewAccountService(gate, identities),
	})

	if err := bootstrap.Run(ctx, cfg, router, checks...); err != nil {
		logs.Logger.Fatalf("server error: %v", err)
	}
}

func openStorage(ctx context.Context, cfg config.DatabaseConfig) (*storage, error) {
	if cfg.Driver == config.DriverMemory {
		logs.Logger.Warn("using in-memory storage, data is lost on restart")
		mem := repository.NewMemoryStore()
		return &storage{
			identities: mem.Identities,
			countries:  mem.Countries,
			companies:  mem.Companies,
			flights:    mem.Flights,
			tickets:    mem.Tickets,
			close:      func() {},
		}, nil
	}

	poolCfg, err := pgxpool.ParseConfig(cfg.DSN())
	if err != nil {
		return nil, fmt.Errorf("parse database config: %w", err)
	}
	if cfg.MaxConns > 0 {
		poolCfg.MaxConns = cfg.MaxConns
	}
	pool, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		return nil, fmt.Errorf("connect postgres: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}
	if err := migrations.Apply(ctx, pool); err != nil {
		pool.Close()
		return nil, fmt.Errorf("apply migrations: %w", err)
	}

	return &storage{
		identities: repository.NewIdentityRepository(pool),
		countries:  repository.NewCountryRepository(pool),
		companies:  repository.NewCompanyRepository(pool),
		flights:    repository.NewFlightRepository(pool),
		tickets:    repository.NewTicketRepository(pool),
		ping:       pool.Ping,
		close:      pool.Close,
	}, nil
}
