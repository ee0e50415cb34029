package catalog

import (
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"channelling/internal/catalog/handler"
	"channelling/internal/lifecycle"
	"channelling/internal/lifecycle/store/cache"
	"channelling/internal/lifecycle/store/memory"
	"channelling/internal/lifecycle/store/sqlstore"
	"channelling/pkg/platform/circuit"
)

// Backend describes where records are kept.
type Backend struct {
	// Driver is "memory", "postgres" or "sqlite".
	Driver string
	// DB is required for the SQL drivers.
	DB *sql.DB
	// Cache enables the Redis read-through cache when set.
	Cache    cache.Client
	CacheTTL time.Duration
}

// Registry holds one resource per catalog kind, in registration order.
type Registry struct {
	Resources []handler.Mountable
}

// Kinds returns the registered entity kinds.
func (r *Registry) Kinds() []string {
	kinds := make([]string, 0, len(r.Resources))
	for _, res := range r.Resources {
		kinds = append(kinds, res.Kind())
	}
	return kinds
}

// Build creates a manager and resource for every catalog kind. opts are applied
// to every manager.
func Build(backend Backend, logger *slog.Logger, opts ...lifecycle.Option) (*Registry, error) {
	if logger == nil {
		logger = slog.Default()
	}
	b := &builder{backend: backend, logger: logger, opts: opts}
	if backend.Driver != "memory" {
		if backend.DB == nil {
			return nil, errors.New("catalog: sql backend requires a database")
		}
		dialect, err := sqlstore.DialectFor(backend.Driver)
		if err != nil {
			return nil, err
		}
		b.dialect = dialect
	}
	if backend.Cache != nil {
		// one breaker for all kinds: they share the same Redis connection
		b.breaker = circuit.New("redis")
	}

	register(b, "countries", CountryDescriptor)
	register(b, "states", StateDescriptor)
	register(b, "cities", CityDescriptor)
	register(b, "institutions", InstitutionDescriptor)
	register(b, "specializations", SpecializationDescriptor)
	register(b, "qualification-levels", QualificationLevelDescriptor)
	register(b, "qualifications", QualificationDescriptor)
	register(b, "transaction-types", TransactionTypeDescriptor)
	register(b, "contact-methods", ContactMethodDescriptor)
	register(b, "titles", TitleDescriptor)
	register(b, "hospitals", HospitalDescriptor)
	register(b, "doctors", DoctorDescriptor)
	register(b, "doctor-specialities", DoctorSpecialityDescriptor)
	register(b, "doctor-qualifications", DoctorQualificationDescriptor)
	register(b, "doctor-sessions", DoctorSessionDescriptor)
	register(b, "patients", PatientDescriptor)
	register(b, "appointments", AppointmentDescriptor)
	register(b, "fees", FeesDescriptor)
	register(b, "doctor-fees", DoctorFeesDescriptor)
	register(b, "hospital-fees", HospitalFeesDescriptor)
	register(b, "payments", PaymentDescriptor)
	register(b, "rating-categories", RatingCategoryDescriptor)
	register(b, "doctor-ratings", DoctorRatingDescriptor)
	register(b, "hospital-ratings", HospitalRatingDescriptor)
	register(b, "users", UserDescriptor)
	register(b, "user-profiles", UserProfileDescriptor)

	if b.err != nil {
		return nil, b.err
	}
	return &Registry{Resources: b.resources}, nil
}

type builder struct {
	backend   Backend
	dialect   sqlstore.Dialect
	logger    *slog.Logger
	opts      []lifecycle.Option
	breaker   *circuit.Breaker
	resources []handler.Mountable
	err       error
}

func register[T lifecycle.Record](b *builder, route string, desc lifecycle.Descriptor[T]) {
	if b.err != nil {
		return
	}
	m, err := lifecycle.NewManager(lifecycle.Adapter[T]{
		Descriptor: desc,
		Store:      storeFor(b, desc),
	}, b.opts...)
	if err != nil {
		b.err = fmt.Errorf("catalog: %s: %w", desc.Name, err)
		return
	}
	b.resources = append(b.resources, handler.New(route, m, b.logger))
}

func storeFor[T lifecycle.Record](b *builder, desc lifecycle.Descriptor[T]) lifecycle.Store[T] {
	var store lifecycle.Store[T]
	if b.backend.Driver == "memory" {
		store = memory.New(desc)
	} else {
		store = sqlstore.New(b.backend.DB, b.dialect, desc)
	}
	if b.backend.Cache != nil {
		store = cache.New(store, b.backend.Cache, desc,
			cache.WithTTL(b.backend.CacheTTL),
			cache.WithLogger(b.logger),
			cache.WithBreaker(b.breaker),
		)
	}
	return store
}
