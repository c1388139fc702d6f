package coursemarketplace

import (
	"log/slog"
	"time"

	httpadapter "academy/contexts/learning/course-marketplace/adapters/http"
	"academy/contexts/learning/course-marketplace/adapters/memory"
	"academy/contexts/learning/course-marketplace/adapters/payment"
	"academy/contexts/learning/course-marketplace/application/commands"
	"academy/contexts/learning/course-marketplace/application/ledger"
	"academy/contexts/learning/course-marketplace/application/queries"
	"academy/contexts/learning/course-marketplace/ports"
)

// DefaultWalletOpeningBalance funds every wallet the first time it is seen
// by the in-memory payment gateway.
const DefaultWalletOpeningBalance uint64 = 1000

// Module is the composition surface for the course marketplace.
// Runtime wiring should consume Handler; Store and Wallet are exposed for
// tests and the in-process worker loop.
type Module struct {
	Handler httpadapter.Handler
	Store   *memory.Store
	Wallet  *payment.WalletGateway
}

type Dependencies struct {
	Courses      ports.CourseRegistry
	Users        ports.UserRegistry
	UnitOfWork   ports.UnitOfWork
	Transactions ports.TransactionRepository
	Payments     ports.PaymentCollaborator
	Locks        ports.PurchaseLocker
	Clock        ports.Clock
	IDGenerator  ports.IDGenerator
	Metrics      ports.Metrics
	Logger       *slog.Logger

	// SettleTimeout caps each payment call. Zero uses
	// ledger.DefaultSettleTimeout.
	SettleTimeout time.Duration
}

// SettleTimeoutFor derives the payment deadline from the settlement reaper
// timeout. Keeping it at half guarantees the ledger finalizes a live attempt
// long before the reaper treats it as abandoned.
func SettleTimeoutFor(reaperTimeout time.Duration) time.Duration {
	return reaperTimeout / 2
}

// NewModule wires the marketplace use cases against explicit ports.
func NewModule(deps Dependencies) Module {
	payments := ledger.Ledger{
		Transactions:  deps.Transactions,
		Payments:      deps.Payments,
		Clock:         deps.Clock,
		IDGenerator:   deps.IDGenerator,
		Metrics:       deps.Metrics,
		Logger:        deps.Logger,
		SettleTimeout: deps.SettleTimeout,
	}

	handler := httpadapter.Handler{
		ListCourses: queries.ListCoursesUseCase{
			Courses: deps.Courses,
			Logger:  deps.Logger,
		},
		GetCourse: queries.GetCourseUseCase{
			Courses: deps.Courses,
			Logger:  deps.Logger,
		},
		GetUser: queries.GetUserUseCase{
			Users:  deps.Users,
			Logger: deps.Logger,
		},
		ListTransactions: queries.ListTransactionsUseCase{
			Ledger: payments,
			Logger: deps.Logger,
		},
		CreateCourse: commands.CreateCourseUseCase{
			UnitOfWork:  deps.UnitOfWork,
			Clock:       deps.Clock,
			IDGenerator: deps.IDGenerator,
			Metrics:     deps.Metrics,
			Logger:      deps.Logger,
		},
		EnrollCourse: commands.EnrollCourseUseCase{
			UnitOfWork:  deps.UnitOfWork,
			Clock:       deps.Clock,
			IDGenerator: deps.IDGenerator,
			Metrics:     deps.Metrics,
			Logger:      deps.Logger,
		},
		CompleteCourse: commands.CompleteCourseUseCase{
			UnitOfWork:  deps.UnitOfWork,
			Clock:       deps.Clock,
			IDGenerator: deps.IDGenerator,
			Metrics:     deps.Metrics,
			Logger:      deps.Logger,
		},
		RegisterUser: commands.RegisterUserUseCase{
			UnitOfWork:  deps.UnitOfWork,
			Clock:       deps.Clock,
			IDGenerator: deps.IDGenerator,
			Metrics:     deps.Metrics,
			Logger:      deps.Logger,
		},
		BuyCourse: commands.BuyCourseUseCase{
			Courses:     deps.Courses,
			Users:       deps.Users,
			UnitOfWork:  deps.UnitOfWork,
			Ledger:      payments,
			Locks:       deps.Locks,
			Clock:       deps.Clock,
			IDGenerator: deps.IDGenerator,
			Metrics:     deps.Metrics,
			Logger:      deps.Logger,
		},
		Logger: deps.Logger,
	}

	return Module{Handler: handler}
}

// NewInMemoryModule wires the use cases against the in-memory store. A nil
// payments collaborator falls back to the simulated wallet gateway, which is
// then exposed as Module.Wallet.
func NewInMemoryModule(payments ports.PaymentCollaborator, metrics ports.Metrics, logger *slog.Logger) Module {
	store := memory.NewStore(logger)
	var wallet *payment.WalletGateway
	if payments == nil {
		wallet = payment.NewWalletGateway(DefaultWalletOpeningBalance, logger)
		payments = wallet
	}
	module := NewModule(Dependencies{
		Courses:      store,
		Users:        store,
		UnitOfWork:   store,
		Transactions: store,
		Payments:     payments,
		Locks:        memory.NewPurchaseLock(0),
		Clock:        store,
		IDGenerator:  store,
		Metrics:      metrics,
		Logger:       logger,
	})
	module.Store = store
	module.Wallet = wallet
	return module
}
