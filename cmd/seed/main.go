// Command seed applies the schema and creates the first admin account and
// the courts. Running it again only adds what is missing.
package main

import (
	"context"
	"errors"
	"flag"
	"log"
	"os"
	"strings"

	"go.uber.org/zap"

	"github.com/nekogravitycat/court-reservation/internal/admin"
	"github.com/nekogravitycat/court-reservation/internal/auth"
	"github.com/nekogravitycat/court-reservation/internal/config"
	"github.com/nekogravitycat/court-reservation/internal/court"
	"github.com/nekogravitycat/court-reservation/internal/db"
	"github.com/nekogravitycat/court-reservation/internal/pkg/logger"
	"github.com/nekogravitycat/court-reservation/internal/user"
)

func main() {
	email := flag.String("admin-email", "", "email of the admin account to create")
	name := flag.String("admin-name", "Administrator", "display name of the admin")
	courts := flag.String("courts", "Court 1,Court 2", "comma separated court names")
	flag.Parse()

	password := os.Getenv("SEED_ADMIN_PASSWORD")
	if *email != "" && password == "" {
		log.Fatal("SEED_ADMIN_PASSWORD is required with -admin-email")
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	zlog, err := logger.New(logger.Options{Level: cfg.LogLevel, Development: true})
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer func() { _ = zlog.Sync() }()

	ctx := context.Background()
	pool, err := db.NewPool(ctx, cfg.DBDSN, 2)
	if err != nil {
		zlog.Fatal("failed to connect to db", zap.Error(err))
	}
	defer pool.Close()

	if err := db.Migrate(ctx, pool); err != nil {
		zlog.Fatal("failed to migrate db", zap.Error(err))
	}

	courtService := court.NewService(court.NewPgxRepository(pool))
	for _, n := range strings.Split(*courts, ",") {
		n = strings.TrimSpace(n)
		if n == "" {
			continue
		}
		c, err := courtService.Create(ctx, court.CreateRequest{Name: n})
		switch {
		case errors.Is(err, court.ErrNameTaken):
			zlog.Info("court exists", zap.String("name", n))
		case err != nil:
			zlog.Fatal("failed to create court", zap.String("name", n), zap.Error(err))
		default:
			zlog.Info("court created", zap.String("name", c.Name), zap.String("id", c.ID))
		}
	}

	if *email == "" {
		return
	}

	userRepo := user.NewPgxRepository(pool)
	userService := user.NewService(userRepo, auth.NewBcryptPasswordHasherWithCost(cfg.BcryptCost), zlog)

	u, err := userService.Register(ctx, *email, password, *name)
	if errors.Is(err, user.ErrEmailAlreadyUsed) {
		u, err = userRepo.GetByEmail(ctx, strings.ToLower(strings.TrimSpace(*email)))
	}
	if err != nil {
		zlog.Fatal("failed to create admin user", zap.Error(err))
	}

	_, err = admin.NewService(admin.NewPgxRepository(pool)).Grant(ctx, u.ID, *name)
	switch {
	case errors.Is(err, admin.ErrAlreadyAdmin):
		zlog.Info("admin exists", zap.String("email", u.Email))
	case err != nil:
		zlog.Fatal("failed to grant admin", zap.Error(err))
	default:
		zlog.Info("admin created", zap.String("email", u.Email), zap.String("user_id", u.ID))
	}
}
