// Package api exposes the server's HTTP JSON surface: authentication,
// the profile workflow, and product listing.
package api

import (
	"context"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/lojabox/lojabox/internal/logging"
	"github.com/lojabox/lojabox/internal/server/models"
	"github.com/lojabox/lojabox/internal/server/services"
)

// UserProvider covers the account operations the handlers call.
type UserProvider interface {
	Register(ctx context.Context, email, name, password string) (*models.User, error)
	Login(ctx context.Context, email, password string) (*services.TokenPair, error)
	RefreshToken(ctx context.Context, refreshToken string) (*services.TokenPair, error)
	Logout(ctx context.Context, refreshToken string) error
}

// ProfileProvider covers the profile workflow.
type ProfileProvider interface {
	EnsureProfile(ctx context.Context, session models.Session) (*models.Profile, error)
	UpdateProfile(ctx context.Context, session models.Session, expectedVersion int64, fields services.ProfileFields, newImage *services.ImageUpload) (*models.Profile, error)
}

// ProductProvider lists a user's products.
type ProductProvider interface {
	ListByUser(ctx context.Context, session models.Session) ([]*models.Product, error)
}

type Server struct {
	address   string
	logger    logging.Logger
	users     UserProvider
	profiles  ProfileProvider
	products  ProductProvider
	jwtSecret []byte
}

func NewServer(address string, l logging.Logger, us UserProvider, ps ProfileProvider, prs ProductProvider, secretKey string) *Server {
	return &Server{
		address:   address,
		logger:    l.With("module", "http_server"),
		users:     us,
		profiles:  ps,
		products:  prs,
		jwtSecret: []byte(secretKey),
	}
}

func (s *Server) routes() http.Handler {
	r := chi.NewRouter()

	r.Route("/api", func(r chi.Router) {
		r.Post("/auth/register", s.register)
		r.Post("/auth/login", s.login)
		r.Post("/auth/refresh", s.refresh)
		r.Post("/auth/logout", s.logout)

		r.Group(func(r chi.Router) {
			r.Use(s.requireSession)
			r.Get("/profile", s.getProfile)
			r.Put("/profile", s.putProfile)
			r.Get("/products", s.listProducts)
		})
	})

	return r
}

// Run serves HTTP until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{Addr: s.address, Handler: s.routes()}

	go func() {
		<-ctx.Done()
		s.logger.Info(ctx, "Stopping HTTP server...")
		if err := srv.Shutdown(context.Background()); err != nil {
			s.logger.Error(ctx, "error shutting down HTTP server", "error", err)
		}
	}()

	s.logger.Info(ctx, "Starting HTTP server", "address", s.address)

	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
