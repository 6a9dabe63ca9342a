package app

import (
	"log"
	"net/http"
	"path/filepath"

	"github.com/gorilla/csrf"
	"github.com/gorilla/mux"
	"github.com/gorilla/sessions"

	"github.com/monokaijs/feed-watcher-ui/config"
	"github.com/monokaijs/feed-watcher-ui/internal/cache"
	"github.com/monokaijs/feed-watcher-ui/internal/database"
	"github.com/monokaijs/feed-watcher-ui/internal/domain"
	"github.com/monokaijs/feed-watcher-ui/internal/handler"
	"github.com/monokaijs/feed-watcher-ui/internal/repository"
	"github.com/monokaijs/feed-watcher-ui/internal/service"
	"github.com/monokaijs/feed-watcher-ui/internal/source"
	"github.com/monokaijs/feed-watcher-ui/pkg/datetime"
)

type Application struct {
	Router          *mux.Router
	Config          *config.Config
	DBManager       *database.Manager
	PostHandler     *handler.PostHandler
	SettingsHandler *handler.SettingsHandler
	CacheHandler    *handler.CacheHandler
}

func New(cfg *config.Config) (*Application, error) {
	dbManager, err := database.NewManager(database.Config{
		Path: filepath.Join(cfg.DataDir, "feed-watcher.db"),
	})
	if err != nil {
		return nil, err
	}

	db := dbManager.GetDB()
	store := cache.NewSQLiteStore(db)
	settingsRepository := repository.NewSettingsRepository(db)
	dateFormatter := datetime.NewFormatter()

	defaultConfig := domainDefaultConfig(cfg)
	configService := service.NewConfigService(settingsRepository, defaultConfig)

	postService := service.NewPostService(configService.Get(), source.Options{
		APIBaseURL: cfg.GitHubAPIURL,
		Token:      cfg.GitHubToken,
		LocalDir:   cfg.LocalPostsDir,
		Store:      store,
		Probe:      source.DefaultProbe,
	})

	sessionStore := sessions.NewCookieStore([]byte(cfg.SessionSecret))
	sessionStore.Options = &sessions.Options{
		Path:     "/",
		MaxAge:   86400 * 7,
		HttpOnly: true,
		Secure:   cfg.IsProduction(),
		SameSite: http.SameSiteLaxMode,
	}

	postHandler := handler.NewPostHandler(postService, dateFormatter)
	settingsHandler := handler.NewSettingsHandler(configService, postService, sessionStore)
	cacheHandler := handler.NewCacheHandler(postService, store)

	app := &Application{
		Router:          mux.NewRouter(),
		Config:          cfg,
		DBManager:       dbManager,
		PostHandler:     postHandler,
		SettingsHandler: settingsHandler,
		CacheHandler:    cacheHandler,
	}

	app.setupMiddleware()
	app.setupRoutes()

	// Warm the first page in the background so the initial view does not
	// pay for a cold cache.
	postService.Preload(1, source.DefaultPageSize)

	return app, nil
}

func domainDefaultConfig(cfg *config.Config) domain.FeedConfig {
	defaultConfig := domain.FeedConfig{
		RepositoryURL: cfg.DefaultRepoURL,
		PostsPath:     cfg.DefaultPostsPath,
	}
	if err := defaultConfig.Derive(); err != nil {
		log.Fatalf("Invalid DEFAULT_REPO_URL %q: %v", cfg.DefaultRepoURL, err)
	}
	return defaultConfig
}

func (a *Application) setupMiddleware() {
	a.Router.Use(securityHeadersMiddleware(a.Config.IsProduction()))

	if a.Config.IsProduction() {
		log.Printf("CSRF Configuration - Production mode enabled")
		csrfOptions := []csrf.Option{
			csrf.Secure(true),
			csrf.HttpOnly(true),
			csrf.Path("/"),
			csrf.SameSite(csrf.SameSiteLaxMode),
		}
		if a.Config.AppURL != "" {
			csrfOptions = append(csrfOptions, csrf.TrustedOrigins([]string{a.Config.AppURL}))
			log.Printf("CSRF Configuration - Trusted Origin: %s", a.Config.AppURL)
		}
		csrfMiddleware := csrf.Protect([]byte(a.Config.CSRFSecret), csrfOptions...)
		a.Router.Use(csrfMiddleware)
	} else {
		log.Printf("CSRF Configuration - Disabled in development mode")
	}
}

func securityHeadersMiddleware(isProduction bool) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("X-Frame-Options", "DENY")
			w.Header().Set("X-Content-Type-Options", "nosniff")
			w.Header().Set("X-XSS-Protection", "1; mode=block")
			w.Header().Set("Referrer-Policy", "strict-origin-when-cross-origin")

			if isProduction {
				w.Header().Set("Content-Security-Policy", "default-src 'self'; script-src 'self'; style-src 'self' 'unsafe-inline'; img-src 'self' data:;")
			} else {
				w.Header().Set("Content-Security-Policy", "default-src 'self'; script-src 'self' 'unsafe-inline'; style-src 'self' 'unsafe-inline'; img-src 'self' data:;")
			}

			next.ServeHTTP(w, r)
		})
	}
}

func (a *Application) setupRoutes() {
	a.Router.HandleFunc("/", a.redirectToPosts).Methods("GET")
	a.Router.HandleFunc("/posts", a.PostHandler.ViewPosts).Methods("GET")
	a.Router.HandleFunc("/posts/content", a.PostHandler.GetContent).Methods("GET")
	a.Router.HandleFunc("/settings", a.SettingsHandler.Settings).Methods("GET", "POST")
	a.Router.HandleFunc("/settings/reset", a.SettingsHandler.Reset).Methods("POST")
	a.Router.HandleFunc("/cache", a.CacheHandler.Dashboard).Methods("GET")
	a.Router.HandleFunc("/cache/stats", a.CacheHandler.Stats).Methods("GET")
	a.Router.HandleFunc("/cache/clear", a.CacheHandler.Clear).Methods("POST")
	a.Router.HandleFunc("/cache/clear-expired", a.CacheHandler.ClearExpired).Methods("POST")
	a.Router.PathPrefix("/static/").Handler(
		http.StripPrefix("/static/", http.FileServer(http.Dir("static"))),
	)
}

func (a *Application) redirectToPosts(w http.ResponseWriter, r *http.Request) {
	http.Redirect(w, r, "/posts", http.StatusFound)
}

func (a *Application) Close() error {
	if a.DBManager != nil {
		return a.DBManager.Close()
	}
	return nil
}
