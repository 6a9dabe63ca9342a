package handler

import (
	"errors"
	"html/template"
	"log"
	"net/http"

	"github.com/gorilla/csrf"
	"github.com/gorilla/sessions"

	"github.com/monokaijs/feed-watcher-ui/internal/domain"
	"github.com/monokaijs/feed-watcher-ui/internal/service"
)

const sessionName = "feed-watcher"

type SettingsHandler struct {
	configService    *service.ConfigService
	postService      *service.PostService
	sessionStore     sessions.Store
	settingsTemplate *template.Template
}

func NewSettingsHandler(configService *service.ConfigService, postService *service.PostService, sessionStore sessions.Store) *SettingsHandler {
	settingsTemplate, err := template.ParseFiles("templates/settings.html")
	if err != nil {
		log.Fatalf("Failed to parse settings template: %v", err)
	}

	return &SettingsHandler{
		configService:    configService,
		postService:      postService,
		sessionStore:     sessionStore,
		settingsTemplate: settingsTemplate,
	}
}

func (h *SettingsHandler) Settings(w http.ResponseWriter, r *http.Request) {
	if r.Method == http.MethodPost {
		h.handleSave(w, r)
		return
	}
	h.showSettingsPage(w, r, "")
}

func (h *SettingsHandler) showSettingsPage(w http.ResponseWriter, r *http.Request, errorMessage string) {
	cfg := h.postService.Config()

	var flash string
	if session, err := h.sessionStore.Get(r, sessionName); err == nil {
		if flashes := session.Flashes(); len(flashes) > 0 {
			if msg, ok := flashes[0].(string); ok {
				flash = msg
			}
			session.Save(r, w)
		}
	}

	data := map[string]interface{}{
		"Config":    cfg,
		"Mode":      h.postService.Mode(),
		"Flash":     flash,
		"Error":     errorMessage,
		"csrfField": csrf.TemplateField(r),
	}

	if err := h.settingsTemplate.Execute(w, data); err != nil {
		log.Printf("Error executing settings template: %v", err)
	}
}

func (h *SettingsHandler) handleSave(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "Invalid form data", http.StatusBadRequest)
		return
	}

	cfg, err := h.configService.Save(r.FormValue("repository_url"), r.FormValue("posts_path"))
	if err != nil {
		if errors.Is(err, domain.ErrValidation) {
			h.showSettingsPage(w, r, err.Error())
			return
		}
		log.Printf("Error saving config: %v", err)
		http.Error(w, "Error saving settings", http.StatusInternalServerError)
		return
	}

	h.postService.UpdateConfig(cfg)
	h.setFlash(w, r, "Settings saved")
	http.Redirect(w, r, "/settings", http.StatusFound)
}

func (h *SettingsHandler) Reset(w http.ResponseWriter, r *http.Request) {
	cfg, err := h.configService.Reset()
	if err != nil {
		log.Printf("Error resetting config: %v", err)
		http.Error(w, "Error resetting settings", http.StatusInternalServerError)
		return
	}

	h.postService.UpdateConfig(cfg)
	h.setFlash(w, r, "Settings reset to default")
	http.Redirect(w, r, "/settings", http.StatusFound)
}

func (h *SettingsHandler) setFlash(w http.ResponseWriter, r *http.Request, message string) {
	session, err := h.sessionStore.Get(r, sessionName)
	if err != nil {
		return
	}
	session.AddFlash(message)
	if err := session.Save(r, w); err != nil {
		log.Printf("Error saving session: %v", err)
	}
}
