package accounts

import (
	"net/http"
	"net/url"

	accountUseCase "github.com/hilthontt/doctrack/internal/application/usecases/account"
	"github.com/hilthontt/doctrack/internal/infrastructure/logging"
	"github.com/hilthontt/doctrack/internal/presentation/utils"
	"github.com/hilthontt/doctrack/internal/presentation/views"
)

const maxFormBytes = 64 << 10

type Handler struct {
	accounts accountUseCase.AccountUseCase
	views    *views.Renderer
	logger   logging.Logger
}

func NewHandler(accounts accountUseCase.AccountUseCase, renderer *views.Renderer, logger logging.Logger) *Handler {
	return &Handler{accounts: accounts, views: renderer, logger: logger}
}

func (h *Handler) SignupFormHandler(w http.ResponseWriter, r *http.Request) {
	h.render(w, r, views.PageSignup)
}

func (h *Handler) SignupHandler(w http.ResponseWriter, r *http.Request) {
	form, ok := parseForm(w, r)
	if !ok {
		return
	}

	_, err := h.accounts.Register(r.Context(),
		form.Get("name"),
		form.Get("email"),
		form.Get("password"),
		form.Get("department"),
	)
	if err != nil {
		utils.WriteTextError(w, r, h.logger, err)
		return
	}
	http.Redirect(w, r, "/", http.StatusFound)
}

func (h *Handler) LoginFormHandler(w http.ResponseWriter, r *http.Request) {
	h.render(w, r, views.PageLogin)
}

func (h *Handler) LoginHandler(w http.ResponseWriter, r *http.Request) {
	form, ok := parseForm(w, r)
	if !ok {
		return
	}

	user, err := h.accounts.Authenticate(r.Context(),
		form.Get("email"),
		form.Get("password"),
		form.Get("department"),
	)
	if err != nil {
		utils.WriteTextError(w, r, h.logger, err)
		return
	}
	http.Redirect(w, r, "/department/"+url.PathEscape(user.Department.String()), http.StatusFound)
}

func (h *Handler) render(w http.ResponseWriter, r *http.Request, page string) {
	if err := h.views.Render(w, http.StatusOK, page, views.NewFormData()); err != nil {
		utils.WriteTextError(w, r, h.logger, err)
	}
}

func parseForm(w http.ResponseWriter, r *http.Request) (url.Values, bool) {
	r.Body = http.MaxBytesReader(w, r.Body, maxFormBytes)
	if err := r.ParseForm(); err != nil {
		http.Error(w, "Invalid form.", http.StatusBadRequest)
		return nil, false
	}
	return r.PostForm, true
}
