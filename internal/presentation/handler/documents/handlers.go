package documents

import (
	"errors"
	"net/http"
	"net/url"

	"github.com/go-chi/chi/v5"
	documentUseCase "github.com/hilthontt/doctrack/internal/application/usecases/document"
	"github.com/hilthontt/doctrack/internal/domain"
	"github.com/hilthontt/doctrack/internal/infrastructure/json"
	"github.com/hilthontt/doctrack/internal/infrastructure/logging"
	"github.com/hilthontt/doctrack/internal/presentation/utils"
	"github.com/hilthontt/doctrack/internal/presentation/views"
)

// maxFormBytes bounds a submitted document form.
const maxFormBytes = 1 << 20

type Handler struct {
	documents documentUseCase.DocumentUseCase
	views     *views.Renderer
	logger    logging.Logger
}

func NewHandler(documents documentUseCase.DocumentUseCase, renderer *views.Renderer, logger logging.Logger) *Handler {
	return &Handler{documents: documents, views: renderer, logger: logger}
}

func (h *Handler) IndexHandler(w http.ResponseWriter, r *http.Request) {
	docs, err := h.documents.List(r.Context())
	if err != nil {
		utils.WriteTextError(w, r, h.logger, err)
		return
	}
	h.render(w, r, views.PageIndex, views.IndexData{Documents: docs})
}

func (h *Handler) NewDocumentFormHandler(w http.ResponseWriter, r *http.Request) {
	h.render(w, r, views.PageNewDocument, views.NewFormData())
}

func (h *Handler) SubmitHandler(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxFormBytes)
	if err := r.ParseForm(); err != nil {
		http.Error(w, "Invalid form.", http.StatusBadRequest)
		return
	}

	if _, err := h.documents.Submit(r.Context(), formFields(r.PostForm)); err != nil {
		utils.WriteTextError(w, r, h.logger, err)
		return
	}
	http.Redirect(w, r, "/", http.StatusFound)
}

// DepartmentHandler answers 404 for an unknown department without touching
// storage.
func (h *Handler) DepartmentHandler(w http.ResponseWriter, r *http.Request) {
	dept, docs, err := h.documents.ListByDepartment(r.Context(), chi.URLParam(r, "department"))
	if err != nil {
		if errors.Is(err, domain.ErrInvalidDepartment) {
			http.Error(w, "Department not found.", http.StatusNotFound)
			return
		}
		utils.WriteTextError(w, r, h.logger, err)
		return
	}
	h.render(w, r, views.PageDepartment, views.NewDepartmentData(dept, docs))
}

func (h *Handler) EditDetailFormHandler(w http.ResponseWriter, r *http.Request) {
	doc, err := h.documents.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		utils.WriteTextError(w, r, h.logger, err)
		return
	}
	h.render(w, r, views.PageEditDetail, views.EditDetailData{Document: *doc})
}

func (h *Handler) EditDetailHandler(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	r.Body = http.MaxBytesReader(w, r.Body, maxFormBytes)
	if err := r.ParseForm(); err != nil {
		http.Error(w, "Invalid form.", http.StatusBadRequest)
		return
	}

	at := domain.Location{
		Place: r.PostForm.Get("place"),
		Time:  r.PostForm.Get("time"),
		Date:  r.PostForm.Get("date"),
	}
	if _, err := h.documents.Transition(r.Context(), id, r.PostForm.Get("action"), at); err != nil {
		utils.WriteTextError(w, r, h.logger, err)
		return
	}
	http.Redirect(w, r, "/EditDetail/"+url.PathEscape(id), http.StatusFound)
}

func (h *Handler) ViewQRHandler(w http.ResponseWriter, r *http.Request) {
	details, err := h.documents.Details(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		utils.WriteTextError(w, r, h.logger, err)
		return
	}
	h.render(w, r, views.PageViewQR, views.ViewQRData{
		Document: details.Document,
		CodeURL:  details.CodeURL,
		History:  details.History,
	})
}

// GetLogHandler returns a document's history as JSON.
func (h *Handler) GetLogHandler(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	if _, err := h.documents.Get(r.Context(), id); err != nil {
		status, msg := utils.StatusFor(err)
		if status >= http.StatusInternalServerError {
			utils.WriteTextError(w, r, h.logger, err)
			return
		}
		json.WriteError(w, status, msg)
		return
	}

	history, err := h.documents.History(r.Context(), id)
	if err != nil {
		h.logger.Error(logging.Storage, logging.TableRead, "failed to read history", map[logging.ExtraKey]any{
			logging.DocumentID:   id,
			logging.ErrorMessage: err.Error(),
		})
		json.WriteInternalError(w)
		return
	}

	resp := make([]logEntryResponse, 0, len(history))
	for _, e := range history {
		resp = append(resp, newLogEntryResponse(e))
	}
	json.Write(w, http.StatusOK, resp)
}

func (h *Handler) render(w http.ResponseWriter, r *http.Request, page string, data any) {
	if err := h.views.Render(w, http.StatusOK, page, data); err != nil {
		utils.WriteTextError(w, r, h.logger, err)
	}
}

// formFields keeps the first value of each submitted field.
func formFields(form url.Values) map[string]string {
	fields := make(map[string]string, len(form))
	for k, v := range form {
		if len(v) > 0 {
			fields[k] = v[0]
		}
	}
	return fields
}
