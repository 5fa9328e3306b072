package widget

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/rs/zerolog"

	"github.com/gokatarajesh/venice-quiz-frame/internal/logging"
	httperrors "github.com/gokatarajesh/venice-quiz-frame/pkg/http/errors"
)

// HTTPHandler exposes a widget to the presentation layer as JSON.
type HTTPHandler struct {
	widget *Widget
	logger zerolog.Logger
}

// NewHTTPHandler constructs the frame HTTP handler.
func NewHTTPHandler(w *Widget, logger zerolog.Logger) *HTTPHandler {
	return &HTTPHandler{
		widget: w,
		logger: logger.With().Str("component", "frame_http").Logger(),
	}
}

// AnswerRequest is the body of POST /v1/frame/answer.
type AnswerRequest struct {
	QuestionIndex *int `json:"question_index"`
	Choice        *int `json:"choice"`
}

type transitionResponse struct {
	Applied bool `json:"applied"`
	View    View `json:"view"`
}

type addResponse struct {
	Status string `json:"status"`
	View   View   `json:"view"`
}

// HandleView handles GET /v1/frame
func (h *HTTPHandler) HandleView(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		httperrors.RespondMethodNotAllowed(w)
		return
	}
	h.respondJSON(w, http.StatusOK, h.widget.View())
}

// HandleAnswer handles POST /v1/frame/answer
func (h *HTTPHandler) HandleAnswer(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		httperrors.RespondMethodNotAllowed(w)
		return
	}

	var req AnswerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httperrors.RespondBadRequest(w, httperrors.ErrCodeInvalidRequest, "Invalid JSON payload")
		return
	}
	if req.QuestionIndex == nil {
		httperrors.RespondValidationError(w, httperrors.ErrCodeValidationFailed, "question_index is required", "question_index")
		return
	}
	if req.Choice == nil {
		httperrors.RespondValidationError(w, httperrors.ErrCodeValidationFailed, "choice is required", "choice")
		return
	}

	view, applied, err := h.widget.Answer(*req.QuestionIndex, *req.Choice)
	h.respondTransition(w, r, view, applied, err)
}

// HandlePrevious handles POST /v1/frame/previous
func (h *HTTPHandler) HandlePrevious(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, h.widget.Previous)
}

// HandleNext handles POST /v1/frame/next
func (h *HTTPHandler) HandleNext(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, h.widget.Next)
}

// HandleReset handles POST /v1/frame/reset
func (h *HTTPHandler) HandleReset(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, h.widget.Reset)
}

// HandleAdd handles POST /v1/frame/add
func (h *HTTPHandler) HandleAdd(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		httperrors.RespondMethodNotAllowed(w)
		return
	}

	view, status, err := h.widget.RequestAdd(r.Context())
	if err != nil {
		h.respondLoading(w, view)
		return
	}
	h.respondJSON(w, http.StatusOK, addResponse{Status: status, View: view})
}

func (h *HTTPHandler) transition(w http.ResponseWriter, r *http.Request, fn func() (View, bool, error)) {
	if r.Method != http.MethodPost {
		httperrors.RespondMethodNotAllowed(w)
		return
	}
	view, applied, err := fn()
	h.respondTransition(w, r, view, applied, err)
}

func (h *HTTPHandler) respondTransition(w http.ResponseWriter, r *http.Request, view View, applied bool, err error) {
	if errors.Is(err, ErrLoading) {
		h.respondLoading(w, view)
		return
	}
	logger := logging.FromContext(r.Context())
	if err != nil {
		logger.Error().Err(err).Msg("frame transition failed")
		httperrors.RespondInternalError(w, "Transition failed")
		return
	}
	if !applied {
		logger.Debug().Str("path", r.URL.Path).Msg("transition rejected")
	}
	h.respondJSON(w, http.StatusOK, transitionResponse{Applied: applied, View: view})
}

func (h *HTTPHandler) respondLoading(w http.ResponseWriter, view View) {
	httperrors.RespondErrorWithDetails(w, http.StatusServiceUnavailable, httperrors.ErrCodeFrameLoading, "Frame is waiting for the host", map[string]interface{}{
		"view": view,
	})
}

func (h *HTTPHandler) respondJSON(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		h.logger.Warn().Err(err).Msg("encode response failed")
	}
}
