package server

import (
	stderrors "errors"
	"fmt"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"os"
	"time"
	"wa-gateway/auth"
	"wa-gateway/contract"
	"wa-gateway/domain"
	"wa-gateway/errors"
	"wa-gateway/observability"

	"github.com/samber/lo"
)

const (
	registeredMessage   = "The number is registered"
	mediaSentMessage    = "Media sent successfully"
	addedToGroupMessage = "The number has been added to the group"
	uploadField         = "file"
	multipartOverhead   = 1 << 20
)

// TokenExchanger trades the shared API key for a bearer token.
type TokenExchanger interface {
	Exchange(apiKey, client string) (auth.Grant, error)
}

// HealthFunc returns the current gateway health snapshot.
type HealthFunc func() observability.MonitoringStats

type HandlerConfig struct {
	MaxUploadBytes       int64
	MultipartMemory      int64
	ConnectionBufferSize int
	WriteTimeout         time.Duration
	OriginPatterns       []string
}

type Handler struct {
	log        *slog.Logger
	dispatcher contract.IDispatcher
	bridge     contract.IBridge
	tokens     TokenExchanger
	health     HealthFunc
	config     HandlerConfig
}

func NewHandler(log *slog.Logger, dispatcher contract.IDispatcher, bridge contract.IBridge,
	tokens TokenExchanger, health HealthFunc, config HandlerConfig) *Handler {
	return &Handler{
		log:        log.With("component", "http"),
		dispatcher: dispatcher,
		bridge:     bridge,
		tokens:     tokens,
		health:     health,
		config:     config,
	}
}

func (h *Handler) status(w http.ResponseWriter, _ *http.Request) {
	s := h.dispatcher.Status()
	writeJSON(w, http.StatusOK, StatusResponse{Status: true, ClientReady: s.Ready, Message: s.Message})
}

func (h *Handler) healthz(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, h.health())
}

func (h *Handler) isRegistered(w http.ResponseWriter, r *http.Request) {
	var req IsRegisteredRequest
	if err := bind(r, &req); err != nil {
		writeFailure(w, err)
		return
	}
	if _, err := h.dispatcher.CheckRegistered(r.Context(), req.Number); err != nil {
		h.logFailure(r, err)
		writeFailure(w, err)
		return
	}
	writeMessage(w, registeredMessage)
}

func (h *Handler) sendMessage(w http.ResponseWriter, r *http.Request) {
	var req SendMessageRequest
	if err := bind(r, &req); err != nil {
		writeFailure(w, err)
		return
	}
	sent, err := h.dispatcher.SendText(r.Context(), req.Number, req.Message)
	h.writeDispatch(w, r, sent, err)
}

func (h *Handler) sendGroupMessage(w http.ResponseWriter, r *http.Request) {
	var req SendGroupMessageRequest
	if err := bind(r, &req); err != nil {
		writeFailure(w, err)
		return
	}
	sent, err := h.dispatcher.SendToGroup(r.Context(), req.ID, req.Name, req.Message)
	h.writeDispatch(w, r, sent, err)
}

func (h *Handler) addToGroup(w http.ResponseWriter, r *http.Request) {
	var req AddToGroupRequest
	if err := bind(r, &req); err != nil {
		writeFailure(w, err)
		return
	}
	if err := h.dispatcher.AddToGroup(r.Context(), req.Number, req.GroupID); err != nil {
		h.logFailure(r, err)
		writeFailure(w, err)
		return
	}
	writeMessage(w, addedToGroupMessage)
}

func (h *Handler) clearMessage(w http.ResponseWriter, r *http.Request) {
	var req ClearMessageRequest
	if err := bind(r, &req); err != nil {
		writeFailure(w, err)
		return
	}
	cleared, err := h.dispatcher.ClearChat(r.Context(), req.Number)
	h.writeDispatch(w, r, cleared, err)
}

// sendMedia reads a multipart upload. Small files stay in memory, larger
// ones are spooled to a temporary file the ingestion reads back.
func (h *Handler) sendMedia(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, h.config.MaxUploadBytes+multipartOverhead)
	if err := r.ParseMultipartForm(h.config.MultipartMemory); err != nil && !stderrors.Is(err, http.ErrNotMultipart) {
		writeFailure(w, h.uploadError(err))
		return
	}
	if r.MultipartForm != nil {
		defer func() { _ = r.MultipartForm.RemoveAll() }()
	}

	var req SendMediaRequest
	if err := bind(r, &req); err != nil {
		writeFailure(w, err)
		return
	}
	if s := h.dispatcher.Status(); !s.Ready {
		writeFailure(w, errors.ErrSessionNotReady)
		return
	}

	file, header, err := r.FormFile(uploadField)
	if err != nil {
		writeFailure(w, h.uploadError(err))
		return
	}
	defer func() { _ = file.Close() }()

	upload, err := toUpload(file, header)
	if err != nil {
		writeFailure(w, err)
		return
	}
	h.log.Debug("Processing uploaded file",
		"name", upload.Filename, "size", upload.DeclaredSize, "type", upload.ContentType)

	if _, err := h.dispatcher.SendMedia(r.Context(), req.Number, upload, req.Caption); err != nil {
		h.logFailure(r, err)
		writeFailure(w, err)
		return
	}
	writeMessage(w, mediaSentMessage)
}

func (h *Handler) listGroups(w http.ResponseWriter, r *http.Request) {
	groups, err := h.dispatcher.ListGroups(r.Context())
	var payload []GroupResponse
	if err == nil {
		payload = lo.Map(groups, func(c domain.Chat, _ int) GroupResponse {
			return GroupResponse{ID: c.ID.String(), Name: c.Name}
		})
	}
	h.writeDispatch(w, r, payload, err)
}

func (h *Handler) issueToken(w http.ResponseWriter, r *http.Request) {
	var req TokenRequest
	if err := bind(r, &req); err != nil {
		writeFailure(w, err)
		return
	}
	grant, err := h.tokens.Exchange(req.APIKey, req.Client)
	if err != nil {
		h.logFailure(r, err)
		writeFailure(w, err)
		return
	}
	writeJSON(w, http.StatusOK, TokenResponse{Status: true, Token: grant.Token, ExpiresAt: grant.ExpiresAt})
}

func (h *Handler) writeDispatch(w http.ResponseWriter, r *http.Request, payload any, err error) {
	result := domain.Succeeded(payload)
	if err != nil {
		h.logFailure(r, err)
		result = domain.Failed(err)
	}
	writeResult(w, result)
}

func (h *Handler) logFailure(r *http.Request, err error) {
	level := slog.LevelWarn
	if errors.HTTPStatus(err) >= http.StatusInternalServerError {
		level = slog.LevelError
	}
	h.log.Log(r.Context(), level, "Request failed",
		"path", r.URL.Path,
		"request_id", requestIDFromContext(r.Context()),
		"error", err)
}

func (h *Handler) uploadError(err error) error {
	var tooLarge *http.MaxBytesError
	switch {
	case stderrors.As(err, &tooLarge):
		return &errors.PayloadTooLargeError{Category: "upload", Limit: h.config.MaxUploadBytes}
	case stderrors.Is(err, http.ErrMissingFile), stderrors.Is(err, http.ErrNotMultipart):
		return errors.ErrNoFileUploaded
	default:
		return fmt.Errorf("%w: %v", errors.ErrEmptyUpload, err)
	}
}

// toUpload keeps spooled files on disk and reads in memory parts.
func toUpload(file multipart.File, header *multipart.FileHeader) (domain.Upload, error) {
	upload := domain.Upload{
		ContentType:  header.Header.Get("Content-Type"),
		Filename:     header.Filename,
		DeclaredSize: header.Size,
	}
	if f, ok := file.(*os.File); ok {
		upload.TempFilePath = f.Name()
		return upload, nil
	}
	data, err := io.ReadAll(file)
	if err != nil {
		return domain.Upload{}, fmt.Errorf("%w: %v", errors.ErrEmptyUpload, err)
	}
	upload.Data = data
	return upload, nil
}
