package server

import (
	"encoding/json"
	stderrors "errors"
	"net/http"
	"time"
	"wa-gateway/domain"
	"wa-gateway/errors"
)

type StatusResponse struct {
	Status      bool   `json:"status"`
	ClientReady bool   `json:"client_ready"`
	Message     string `json:"message"`
}

type MessageResponse struct {
	Status  bool `json:"status"`
	Message any  `json:"message"`
}

type PayloadResponse struct {
	Status   bool `json:"status"`
	Response any  `json:"response"`
}

type GroupResponse struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

type TokenResponse struct {
	Status    bool      `json:"status"`
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

// writeFailure answers {status:false, message}. Field level validation
// failures carry a field to message map instead of a string.
func writeFailure(w http.ResponseWriter, err error) {
	var fields FieldErrors
	if stderrors.As(err, &fields) {
		writeJSON(w, http.StatusUnprocessableEntity, MessageResponse{Status: false, Message: fields})
		return
	}
	writeJSON(w, errors.HTTPStatus(err), MessageResponse{Status: false, Message: publicMessage(err)})
}

// writeResult answers a dispatch outcome, success payload under key "response".
func writeResult(w http.ResponseWriter, result domain.DispatchResult) {
	if !result.OK {
		writeFailure(w, result.Failure)
		return
	}
	writeJSON(w, http.StatusOK, PayloadResponse{Status: true, Response: result.Payload})
}

func writeMessage(w http.ResponseWriter, message string) {
	writeJSON(w, http.StatusOK, MessageResponse{Status: true, Message: message})
}

// publicMessage strips wrapping context from failures whose sentinel text is
// meant for the caller.
func publicMessage(err error) string {
	var tooLarge *errors.PayloadTooLargeError
	var notFound *errors.GroupNotFoundError
	var idNotFound *errors.GroupIDNotFoundError
	var registration *errors.RegistrationCheckError
	var send *errors.SendError
	switch {
	case stderrors.As(err, &tooLarge):
		return tooLarge.Error()
	case stderrors.As(err, &notFound):
		return notFound.Error()
	case stderrors.As(err, &idNotFound):
		return idNotFound.Error()
	case stderrors.As(err, &registration):
		return registration.Error()
	case stderrors.As(err, &send):
		return send.Error()
	}
	for _, sentinel := range []error{
		errors.ErrSessionNotReady,
		errors.ErrRecipientNotRegistered,
		errors.ErrNoFileUploaded,
		errors.ErrGroupMutationFailed,
		errors.ErrClearFailed,
		errors.ErrSendFailed,
	} {
		if stderrors.Is(err, sentinel) {
			return sentinel.Error()
		}
	}
	if stderrors.Is(err, errors.ErrEmptyUpload) || stderrors.Is(err, errors.ErrEncodingFailed) {
		return uploadFailurePrefix + err.Error()
	}
	return err.Error()
}

const uploadFailurePrefix = "Failed to process uploaded file: "
