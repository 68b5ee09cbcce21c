package httpx

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/fekuna/omnipos-catalog-service/internal/apperrors"
	"github.com/fekuna/omnipos-catalog-service/internal/pkg/i18n"
	"github.com/fekuna/omnipos-catalog-service/internal/pkg/logger"
	"go.uber.org/zap"
)

const (
	Failure int = 0
	Success int = 1
)

var errNoResponse = errors.New("handler returned no response")

type Response struct {
	StatusCode  int
	Response    any
	ContentType string
	Body        []byte
	Filename    string
}

type RequestHandler func(r *http.Request) (*Response, error)

type errorRsp struct {
	Result  int    `json:"result"`
	Error   string `json:"error"`
	Code    string `json:"code,omitempty"`
	Field   string `json:"field,omitempty"`
	Details string `json:"details,omitempty"`
}

type successRsp struct {
	Result int `json:"result"`
	Data   any `json:"data"`
}

// Responder turns handler results into localized JSON responses.
type Responder struct {
	translator *i18n.Translator
	logger     logger.ZapLogger
}

func NewResponder(t *i18n.Translator, log logger.ZapLogger) *Responder {
	return &Responder{translator: t, logger: log}
}

// Wrap adapts a RequestHandler to http.HandlerFunc.
func (rs *Responder) Wrap(handler RequestHandler) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		rsp, err := handler(r)
		if err != nil {
			rs.SendError(w, r, err)
			return
		}
		if rsp == nil {
			rs.SendError(w, r, apperrors.Generic(errNoResponse))
			return
		}
		if rsp.StatusCode == 0 {
			rsp.StatusCode = http.StatusOK
		}
		if rsp.Body != nil {
			if rsp.Filename != "" {
				w.Header().Set("Content-Disposition", "attachment; filename="+strconv.Quote(rsp.Filename))
			}
			w.Header().Set("Content-Type", rsp.ContentType)
			w.WriteHeader(rsp.StatusCode)
			w.Write(rsp.Body)
			return
		}
		SendJSON(w, rsp.StatusCode, &successRsp{Result: Success, Data: rsp.Response})
	}
}

// SendError writes err with the status of its kind, localized for the request.
func (rs *Responder) SendError(w http.ResponseWriter, r *http.Request, err error) {
	appErr, ok := apperrors.As(err)
	if !ok {
		appErr = apperrors.Generic(err)
	}
	status := appErr.StatusCode()
	if status >= http.StatusInternalServerError {
		rs.logger.Error("request failed",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.String("code", appErr.MessageID),
			zap.Error(err),
		)
	}
	SendJSON(w, status, &errorRsp{
		Result: Failure,
		Error:  rs.Translate(r, appErr.MessageID, appErr.Data, appErr.Message),
		Code:   appErr.MessageID,
		Field:  appErr.Field,
	})
}

func (rs *Responder) Translate(r *http.Request, messageID string, data map[string]interface{}, fallback string) string {
	lang := rs.translator.Match(r.Header.Get("Accept-Language"))
	return rs.translator.Translate(lang, messageID, data, fallback)
}

// Notices localizes non-fatal messages for the request language.
func (rs *Responder) Notices(r *http.Request, notices []apperrors.Notice) []string {
	out := make([]string, 0, len(notices))
	for _, n := range notices {
		out = append(out, rs.Translate(r, n.MessageID, n.Data, n.Message))
	}
	return out
}

func SendJSON(w http.ResponseWriter, status int, body any) {
	payload, err := json.Marshal(body)
	if err != nil {
		w.WriteHeader(http.StatusInternalServerError)
		w.Write([]byte("Unable to encode response"))
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	w.Write(payload)
}

// GetRequestData decodes a JSON body into data.
func GetRequestData(r *http.Request, data any) error {
	if r.Body == nil {
		return apperrors.ErrBadRequest
	}
	if err := json.NewDecoder(r.Body).Decode(data); err != nil {
		return apperrors.ErrBadRequest.WithCause(err)
	}
	return nil
}

// QueryInt reads an integer query parameter, returning fallback when absent or malformed.
func QueryInt(r *http.Request, name string, fallback int) int {
	if v := r.URL.Query().Get(name); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return fallback
}
