package handler

import (
	"net/http"
	"strings"

	"github.com/lingochat/internal/chat"
	"github.com/lingochat/internal/translate"
)

type TranslateHandler struct {
	tr translate.Translator
}

func NewTranslateHandler(tr translate.Translator) *TranslateHandler {
	return &TranslateHandler{tr: tr}
}

// TranslateRequest: предпросмотр перевода. Пустой from определяется по тексту.
type TranslateRequest struct {
	Text string `json:"text"`
	From string `json:"from,omitempty"`
	To   string `json:"to"`
}

type TranslateResponse struct {
	Text           string `json:"text"`
	TranslatedText string `json:"translatedText"`
	From           string `json:"from"`
	To             string `json:"to"`
}

func (h *TranslateHandler) Translate(w http.ResponseWriter, r *http.Request) {
	var req TranslateRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if strings.TrimSpace(req.Text) == "" {
		writeChatError(w, r, "Translate", chat.ErrEmptyMessage)
		return
	}
	to, err := translate.Normalize(req.To)
	if err != nil {
		writeChatError(w, r, "Translate", err)
		return
	}
	from := h.tr.DetectLanguage(req.Text)
	if req.From != "" {
		if from, err = translate.Normalize(req.From); err != nil {
			writeChatError(w, r, "Translate", err)
			return
		}
	}
	out, err := h.tr.Translate(r.Context(), req.Text, from, to)
	if err != nil {
		writeChatError(w, r, "Translate", err)
		return
	}
	writeJSON(w, http.StatusOK, TranslateResponse{Text: req.Text, TranslatedText: out, From: from, To: to})
}
