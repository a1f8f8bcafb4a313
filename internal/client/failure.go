package client

import (
	"context"
	"errors"

	"zen-backend/internal/models"
	"zen-backend/internal/services"
)

const crisisNotice = "Se você estiver em crise ou precisar de ajuda imediata, ligue para o " +
	services.CrisisHotline + ", disponível 24h, ou procure o pronto-socorro mais próximo. 💙"

var guidance = map[models.ErrorCode]string{
	models.CodeInvalidMessage:    "Não consegui entender sua mensagem. Pode escrevê-la novamente?",
	models.CodeMessageTooLong:    "Sua mensagem ficou muito longa. Pode resumi-la um pouco e enviar de novo?",
	models.CodeContentFiltered:   "Não consigo responder a essa mensagem do jeito que ela foi escrita. Pode reformulá-la com outras palavras?",
	models.CodeRateLimitExceeded: "Recebi muitas mensagens em pouco tempo. Aguarde alguns minutos e tente novamente.",
	models.CodeTimeout:           "A resposta demorou mais do que o esperado. Tente enviar sua mensagem novamente.",
	models.CodeNetwork:           "Estou com dificuldade de conexão no momento. Verifique sua internet e tente novamente.",
}

const genericGuidance = "Desculpe, estou com dificuldades técnicas no momento. Tente novamente em instantes."

// FailureText is the assistant-style notice shown in place of a reply. It
// always ends with the crisis hotline.
func FailureText(err error) string {
	return failureGuidance(err) + "\n\n" + crisisNotice
}

func failureGuidance(err error) string {
	var relayErr *Error
	if errors.As(err, &relayErr) {
		if text, ok := guidance[relayErr.Code]; ok {
			return text
		}
		return genericGuidance
	}

	// No relay response at all: the transport failed.
	if errors.Is(err, context.DeadlineExceeded) {
		return guidance[models.CodeTimeout]
	}
	if errors.Is(err, context.Canceled) {
		return "O envio foi interrompido antes de recebermos uma resposta. Tente novamente."
	}
	if errors.Is(err, errEmptyReply) {
		return genericGuidance
	}
	return guidance[models.CodeNetwork]
}
