package respond

import (
	"encoding/json"
	"net/http"

	apperror "clubetiro/internal/errors"
	"clubetiro/internal/pkg/logger"
)

// devMode habilita o eco da causa raiz em erros 500. Nunca ligar em produção.
var devMode bool

// EnableDevDetails faz os erros 500 ecoarem a mensagem do erro subjacente,
// em vez da mensagem genérica. Chamado uma vez no bootstrap quando
// ENV=development.
func EnableDevDetails() {
	devMode = true
}

// JSON serializa uma resposta de sucesso com o status informado.
func JSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if data != nil {
		json.NewEncoder(w).Encode(data)
	}
}

// Err traduz um erro de serviço para o formato padronizado da API
// (code/category/message). Erros 5xx são logados com a causa raiz; erros de
// cliente viram apenas um Debug.
func Err(w http.ResponseWriter, r *http.Request, log logger.Logger, err error) {
	status, category, message := apperror.MapToHTTPStatus(err)

	if status >= 500 {
		log.Error("Erro de servidor: "+category, err)
		if devMode {
			message = err.Error()
		}
	} else {
		log.Debug("Requisição rejeitada.", map[string]interface{}{
			"path":     r.URL.Path,
			"status":   status,
			"category": category,
		})
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]interface{}{
		"code":     status,
		"category": category,
		"message":  message,
	})
}

// Decode desserializa o corpo JSON da requisição; payloads malformados viram
// um ValidationError pronto para o Err.
func Decode(r *http.Request, dst interface{}) error {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		return apperror.NewValidationError("Payload inválido. Verifique o formato JSON.")
	}
	return nil
}
