// Package response writes the API's uniform JSON envelope:
// {"status": <code>, "data": <payload|null>, "message": <text>}.
package response

import (
	"encoding/json"
	"net/http"

	"github.com/raunak234362/WBT-OneLogin/apperrors"
	"github.com/raunak234362/WBT-OneLogin/logging"
)

type Envelope struct {
	Status  int         `json:"status"`
	Data    interface{} `json:"data"`
	Message string      `json:"message"`
}

func JSON(w http.ResponseWriter, status int, data interface{}, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(Envelope{Status: status, Data: data, Message: message}); err != nil {
		logging.Logger.Errorf("Event ID: RESPONSE_ENCODE_FAILED, Description: failed to encode response: %v", err)
	}
}

// Error writes err with the status code its classification carries. Internal
// faults are logged with their cause and masked in the envelope.
func Error(w http.ResponseWriter, err error) {
	status := apperrors.StatusCode(err)
	if status == http.StatusInternalServerError {
		logging.Logger.Errorf("Event ID: INTERNAL_ERROR, Description: %v", err)
	}
	JSON(w, status, nil, apperrors.ClientMessage(err))
}
