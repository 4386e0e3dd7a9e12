package v1alpha1

import (
	"net/http"

	"github.com/ranis-junior/psychology-reports/api/v1alpha1"
)

// (GET /health)
func (h *ServiceHandler) Health(w http.ResponseWriter, r *http.Request) {
	respond(w, r, http.StatusOK, v1alpha1.Health{Status: "ok"})
}
