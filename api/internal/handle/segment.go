package handle

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	log "github.com/sirupsen/logrus"

	"github.com/Tangdor/scene-analyzer-sam-llm-mobile/api/internal/util"
	"github.com/Tangdor/scene-analyzer-sam-llm-mobile/api/internal/vision"
)

type SegmentRequest struct {
	Image  string `json:"image"`
	Target string `json:"target,omitempty"`
}

// Segment runs the detection model over a base64-encoded image and returns
// the detected objects.
func (h *Handle) Segment(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "POST only", http.StatusMethodNotAllowed)
		return
	}

	var req SegmentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "bad json: "+err.Error(), http.StatusBadRequest)
		return
	}

	if strings.TrimSpace(req.Image) == "" {
		writeError(w, http.StatusBadRequest, "No image provided")
		return
	}

	img, _, err := util.DecodeBase64MaybeDataURL(req.Image)
	if err != nil || len(img) == 0 {
		writeError(w, http.StatusBadRequest, "Invalid image")
		return
	}

	// reject payloads that are not an encoded image before touching the model
	if _, ok := util.SniffImageMIME(img); !ok {
		writeError(w, http.StatusBadRequest, "Invalid image")
		return
	}

	dets, err := h.detector.DetectObjects(img)
	if err != nil {
		if errors.Is(err, vision.ErrInvalidImage) {
			writeError(w, http.StatusBadRequest, "Invalid image")
			return
		}
		log.Debugf("[Segment] detection failed: %v", err)
		http.Error(w, "segment error: "+err.Error(), http.StatusBadGateway)
		return
	}

	writeJSON(w, http.StatusOK, vision.BuildResult(dets, h.detector.Labels(), req.Target))
}
