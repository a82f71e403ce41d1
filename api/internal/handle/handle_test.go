package handle

import (
	"context"
	"encoding/base64"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-resty/resty/v2"

	"github.com/Tangdor/scene-analyzer-sam-llm-mobile/api/internal/llm"
	"github.com/Tangdor/scene-analyzer-sam-llm-mobile/api/internal/vision"
)

type fakeDetector struct {
	dets   []vision.Detection
	labels []string
	err    error
	calls  int
}

func (f *fakeDetector) DetectObjects(img []byte) ([]vision.Detection, error) {
	f.calls++
	return f.dets, f.err
}

func (f *fakeDetector) Labels() []string { return f.labels }

type fakeEngine struct {
	out        string
	err        error
	lastPrompt string
	lastParams llm.SamplingParams
}

func (f *fakeEngine) Name() string { return "fake" }

func (f *fakeEngine) Complete(ctx context.Context, prompt string, p llm.SamplingParams) (string, error) {
	f.lastPrompt = prompt
	f.lastParams = p
	return f.out, f.err
}

func newTestClient(t *testing.T, h *Handle) *resty.Client {
	t.Helper()

	mux := http.NewServeMux()
	mux.HandleFunc("/segment", h.Segment)
	mux.HandleFunc("/llm", h.LLM)

	ts := httptest.NewServer(mux)
	t.Cleanup(ts.Close)

	return resty.New().SetBaseURL(ts.URL)
}

func validImageB64() string {
	return base64.StdEncoding.EncodeToString([]byte{0xFF, 0xD8, 0xFF, 0xE0})
}

func TestSegmentMissingImage(t *testing.T) {
	client := newTestClient(t, New(&fakeDetector{}, nil))

	var body map[string]string
	resp, err := client.R().
		SetBody(map[string]string{}).
		SetError(&body).
		Post("/segment")
	if err != nil {
		t.Fatal(err)
	}
	if resp.StatusCode() != 400 {
		t.Fatalf("expected 400, got %d", resp.StatusCode())
	}
	if body["error"] != "No image provided" {
		t.Errorf("unexpected error body %v", body)
	}
}

func TestSegmentInvalidBase64(t *testing.T) {
	client := newTestClient(t, New(&fakeDetector{}, nil))

	var body map[string]string
	resp, err := client.R().
		SetBody(SegmentRequest{Image: "!!! not base64 !!!"}).
		SetError(&body).
		Post("/segment")
	if err != nil {
		t.Fatal(err)
	}
	if resp.StatusCode() != 400 {
		t.Fatalf("expected 400, got %d", resp.StatusCode())
	}
	if body["error"] != "Invalid image" {
		t.Errorf("unexpected error body %v", body)
	}
}

func TestSegmentNonImagePayload(t *testing.T) {
	det := &fakeDetector{}
	client := newTestClient(t, New(det, nil))

	// valid base64, but the decoded bytes are not an encoded image
	var body map[string]string
	resp, err := client.R().
		SetBody(SegmentRequest{Image: base64.StdEncoding.EncodeToString([]byte("plain text payload"))}).
		SetError(&body).
		Post("/segment")
	if err != nil {
		t.Fatal(err)
	}
	if resp.StatusCode() != 400 {
		t.Fatalf("expected 400, got %d", resp.StatusCode())
	}
	if body["error"] != "Invalid image" {
		t.Errorf("unexpected error body %v", body)
	}
	if det.calls != 0 {
		t.Errorf("detector invoked %d times for a non-image payload", det.calls)
	}
}

func TestSegmentDetectorFailure(t *testing.T) {
	det := &fakeDetector{err: errors.New("forward pass failed")}
	client := newTestClient(t, New(det, nil))

	resp, err := client.R().
		SetBody(SegmentRequest{Image: validImageB64()}).
		Post("/segment")
	if err != nil {
		t.Fatal(err)
	}
	if resp.StatusCode() != 502 {
		t.Errorf("expected 502, got %d", resp.StatusCode())
	}
}

func TestSegmentUndecodableImageBytes(t *testing.T) {
	det := &fakeDetector{err: vision.ErrInvalidImage}
	client := newTestClient(t, New(det, nil))

	var body map[string]string
	resp, err := client.R().
		SetBody(SegmentRequest{Image: validImageB64()}).
		SetError(&body).
		Post("/segment")
	if err != nil {
		t.Fatal(err)
	}
	if resp.StatusCode() != 400 {
		t.Fatalf("expected 400, got %d", resp.StatusCode())
	}
	if body["error"] != "Invalid image" {
		t.Errorf("unexpected error body %v", body)
	}
}

func TestSegmentHappyPath(t *testing.T) {
	det := &fakeDetector{
		labels: []string{"person", "fire extinguisher"},
		dets: []vision.Detection{
			{Box: [4]float64{10, 20, 50.5, 80.25}, ClassID: 1, Confidence: 0.92},
			{Box: [4]float64{0, 0, 5, 5}, ClassID: 0, Confidence: 0.3},
		},
	}
	client := newTestClient(t, New(det, nil))

	var out vision.Result
	resp, err := client.R().
		SetBody(SegmentRequest{Image: validImageB64()}).
		SetResult(&out).
		Post("/segment")
	if err != nil {
		t.Fatal(err)
	}
	if resp.StatusCode() != 200 {
		t.Fatalf("expected 200, got %d: %s", resp.StatusCode(), resp.String())
	}
	if len(out.Objects) != 1 {
		t.Fatalf("expected 1 object, got %d", len(out.Objects))
	}

	obj := out.Objects[0]
	if obj.Label != "fire extinguisher" || obj.Score != 0.92 {
		t.Errorf("unexpected object %+v", obj)
	}
	if obj.Box.Width != 40.5 || obj.Box.Height != 60.25 {
		t.Errorf("unexpected box %+v", obj.Box)
	}
}

func TestSegmentTargetFilter(t *testing.T) {
	det := &fakeDetector{
		labels: []string{"person", "chair"},
		dets: []vision.Detection{
			{Box: [4]float64{0, 0, 5, 5}, ClassID: 0, Confidence: 0.9},
			{Box: [4]float64{0, 0, 5, 5}, ClassID: 1, Confidence: 0.9},
		},
	}
	client := newTestClient(t, New(det, nil))

	var out vision.Result
	resp, err := client.R().
		SetBody(SegmentRequest{Image: validImageB64(), Target: "CHAIR"}).
		SetResult(&out).
		Post("/segment")
	if err != nil {
		t.Fatal(err)
	}
	if resp.StatusCode() != 200 {
		t.Fatalf("expected 200, got %d", resp.StatusCode())
	}
	if len(out.Objects) != 1 || out.Objects[0].Label != "chair" {
		t.Errorf("unexpected objects %+v", out.Objects)
	}
}

func TestSegmentMethodGuard(t *testing.T) {
	client := newTestClient(t, New(&fakeDetector{}, nil))

	resp, err := client.R().Get("/segment")
	if err != nil {
		t.Fatal(err)
	}
	if resp.StatusCode() != 405 {
		t.Errorf("expected 405, got %d", resp.StatusCode())
	}
}

func TestLLMMissingPrompt(t *testing.T) {
	engines := &llm.Engines{Llama: &fakeEngine{}, Default: "llama"}
	client := newTestClient(t, New(nil, engines))

	for _, prompt := range []string{"", "   "} {
		var body map[string]string
		resp, err := client.R().
			SetBody(LLMRequest{Prompt: prompt}).
			SetError(&body).
			Post("/llm")
		if err != nil {
			t.Fatal(err)
		}
		if resp.StatusCode() != 400 {
			t.Fatalf("prompt %q: expected 400, got %d", prompt, resp.StatusCode())
		}
		if body["error"] != "No prompt provided" {
			t.Errorf("prompt %q: unexpected error body %v", prompt, body)
		}
	}
}

func TestLLMHappyPath(t *testing.T) {
	eng := &fakeEngine{
		out: "\nA red fire extinguisher.<end_of_turn>\n<start_of_turn>user",
	}
	engines := &llm.Engines{Llama: eng, Default: "llama"}
	client := newTestClient(t, New(nil, engines))

	var out LLMResponse
	resp, err := client.R().
		SetBody(LLMRequest{Prompt: "Describe the scene."}).
		SetResult(&out).
		Post("/llm")
	if err != nil {
		t.Fatal(err)
	}
	if resp.StatusCode() != 200 {
		t.Fatalf("expected 200, got %d: %s", resp.StatusCode(), resp.String())
	}
	if out.Response != "A red fire extinguisher." {
		t.Errorf("unexpected response %q", out.Response)
	}

	// the engine receives the full chat template with the verbatim prompt
	if eng.lastPrompt != llm.FormatPrompt("Describe the scene.") {
		t.Errorf("engine got prompt %q", eng.lastPrompt)
	}
	if eng.lastParams != llm.DefaultSampling {
		t.Errorf("engine got params %+v", eng.lastParams)
	}
}

func TestLLMEngineFailure(t *testing.T) {
	eng := &fakeEngine{err: context.DeadlineExceeded}
	engines := &llm.Engines{Llama: eng, Default: "llama"}
	client := newTestClient(t, New(nil, engines))

	resp, err := client.R().
		SetBody(LLMRequest{Prompt: "hi"}).
		Post("/llm")
	if err != nil {
		t.Fatal(err)
	}
	if resp.StatusCode() != 502 {
		t.Errorf("expected 502, got %d", resp.StatusCode())
	}
}

func TestLLMUnknownEngine(t *testing.T) {
	engines := &llm.Engines{Llama: &fakeEngine{}, Default: "llama"}
	client := newTestClient(t, New(nil, engines))

	resp, err := client.R().
		SetBody(LLMRequest{Prompt: "hi", Engine: "nope"}).
		Post("/llm")
	if err != nil {
		t.Fatal(err)
	}
	if resp.StatusCode() != 502 {
		t.Errorf("expected 502, got %d", resp.StatusCode())
	}
}
