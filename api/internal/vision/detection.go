package vision

import "errors"

// ErrInvalidImage is returned when the request payload cannot be decoded as
// an image. Handlers map it to a client error before any model invocation.
var ErrInvalidImage = errors.New("invalid image")

// Detection is a single object instance reported by the segmentation model.
type Detection struct {
	// Box holds the bounding box corners (x1, y1, x2, y2) in image pixel space.
	Box [4]float64
	// ClassID is the line number in the labels file the model was trained on.
	ClassID int
	// Confidence is the detection score in [0,1].
	Confidence float64
	// Polygon is the mask boundary outline, nil when the model run produced
	// no mask for this detection.
	Polygon [][2]float64
}

// ObjectDetector is given an image and returns zero or more detected objects.
type ObjectDetector interface {
	// DetectObjects returns the objects detected in the encoded image, in
	// model output order.
	DetectObjects(img []byte) ([]Detection, error)
	// Labels returns the class index to name mapping of the loaded model.
	Labels() []string
}
