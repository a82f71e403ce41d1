package vision

import (
	"fmt"
	"image"
	"os"

	"gocv.io/x/gocv"
)

const (
	// output layer names of the segmentation network
	boxesOutputLayer = "detection_out_final"
	masksOutputLayer = "detection_masks"

	// columns per detection row in the boxes output
	detectionRowSize = 7

	maskBinarizeThreshold = 0.5
)

// Detector runs the segmentation network over encoded images. The network is
// loaded once and never reloaded; Detect calls are read-only with respect to
// the loaded model.
type Detector struct {
	net    gocv.Net
	labels []string
}

// NewDetector loads the network and its label table from disk.
func NewDetector(modelPath, configPath, labelsPath string) (*Detector, error) {
	if _, err := os.Stat(modelPath); os.IsNotExist(err) {
		return nil, fmt.Errorf("model file not found: %s", modelPath)
	}

	labels, err := LoadLabels(labelsPath)
	if err != nil {
		return nil, fmt.Errorf("loading labels: %w", err)
	}

	net := gocv.ReadNet(modelPath, configPath)
	if net.Empty() {
		return nil, fmt.Errorf("failed to load network from %s", modelPath)
	}

	if err := net.SetPreferableBackend(gocv.NetBackendDefault); err != nil {
		return nil, fmt.Errorf("setting backend: %w", err)
	}
	if err := net.SetPreferableTarget(gocv.NetTargetCPU); err != nil {
		return nil, fmt.Errorf("setting target: %w", err)
	}

	return &Detector{net: net, labels: labels}, nil
}

// Labels returns the class index to name mapping.
func (d *Detector) Labels() []string {
	return d.labels
}

// Close releases the network.
func (d *Detector) Close() error {
	return d.net.Close()
}

// DetectObjects decodes the image and runs one forward pass, returning all
// reported detections in network output order. Boxes are scaled to pixel
// space; mask outlines are traced into polygons where the network produced
// an instance mask for the detection.
func (d *Detector) DetectObjects(img []byte) ([]Detection, error) {
	mat, err := gocv.IMDecode(img, gocv.IMReadColor)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidImage, err)
	}
	defer mat.Close()

	if mat.Empty() {
		return nil, fmt.Errorf("%w: decoded image is empty", ErrInvalidImage)
	}

	cols := mat.Cols()
	rows := mat.Rows()

	blob := gocv.BlobFromImage(mat, 1.0, image.Pt(cols, rows),
		gocv.NewScalar(0, 0, 0, 0), true, false)
	defer blob.Close()

	d.net.SetInput(blob, "")

	outputs := d.net.ForwardLayers([]string{boxesOutputLayer, masksOutputLayer})
	if len(outputs) != 2 {
		return nil, fmt.Errorf("unexpected network output count: %d", len(outputs))
	}
	boxes := outputs[0]
	masks := outputs[1]
	defer boxes.Close()
	defer masks.Close()

	maskCount := 0
	if !masks.Empty() {
		maskCount = masks.Size()[0]
	}

	reshaped := boxes.Reshape(1, boxes.Total()/detectionRowSize)
	defer reshaped.Close()

	var dets []Detection
	for i := 0; i < reshaped.Rows(); i++ {
		confidence := float64(reshaped.GetFloatAt(i, 2))
		if confidence <= 0 {
			continue
		}

		classID := int(reshaped.GetFloatAt(i, 1))
		x1 := float64(reshaped.GetFloatAt(i, 3)) * float64(cols)
		y1 := float64(reshaped.GetFloatAt(i, 4)) * float64(rows)
		x2 := float64(reshaped.GetFloatAt(i, 5)) * float64(cols)
		y2 := float64(reshaped.GetFloatAt(i, 6)) * float64(rows)

		det := Detection{
			Box:        [4]float64{x1, y1, x2, y2},
			ClassID:    classID,
			Confidence: confidence,
		}

		if i < maskCount {
			det.Polygon = d.maskPolygon(masks, i, classID, det.Box)
		}

		dets = append(dets, det)
	}

	return dets, nil
}

// maskPolygon extracts the instance mask of detection index i, resizes it to
// the bounding box, binarizes it and traces the largest outer contour. The
// returned points are in image pixel space. Returns nil when no usable mask
// exists.
func (d *Detector) maskPolygon(masks gocv.Mat, i, classID int, box [4]float64) [][2]float64 {
	mask, err := masks.FromPtr(masks.Size()[2], masks.Size()[3], gocv.MatTypeCV32F, i, classID)
	if err != nil {
		return nil
	}
	defer mask.Close()

	boxW := int(box[2] - box[0])
	boxH := int(box[3] - box[1])
	if boxW <= 0 || boxH <= 0 {
		return nil
	}

	resized := gocv.NewMat()
	defer resized.Close()
	gocv.Resize(mask, &resized, image.Pt(boxW, boxH), 0, 0, gocv.InterpolationLinear)

	thresh := gocv.NewMat()
	defer thresh.Close()
	gocv.Threshold(resized, &thresh, maskBinarizeThreshold, 255, gocv.ThresholdBinary)

	bin := gocv.NewMat()
	defer bin.Close()
	thresh.ConvertTo(&bin, gocv.MatTypeCV8U)

	contours := gocv.FindContours(bin, gocv.RetrievalExternal, gocv.ChainApproxSimple)
	defer contours.Close()

	if contours.Size() == 0 {
		return nil
	}

	// keep the largest outline only
	best := 0
	bestArea := gocv.ContourArea(contours.At(0))
	for c := 1; c < contours.Size(); c++ {
		if area := gocv.ContourArea(contours.At(c)); area > bestArea {
			best = c
			bestArea = area
		}
	}

	contour := contours.At(best)
	points := make([][2]float64, 0, contour.Size())
	for p := 0; p < contour.Size(); p++ {
		pt := contour.At(p)
		points = append(points, [2]float64{
			box[0] + float64(pt.X),
			box[1] + float64(pt.Y),
		})
	}

	return points
}
