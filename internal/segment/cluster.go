package segment

import (
	"gocv.io/x/gocv"

	apperr "micrograph-analyzer/internal/errors"
)

// ClusterRegions holds the segmentation output for one intensity cluster.
type ClusterRegions struct {
	// ClusterID orders clusters by ascending center intensity, so phase 0
	// is always the darkest phase regardless of k-means initialization.
	ClusterID int
	// Center is the cluster's intensity center.
	Center float64
	// PixelCount is the number of pixels assigned to the cluster.
	PixelCount int
	// MeanIntensity is the mean grayscale value over the cluster mask.
	MeanIntensity float64
	// Regions are the cluster mask's external contours at or above the
	// caller's minimum area.
	Regions []Region
}

// Cluster groups pixel intensities into k phases by k-means and
// contour-extracts each phase mask independently. Used where phases are not
// separable by a single threshold. Empty clusters produce zero counts, not
// errors.
func Cluster(gray gocv.Mat, k int, minArea float64) ([]ClusterRegions, error) {
	if k < 2 {
		return nil, apperr.NewParameterError("cluster count must be at least 2, got %d", k)
	}

	rows, cols := gray.Rows(), gray.Cols()

	// One row per pixel, single float feature: intensity.
	pixels := gocv.NewMatWithSize(rows*cols, 1, gocv.MatTypeCV32F)
	defer pixels.Close()
	for y := 0; y < rows; y++ {
		for x := 0; x < cols; x++ {
			pixels.SetFloatAt(y*cols+x, 0, float32(gray.GetUCharAt(y, x)))
		}
	}

	labels := gocv.NewMat()
	defer labels.Close()
	centers := gocv.NewMat()
	defer centers.Close()

	criteria := gocv.NewTermCriteria(gocv.EPS+gocv.MaxIter, 100, 0.2)
	gocv.KMeans(pixels, k, &labels, criteria, 10, gocv.KMeansPPCenters, &centers)

	// Order clusters by center intensity for stable phase numbering.
	order := make([]int, k)
	for i := range order {
		order[i] = i
	}
	for i := 0; i < k; i++ {
		for j := i + 1; j < k; j++ {
			if centers.GetFloatAt(order[j], 0) < centers.GetFloatAt(order[i], 0) {
				order[i], order[j] = order[j], order[i]
			}
		}
	}

	result := make([]ClusterRegions, k)
	mask := gocv.NewMatWithSize(rows, cols, gocv.MatTypeCV8U)
	defer mask.Close()

	for phase, clusterIdx := range order {
		mask.SetTo(gocv.NewScalar(0, 0, 0, 0))

		var pixelCount int
		var intensitySum float64
		for y := 0; y < rows; y++ {
			for x := 0; x < cols; x++ {
				if labels.GetIntAt(y*cols+x, 0) == int32(clusterIdx) {
					mask.SetUCharAt(y, x, 255)
					pixelCount++
					intensitySum += float64(gray.GetUCharAt(y, x))
				}
			}
		}

		cr := ClusterRegions{
			ClusterID:  phase,
			Center:     float64(centers.GetFloatAt(clusterIdx, 0)),
			PixelCount: pixelCount,
		}
		if pixelCount > 0 {
			cr.MeanIntensity = intensitySum / float64(pixelCount)
			for _, region := range extractRegions(mask) {
				pv := region.PointVector()
				area := gocv.ContourArea(pv)
				pv.Close()
				if area >= minArea {
					cr.Regions = append(cr.Regions, region)
				}
			}
		}
		result[phase] = cr
	}

	return result, nil
}
