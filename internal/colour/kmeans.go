package colour

import (
	"fmt"
	"image"
	"math"
	"math/rand/v2"
	"slices"
)

// seedClusters is one cluster per palette role.
const seedClusters = 4

// Seeder derives a starting palette from an image with k-means clustering.
type Seeder struct {
	maxIterations int
	convergence   float64
	maxSamples    int
	rng           *rand.Rand
}

// NewSeeder creates a Seeder. A nil rng uses a time-seeded source.
func NewSeeder(rng *rand.Rand) *Seeder {
	if rng == nil {
		rng = rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
	}
	return &Seeder{
		maxIterations: 20,
		convergence:   2.0,
		maxSamples:    2000,
		rng:           rng,
	}
}

// Cluster is a centroid colour and the share of sampled pixels assigned to it.
type Cluster struct {
	Colour RGB
	Weight float64
}

// Seed clusters the image into four colours. The dominant cluster becomes the
// background and the rest fill circles one to three in decreasing weight.
func (s *Seeder) Seed(img image.Image) (Palette, []Cluster, error) {
	if img == nil {
		return Palette{}, nil, fmt.Errorf("image cannot be nil")
	}

	points := s.samplePixels(img)
	if len(points) == 0 {
		return Palette{}, nil, fmt.Errorf("no pixels found in image")
	}

	centroids, weights := s.kmeans(points, seedClusters)

	clusters := make([]Cluster, len(centroids))
	for i, c := range centroids {
		clusters[i] = Cluster{
			Colour: RGB{R: toByte(c.R), G: toByte(c.G), B: toByte(c.B)},
			Weight: weights[i],
		}
	}
	slices.SortStableFunc(clusters, func(a, b Cluster) int {
		switch {
		case a.Weight > b.Weight:
			return -1
		case a.Weight < b.Weight:
			return 1
		default:
			return 0
		}
	})

	var p Palette
	for i, role := range Roles {
		p = p.Set(role, clusters[i].Colour)
	}
	return p, clusters, nil
}

type point3D struct {
	R, G, B float64
}

func (p point3D) distance(other point3D) float64 {
	dr := p.R - other.R
	dg := p.G - other.G
	db := p.B - other.B
	return math.Sqrt(dr*dr + dg*dg + db*db)
}

// samplePixels grid-samples at most maxSamples pixels.
func (s *Seeder) samplePixels(img image.Image) []point3D {
	bounds := img.Bounds()
	totalPixels := bounds.Dx() * bounds.Dy()
	step := 1
	if totalPixels > s.maxSamples {
		step = max(int(math.Sqrt(float64(totalPixels)/float64(s.maxSamples))), 1)
	}

	points := make([]point3D, 0, min(totalPixels, s.maxSamples))
	for y := bounds.Min.Y; y < bounds.Max.Y; y += step {
		for x := bounds.Min.X; x < bounds.Max.X; x += step {
			r, g, b, _ := img.At(x, y).RGBA()
			points = append(points, point3D{R: float64(r >> 8), G: float64(g >> 8), B: float64(b >> 8)})
			if len(points) >= s.maxSamples {
				return points
			}
		}
	}
	return points
}

func (s *Seeder) kmeans(points []point3D, k int) ([]point3D, []float64) {
	centroids := s.initCentroids(points, k)
	assignments := make([]int, len(points))

	for range s.maxIterations {
		changed := 0
		for i, point := range points {
			nearest := nearestCentroid(point, centroids)
			if assignments[i] != nearest {
				assignments[i] = nearest
				changed++
			}
		}
		if float64(changed)/float64(len(points)) < 0.01 {
			break
		}

		next := s.recalculate(points, assignments, k)
		movement := 0.0
		for i := range centroids {
			movement += centroids[i].distance(next[i])
		}
		centroids = next
		if movement/float64(k) < s.convergence {
			break
		}
	}

	// Final assignment so weights match the returned centroids.
	for i, point := range points {
		assignments[i] = nearestCentroid(point, centroids)
	}

	weights := make([]float64, k)
	for _, a := range assignments {
		weights[a]++
	}
	for i := range weights {
		weights[i] /= float64(len(assignments))
	}
	return centroids, weights
}

// initCentroids uses k-means++ seeding.
func (s *Seeder) initCentroids(points []point3D, k int) []point3D {
	centroids := make([]point3D, 0, k)
	centroids = append(centroids, points[s.rng.IntN(len(points))])

	for len(centroids) < k {
		distances := make([]float64, len(points))
		total := 0.0
		for i, point := range points {
			minDist := math.MaxFloat64
			for _, c := range centroids {
				minDist = math.Min(minDist, point.distance(c))
			}
			distances[i] = minDist * minDist
			total += distances[i]
		}

		if total == 0 {
			last := centroids[len(centroids)-1]
			centroids = append(centroids, point3D{R: last.R + 0.1, G: last.G + 0.1, B: last.B + 0.1})
			continue
		}

		target := s.rng.Float64() * total
		cumulative := 0.0
		for i, d := range distances {
			cumulative += d
			if cumulative >= target {
				centroids = append(centroids, points[i])
				break
			}
		}
	}
	return centroids
}

func nearestCentroid(point point3D, centroids []point3D) int {
	minDist := math.MaxFloat64
	nearest := 0
	for i, c := range centroids {
		if d := point.distance(c); d < minDist {
			minDist = d
			nearest = i
		}
	}
	return nearest
}

func (s *Seeder) recalculate(points []point3D, assignments []int, k int) []point3D {
	sums := make([]point3D, k)
	counts := make([]int, k)
	for i, p := range points {
		c := assignments[i]
		sums[c].R += p.R
		sums[c].G += p.G
		sums[c].B += p.B
		counts[c]++
	}

	centroids := make([]point3D, k)
	for i := range k {
		if counts[i] == 0 {
			centroids[i] = points[s.rng.IntN(len(points))]
			continue
		}
		n := float64(counts[i])
		centroids[i] = point3D{R: sums[i].R / n, G: sums[i].G / n, B: sums[i].B / n}
	}
	return centroids
}
