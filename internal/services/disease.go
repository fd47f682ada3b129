package services

import (
	"context"
	"time"

	"github.com/bobby-s-dev/farmlens/internal/models"
	"go.uber.org/zap"
)

// Detector classifies a plant photo.
type Detector interface {
	Detect(ctx context.Context, image []byte) (*models.DiseaseResult, error)
}

// MockDetector is a stand-in for a real image-classification service. It
// ignores the image and answers one fixed diagnosis after a delay.
type MockDetector struct {
	delay  time.Duration
	logger *zap.Logger
	now    func() time.Time
}

func NewMockDetector(delay time.Duration, logger *zap.Logger) *MockDetector {
	return &MockDetector{delay: delay, logger: logger, now: time.Now}
}

func (d *MockDetector) Detect(ctx context.Context, image []byte) (*models.DiseaseResult, error) {
	d.logger.Debug("Running mock disease detection",
		zap.Int("image_bytes", len(image)),
		zap.Duration("delay", d.delay))

	if d.delay > 0 {
		timer := time.NewTimer(d.delay)
		defer timer.Stop()
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-timer.C:
		}
	}

	return &models.DiseaseResult{
		Disease:        "Bercak Daun Cercospora",
		ScientificName: "Cercospora capsici",
		Confidence:     92.5,
		Severity:       models.RiskMedium,
		Symptoms: []string{
			"Bercak bulat kecoklatan dengan pusat abu-abu pada daun",
			"Daun menguning lalu rontok sebelum waktunya",
		},
		Recommendations: []string{
			"Pangkas dan musnahkan daun yang terinfeksi",
			"Hindari penyiraman dari atas daun pada sore hari",
			"Semprot fungisida berbahan tembaga sesuai dosis anjuran",
		},
		AnalyzedAt: d.now().UTC(),
	}, nil
}
