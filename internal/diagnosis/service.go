package diagnosis

import (
	"context"
	"fmt"
	"strings"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/ukydev/taller-finder/internal/models"
	"github.com/ukydev/taller-finder/internal/telemetry"
)

// Completer is a text completion provider.
type Completer interface {
	Name() string
	Configured() bool
	Complete(ctx context.Context, prompt string) (string, error)
}

// Lines returned when a provider has no key, so the app keeps working in demos.
var simulatedLines = map[string][]string{
	"openai": {
		"Análisis avanzado de los datos introducidos completado por GPT.",
		"• Posible fallo de desgaste detectado en los componentes principales solicitados.",
		"• Te sugerimos revisar las conexiones o los sensores relacionados directa e indirectamente.",
		"• Si el problema persiste, es altamente recomendable consultar el manual de taller del fabricante.",
	},
	"gemini": {
		"Análisis avanzado de los datos introducidos completado.",
		"• Posible fallo de desgaste en los componentes principales solicitados.",
		"• Te sugerimos revisar las conexiones o los sensores relacionados directa e indirectamente.",
		"• Si el problema persiste, es recomendable consultar manual de taller del fabricante.",
	},
}

// Service produces vehicle diagnoses from symptom descriptions.
type Service struct {
	providers   map[string]Completer
	defaultName string
}

// NewService registers the given completers. The first one is the default.
func NewService(completers ...Completer) *Service {
	s := &Service{providers: make(map[string]Completer, len(completers))}
	for _, c := range completers {
		if s.defaultName == "" {
			s.defaultName = c.Name()
		}
		s.providers[c.Name()] = c
	}
	return s
}

// Diagnose validates req, builds the prompt and asks the selected provider.
func (s *Service) Diagnose(ctx context.Context, req models.DiagnosisRequest) (*models.DiagnosisResponse, error) {
	if strings.TrimSpace(req.Vehicle) == "" || strings.TrimSpace(req.Symptoms) == "" {
		return nil, fmt.Errorf("%w: vehicle and symptoms are required", models.ErrInvalidInput)
	}
	switch req.VehicleType {
	case "", models.VehicleCar, models.VehicleMotorcycle:
	default:
		return nil, fmt.Errorf("%w: unknown vehicle type %q", models.ErrInvalidInput, req.VehicleType)
	}

	name := strings.ToLower(strings.TrimSpace(req.Provider))
	if name == "" {
		name = s.defaultName
	}
	provider, ok := s.providers[name]
	if !ok {
		return nil, fmt.Errorf("%w: unknown provider %q", models.ErrInvalidInput, req.Provider)
	}

	if !provider.Configured() {
		log.WithField("provider", name).Warn("Completion API key missing, returning simulated diagnosis")
		return &models.DiagnosisResponse{
			Provider:  name,
			Lines:     append([]string(nil), simulatedLines[name]...),
			Simulated: true,
		}, nil
	}

	prompt := BuildPrompt(req.VehicleType, req.Vehicle, req.Symptoms)
	started := time.Now()
	text, err := provider.Complete(ctx, prompt)
	telemetry.ObserveUpstream(name, models.ErrorKind(err), started)
	if err != nil {
		log.WithField("provider", name).WithError(err).Warn("Diagnosis completion failed")
		return nil, err
	}

	lines := CleanLines(text)
	if len(lines) == 0 {
		return nil, fmt.Errorf("%w: empty completion from %s", models.ErrProviderUnavailable, name)
	}
	return &models.DiagnosisResponse{Provider: name, Lines: lines}, nil
}
