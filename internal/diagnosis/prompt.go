package diagnosis

import (
	"fmt"
	"strings"

	"github.com/ukydev/taller-finder/internal/models"
)

const systemMessage = "Eres un útil asistente de mecánica automotriz avanzado. Responde en un tono profesional."

const promptTemplate = `Eres un mecánico experto en diagnóstico automotriz (IA avanzada). 
El vehículo es un: %s - %s
Los síntomas descritos son: %s

Comporta tu respuesta devolviendo: un primer párrafo introductorio de diagnóstico general, seguido de una pequeña lista de 3 viñetas separadas por saltos de línea con las fallas más probables y cómo detectarlas. Sé preciso, técnico pero entendible y NO uses negritas/asteriscos de markdown.`

// BuildPrompt renders the diagnosis prompt for a vehicle and its symptoms.
func BuildPrompt(vehicleType models.VehicleType, vehicle, symptoms string) string {
	kind := "Automóvil"
	if vehicleType == models.VehicleMotorcycle {
		kind = "Motocicleta"
	}
	return fmt.Sprintf(promptTemplate, kind, strings.TrimSpace(vehicle), strings.TrimSpace(symptoms))
}

// CleanLines strips markdown bold markers and splits text into non-blank lines.
func CleanLines(text string) []string {
	text = strings.ReplaceAll(text, "**", "")
	var lines []string
	for line := range strings.SplitSeq(text, "\n") {
		if strings.TrimSpace(line) != "" {
			lines = append(lines, line)
		}
	}
	return lines
}
