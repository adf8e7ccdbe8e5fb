// Package prompt builds the daily meal-plan prompt and derives the
// short labels stored in history. The rest of the pipeline treats both
// as opaque strings.
package prompt

import (
	"fmt"
	"html"
	"strings"
	"time"

	"mealbot/internal/history"
)

// Section markers the model is instructed to emit. Label extraction
// keys off the same markers.
var sectionMarkers = []string{"🌅", "🌮", "🌙"}

const promptTemplate = `Genera 3 recetas auténticas ecuatorianas para hoy: desayuno, almuerzo y merienda.

REQUISITOS IMPORTANTES:
- Usa SOLO ingredientes nativos de Ecuador o comúnmente usados en la cocina ecuatoriana
- Incluye platos tradicionales ecuatorianos
- Sé específico con los nombres de ingredientes (usa nombres en español cuando sea apropiado)
- Haz las recetas prácticas y realistas para cocinar diariamente

Recetas recientes para EVITAR repetir:
%s

Formatea tu respuesta EXACTAMENTE así:

🌅 DESAYUNO:
[Nombre del plato]
Ingredientes: [lista]
Preparación: [pasos breves]

🌮 ALMUERZO:
[Nombre del plato]
Ingredientes: [lista]
Preparación: [pasos breves]

🌙 MERIENDA:
[Nombre del plato]
Ingredientes: [lista]
Preparación: [pasos breves]

¡Hazlo auténtico, delicioso y únicamente ecuatoriano!`

// MealPlan renders the generation prompt, embedding recent meals so the
// model avoids repeating them.
func MealPlan(recent []history.Record) string {
	return fmt.Sprintf(promptTemplate, recentContext(recent))
}

func recentContext(recent []history.Record) string {
	var lines []string
	for _, rec := range recent {
		for _, meal := range rec.Meals {
			if meal = strings.TrimSpace(meal); meal != "" {
				lines = append(lines, "- "+meal)
			}
		}
	}
	if len(lines) == 0 {
		return "Ninguna aún - esta es la primera generación"
	}
	return strings.Join(lines, "\n")
}

// Header is the HTML banner prepended to the outgoing message.
func Header(now time.Time) string {
	date := now.Format("Monday, January 2, 2006")
	return "🇪🇨 <b>Plan de Comidas Ecuatorianas</b>\n📅 " + html.EscapeString(date)
}

// Labels derives the short per-section labels persisted into history:
// the dish-name line following each section marker. When the model
// ignored the format, fall back to the first three non-empty lines.
func Labels(text string) []string {
	lines := strings.Split(text, "\n")

	var labels []string
	for i, line := range lines {
		if !hasMarker(line) {
			continue
		}
		for _, next := range lines[i+1:] {
			if next = strings.TrimSpace(next); next != "" {
				labels = append(labels, next)
				break
			}
		}
	}
	if len(labels) > 0 {
		return labels
	}

	for _, line := range lines {
		if line = strings.TrimSpace(line); line != "" {
			labels = append(labels, line)
		}
		if len(labels) == 3 {
			break
		}
	}
	return labels
}

func hasMarker(line string) bool {
	for _, m := range sectionMarkers {
		if strings.Contains(line, m) {
			return true
		}
	}
	return false
}
