package pets

import "strings"

// Filter devuelve las mascotas cuyo nombre, raza o especie contiene query
// (sin distinguir mayúsculas). Query vacía => todas. Conserva el orden.
func Filter(items []Pet, query string) []Pet {
	q := strings.ToLower(strings.TrimSpace(query))

	out := make([]Pet, 0, len(items))
	for _, p := range items {
		if q == "" || matches(p, q) {
			out = append(out, p)
		}
	}
	return out
}

func matches(p Pet, q string) bool {
	return strings.Contains(strings.ToLower(p.Name), q) ||
		strings.Contains(strings.ToLower(p.Breed), q) ||
		strings.Contains(strings.ToLower(p.Species), q)
}
