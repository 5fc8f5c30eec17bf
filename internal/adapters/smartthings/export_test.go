package smartthings

var BuildRequest = buildRequest

// Endpoints returns the operation names that have a REST mapping.
func Endpoints() []string {
	names := make([]string, 0, len(endpoints))
	for name := range endpoints {
		names = append(names, name)
	}
	return names
}
