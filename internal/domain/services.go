package domain

// Known backend service names. Tool groups reference backends by these
// names; the resolver guarantees each one always has an endpoint.
const (
	ServiceLogs          = "jarvis-logs"
	ServiceAuth          = "jarvis-auth"
	ServiceRecipes       = "jarvis-recipes"
	ServiceCommandCenter = "jarvis-command-center"
	ServiceWhisper       = "jarvis-whisper"
	ServiceTTS           = "jarvis-tts"
	ServiceOCR           = "jarvis-ocr"
	ServiceLLMProxy      = "jarvis-llm-proxy"
)

// DefaultServiceURLs are the compiled-in fallbacks used when neither
// discovery nor an explicit override provides a URL.
var DefaultServiceURLs = map[string]string{
	ServiceLogs:          "http://localhost:8006",
	ServiceAuth:          "http://localhost:8007",
	ServiceRecipes:       "http://localhost:8001",
	ServiceCommandCenter: "http://localhost:8002",
	ServiceWhisper:       "http://localhost:8012",
	ServiceTTS:           "http://localhost:8009",
	ServiceOCR:           "http://localhost:5009",
	ServiceLLMProxy:      "http://localhost:8000",
}

// HealthPaths maps each probeable service to its health endpoint path.
var HealthPaths = map[string]string{
	ServiceAuth:          "/health",
	ServiceCommandCenter: "/api/v0/health",
	ServiceLogs:          "/health",
	ServiceRecipes:       "/health",
	ServiceWhisper:       "/health",
	ServiceOCR:           "/health",
	ServiceLLMProxy:      "/v1/health",
}

// KnownServices returns the backend names in stable order.
func KnownServices() []string {
	return []string{
		ServiceLogs,
		ServiceAuth,
		ServiceRecipes,
		ServiceCommandCenter,
		ServiceWhisper,
		ServiceTTS,
		ServiceOCR,
		ServiceLLMProxy,
	}
}
