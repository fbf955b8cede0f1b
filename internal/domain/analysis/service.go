package analysis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/healthtrack/healthtrack/internal/domain/profile"
	"github.com/healthtrack/healthtrack/internal/platform/ai"
)

var (
	// ErrProvider means the language model call failed. The caller gets
	// a 500; there is no retry.
	ErrProvider = errors.New("analysis provider unavailable")
	// ErrInvalid marks rejected caller input. Handlers map it to 400.
	ErrInvalid = errors.New("invalid input")
)

const disclaimer = "This is AI-generated advice. Consult healthcare professionals for medical decisions."

// ProfileStore is the slice of the profile service the analysis flow needs.
type ProfileStore interface {
	Get(ctx context.Context, userID uuid.UUID) (*profile.HealthProfile, error)
	AppendSymptom(ctx context.Context, userID uuid.UUID, entry profile.SymptomEntry) error
}

type AnalyzeInput struct {
	Symptoms   string         `json:"symptoms"`
	HealthData map[string]any `json:"healthData"`
}

type AnalyzeResult struct {
	Message    string    `json:"message"`
	Analysis   string    `json:"analysis"`
	Timestamp  time.Time `json:"timestamp"`
	Disclaimer string    `json:"disclaimer"`
}

type SymptomCheckInput struct {
	Symptoms       string `json:"symptoms"`
	Duration       string `json:"duration"`
	Severity       int    `json:"severity"`
	AdditionalInfo string `json:"additionalInfo"`
}

type SymptomCheckResult struct {
	Message      string    `json:"message"`
	Analysis     string    `json:"analysis"`
	UrgencyLevel string    `json:"urgencyLevel"`
	Timestamp    time.Time `json:"timestamp"`
}

type Service struct {
	gen      ai.TextGenerator
	profiles ProfileStore
	logger   zerolog.Logger
}

func NewService(gen ai.TextGenerator, profiles ProfileStore, logger zerolog.Logger) *Service {
	return &Service{gen: gen, profiles: profiles, logger: logger}
}

// Analyze runs a full-context health analysis. The user's profile enriches
// the prompt when present; without one the prompt says so and the analysis
// still runs. After a successful provider call the reported symptom is
// appended to the profile best-effort: a persistence failure is logged and
// the analysis is returned anyway.
func (s *Service) Analyze(ctx context.Context, userID uuid.UUID, in AnalyzeInput) (*AnalyzeResult, error) {
	if in.Symptoms == "" {
		return nil, fmt.Errorf("%w: symptoms are required", ErrInvalid)
	}

	p, err := s.profiles.Get(ctx, userID)
	if err != nil && !errors.Is(err, profile.ErrNotFound) {
		return nil, err
	}

	text, err := s.gen.GenerateText(ctx, analyzePrompt(in, p))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrProvider, err)
	}

	if p != nil {
		entry := profile.SymptomEntry{
			Symptom:      in.Symptoms,
			Severity:     profile.SeverityFromScale(severityFromData(in.HealthData)),
			Duration:     durationFromData(in.HealthData),
			DateReported: time.Now().UTC(),
		}
		if err := s.profiles.AppendSymptom(ctx, userID, entry); err != nil {
			s.logger.Warn().Err(err).
				Str("user_id", userID.String()).
				Msg("failed to record analyzed symptom")
		}
	}

	return &AnalyzeResult{
		Message:    "health analysis completed",
		Analysis:   text,
		Timestamp:  time.Now().UTC(),
		Disclaimer: disclaimer,
	}, nil
}

// CheckSymptoms is the quick, stateless variant: no profile read or write.
func (s *Service) CheckSymptoms(ctx context.Context, in SymptomCheckInput) (*SymptomCheckResult, error) {
	if in.Symptoms == "" {
		return nil, fmt.Errorf("%w: symptoms are required", ErrInvalid)
	}

	text, err := s.gen.GenerateText(ctx, symptomPrompt(in))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrProvider, err)
	}

	return &SymptomCheckResult{
		Message:      "symptom analysis completed",
		Analysis:     text,
		UrgencyLevel: extractUrgencyLevel(text),
		Timestamp:    time.Now().UTC(),
	}, nil
}

func analyzePrompt(in AnalyzeInput, p *profile.HealthProfile) string {
	healthData, _ := json.Marshal(in.HealthData)
	personalInfo := "No profile available"
	history := "No history available"
	if p != nil {
		if b, err := json.Marshal(p.PersonalInfo); err == nil {
			personalInfo = string(b)
		}
		if b, err := json.Marshal(p.MedicalHistory); err == nil {
			history = string(b)
		}
	}

	return fmt.Sprintf(`As a health advisor AI, analyze this health information:

Current Symptoms: %s
User Health Data: %s
User Profile: %s
Medical History: %s

Please provide:
1. Possible conditions or explanations (with confidence levels)
2. Risk assessment (Low/Medium/High)
3. Specific lifestyle recommendations
4. When to seek medical attention
5. Preventive measures

IMPORTANT DISCLAIMERS:
- This is AI-generated advice, not a medical diagnosis
- Always consult healthcare professionals for serious concerns
- Emergency symptoms require immediate medical attention

Format the response in a structured, easy-to-read manner.`,
		in.Symptoms, healthData, personalInfo, history)
}

func symptomPrompt(in SymptomCheckInput) string {
	additional := in.AdditionalInfo
	if additional == "" {
		additional = "None provided"
	}

	return fmt.Sprintf(`Symptom Checker Analysis:

Reported Symptoms: %s
Duration: %s
Severity (1-10): %d
Additional Information: %s

Provide:
1. Most likely explanations (with probability estimates)
2. Urgency level (Low/Medium/High/Emergency)
3. Self-care recommendations
4. Red flag symptoms to watch for
5. When to see a doctor

Keep response concise but informative.
Include standard medical disclaimers.`,
		in.Symptoms, in.Duration, in.Severity, additional)
}

// extractUrgencyLevel derives the urgency from keyword presence in the
// generated text. Match order is part of the API contract: emergency or
// immediate wins over high, high over medium, and anything else is Low.
func extractUrgencyLevel(text string) string {
	lower := strings.ToLower(text)
	switch {
	case strings.Contains(lower, "emergency") || strings.Contains(lower, "immediate"):
		return "Emergency"
	case strings.Contains(lower, "high"):
		return "High"
	case strings.Contains(lower, "medium"):
		return "Medium"
	default:
		return "Low"
	}
}

func severityFromData(data map[string]any) int {
	v, ok := data["severity"]
	if !ok {
		return 5
	}
	switch n := v.(type) {
	case float64:
		return int(n)
	case int:
		return n
	default:
		return 5
	}
}

func durationFromData(data map[string]any) string {
	if v, ok := data["duration"].(string); ok && v != "" {
		return v
	}
	return "Not specified"
}
