package engine

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/talkgenius/interview-engine/internal/models"
)

// Default deadlines for the two remote collaborators. Evaluation is allowed
// to take longer than question generation because the candidate is already
// looking at a "processing" indicator; question generation happens while the
// interviewer is mid-sentence and must fail fast into the local fallback.
const (
	DefaultEvaluateTimeout = 15 * time.Second
	DefaultGenerateTimeout = 10 * time.Second
)

// EvaluationRequest is the payload sent to the remote evaluation endpoint.
type EvaluationRequest struct {
	Question            models.Question           `json:"question"`
	Answer              string                    `json:"answer"`
	Behavioral          models.BehavioralSnapshot `json:"behavioral_analysis"`
	Voice               models.VoiceSnapshot      `json:"voice_analysis"`
	UserName            string                    `json:"user_name,omitempty"`
	FollowUpCount       int                       `json:"follow_up_count"`
	ConversationContext []string                  `json:"conversation_context,omitempty"`
	JobTitle            string                    `json:"job_title"`
	Skills              []string                  `json:"skills,omitempty"`
}

// GenerationRequest is the payload sent to the question-generation endpoint.
// It carries just enough recent context for the generator to stay coherent
// with the conversation.
type GenerationRequest struct {
	JobTitle            string                 `json:"job_title"`
	FieldCategory       string                 `json:"field_category,omitempty"`
	Experience          string                 `json:"experience,omitempty"`
	Skills              []string               `json:"skills,omitempty"`
	QuestionIndex       int                    `json:"question_index"`
	LastQuestion        string                 `json:"last_question,omitempty"`
	LastAnswer          string                 `json:"last_answer,omitempty"`
	AnswerScore         int                    `json:"answer_score"`
	PerformanceScore    int                    `json:"performance_score"`
	DifficultyLevel     models.DifficultyLevel `json:"difficulty_level"`
	UserName            string                 `json:"user_name,omitempty"`
	ConversationContext []string               `json:"conversation_context,omitempty"`
}

type generationResponse struct {
	Success  bool             `json:"success"`
	Question *models.Question `json:"question"`
}

// CandidateQuestionRequest asks the remote collaborator to answer a question
// the candidate directed at the interviewer.
type CandidateQuestionRequest struct {
	UserQuestion     string          `json:"user_question"`
	CurrentQuestion  models.Question `json:"current_question"`
	AnsweredCount    int             `json:"answered_count"`
	PerformanceScore int             `json:"performance_score"`
	UserName         string          `json:"user_name,omitempty"`
}

type candidateQuestionResponse struct {
	Response string `json:"response"`
}

// Client talks to the language-model collaborator over plain HTTP JSON. The
// engine treats it as unreliable: every method returns an error on timeout,
// transport failure or malformed payload, and callers always have a local
// fallback.
type Client struct {
	httpClient      *http.Client
	evaluateURL     string
	generateURL     string
	respondURL      string
	evaluateTimeout time.Duration
	generateTimeout time.Duration
	logger          *slog.Logger
}

type ClientOptions struct {
	BaseURL         string
	EvaluateTimeout time.Duration
	GenerateTimeout time.Duration
}

func NewClient(opts ClientOptions, logger *slog.Logger) *Client {
	if opts.EvaluateTimeout <= 0 {
		opts.EvaluateTimeout = DefaultEvaluateTimeout
	}
	if opts.GenerateTimeout <= 0 {
		opts.GenerateTimeout = DefaultGenerateTimeout
	}
	return &Client{
		httpClient:      &http.Client{},
		evaluateURL:     opts.BaseURL + "/analyze-answer",
		generateURL:     opts.BaseURL + "/generate-next-question",
		respondURL:      opts.BaseURL + "/respond-to-candidate",
		evaluateTimeout: opts.EvaluateTimeout,
		generateTimeout: opts.GenerateTimeout,
		logger:          logger,
	}
}

// Evaluate requests a remote evaluation of one answer. The response is
// normalized at this boundary; everything past this point can trust the
// Evaluation invariants.
func (c *Client) Evaluate(ctx context.Context, req EvaluationRequest) (*models.Evaluation, error) {
	ctx, cancel := context.WithTimeout(ctx, c.evaluateTimeout)
	defer cancel()

	var raw models.Evaluation
	if err := c.postJSON(ctx, c.evaluateURL, req, &raw); err != nil {
		return nil, fmt.Errorf("remote evaluation: %w", err)
	}
	normalizeEvaluation(&raw)
	return &raw, nil
}

// NextQuestion requests one dynamically generated question. A nil question
// with a nil error never happens; absence is always an error so callers have
// a single fallback path.
func (c *Client) NextQuestion(ctx context.Context, req GenerationRequest) (*models.Question, error) {
	ctx, cancel := context.WithTimeout(ctx, c.generateTimeout)
	defer cancel()

	var resp generationResponse
	if err := c.postJSON(ctx, c.generateURL, req, &resp); err != nil {
		return nil, fmt.Errorf("question generation: %w", err)
	}
	if !resp.Success || resp.Question == nil || resp.Question.Question == "" {
		return nil, fmt.Errorf("question generation: empty response")
	}
	normalizeQuestion(resp.Question)
	return resp.Question, nil
}

// RespondToCandidate asks the collaborator to answer a candidate's question
// to the interviewer.
func (c *Client) RespondToCandidate(ctx context.Context, req CandidateQuestionRequest) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, c.generateTimeout)
	defer cancel()

	var resp candidateQuestionResponse
	if err := c.postJSON(ctx, c.respondURL, req, &resp); err != nil {
		return "", fmt.Errorf("candidate question: %w", err)
	}
	if resp.Response == "" {
		return "", fmt.Errorf("candidate question: empty response")
	}
	return resp.Response, nil
}

func (c *Client) postJSON(ctx context.Context, url string, body, out any) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("encode request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		io.Copy(io.Discard, io.LimitReader(resp.Body, 4096))
		return fmt.Errorf("unexpected status %d", resp.StatusCode)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}
