// Package chat implements the conversation flow with the assistant:
// prompt assembly, the data request round trip and the rolling thread
// summaries.
package chat

import (
	"context"
	_ "embed"
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/richardsr020/maxim-advisor/internal/ai"
	"github.com/richardsr020/maxim-advisor/internal/dispatch"
	"github.com/richardsr020/maxim-advisor/internal/models"
	"github.com/richardsr020/maxim-advisor/internal/render"
	"github.com/richardsr020/maxim-advisor/internal/report"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"
)

//go:embed prompts/system.md
var systemPrompt string

//go:embed prompts/summary.md
var summaryPrompt string

// apology is stored as the assistant turn when the model cannot be
// reached so that the conversation stays consistent.
const apology = "<p>Sorry, I cannot answer right now. Please try again in a moment.</p>"

const (
	historyWindow      = 20               // Messages included in the prompt
	summaryWindow      = 40               // Messages included in a summary refresh
	summaryLimit       = 4                // Summaries of other threads per kind
	summaryMinMessages = 4                // Below this an existing summary is kept as is
	summaryInterval    = 10 * time.Minute // Minimum time between refreshes
	summaryMaxTokens   = 400
)

// Service answers chat messages. UserName is included in every prompt
// so the model can address the user.
type Service struct {
	AI       ai.Client
	UserName string
}

// promptMessage is one history entry in the prompt payload.
type promptMessage struct {
	Role    models.ChatRole `json:"role"`
	Content string          `json:"content"`
}

// promptSummary is one cross-thread summary in the prompt payload.
type promptSummary struct {
	Title     string     `json:"title"`
	Summary   string     `json:"summary"`
	UpdatedAt *time.Time `json:"updated_at"`
}

// promptPayload is the JSON document sent as the user prompt.
type promptPayload struct {
	UserName          string                  `json:"user_name"`
	Context           report.FinancialContext `json:"context"`
	History           []promptMessage         `json:"history"`
	RelevantSummaries []promptSummary         `json:"relevant_summaries"`
	RecentSummaries   []promptSummary         `json:"recent_summaries"`
	Question          string                  `json:"question"`
	Data              *dispatch.Envelope      `json:"data,omitempty"`
}

// Send stores the user message, asks the model and stores its answer.
// A single data request by the model is resolved with one follow-up
// completion; the model does not get a second one.
//
// Model failures do not fail the call: an apologetic assistant message
// is stored instead so the thread stays usable.
func (s *Service) Send(ctx context.Context, db *gorm.DB, threadID uuid.UUID, question string, now time.Time) (models.ChatMessage, error) {
	var thread models.ChatThread
	err := db.First(&thread, threadID).Error
	if err != nil {
		return models.ChatMessage{}, err
	}

	periodID, err := s.resolveContextPeriod(db, &thread)
	if err != nil {
		return models.ChatMessage{}, err
	}

	_, err = models.AppendMessage(db, thread.ID, models.ChatRoleUser, question)
	if err != nil {
		return models.ChatMessage{}, err
	}

	payload, err := s.buildPayload(db, thread, periodID, question, now)
	if err != nil {
		return models.ChatMessage{}, err
	}

	answer := s.complete(ctx, db, payload, now)

	message, err := models.AppendMessage(db, thread.ID, models.ChatRoleAssistant, answer)
	if err != nil {
		return models.ChatMessage{}, err
	}

	if err := s.RefreshSummary(ctx, db, thread.ID, now); err != nil {
		log.Warn().Str("thread", thread.ID.String()).Err(err).Msg("summary refresh failed")
	}

	return message, nil
}

// complete runs the model round trip including at most one data request
// follow-up and returns sanitized HTML.
func (s *Service) complete(ctx context.Context, db *gorm.DB, payload promptPayload, now time.Time) string {
	answer, err := s.generate(ctx, payload)
	if err != nil {
		log.Error().Err(err).Msg("chat completion failed")
		return apology
	}

	req, found := dispatch.Find(answer)
	if !found {
		return render.AssistantHTML(answer)
	}

	envelope := dispatch.Dispatch(db, req, now)
	payload.Data = &envelope

	followUp, err := s.generate(ctx, payload)
	if err != nil {
		log.Error().Err(err).Msg("data request follow-up failed")
		return render.AssistantHTML(dispatch.Strip(answer))
	}

	// A second directive is not honored, it is only stripped.
	return render.AssistantHTML(dispatch.Strip(followUp))
}

func (s *Service) generate(ctx context.Context, payload promptPayload) (string, error) {
	marshaled, err := json.Marshal(payload)
	if err != nil {
		return "", err
	}

	return s.AI.Generate(ctx, ai.Request{
		System:      systemPrompt,
		Prompt:      string(marshaled),
		Temperature: ai.DefaultTemperature,
		MaxTokens:   ai.DefaultMaxTokens,
	})
}

// resolveContextPeriod anchors the thread to its period. Threads
// without one are pinned to the active period on first use so that
// later conversations keep their original context.
func (s *Service) resolveContextPeriod(db *gorm.DB, thread *models.ChatThread) (uuid.UUID, error) {
	if thread.PeriodID != nil {
		return *thread.PeriodID, nil
	}

	period, err := models.ActivePeriod(db)
	if err != nil {
		if errors.Is(err, models.ErrNoActivePeriod) {
			return uuid.Nil, nil
		}

		return uuid.Nil, err
	}

	thread.PeriodID = &period.ID
	err = db.Model(thread).Update("period_id", period.ID).Error
	if err != nil {
		return uuid.Nil, err
	}

	return period.ID, nil
}

func (s *Service) buildPayload(db *gorm.DB, thread models.ChatThread, periodID uuid.UUID, question string, now time.Time) (promptPayload, error) {
	financial, err := report.Context(db, periodID, now)
	if err != nil {
		return promptPayload{}, err
	}

	history, err := models.ThreadMessages(db, thread.ID, historyWindow)
	if err != nil {
		return promptPayload{}, err
	}

	relevant, err := models.RelevantThreadSummaries(db, thread.ID, question, summaryLimit)
	if err != nil {
		return promptPayload{}, err
	}

	recent, err := models.RecentThreadSummaries(db, thread.ID, summaryLimit)
	if err != nil {
		return promptPayload{}, err
	}

	payload := promptPayload{
		UserName:          s.UserName,
		Context:           financial,
		History:           make([]promptMessage, 0, len(history)),
		RelevantSummaries: toPromptSummaries(relevant),
		RecentSummaries:   toPromptSummaries(recent),
		Question:          question,
	}
	for _, message := range history {
		payload.History = append(payload.History, promptMessage{Role: message.Role, Content: message.Content})
	}

	return payload, nil
}

func toPromptSummaries(threads []models.ChatThread) []promptSummary {
	summaries := make([]promptSummary, 0, len(threads))
	for _, thread := range threads {
		summaries = append(summaries, promptSummary{
			Title:     thread.Title,
			Summary:   thread.SummaryText,
			UpdatedAt: thread.SummaryUpdatedAt,
		})
	}

	return summaries
}

// RefreshSummary recreates the cached thread summary. Refreshes are
// throttled to one per ten minutes, and threads with fewer than four
// messages keep an existing summary untouched.
func (s *Service) RefreshSummary(ctx context.Context, db *gorm.DB, threadID uuid.UUID, now time.Time) error {
	var thread models.ChatThread
	err := db.First(&thread, threadID).Error
	if err != nil {
		return err
	}

	if thread.SummaryUpdatedAt != nil && now.Sub(*thread.SummaryUpdatedAt) < summaryInterval {
		return nil
	}

	var count int64
	err = db.Model(&models.ChatMessage{}).Where("thread_id = ?", threadID).Count(&count).Error
	if err != nil {
		return err
	}

	if count == 0 || (count < summaryMinMessages && thread.SummaryText != "") {
		return nil
	}

	messages, err := models.ThreadMessages(db, threadID, summaryWindow)
	if err != nil {
		return err
	}

	transcript := make([]promptMessage, 0, len(messages))
	for _, message := range messages {
		transcript = append(transcript, promptMessage{Role: message.Role, Content: message.Content})
	}

	marshaled, err := json.Marshal(transcript)
	if err != nil {
		return err
	}

	summary, err := s.AI.Generate(ctx, ai.Request{
		System:      summaryPrompt,
		Prompt:      string(marshaled),
		Temperature: ai.DefaultTemperature,
		MaxTokens:   summaryMaxTokens,
	})
	if err != nil {
		return err
	}

	updated := now.UTC()
	return db.Model(&thread).Select("SummaryText", "SummaryUpdatedAt").
		Updates(models.ChatThread{SummaryText: summary, SummaryUpdatedAt: &updated}).Error
}
