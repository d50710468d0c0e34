package models

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ChatRole is the author of a chat message.
type ChatRole string

const (
	ChatRoleUser      ChatRole = "user"
	ChatRoleAssistant ChatRole = "assistant"
)

// ChatThread is one conversation with the assistant.
type ChatThread struct {
	DefaultModel
	PeriodID         *uuid.UUID `json:"periodId"`                                 // Period the thread is anchored to, nil for the active one
	Title            string     `json:"title" example:"Can I afford a new phone?"` // Title shown in the thread list
	SummaryText      string     `json:"summaryText"`                              // Cached summary used as cross-thread context
	SummaryUpdatedAt *time.Time `json:"summaryUpdatedAt"`                         // When the summary was last refreshed
}

func (ChatThread) Self() string {
	return "Chat thread"
}

func (t *ChatThread) BeforeSave(_ *gorm.DB) error {
	t.Title = strings.TrimSpace(t.Title)
	if t.Title == "" {
		t.Title = "New conversation"
	}
	return nil
}

// ChatMessage is one message inside a thread.
type ChatMessage struct {
	DefaultModel
	ThreadID uuid.UUID `json:"threadId"`                 // Thread the message belongs to
	Role     ChatRole  `json:"role" example:"user"`      // user or assistant
	Content  string    `json:"content"`                  // Message text as produced
}

func (ChatMessage) Self() string {
	return "Chat message"
}

// ChatThreads returns all threads, most recently updated first.
func ChatThreads(db *gorm.DB) ([]ChatThread, error) {
	var threads []ChatThread
	err := db.Order("updated_at DESC").Find(&threads).Error
	return threads, err
}

// ThreadMessages returns the messages of a thread in conversation
// order. A limit of 0 returns all of them.
func ThreadMessages(db *gorm.DB, threadID uuid.UUID, limit int) ([]ChatMessage, error) {
	query := db.Where(&ChatMessage{ThreadID: threadID}).Order("created_at ASC")
	if limit > 0 {
		// Keep the most recent messages, still in conversation order
		var count int64
		err := db.Model(&ChatMessage{}).Where(&ChatMessage{ThreadID: threadID}).Count(&count).Error
		if err != nil {
			return nil, err
		}

		if count > int64(limit) {
			query = query.Offset(int(count) - limit)
		}
	}

	var messages []ChatMessage
	err := query.Find(&messages).Error
	return messages, err
}

// AppendMessage stores a message and touches the thread so it moves to
// the top of the thread list.
func AppendMessage(db *gorm.DB, threadID uuid.UUID, role ChatRole, content string) (ChatMessage, error) {
	message := ChatMessage{
		ThreadID: threadID,
		Role:     role,
		Content:  content,
	}

	err := db.Transaction(func(tx *gorm.DB) error {
		var thread ChatThread
		err := tx.First(&thread, "id = ?", threadID).Error
		if err != nil {
			return err
		}

		err = tx.Create(&message).Error
		if err != nil {
			return err
		}

		return tx.Model(&thread).Update("updated_at", time.Now().In(time.UTC)).Error
	})
	if err != nil {
		return ChatMessage{}, err
	}

	return message, nil
}

// RelevantThreadSummaries returns summaries of other threads whose text
// matches words of the question. Words shorter than four characters are
// too generic to search for.
func RelevantThreadSummaries(db *gorm.DB, excludeThreadID uuid.UUID, question string, limit int) ([]ChatThread, error) {
	var terms []string
	for _, word := range strings.Fields(strings.ToLower(question)) {
		word = strings.Trim(word, ".,;:!?'\"()")
		if len([]rune(word)) >= 4 {
			terms = append(terms, word)
		}
	}

	if len(terms) == 0 {
		return []ChatThread{}, nil
	}

	query := db.
		Where("id != ?", excludeThreadID).
		Where("summary_text != ''")

	conditions := db.Session(&gorm.Session{NewDB: true})
	for _, term := range terms {
		conditions = conditions.Or("LOWER(summary_text) LIKE ?", "%"+term+"%")
	}
	query = query.Where(conditions)

	var threads []ChatThread
	err := query.Order("updated_at DESC").Limit(limit).Find(&threads).Error
	return threads, err
}

// RecentThreadSummaries returns the latest refreshed summaries,
// excluding one thread.
func RecentThreadSummaries(db *gorm.DB, excludeThreadID uuid.UUID, limit int) ([]ChatThread, error) {
	var threads []ChatThread
	err := db.
		Where("id != ?", excludeThreadID).
		Where("summary_text != ''").
		Order("summary_updated_at DESC").
		Limit(limit).
		Find(&threads).Error

	return threads, err
}
