package v1

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/richardsr020/maxim-advisor/internal/chat"
	"github.com/richardsr020/maxim-advisor/internal/httputil"
	"github.com/richardsr020/maxim-advisor/internal/models"
)

// assistant is the chat service used by the chat endpoints. It stays
// nil when no model API key is configured, in which case sending
// messages returns 503.
var assistant *chat.Service

// ConfigureAssistant wires the chat endpoints to a chat service.
func ConfigureAssistant(service *chat.Service) {
	assistant = service
}

// RegisterChatRoutes registers the routes for the assistant with
// the RouterGroup that is passed.
func RegisterChatRoutes(r *gin.RouterGroup) {
	r.OPTIONS("/threads", OptionsChatThreads)
	r.GET("/threads", GetChatThreads)
	r.POST("/threads", CreateChatThread)
	r.OPTIONS("/threads/:id/messages", OptionsChatMessages)
	r.GET("/threads/:id/messages", GetChatMessages)
	r.POST("/threads/:id/messages", CreateChatMessage)
}

// ChatThreadEditable are the fields of a new thread.
type ChatThreadEditable struct {
	Title string `json:"title" example:"Can I afford a new phone?"` // Title shown in the thread list
}

// ChatMessageEditable is a question for the assistant.
type ChatMessageEditable struct {
	Content string `json:"content" binding:"required" example:"How much can I still spend on food?"` // The question
}

type ChatThreadResponse struct {
	Data models.ChatThread `json:"data"` // The thread
}

type ChatThreadListResponse struct {
	Data []models.ChatThread `json:"data"` // All threads, most recently updated first
}

type ChatMessageResponse struct {
	Data models.ChatMessage `json:"data"` // The assistant's answer
}

type ChatMessageListResponse struct {
	Data []models.ChatMessage `json:"data"` // Messages in conversation order
}

// @Summary		Allowed HTTP verbs
// @Description	Returns an empty response with the HTTP Header "allow" set to the allowed HTTP verbs
// @Tags			Chat
// @Success		204
// @Router			/v1/chat/threads [options]
func OptionsChatThreads(c *gin.Context) {
	httputil.OptionsGetPost(c)
}

// @Summary		Allowed HTTP verbs
// @Description	Returns an empty response with the HTTP Header "allow" set to the allowed HTTP verbs
// @Tags			Chat
// @Success		204
// @Failure		400	{object}	httpError
// @Failure		404	{object}	httpError
// @Param			id	path		string	true	"ID formatted as string"
// @Router			/v1/chat/threads/{id}/messages [options]
func OptionsChatMessages(c *gin.Context) {
	var uri URIID
	if err := c.ShouldBindUri(&uri); err != nil {
		c.JSON(http.StatusBadRequest, httpError{Error: err.Error()})
		return
	}

	err := models.DB.First(&models.ChatThread{}, uri.ID).Error
	if err != nil {
		c.JSON(status(err), httpError{Error: err.Error()})
		return
	}

	httputil.OptionsGetPost(c)
}

// @Summary		List threads
// @Description	Returns all conversations with the assistant, most recently updated first
// @Tags			Chat
// @Produce		json
// @Success		200	{object}	ChatThreadListResponse
// @Failure		500	{object}	httpError
// @Router			/v1/chat/threads [get]
func GetChatThreads(c *gin.Context) {
	threads, err := models.ChatThreads(models.DB)
	if err != nil {
		c.JSON(status(err), httpError{Error: err.Error()})
		return
	}

	c.JSON(http.StatusOK, ChatThreadListResponse{Data: threads})
}

// @Summary		Create thread
// @Description	Starts a new conversation with the assistant
// @Tags			Chat
// @Accept			json
// @Produce		json
// @Success		201		{object}	ChatThreadResponse
// @Failure		400		{object}	httpError
// @Failure		500		{object}	httpError
// @Param			thread	body		ChatThreadEditable	true	"Thread"
// @Router			/v1/chat/threads [post]
func CreateChatThread(c *gin.Context) {
	var editable ChatThreadEditable
	err := httputil.BindData(c, &editable)
	if err != nil {
		c.JSON(http.StatusBadRequest, httpError{Error: err.Error()})
		return
	}

	thread := models.ChatThread{Title: editable.Title}
	err = models.DB.Create(&thread).Error
	if err != nil {
		c.JSON(status(err), httpError{Error: err.Error()})
		return
	}

	c.JSON(http.StatusCreated, ChatThreadResponse{Data: thread})
}

// @Summary		List messages
// @Description	Returns the messages of a thread in conversation order
// @Tags			Chat
// @Produce		json
// @Success		200	{object}	ChatMessageListResponse
// @Failure		400	{object}	httpError
// @Failure		404	{object}	httpError
// @Param			id	path		string	true	"ID formatted as string"
// @Router			/v1/chat/threads/{id}/messages [get]
func GetChatMessages(c *gin.Context) {
	var uri URIID
	if err := c.ShouldBindUri(&uri); err != nil {
		c.JSON(http.StatusBadRequest, httpError{Error: err.Error()})
		return
	}

	err := models.DB.First(&models.ChatThread{}, uri.ID).Error
	if err != nil {
		c.JSON(status(err), httpError{Error: err.Error()})
		return
	}

	messages, err := models.ThreadMessages(models.DB, uri.ID.UUID, 0)
	if err != nil {
		c.JSON(status(err), httpError{Error: err.Error()})
		return
	}

	c.JSON(http.StatusOK, ChatMessageListResponse{Data: messages})
}

// @Summary		Ask the assistant
// @Description	Stores the question, lets the assistant answer it with the current financial context and returns the answer. Requires GEMINI_API_KEY to be configured.
// @Tags			Chat
// @Accept			json
// @Produce		json
// @Success		201		{object}	ChatMessageResponse
// @Failure		400		{object}	httpError
// @Failure		404		{object}	httpError
// @Failure		503		{object}	httpError
// @Param			id		path		string				true	"ID formatted as string"
// @Param			message	body		ChatMessageEditable	true	"Message"
// @Router			/v1/chat/threads/{id}/messages [post]
func CreateChatMessage(c *gin.Context) {
	if assistant == nil {
		c.JSON(http.StatusServiceUnavailable, httpError{Error: errAssistantNotConfigured.Error()})
		return
	}

	var uri URIID
	if err := c.ShouldBindUri(&uri); err != nil {
		c.JSON(http.StatusBadRequest, httpError{Error: err.Error()})
		return
	}

	var editable ChatMessageEditable
	err := httputil.BindData(c, &editable)
	if err != nil {
		c.JSON(http.StatusBadRequest, httpError{Error: err.Error()})
		return
	}

	answer, err := assistant.Send(c.Request.Context(), models.DB, uri.ID.UUID, editable.Content, time.Now())
	if err != nil {
		c.JSON(status(err), httpError{Error: err.Error()})
		return
	}

	c.JSON(http.StatusCreated, ChatMessageResponse{Data: answer})
}
