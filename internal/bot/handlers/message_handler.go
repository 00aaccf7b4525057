package handlers

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"

	"github.com/knowbot/knowbot/internal/ai"
	"github.com/knowbot/knowbot/internal/storage"
)

// NewMessageHandler returns the default handler that captures incoming
// messages: it extracts their content, enriches it through the AI stage
// and enqueues the record for persistence.
func NewMessageHandler(deps HandlerDeps) bot.HandlerFunc {
	return messageHandler{deps}.Handle
}

type messageHandler struct {
	deps HandlerDeps
}

func (h messageHandler) Handle(ctx context.Context, b *bot.Bot, update *models.Update) {
	deps := h.deps
	log := deps.Logger.With("handler", "message")

	msg := update.Message
	if msg == nil || msg.From == nil {
		log.DebugContext(ctx, "Ignoring update with nil message or sender", "update_id", update.ID)
		return
	}
	if strings.HasPrefix(msg.Text, "/") {
		// Commands are routed by their own handlers.
		return
	}

	hasMedia := msg.Document != nil || len(msg.Photo) > 0 ||
		msg.Voice != nil || msg.Audio != nil || msg.Video != nil
	if msg.Text == "" && msg.Caption == "" && !hasMedia {
		log.DebugContext(ctx, "Ignoring message with no processable content",
			"chat_id", msg.Chat.ID, "message_id", msg.ID)
		return
	}

	chatID := msg.Chat.ID
	log.InfoContext(ctx, "Processing incoming message",
		"chat_id", chatID, "message_id", msg.ID, "user_id", msg.From.ID, "has_media", hasMedia)

	processing := sendReply(ctx, b, deps, chatID, msg.ID, deps.Config.Messages.Processing)

	content := deps.Pipeline.Process(ctx, msg, NewDownloader(b, deps.Config.Telegram.Token))

	fullText := strings.TrimSpace(content.Text)
	if fullText == "" {
		if !hasMedia {
			if processing != nil {
				editText(ctx, b, deps, chatID, processing.ID, deps.Config.Messages.NoContent)
			}
			return
		}
		// Media that yielded no text still gets captured; a synthesized
		// description feeds the AI stage instead.
		fullText = "Media file received: " + describeMedia(msg)
	}

	aiCtx, cancel := context.WithTimeout(ctx, aiProcessingTimeout)
	defer cancel()

	summary, err := deps.Summarizer.Summarize(aiCtx, fullText, ai.DefaultSummaryLength)
	if err != nil {
		if processing != nil {
			editText(ctx, b, deps, chatID, processing.ID, deps.Config.Messages.GeneralError)
		}
		ReportError(ctx, b, deps, update, "summarize", err)
		return
	}

	category, tags := deps.Classifier.Classify(aiCtx, fullText)

	embedding, err := deps.Summarizer.Embed(aiCtx, fullText)
	if err != nil {
		if errors.Is(err, ai.ErrEmbeddingsUnsupported) {
			log.DebugContext(ctx, "Embeddings not supported by configured provider")
		} else {
			log.WarnContext(ctx, "Embedding generation failed, saving without embedding", "error", err)
		}
		embedding = nil
	}

	keywords := deps.Classifier.ExtractKeywords(aiCtx, fullText, ai.DefaultKeywordCount)

	metadata := content.Metadata
	if metadata == nil {
		metadata = map[string]any{}
	}
	metadata["has_document"] = msg.Document != nil
	metadata["has_photo"] = len(msg.Photo) > 0
	metadata["has_media"] = hasMedia
	if hasMedia {
		metadata["media_type"] = mediaType(msg)
	}

	rec := &storage.Record{
		UserID:    msg.From.ID,
		Username:  msg.From.Username,
		MessageID: msg.ID,
		Timestamp: time.Unix(int64(msg.Date), 0).UTC().Format(time.RFC3339),
		Content:   fullText,
		Summary:   summary,
		Category:  category,
		Tags:      tags,
		Keywords:  keywords,
		Embedding: embedding,
		Metadata:  metadata,
	}
	deps.Queue.Put(rec)
	log.InfoContext(ctx, "Enqueued record for persistence",
		"chat_id", chatID, "message_id", msg.ID, "category", category)

	if processing != nil {
		editText(ctx, b, deps, chatID, processing.ID, buildResultCard(msg, fullText, rec, hasMedia))
	}
}

// buildResultCard renders the confirmation the processing notice is edited
// into. Media messages get a shorter variant without keyword and URL stats.
func buildResultCard(msg *models.Message, fullText string, rec *storage.Record, media bool) string {
	var b strings.Builder

	if media {
		b.WriteString("✅ *Media Processed Successfully!*\n\n")
		fmt.Fprintf(&b, "📁 *Type:* %s\n", mediaType(msg))
		fmt.Fprintf(&b, "🏷️ *Category:* %s\n", rec.Category)
		fmt.Fprintf(&b, "🏷️ *Tags:* %s\n\n", strings.Join(rec.Tags, ", "))
		fmt.Fprintf(&b, "📝 *Summary:*\n_%s_", rec.Summary)
		return b.String()
	}

	urls := 0
	if n, ok := rec.Metadata["extracted_urls"].(int); ok {
		urls = n
	}
	files := 0
	if n, ok := rec.Metadata["extracted_files"].(int); ok {
		files = n
	}
	images := 0
	if n, ok := rec.Metadata["extracted_images"].(int); ok {
		images = n
	}

	b.WriteString("✅ *Message Processed Successfully!*\n\n")
	fmt.Fprintf(&b, "🏷️ *Category:* %s\n", rec.Category)
	fmt.Fprintf(&b, "🏷️ *Tags:* %s\n", strings.Join(rec.Tags, ", "))
	fmt.Fprintf(&b, "🔑 *Keywords:* %s\n\n", strings.Join(rec.Keywords, ", "))
	fmt.Fprintf(&b, "📝 *Summary:*\n_%s_\n\n", rec.Summary)
	b.WriteString("📊 *Stats:*\n")
	fmt.Fprintf(&b, "- Length: %d chars\n", len(fullText))
	fmt.Fprintf(&b, "- URLs: %d\n", urls)
	fmt.Fprintf(&b, "- Files: %d\n", files)
	fmt.Fprintf(&b, "- Images: %d", images)
	return b.String()
}

// mediaType names the attachment kind for metadata and the result card.
func mediaType(msg *models.Message) string {
	switch {
	case msg.Document != nil:
		return fmt.Sprintf("Document (%s)", msg.Document.MimeType)
	case len(msg.Photo) > 0:
		return "Photo"
	case msg.Audio != nil:
		return "Audio"
	case msg.Video != nil:
		return "Video"
	case msg.Voice != nil:
		return "Voice Message"
	default:
		return "Unknown"
	}
}

// describeMedia synthesizes a text description for media that yielded no
// extractable content, so the AI stage still has something to work with.
func describeMedia(msg *models.Message) string {
	var parts []string

	switch {
	case msg.Document != nil:
		parts = append(parts,
			fmt.Sprintf("Document: %s", msg.Document.FileName),
			fmt.Sprintf("Size: %d bytes", msg.Document.FileSize),
			fmt.Sprintf("Type: %s", msg.Document.MimeType))
	case len(msg.Photo) > 0:
		photo := msg.Photo[len(msg.Photo)-1]
		parts = append(parts, "Photo",
			fmt.Sprintf("Dimensions: %dx%d", photo.Width, photo.Height))
	case msg.Audio != nil:
		parts = append(parts,
			fmt.Sprintf("Audio: %s", msg.Audio.FileName),
			fmt.Sprintf("Duration: %d seconds", msg.Audio.Duration))
	case msg.Video != nil:
		parts = append(parts, "Video",
			fmt.Sprintf("Duration: %d seconds", msg.Video.Duration))
	case msg.Voice != nil:
		parts = append(parts, "Voice Message",
			fmt.Sprintf("Duration: %d seconds", msg.Voice.Duration))
	}

	if msg.Caption != "" {
		parts = append(parts, fmt.Sprintf("Caption: %s", msg.Caption))
	}

	return strings.Join(parts, ". ")
}
