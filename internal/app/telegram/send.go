package telegram

import (
	"log"
	"strings"
	"time"

	"github.com/beldeveloper/deploy-bot/internal/app"
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

const (
	// chunkRunes caps a single message body; Telegram rejects payloads over
	// 4096 characters and the pre tags need some headroom.
	chunkRunes = 4000
	// batchLines is how many output lines are grouped into one message.
	batchLines = 10
	// sendPause spaces out consecutive sends to stay under the API rate limit.
	sendPause = 300 * time.Millisecond
)

// streamLines relays script output to the chat in batches and reports
// whether the stream finished without a failure sentinel.
func (b *Bot) streamLines(chatID int64, lines <-chan string) bool {
	ok := true
	batch := make([]string, 0, batchLines)
	flush := func() {
		if len(batch) == 0 {
			return
		}
		b.sendChunked(chatID, strings.Join(batch, "\n"))
		batch = batch[:0]
	}
	for line := range lines {
		if app.IsErrorLine(line) {
			ok = false
		}
		batch = append(batch, line)
		if len(batch) == batchLines {
			flush()
		}
	}
	flush()
	return ok
}

// sendChunked sends the text as one or more pre-formatted messages.
func (b *Bot) sendChunked(chatID int64, text string) {
	for _, chunk := range splitChunks(text, chunkRunes) {
		b.sendHTML(chatID, "<pre>"+escapeHTML(chunk)+"</pre>")
		time.Sleep(sendPause)
	}
}

func (b *Bot) sendHTML(chatID int64, text string) {
	m := tgbotapi.NewMessage(chatID, text)
	m.ParseMode = tgbotapi.ModeHTML
	b.send(m)
}

func (b *Bot) sendText(chatID int64, text string) {
	b.send(tgbotapi.NewMessage(chatID, text))
}

func (b *Bot) edit(chatID int64, messageID int, text string) {
	b.send(tgbotapi.NewEditMessageText(chatID, messageID, text))
}

func (b *Bot) send(c tgbotapi.Chattable) {
	if _, err := b.api.Send(c); err != nil {
		log.Printf("Send message: %v\n", err)
	}
}

// escapeHTML neutralizes the characters Telegram's HTML parse mode would
// otherwise interpret.
func escapeHTML(s string) string {
	return htmlReplacer.Replace(s)
}

var htmlReplacer = strings.NewReplacer("&", "&amp;", "<", "&lt;", ">", "&gt;")

// splitChunks splits the text into rune-safe pieces of at most max runes so
// a multibyte character is never cut in half.
func splitChunks(s string, max int) []string {
	if s == "" {
		return nil
	}
	var chunks []string
	runes := []rune(s)
	for len(runes) > max {
		chunks = append(chunks, string(runes[:max]))
		runes = runes[max:]
	}
	return append(chunks, string(runes))
}
