// Package notify is the delivery sink: it renders a transport-neutral
// notification into Telegram markup and performs the single outbound
// send. Retry policy lives with the caller (there is none; a failed send
// is retried on the next scan cycle).
package notify

import (
	"context"
	"fmt"

	kit "coursewatch/internal/transport"
	"coursewatch/internal/watch"
	logx "coursewatch/pkg/logx"
)

type Service struct {
	sender  kit.Sender
	channel kit.ChatTarget
	log     logx.Logger
}

func New(sender kit.Sender, channelID int64, log logx.Logger) *Service {
	if log.IsZero() {
		log = logx.Nop()
	}
	return &Service{sender: sender, channel: kit.ChatTarget{ChatID: channelID}, log: log}
}

// Deliver sends one rendered notification to the configured channel.
func (s *Service) Deliver(ctx context.Context, msg watch.Rendered) error {
	text := renderMarkdown(msg)
	opt := &kit.SendOptions{ParseMode: "Markdown", DisablePreview: true}

	_, err := s.sender.SendText(ctx, s.channel, text, opt)
	if err != nil {
		return err
	}
	s.log.Debug("notification sent",
		logx.Int64("chat_id", s.channel.ChatID),
		logx.String("title", msg.Title))
	return nil
}

func renderMarkdown(msg watch.Rendered) string {
	text := fmt.Sprintf("📌 **%s**\n📚 **Subject:** %s\n📂 **Type:** %s",
		msg.Title, msg.Subject, msg.TypeLabel)
	if msg.Link != "" {
		text += fmt.Sprintf("\n\n🔗 [Click to Open](%s)", msg.Link)
	}
	return text
}
