package notify

import (
	"context"
	"fmt"
	"html"
	"strings"
	"time"

	"github.com/Freeeeeet/guide_scheduler/internal/model"
	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
	"go.uber.org/zap"
)

const sendTimeout = 5 * time.Second

// MessageSender часть *bot.Bot, нужная уведомлениям
type MessageSender interface {
	SendMessage(ctx context.Context, params *bot.SendMessageParams) (*models.Message, error)
}

// TelegramNotifier отправляет события о бронированиях в чат
type TelegramNotifier struct {
	sender MessageSender
	chatID int64
	logger *zap.Logger
}

func NewTelegramNotifier(sender MessageSender, chatID int64, logger *zap.Logger) *TelegramNotifier {
	return &TelegramNotifier{
		sender: sender,
		chatID: chatID,
		logger: logger,
	}
}

// NewTelegramBot создаёт клиента Bot API без обработчиков обновлений
func NewTelegramBot(token string) (*bot.Bot, error) {
	b, err := bot.New(token, bot.WithSkipGetMe())
	if err != nil {
		return nil, fmt.Errorf("create telegram bot: %w", err)
	}
	return b, nil
}

func (n *TelegramNotifier) BookingCreated(ctx context.Context, booking *model.Booking) error {
	var sb strings.Builder
	sb.WriteString("📅 <b>Новая заявка на экскурсию</b>\n\n")
	writeBooking(&sb, booking)
	if booking.Notes != "" {
		sb.WriteString(fmt.Sprintf("\n💬 %s", html.EscapeString(booking.Notes)))
	}
	return n.send(ctx, sb.String(), booking)
}

func (n *TelegramNotifier) BookingStatusChanged(ctx context.Context, booking *model.Booking, from model.BookingStatus, actor model.Role) error {
	prev := GetStatusDisplay(from)
	next := GetStatusDisplay(booking.Status)

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("%s <b>Статус брони изменён</b> (%s)\n\n", next.Emoji, GetRoleName(actor)))
	sb.WriteString(fmt.Sprintf("%s %s → %s %s\n", prev.Emoji, prev.Text, next.Emoji, next.Text))
	writeBooking(&sb, booking)
	return n.send(ctx, sb.String(), booking)
}

func writeBooking(sb *strings.Builder, booking *model.Booking) {
	sb.WriteString(fmt.Sprintf("🆔 <code>%s</code>\n", booking.ID))
	sb.WriteString(fmt.Sprintf("🧭 Гид: %d, турист: %d\n", booking.GuideID, booking.TouristID))
	sb.WriteString(fmt.Sprintf("📆 %s, %s (%s)\n",
		FormatDate(booking.BookingDate),
		FormatTimeRange(booking.StartTime, booking.EndTime),
		FormatDuration(booking.DurationHours)))
	sb.WriteString(fmt.Sprintf("💴 %s\n", FormatYen(booking.Fee)))
}

func (n *TelegramNotifier) send(ctx context.Context, text string, booking *model.Booking) error {
	ctx, cancel := context.WithTimeout(ctx, sendTimeout)
	defer cancel()

	_, err := n.sender.SendMessage(ctx, &bot.SendMessageParams{
		ChatID:    n.chatID,
		Text:      text,
		ParseMode: models.ParseModeHTML,
	})
	if err != nil {
		return fmt.Errorf("send telegram message: %w", err)
	}

	n.logger.Debug("Booking notification sent",
		zap.String("booking_id", booking.ID.String()),
		zap.String("status", string(booking.Status)),
	)
	return nil
}

// Nop уведомления отключены
type Nop struct{}

func (Nop) BookingCreated(context.Context, *model.Booking) error {
	return nil
}

func (Nop) BookingStatusChanged(context.Context, *model.Booking, model.BookingStatus, model.Role) error {
	return nil
}
