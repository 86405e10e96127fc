package bot

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"sync"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/i474232898/weather-analytics/internal/chart"
	"github.com/i474232898/weather-analytics/internal/common"
	"github.com/i474232898/weather-analytics/internal/report"
	"github.com/i474232898/weather-analytics/internal/weather"
	"github.com/i474232898/weather-analytics/internal/weather/providers"
)

// Sender is the subset of *tgbotapi.BotAPI used by the bot.
type Sender interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
}

// Weather is the part of weather.Service the bot needs.
type Weather interface {
	Forecast(ctx context.Context, city string) (weather.Forecast, error)
	Collect(ctx context.Context, cities []string) (weather.Batch, error)
}

var reportKeywords = []string{"report", "отчет", "отчёт", "сводка"}

const keyboardColumns = 3

// Bot answers chat messages with forecast charts and the multi-city report.
type Bot struct {
	api     Sender
	weather Weather
	cities  []string
	timeout time.Duration
}

// New creates a Bot. cities populate the /start keyboard and the /report run.
func New(api Sender, w Weather, cities []string) *Bot {
	return &Bot{
		api:     api,
		weather: w,
		cities:  cities,
		timeout: 2 * time.Minute,
	}
}

// Run handles updates until ctx is cancelled or the channel is closed.
// Each message is handled in its own goroutine; Run waits for them before returning.
func (b *Bot) Run(ctx context.Context, updates tgbotapi.UpdatesChannel) {
	var wg sync.WaitGroup
	defer wg.Wait()

	for {
		select {
		case <-ctx.Done():
			return
		case update, ok := <-updates:
			if !ok {
				return
			}
			if update.Message == nil {
				continue
			}
			wg.Add(1)
			go func(msg *tgbotapi.Message) {
				defer wg.Done()
				b.Handle(ctx, msg)
			}(update.Message)
		}
	}
}

// Handle dispatches a single incoming message.
func (b *Bot) Handle(ctx context.Context, msg *tgbotapi.Message) {
	chatID := msg.Chat.ID
	text := strings.TrimSpace(msg.Text)

	switch {
	case msg.IsCommand() && msg.Command() == "start":
		b.sendKeyboard(chatID)
	case msg.IsCommand() && msg.Command() == "report", !msg.IsCommand() && common.HasAny(text, reportKeywords...):
		b.sendReport(ctx, chatID)
	case msg.IsCommand():
		b.reply(chatID, "Unknown command. Use /start to pick a city or /report for the summary.")
	case text == "":
		return
	default:
		b.sendForecast(ctx, chatID, text)
	}
}

func (b *Bot) sendKeyboard(chatID int64) {
	rows := make([][]tgbotapi.KeyboardButton, 0, len(b.cities)/keyboardColumns+2)
	var row []tgbotapi.KeyboardButton
	for _, city := range b.cities {
		row = append(row, tgbotapi.NewKeyboardButton(city))
		if len(row) == keyboardColumns {
			rows = append(rows, row)
			row = nil
		}
	}
	if len(row) > 0 {
		rows = append(rows, row)
	}
	rows = append(rows, tgbotapi.NewKeyboardButtonRow(tgbotapi.NewKeyboardButton("/report")))

	msg := tgbotapi.NewMessage(chatID, "Pick a city for a forecast chart or type any city name.")
	msg.ReplyMarkup = tgbotapi.NewReplyKeyboard(rows...)
	b.send(msg)
}

func (b *Bot) sendForecast(ctx context.Context, chatID int64, city string) {
	ctx, cancel := context.WithTimeout(ctx, b.timeout)
	defer cancel()

	b.reply(chatID, fmt.Sprintf("Fetching forecast for %s...", city))

	fc, err := b.weather.Forecast(ctx, city)
	if err != nil {
		log.Printf("bot: forecast for %q failed: %v", city, err)
		switch {
		case errors.Is(err, providers.ErrCityNotFound):
			b.reply(chatID, fmt.Sprintf("City not found: %s", city))
		case errors.Is(err, weather.ErrForecastUnsupported):
			b.reply(chatID, "The configured weather provider has no forecasts.")
		default:
			b.reply(chatID, "Could not fetch the forecast, try again later.")
		}
		return
	}

	stats, err := weather.ForecastStats(fc.Points)
	if err != nil {
		log.Printf("bot: forecast for %q has no points: %v", city, err)
		b.reply(chatID, "The forecast came back empty.")
		return
	}

	img, err := chart.ForecastLine(fc)
	if err != nil {
		log.Printf("bot: forecast chart for %q failed: %v", city, err)
		b.reply(chatID, "Could not draw the forecast chart.")
		return
	}

	name := fc.City
	if name == "" {
		name = city
	}
	photo := tgbotapi.NewPhoto(chatID, tgbotapi.FileBytes{Name: "forecast.png", Bytes: img})
	photo.Caption = report.ForecastCaption(tgbotapi.EscapeText(tgbotapi.ModeMarkdown, name), stats)
	photo.ParseMode = tgbotapi.ModeMarkdown
	b.send(photo)
}

func (b *Bot) sendReport(ctx context.Context, chatID int64) {
	ctx, cancel := context.WithTimeout(ctx, b.timeout)
	defer cancel()

	b.reply(chatID, fmt.Sprintf("Collecting weather for %d cities...", len(b.cities)))

	batch, err := b.weather.Collect(ctx, b.cities)
	if err != nil {
		log.Printf("bot: report collection failed: %v", err)
		b.reply(chatID, "Could not collect weather data, try again later.")
		return
	}

	rep, err := report.Build(batch.Records)
	if err != nil {
		log.Printf("bot: report build failed: %v", err)
		b.reply(chatID, "No weather data to report.")
		return
	}
	b.reply(chatID, rep.Text())

	img, err := chart.Pie(rep.Conditions)
	if err != nil {
		log.Printf("bot: conditions chart failed: %v", err)
		return
	}
	photo := tgbotapi.NewPhoto(chatID, tgbotapi.FileBytes{Name: report.ConditionsFile, Bytes: img})
	photo.Caption = "Weather conditions distribution"
	b.send(photo)
}

func (b *Bot) reply(chatID int64, text string) {
	b.send(tgbotapi.NewMessage(chatID, text))
}

func (b *Bot) send(c tgbotapi.Chattable) {
	if _, err := b.api.Send(c); err != nil {
		log.Printf("bot: send failed: %v", err)
	}
}
