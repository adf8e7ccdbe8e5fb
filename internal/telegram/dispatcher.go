// Package telegram delivers the final text to a chat, splitting it into
// transport-safe chunks when it exceeds the per-message limit.
package telegram

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/rs/zerolog"
	"golang.org/x/time/rate"
	tele "gopkg.in/telebot.v4"
)

const defaultTimeout = 25 * time.Second

// sender is the single telebot method the dispatcher uses; *tele.Bot
// satisfies it, tests substitute a fake.
type sender interface {
	Send(to tele.Recipient, what interface{}, opts ...interface{}) (*tele.Message, error)
}

type Config struct {
	Token  string
	ChatID int64

	// MaxChunk is the per-message size ceiling in runes, kept under
	// Telegram's hard 4096 limit to leave room for the part marker.
	MaxChunk   int
	ChunkDelay time.Duration
	Timeout    time.Duration

	// Client overrides the default HTTP client. Tests inject a
	// non-networking transport here.
	Client *http.Client
}

type Dispatcher struct {
	api      sender
	chat     *tele.Chat
	maxChunk int
	pace     *rate.Limiter
	log      zerolog.Logger
}

func New(cfg Config, log zerolog.Logger) (*Dispatcher, error) {
	if strings.TrimSpace(cfg.Token) == "" {
		return nil, errors.New("telegram token is empty")
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	client := cfg.Client
	if client == nil {
		client = &http.Client{Timeout: timeout}
	}
	// Offline skips telebot's getMe probe: construction must stay
	// network-free so a gated run (weekend, already sent) performs no
	// HTTP calls at all. The token is exercised on the first Send.
	b, err := tele.NewBot(tele.Settings{
		Token:   cfg.Token,
		Client:  client,
		Offline: true,
	})
	if err != nil {
		return nil, fmt.Errorf("telegram bot: %w", err)
	}
	return newDispatcher(b, cfg, log), nil
}

func newDispatcher(api sender, cfg Config, log zerolog.Logger) *Dispatcher {
	lim := rate.Inf
	if cfg.ChunkDelay > 0 {
		lim = rate.Every(cfg.ChunkDelay)
	}
	return &Dispatcher{
		api:      api,
		chat:     &tele.Chat{ID: cfg.ChatID},
		maxChunk: cfg.MaxChunk,
		pace:     rate.NewLimiter(lim, 1),
		log:      log,
	}
}

// Dispatch sends text to the configured chat. A message within the
// limit goes out as one HTML-formatted send. Oversized text is split
// into ordered plain-text chunks: a truncated HTML tag in any one chunk
// would corrupt that chunk's rendering, so markup is disabled for all
// of them. Delivery succeeds only if every chunk's send succeeds; the
// first failed chunk aborts the rest, since delivering the tail out of
// context helps nobody.
func (d *Dispatcher) Dispatch(ctx context.Context, text string) error {
	if utf8.RuneCountInString(text) <= d.maxChunk {
		if _, err := d.api.Send(d.chat, text, &tele.SendOptions{ParseMode: tele.ModeHTML}); err != nil {
			return fmt.Errorf("send message: %w", err)
		}
		d.log.Info().Int("len", utf8.RuneCountInString(text)).Msg("message sent")
		return nil
	}

	chunks := SplitChunks(text, d.maxChunk)
	n := len(chunks)
	d.log.Info().Int("chunks", n).Msg("message exceeds limit, sending chunked")

	for i, chunk := range chunks {
		if err := d.pace.Wait(ctx); err != nil {
			return err
		}
		if i > 0 {
			chunk = fmt.Sprintf("[%d/%d]\n", i+1, n) + chunk
		}
		if _, err := d.api.Send(d.chat, chunk); err != nil {
			return fmt.Errorf("send chunk %d/%d: %w", i+1, n, err)
		}
	}
	d.log.Info().Int("chunks", n).Msg("all chunks sent")
	return nil
}
