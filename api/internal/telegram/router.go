package telegram

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	log "github.com/sirupsen/logrus"

	"github.com/Tangdor/scene-analyzer-sam-llm-mobile/api/internal/vision"
)

// Router dispatches bot updates: photos go to the segment endpoint, plain
// text goes to the llm endpoint.
type Router struct {
	Bot *tgbotapi.BotAPI
	API *Client

	targets sync.Map // chatID -> target label filter
	httpc   *http.Client
}

func NewRouter(bot *tgbotapi.BotAPI, api *Client) *Router {
	return &Router{
		Bot:   bot,
		API:   api,
		httpc: &http.Client{Timeout: 60 * time.Second},
	}
}

func (r *Router) HandleUpdate(upd tgbotapi.Update) {
	if upd.Message == nil {
		return
	}
	cid := upd.Message.Chat.ID

	if upd.Message.IsCommand() {
		r.handleCommand(*upd.Message)
		return
	}

	if len(upd.Message.Photo) > 0 {
		r.handlePhoto(*upd.Message)
		return
	}

	if txt := strings.TrimSpace(upd.Message.Text); txt != "" {
		r.handlePrompt(cid, txt)
	}
}

func (r *Router) handleCommand(msg tgbotapi.Message) {
	cid := msg.Chat.ID
	switch msg.Command() {
	case "start":
		r.send(cid, "Send a photo to detect objects, or a text prompt to ask about a scene.\n"+
			"Commands: /health, /target <label>")
	case "health":
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := r.API.Health(ctx); err != nil {
			r.sendError(cid, err)
			return
		}
		r.send(cid, "✅ OK")
	case "target":
		arg := strings.TrimSpace(msg.CommandArguments())
		if arg == "" {
			r.targets.Delete(cid)
			r.send(cid, "Target filter cleared.")
			return
		}
		r.targets.Store(cid, arg)
		r.send(cid, "Only reporting: "+arg)
	default:
		r.send(cid, "Unknown command")
	}
}

func (r *Router) handlePhoto(msg tgbotapi.Message) {
	cid := msg.Chat.ID

	ph := msg.Photo[len(msg.Photo)-1]
	file, err := r.Bot.GetFile(tgbotapi.FileConfig{FileID: ph.FileID})
	if err != nil {
		r.sendError(cid, err)
		return
	}

	url := fmt.Sprintf("https://api.telegram.org/file/bot%s/%s", r.Bot.Token, file.FilePath)
	img, err := r.download(url)
	if err != nil {
		r.sendError(cid, err)
		return
	}

	var target string
	if v, ok := r.targets.Load(cid); ok {
		target = v.(string)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 120*time.Second)
	defer cancel()

	res, err := r.API.Segment(ctx, img, target)
	if err != nil {
		r.sendError(cid, err)
		return
	}

	r.send(cid, formatObjects(res))
}

func (r *Router) handlePrompt(cid int64, prompt string) {
	ctx, cancel := context.WithTimeout(context.Background(), 180*time.Second)
	defer cancel()

	reply, err := r.API.Ask(ctx, prompt)
	if err != nil {
		r.sendError(cid, err)
		return
	}
	if reply == "" {
		reply = "(empty reply)"
	}
	r.send(cid, reply)
}

func formatObjects(res vision.Result) string {
	if len(res.Objects) == 0 {
		return "No objects detected."
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Detected %d object(s):\n", len(res.Objects))
	for _, o := range res.Objects {
		fmt.Fprintf(&b, "- %s (%.2f) at (%.0f, %.0f) %.0fx%.0f\n",
			o.Label, o.Score, o.Box.X, o.Box.Y, o.Box.Width, o.Box.Height)
	}
	return strings.TrimRight(b.String(), "\n")
}

func (r *Router) download(url string) ([]byte, error) {
	resp, err := r.httpc.Get(url)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode != 200 {
		b, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("status %d: %s", resp.StatusCode, string(b))
	}
	return io.ReadAll(resp.Body)
}

func (r *Router) send(cid int64, text string) {
	if _, err := r.Bot.Send(tgbotapi.NewMessage(cid, text)); err != nil {
		log.Debugf("[Bot] send failed: %v", err)
	}
}

func (r *Router) sendError(cid int64, err error) {
	r.send(cid, "⚠️ "+err.Error())
}
